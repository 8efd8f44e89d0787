// Package strategy implements the governance power strategies: how much power
// an account has at a snapshot and what it must submit to the L2 strategy
// contract to prove it.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/prophouse/govpower-sdk/starknet"
)

type Type string

const (
	Vanilla              Type = "VANILLA"
	Allowlist            Type = "ALLOWLIST"
	Whitelist            Type = "WHITELIST"
	BalanceOf            Type = "BALANCE_OF"
	BalanceOfERC1155     Type = "BALANCE_OF_ERC1155"
	CheckpointableERC721 Type = "CHECKPOINTABLE_ERC721"
)

// DefaultTypes lists the strategies every chain deployment may provide.
var DefaultTypes = []Type{Vanilla, Allowlist, Whitelist, BalanceOf, BalanceOfERC1155, CheckpointableERC721}

var (
	ErrNoTraceRPC             = errors.New("no trace rpc configured for chain")
	ErrMissingStrategyAddress = errors.New("missing strategy address")
	ErrNotOnAllowlist         = errors.New("account is not on the allowlist")
	ErrEmptyAllowlist         = errors.New("allowlist has no members")
	ErrDuplicateMember        = errors.New("duplicate allowlist member")
	ErrNotImplemented         = errors.New("not implemented")
	ErrInvalidConfig          = errors.New("invalid strategy config")
	ErrUnsupportedToken       = errors.New("unsupported token")
)

type Member struct {
	Address  common.Address `json:"address"`
	GovPower *big.Int       `json:"govPower"`
}

// Config describes one governance power strategy of a round. Only the fields
// of StrategyType are read.
type Config struct {
	StrategyType Type           `json:"strategyType"`
	Address      common.Address `json:"address,omitempty"`
	Multiplier   *uint64        `json:"multiplier,omitempty"`
	TokenID      *big.Int       `json:"tokenId,omitempty"`
	Members      []Member       `json:"members,omitempty"`
}

// WithID is a strategy registered on L2 under a numeric id.
type WithID struct {
	ID      *big.Int `json:"id"`
	Address string   `json:"address"`
}

// PowerQuery asks for the power of Account at Timestamp under Config.
type PowerQuery struct {
	Account   common.Address
	Timestamp uint64
	Config    Config
}

// Handler is implemented once per strategy type.
type Handler interface {
	Type() Type
	// Address is the L2 strategy contract.
	Address() string
	// StrategyParams derives the params stored once when a round is created.
	StrategyParams(ctx context.Context, cfg Config) ([]string, error)
	// UserParams derives what account submits when voting or proposing,
	// using the params stored for strategyID.
	UserParams(ctx context.Context, account common.Address, timestamp uint64, strategyID *big.Int) ([]string, error)
	Power(ctx context.Context, q PowerQuery) (*big.Int, error)
}

// PreCaller is implemented by handlers whose user params are only valid once
// some facts have been proven on L2.
type PreCaller interface {
	PreCalls(ctx context.Context, account common.Address, timestamp uint64, strategyID *big.Int) ([]starknet.Call, error)
}

// MultiplierOrDefault returns the configured multiplier, 1 when absent.
func (c Config) MultiplierOrDefault() *big.Int {
	if c.Multiplier == nil {
		return big.NewInt(1)
	}
	return new(big.Int).SetUint64(*c.Multiplier)
}

// Validate checks the fields required by StrategyType.
func (c Config) Validate() error {
	if c.Multiplier != nil && *c.Multiplier < 1 {
		return fmt.Errorf("%w: multiplier must be at least 1", ErrInvalidConfig)
	}
	switch c.StrategyType {
	case BalanceOf, CheckpointableERC721:
		if c.Address == (common.Address{}) {
			return fmt.Errorf("%w: %s needs a token address", ErrInvalidConfig, c.StrategyType)
		}
	case BalanceOfERC1155:
		if c.Address == (common.Address{}) {
			return fmt.Errorf("%w: %s needs a token address", ErrInvalidConfig, c.StrategyType)
		}
		if c.TokenID == nil || c.TokenID.Sign() < 0 {
			return fmt.Errorf("%w: %s needs a token id", ErrInvalidConfig, c.StrategyType)
		}
	case Allowlist, Whitelist:
		return validateMembers(c.Members)
	}
	return nil
}

func validateMembers(members []Member) error {
	if len(members) == 0 {
		return ErrEmptyAllowlist
	}
	seen := make(map[common.Address]bool, len(members))
	for _, m := range members {
		if seen[m.Address] {
			return fmt.Errorf("%w: %s", ErrDuplicateMember, m.Address.Hex())
		}
		seen[m.Address] = true
		if m.GovPower == nil || m.GovPower.Sign() < 0 {
			return fmt.Errorf("%w: member %s has invalid power", ErrInvalidConfig, m.Address.Hex())
		}
	}
	return nil
}

// withMultiplier appends the multiplier param when it is not the default.
func withMultiplier(params []string, cfg Config) []string {
	if m := cfg.MultiplierOrDefault(); m.Cmp(big.NewInt(1)) > 0 {
		return append(params, "0x"+m.Text(16))
	}
	return params
}

func checkType(cfg Config, t Type) error {
	if cfg.StrategyType != t {
		return fmt.Errorf("%w: %s config given to %s strategy", ErrInvalidConfig, cfg.StrategyType, t)
	}
	return cfg.Validate()
}
