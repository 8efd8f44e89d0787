package strategy

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/prophouse/govpower-sdk/encoding"
	"github.com/prophouse/govpower-sdk/merkle"
	"github.com/prophouse/govpower-sdk/pin"
)

// AllowlistHandler grants each listed member a fixed power, proven with a
// Merkle proof against the root stored for the strategy. The member list
// itself is pinned and referenced from the strategy params.
type AllowlistHandler struct {
	address    string
	pinner     pin.Pinner
	strategies ParamsSource
}

func NewAllowlist(address string, pinner pin.Pinner, strategies ParamsSource) (*AllowlistHandler, error) {
	if err := requireAddress(Allowlist, address); err != nil {
		return nil, err
	}
	if pinner == nil || strategies == nil {
		return nil, fmt.Errorf("allowlist strategy needs a pinner and a strategy registry")
	}
	return &AllowlistHandler{address: address, pinner: pinner, strategies: strategies}, nil
}

func (h *AllowlistHandler) Type() Type {
	return Allowlist
}

func (h *AllowlistHandler) Address() string {
	return h.address
}

// StrategyParams pins the members with their tree and returns
// [root, ...contentID as short strings].
func (h *AllowlistHandler) StrategyParams(ctx context.Context, cfg Config) ([]string, error) {
	if err := checkType(cfg, Allowlist); err != nil {
		return nil, err
	}
	tree, err := memberTree(cfg.Members)
	if err != nil {
		return nil, err
	}
	id, err := h.pinner.Pin(ctx, newAllowlistDocument(Allowlist, cfg.Members, tree))
	if err != nil {
		return nil, fmt.Errorf("pinning allowlist: %w", err)
	}
	return append([]string{tree.Root().String()}, encoding.EncodeShortStrings(id)...), nil
}

// UserParams returns [address, powerLow, powerHigh, ...proof].
func (h *AllowlistHandler) UserParams(ctx context.Context, account common.Address, timestamp uint64, strategyID *big.Int) ([]string, error) {
	reg, err := h.strategies.Strategy(ctx, strategyID)
	if err != nil {
		return nil, err
	}
	if len(reg.Params) < 2 {
		return nil, fmt.Errorf("allowlist strategy %s has %d params", strategyID, len(reg.Params))
	}
	id, err := encoding.DecodeShortStrings(reg.Params[1:])
	if err != nil {
		return nil, fmt.Errorf("allowlist strategy %s content id: %w", strategyID, err)
	}
	var doc allowlistDocument
	if err := h.pinner.Fetch(ctx, id, &doc); err != nil {
		return nil, err
	}
	members, err := doc.members()
	if err != nil {
		return nil, err
	}
	member, ok := findMember(members, account)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotOnAllowlist, account.Hex())
	}
	tree, err := memberTree(members)
	if err != nil {
		return nil, err
	}
	if !feltEqual(tree.Root(), reg.Params[0]) {
		return nil, fmt.Errorf("pinned allowlist %s does not match stored root %s", id, reg.Params[0])
	}
	leaf, err := merkle.LeafHash(member.Address, member.GovPower)
	if err != nil {
		return nil, err
	}
	proof, err := tree.Proof(tree.IndexOf(leaf))
	if err != nil {
		return nil, err
	}
	power, err := encoding.FromUint(member.GovPower)
	if err != nil {
		return nil, err
	}
	params := append([]string{encoding.AddressToFelt(account)}, power.Strings()...)
	return append(params, merkle.FeltsToHex(proof)...), nil
}

// Power is the listed power of the account, zero when it is not listed.
func (h *AllowlistHandler) Power(ctx context.Context, q PowerQuery) (*big.Int, error) {
	if err := checkType(q.Config, Allowlist); err != nil {
		return nil, err
	}
	m, ok := findMember(q.Config.Members, q.Account)
	if !ok {
		return new(big.Int), nil
	}
	return scale(m.GovPower, q.Config), nil
}
