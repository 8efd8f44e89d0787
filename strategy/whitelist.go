package strategy

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// WhitelistHandler is the older form of the allowlist. It only derives the
// root; proofs and power must go through the allowlist strategy.
type WhitelistHandler struct {
	address string
}

func NewWhitelist(address string) (*WhitelistHandler, error) {
	if err := requireAddress(Whitelist, address); err != nil {
		return nil, err
	}
	return &WhitelistHandler{address: address}, nil
}

func (h *WhitelistHandler) Type() Type {
	return Whitelist
}

func (h *WhitelistHandler) Address() string {
	return h.address
}

func (h *WhitelistHandler) StrategyParams(ctx context.Context, cfg Config) ([]string, error) {
	if err := checkType(cfg, Whitelist); err != nil {
		return nil, err
	}
	tree, err := memberTree(cfg.Members)
	if err != nil {
		return nil, err
	}
	return []string{tree.Root().String()}, nil
}

func (h *WhitelistHandler) UserParams(ctx context.Context, account common.Address, timestamp uint64, strategyID *big.Int) ([]string, error) {
	return nil, fmt.Errorf("whitelist user params: %w", ErrNotImplemented)
}

func (h *WhitelistHandler) Power(ctx context.Context, q PowerQuery) (*big.Int, error) {
	return nil, fmt.Errorf("whitelist power: %w", ErrNotImplemented)
}
