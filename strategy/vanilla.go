package strategy

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// VanillaHandler gives every account a power of one.
type VanillaHandler struct {
	address string
}

func NewVanilla(address string) (*VanillaHandler, error) {
	if err := requireAddress(Vanilla, address); err != nil {
		return nil, err
	}
	return &VanillaHandler{address: address}, nil
}

func (h *VanillaHandler) Type() Type {
	return Vanilla
}

func (h *VanillaHandler) Address() string {
	return h.address
}

func (h *VanillaHandler) StrategyParams(ctx context.Context, cfg Config) ([]string, error) {
	return []string{}, checkType(cfg, Vanilla)
}

func (h *VanillaHandler) UserParams(ctx context.Context, account common.Address, timestamp uint64, strategyID *big.Int) ([]string, error) {
	return []string{}, nil
}

func (h *VanillaHandler) Power(ctx context.Context, q PowerQuery) (*big.Int, error) {
	if err := checkType(q.Config, Vanilla); err != nil {
		return nil, err
	}
	return scale(big.NewInt(1), q.Config), nil
}
