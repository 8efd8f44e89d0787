package strategy

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/prophouse/govpower-sdk/encoding"
	"github.com/prophouse/govpower-sdk/evm"
)

// BalanceOfERC1155Handler uses the balance of one ERC1155 token id as power,
// proven from balances[id][account].
type BalanceOfERC1155Handler struct {
	storageProofBase
}

func NewBalanceOfERC1155(address string, chain *Chain) (*BalanceOfERC1155Handler, error) {
	base, err := newStorageProofBase(BalanceOfERC1155, address, chain)
	if err != nil {
		return nil, err
	}
	return &BalanceOfERC1155Handler{storageProofBase: base}, nil
}

// StrategyParams returns [token, slotLow, slotHigh, idLow, idHigh, multiplier?].
func (h *BalanceOfERC1155Handler) StrategyParams(ctx context.Context, cfg Config) ([]string, error) {
	if err := checkType(cfg, BalanceOfERC1155); err != nil {
		return nil, err
	}
	tracer, err := h.tracer()
	if err != nil {
		return nil, err
	}
	info, err := tracer.SlotIndexOfQueriedMapping(ctx, cfg.Address, evm.ERC1155, cfg.TokenID)
	if err != nil {
		return nil, err
	}
	slot, err := encoding.FromUint(info.SlotIndex)
	if err != nil {
		return nil, err
	}
	id, err := encoding.FromUint(cfg.TokenID)
	if err != nil {
		return nil, err
	}
	params := []string{encoding.AddressToFelt(cfg.Address)}
	params = append(params, slot.Strings()...)
	params = append(params, id.Strings()...)
	return withMultiplier(params, cfg), nil
}

func (h *BalanceOfERC1155Handler) UserParams(ctx context.Context, account common.Address, timestamp uint64, strategyID *big.Int) ([]string, error) {
	token, params, err := h.registered(ctx, strategyID, 5)
	if err != nil {
		return nil, err
	}
	slot, err := splitParam(params, 1)
	if err != nil {
		return nil, fmt.Errorf("erc1155 strategy %s slot: %w", strategyID, err)
	}
	id, err := splitParam(params, 3)
	if err != nil {
		return nil, fmt.Errorf("erc1155 strategy %s token id: %w", strategyID, err)
	}
	block, err := h.block(ctx, timestamp)
	if err != nil {
		return nil, err
	}
	key := encoding.NestedSlotKey([]*big.Int{id, encoding.AddressKey(account)}, slot)
	sp, err := h.storageProof(ctx, token, key, block)
	if err != nil {
		return nil, err
	}
	return sp.Encode(), nil
}

func (h *BalanceOfERC1155Handler) Power(ctx context.Context, q PowerQuery) (*big.Int, error) {
	if err := checkType(q.Config, BalanceOfERC1155); err != nil {
		return nil, err
	}
	block, err := h.block(ctx, q.Timestamp)
	if err != nil {
		return nil, err
	}
	bal, err := h.chain.Tokens.BalanceOfERC1155(ctx, q.Config.Address, q.Account, q.Config.TokenID, new(big.Int).SetUint64(block))
	if err != nil {
		return nil, err
	}
	return scale(bal, q.Config), nil
}
