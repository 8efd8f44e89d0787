package strategy

import (
	"context"
	"fmt"
	"math/big"

	"github.com/celer-network/goutils/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/prophouse/govpower-sdk/encoding"
	"github.com/prophouse/govpower-sdk/evm"
)

// BalanceOfHandler uses the balance of an ERC20 or ERC721 token as power. The
// balance mapping slot is discovered by tracing balanceOf once at round
// creation; votes then prove balances[account] against that slot.
type BalanceOfHandler struct {
	storageProofBase
}

func NewBalanceOf(address string, chain *Chain) (*BalanceOfHandler, error) {
	base, err := newStorageProofBase(BalanceOf, address, chain)
	if err != nil {
		return nil, err
	}
	return &BalanceOfHandler{storageProofBase: base}, nil
}

// StrategyParams returns [token, slotLow, slotHigh, multiplier?].
func (h *BalanceOfHandler) StrategyParams(ctx context.Context, cfg Config) ([]string, error) {
	if err := checkType(cfg, BalanceOf); err != nil {
		return nil, err
	}
	tracer, err := h.tracer()
	if err != nil {
		return nil, err
	}
	info, err := tracer.SlotIndexOfQueriedMapping(ctx, cfg.Address, evm.ERC20)
	if err != nil {
		return nil, err
	}
	slot, err := encoding.FromUint(info.SlotIndex)
	if err != nil {
		return nil, err
	}
	params := append([]string{encoding.AddressToFelt(cfg.Address)}, slot.Strings()...)
	return withMultiplier(params, cfg), nil
}

// UserParams returns the encoded storage proof of balances[account].
func (h *BalanceOfHandler) UserParams(ctx context.Context, account common.Address, timestamp uint64, strategyID *big.Int) ([]string, error) {
	token, params, err := h.registered(ctx, strategyID, 3)
	if err != nil {
		return nil, err
	}
	slot, err := splitParam(params, 1)
	if err != nil {
		return nil, fmt.Errorf("balance-of strategy %s slot: %w", strategyID, err)
	}
	block, err := h.block(ctx, timestamp)
	if err != nil {
		return nil, err
	}
	key := encoding.SlotKey(encoding.AddressKey(account), slot)
	log.Debugf("proving balance of %s on %s at block %d (key %s)", account.Hex(), token.Hex(), block, key.Hex())
	sp, err := h.storageProof(ctx, token, key, block)
	if err != nil {
		return nil, err
	}
	return sp.Encode(), nil
}

func (h *BalanceOfHandler) Power(ctx context.Context, q PowerQuery) (*big.Int, error) {
	if err := checkType(q.Config, BalanceOf); err != nil {
		return nil, err
	}
	block, err := h.block(ctx, q.Timestamp)
	if err != nil {
		return nil, err
	}
	bal, err := h.chain.Tokens.BalanceOf(ctx, q.Config.Address, q.Account, new(big.Int).SetUint64(block))
	if err != nil {
		return nil, err
	}
	return scale(bal, q.Config), nil
}
