package strategy

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	gpcommon "github.com/prophouse/govpower-sdk/common"
	"github.com/prophouse/govpower-sdk/encoding"
)

// CheckpointableERC721Handler uses the delegated votes of a checkpointing
// ERC721. Only the Nouns token layout is known, so only that token is
// accepted.
type CheckpointableERC721Handler struct {
	storageProofBase
}

func NewCheckpointableERC721(address string, chain *Chain) (*CheckpointableERC721Handler, error) {
	base, err := newStorageProofBase(CheckpointableERC721, address, chain)
	if err != nil {
		return nil, err
	}
	return &CheckpointableERC721Handler{storageProofBase: base}, nil
}

// StrategyParams returns [token, numCheckpointsSlotLow, numCheckpointsSlotHigh,
// checkpointsSlotLow, checkpointsSlotHigh, multiplier?].
func (h *CheckpointableERC721Handler) StrategyParams(ctx context.Context, cfg Config) ([]string, error) {
	if err := checkType(cfg, CheckpointableERC721); err != nil {
		return nil, err
	}
	if cfg.Address != common.HexToAddress(gpcommon.NounsToken) {
		return nil, fmt.Errorf("%w: %s is not a known checkpointing token", ErrUnsupportedToken, cfg.Address.Hex())
	}
	params := []string{encoding.AddressToFelt(cfg.Address)}
	params = append(params, encoding.MustFromUint(gpcommon.NounsNumCheckpointsSlot).Strings()...)
	params = append(params, encoding.MustFromUint(gpcommon.NounsCheckpointsSlot).Strings()...)
	return withMultiplier(params, cfg), nil
}

// UserParams proves numCheckpoints[account] and then the latest checkpoint
// checkpoints[account][n-1], returned as [len1, ...proof1, len2, ...proof2].
func (h *CheckpointableERC721Handler) UserParams(ctx context.Context, account common.Address, timestamp uint64, strategyID *big.Int) ([]string, error) {
	token, params, err := h.registered(ctx, strategyID, 5)
	if err != nil {
		return nil, err
	}
	numSlot, err := splitParam(params, 1)
	if err != nil {
		return nil, fmt.Errorf("checkpoint strategy %s numCheckpoints slot: %w", strategyID, err)
	}
	cpSlot, err := splitParam(params, 3)
	if err != nil {
		return nil, fmt.Errorf("checkpoint strategy %s checkpoints slot: %w", strategyID, err)
	}
	block, err := h.block(ctx, timestamp)
	if err != nil {
		return nil, err
	}

	numProof, err := h.storageProof(ctx, token, encoding.SlotKey(encoding.AddressKey(account), numSlot), block)
	if err != nil {
		return nil, err
	}
	n := numProof.Value.ToUint()
	if n.Sign() == 0 {
		return nil, fmt.Errorf("%s has no checkpoints on %s at block %d", account.Hex(), token.Hex(), block)
	}
	latest := new(big.Int).Sub(n, big.NewInt(1))
	cpKey := encoding.NestedSlotKey([]*big.Int{encoding.AddressKey(account), latest}, cpSlot)
	cpProof, err := h.storageProof(ctx, token, cpKey, block)
	if err != nil {
		return nil, err
	}

	enc1, enc2 := numProof.Encode(), cpProof.Encode()
	out := make([]string, 0, 2+len(enc1)+len(enc2))
	out = append(out, encoding.Uint64ToFeltHex(uint64(len(enc1))))
	out = append(out, enc1...)
	out = append(out, encoding.Uint64ToFeltHex(uint64(len(enc2))))
	return append(out, enc2...), nil
}

func (h *CheckpointableERC721Handler) Power(ctx context.Context, q PowerQuery) (*big.Int, error) {
	if err := checkType(q.Config, CheckpointableERC721); err != nil {
		return nil, err
	}
	block, err := h.block(ctx, q.Timestamp)
	if err != nil {
		return nil, err
	}
	votes, err := h.chain.Tokens.PriorVotes(ctx, q.Config.Address, q.Account, new(big.Int).SetUint64(block))
	if err != nil {
		return nil, err
	}
	return scale(votes, q.Config), nil
}
