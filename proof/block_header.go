package proof

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/prophouse/govpower-sdk/encoding"
)

// BlockOptions asks the headers store to keep the state root of the processed
// block.
const BlockOptions = 8

type ProcessBlockInputs struct {
	BlockNumber  uint64
	BlockOptions uint64
	BlockHash    common.Hash
	StateRoot    common.Hash
	HeaderInts   encoding.IntsSequence
}

// ProcessBlockInputs fetches the header of block and serializes its RLP
// encoding into words for header hash verification on L2.
func (c *Client) ProcessBlockInputs(ctx context.Context, block uint64) (*ProcessBlockInputs, error) {
	h, err := c.ec.HeaderByNumber(ctx, new(big.Int).SetUint64(block))
	if err != nil {
		return nil, fmt.Errorf("fetching header of block %d: %w", block, err)
	}
	enc, err := rlp.EncodeToBytes(h)
	if err != nil {
		return nil, fmt.Errorf("encoding header of block %d: %w", block, err)
	}
	return &ProcessBlockInputs{
		BlockNumber:  block,
		BlockOptions: BlockOptions,
		BlockHash:    h.Hash(),
		StateRoot:    h.Root,
		HeaderInts:   encoding.IntsSequenceFromBytes(enc),
	}, nil
}
