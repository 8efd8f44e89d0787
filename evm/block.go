package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/celer-network/goutils/log"
	"github.com/ethereum/go-ethereum/core/types"
)

type HeaderReader interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// BlockFinder maps snapshot timestamps to L1 block numbers.
type BlockFinder struct {
	r HeaderReader
}

func NewBlockFinder(r HeaderReader) *BlockFinder {
	return &BlockFinder{r: r}
}

// NumberForTimestamp returns the latest block whose timestamp is <= ts.
func (f *BlockFinder) NumberForTimestamp(ctx context.Context, ts uint64) (uint64, error) {
	latest, err := f.r.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("fetching latest header: %w", err)
	}
	if latest.Time <= ts {
		return latest.Number.Uint64(), nil
	}
	lo, hi := uint64(0), latest.Number.Uint64()
	genesis, err := f.time(ctx, lo)
	if err != nil {
		return 0, err
	}
	if genesis > ts {
		return 0, fmt.Errorf("timestamp %d predates the first block (%d)", ts, genesis)
	}
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		t, err := f.time(ctx, mid)
		if err != nil {
			return 0, err
		}
		if t <= ts {
			lo = mid
		} else {
			hi = mid
		}
	}
	log.Debugf("timestamp %d resolved to block %d", ts, lo)
	return lo, nil
}

func (f *BlockFinder) time(ctx context.Context, n uint64) (uint64, error) {
	h, err := f.r.HeaderByNumber(ctx, new(big.Int).SetUint64(n))
	if err != nil {
		return 0, fmt.Errorf("fetching header %d: %w", n, err)
	}
	return h.Time, nil
}
