package strategy

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/celer-network/goutils/log"
	"github.com/philippgille/gokv"

	"github.com/prophouse/govpower-sdk/encoding"
	"github.com/prophouse/govpower-sdk/starknet"
)

var ErrStrategyNotFound = errors.New("strategy not registered")

// Registered is a strategy as stored by the L2 strategy registry.
type Registered struct {
	WithID
	Params []string `json:"params"`
}

// ParamsSource resolves a strategy id to its stored params.
type ParamsSource interface {
	Strategy(ctx context.Context, id *big.Int) (*Registered, error)
}

// Registry reads strategies from the L2 strategy registry. Registered
// strategies never change, so results are kept in cache once read.
type Registry struct {
	l2      starknet.Provider
	address string
	cache   gokv.Store
}

var _ ParamsSource = (*Registry)(nil)

// NewRegistry returns a registry reader. cache may be nil.
func NewRegistry(l2 starknet.Provider, address string, cache gokv.Store) *Registry {
	return &Registry{l2: l2, address: address, cache: cache}
}

func (r *Registry) cacheKey(id *big.Int) string {
	return fmt.Sprintf("strategy-%s-%s", r.address, id)
}

func (r *Registry) Strategy(ctx context.Context, id *big.Int) (*Registered, error) {
	if id == nil || id.Sign() < 0 {
		return nil, fmt.Errorf("invalid strategy id %v", id)
	}
	key := r.cacheKey(id)
	if r.cache != nil {
		var cached Registered
		found, err := r.cache.Get(key, &cached)
		if err != nil {
			return nil, fmt.Errorf("reading strategy cache: %w", err)
		}
		if found {
			log.Debugf("strategy %s served from cache", id)
			return &cached, nil
		}
	}

	res, err := r.l2.CallContract(ctx, starknet.Call{
		ContractAddress: r.address,
		Entrypoint:      "get_strategy",
		Calldata:        []string{encoding.ToFeltHex(id)},
	})
	if err != nil {
		return nil, fmt.Errorf("get_strategy %s: %w", id, err)
	}
	reg, err := decodeStrategy(id, res)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		if err := r.cache.Set(key, reg); err != nil {
			log.Errorf("caching strategy %s: %s", id, err)
		}
	}
	return reg, nil
}

// decodeStrategy reads [address, paramsLen, ...params].
func decodeStrategy(id *big.Int, res []string) (*Registered, error) {
	if len(res) < 2 {
		return nil, fmt.Errorf("get_strategy %s returned %d values", id, len(res))
	}
	addr, err := encoding.ParseFelt(res[0])
	if err != nil {
		return nil, fmt.Errorf("get_strategy %s address: %w", id, err)
	}
	if addr.Sign() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrStrategyNotFound, id)
	}
	n, err := encoding.ParseFelt(res[1])
	if err != nil {
		return nil, fmt.Errorf("get_strategy %s params length: %w", id, err)
	}
	if !n.IsUint64() || n.Uint64() != uint64(len(res)-2) {
		return nil, fmt.Errorf("get_strategy %s declares %s params, got %d", id, n, len(res)-2)
	}
	return &Registered{
		WithID: WithID{ID: new(big.Int).Set(id), Address: encoding.ToFeltHex(addr)},
		Params: append([]string{}, res[2:]...),
	}, nil
}
