// Package govpower resolves the governance power strategies of a chain
// deployment and fans queries out across the strategies of a round.
package govpower

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/celer-network/goutils/log"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/prophouse/govpower-sdk/common/utils"
	"github.com/prophouse/govpower-sdk/starknet"
	"github.com/prophouse/govpower-sdk/strategy"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// HandlerFactory builds a custom handler from the chain collaborators.
type HandlerFactory func(chain *strategy.Chain) (strategy.Handler, error)

type options struct {
	chain  *strategy.Chain
	custom []HandlerFactory
}

type Option func(*options)

// WithCustomHandlers appends handlers after the default ones.
func WithCustomHandlers(factories ...HandlerFactory) Option {
	return func(o *options) {
		o.custom = append(o.custom, factories...)
	}
}

// WithChain uses the given collaborators instead of dialing the endpoints of
// the config.
func WithChain(chain *strategy.Chain) Option {
	return func(o *options) {
		o.chain = chain
	}
}

// Manager holds the handlers of one chain deployment. It has no shared state
// with other managers.
type Manager struct {
	chain    *strategy.Chain
	handlers []strategy.Handler
	closers  []func()
}

func New(cfg Config, opts ...Option) (*Manager, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	m := &Manager{chain: o.chain}
	if m.chain == nil {
		if err := m.dial(cfg); err != nil {
			m.Close()
			return nil, err
		}
	}

	handlers, err := strategy.NewDefaultHandlers(cfg.Addresses.Strategies, m.chain)
	if err != nil {
		m.Close()
		return nil, err
	}
	for _, f := range o.custom {
		h, err := f(m.chain)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("building custom handler: %w", err)
		}
		handlers = append(handlers, h)
	}
	seen := map[string]bool{}
	for _, h := range handlers {
		t := strings.ToUpper(string(h.Type()))
		if seen[t] {
			m.Close()
			return nil, fmt.Errorf("duplicate handler for strategy type %s", h.Type())
		}
		seen[t] = true
	}
	m.handlers = handlers
	log.Infof("govpower manager for chain %d with %d strategies", cfg.ChainId, len(handlers))
	return m, nil
}

// Close releases the clients and stores dialed by New.
func (m *Manager) Close() {
	for i := len(m.closers) - 1; i >= 0; i-- {
		m.closers[i]()
	}
	m.closers = nil
}

func (m *Manager) Handlers() []strategy.Handler {
	return append([]strategy.Handler{}, m.handlers...)
}

// Get resolves a handler by type tag or by L2 address, given as full width
// hex, zero stripped hex or decimal. Matching ignores case.
func (m *Manager) Get(typeOrAddress string) (strategy.Handler, error) {
	q := strings.TrimSpace(typeOrAddress)
	for _, h := range m.handlers {
		if strings.EqualFold(string(h.Type()), q) {
			return h, nil
		}
	}
	if n, ok := utils.ParseNumber(q); ok {
		for _, h := range m.handlers {
			if addr, ok := utils.ParseNumber(h.Address()); ok && addr.Cmp(n) == 0 {
				return h, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, typeOrAddress)
}

type AddressAndParams struct {
	Address string   `json:"address"`
	Params  []string `json:"params"`
}

// StrategyAddressAndParams derives what registers cfg on L2.
func (m *Manager) StrategyAddressAndParams(ctx context.Context, cfg strategy.Config) (AddressAndParams, error) {
	h, err := m.Get(string(cfg.StrategyType))
	if err != nil {
		return AddressAndParams{}, err
	}
	params, err := h.StrategyParams(ctx, cfg)
	if err != nil {
		return AddressAndParams{}, fmt.Errorf("%s strategy params: %w", cfg.StrategyType, err)
	}
	return AddressAndParams{Address: h.Address(), Params: params}, nil
}

// UserParams pairs a strategy with the params an account submits for it.
type UserParams struct {
	Strategy strategy.WithID `json:"strategy"`
	Params   []string        `json:"params"`
}

// UserParamsForStrategies derives user params for every strategy
// concurrently. Results follow the order of strategies.
func (m *Manager) UserParamsForStrategies(ctx context.Context, account common.Address, timestamp uint64, strategies []strategy.WithID) ([]UserParams, error) {
	out := make([]UserParams, len(strategies))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range strategies {
		g.Go(func() error {
			h, err := m.Get(s.Address)
			if err != nil {
				return err
			}
			params, err := h.UserParams(gctx, account, timestamp, s.ID)
			if err != nil {
				return fmt.Errorf("%s user params for strategy %s: %w", h.Type(), s.ID, err)
			}
			out[i] = UserParams{Strategy: s, Params: params}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// PreCallsForStrategies collects the pre-calls of every strategy, in strategy
// order. Handlers without pre-calls contribute nothing.
func (m *Manager) PreCallsForStrategies(ctx context.Context, account common.Address, timestamp uint64, strategies []strategy.WithID) ([]starknet.Call, error) {
	perStrategy := make([][]starknet.Call, len(strategies))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range strategies {
		g.Go(func() error {
			h, err := m.Get(s.Address)
			if err != nil {
				return err
			}
			pc, ok := h.(strategy.PreCaller)
			if !ok {
				return nil
			}
			calls, err := pc.PreCalls(gctx, account, timestamp, s.ID)
			if err != nil {
				return fmt.Errorf("%s pre-calls for strategy %s: %w", h.Type(), s.ID, err)
			}
			perStrategy[i] = calls
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []starknet.Call
	for _, calls := range perStrategy {
		out = append(out, calls...)
	}
	return out, nil
}

// Power is the power an account holds under one strategy.
type Power struct {
	Address  string          `json:"address"`
	Config   strategy.Config `json:"config"`
	GovPower *big.Int        `json:"govPower"`
}

type powerOptions struct {
	keepZero bool
}

type PowerOption func(*powerOptions)

// WithZeroPower keeps strategies in which the account has no power.
func WithZeroPower() PowerOption {
	return func(o *powerOptions) {
		o.keepZero = true
	}
}

// PowerForStrategies computes the power of account under every strategy
// concurrently, in strategy order. Strategies giving zero power are dropped
// unless WithZeroPower is passed, since they need not be submitted.
func (m *Manager) PowerForStrategies(ctx context.Context, account common.Address, timestamp uint64, strategies []strategy.Config, opts ...PowerOption) ([]Power, error) {
	var po powerOptions
	for _, opt := range opts {
		opt(&po)
	}
	all := make([]Power, len(strategies))
	g, gctx := errgroup.WithContext(ctx)
	for i, cfg := range strategies {
		g.Go(func() error {
			h, err := m.Get(string(cfg.StrategyType))
			if err != nil {
				return err
			}
			p, err := h.Power(gctx, strategy.PowerQuery{Account: account, Timestamp: timestamp, Config: cfg})
			if err != nil {
				return fmt.Errorf("%s power of %s: %w", cfg.StrategyType, account.Hex(), err)
			}
			if p == nil {
				p = new(big.Int)
			}
			all[i] = Power{Address: h.Address(), Config: cfg, GovPower: p}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if po.keepZero {
		return all, nil
	}
	out := make([]Power, 0, len(all))
	for _, p := range all {
		if p.GovPower.Sign() != 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

// TotalPower sums the power of account over strategies.
func (m *Manager) TotalPower(ctx context.Context, account common.Address, timestamp uint64, strategies []strategy.Config) (*big.Int, error) {
	powers, err := m.PowerForStrategies(ctx, account, timestamp, strategies)
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for _, p := range powers {
		total.Add(total, p.GovPower)
	}
	return total, nil
}
