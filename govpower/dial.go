package govpower

import (
	"fmt"

	"github.com/celer-network/goutils/log"

	"github.com/prophouse/govpower-sdk/evm"
	"github.com/prophouse/govpower-sdk/pin"
	"github.com/prophouse/govpower-sdk/proof"
	"github.com/prophouse/govpower-sdk/starknet"
	"github.com/prophouse/govpower-sdk/store"
	"github.com/prophouse/govpower-sdk/strategy"
)

const (
	pinKeyPrefix      = "pin/"
	strategyKeyPrefix = "registry/"
)

// dial connects to the endpoints of cfg and opens the persistence store.
func (m *Manager) dial(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	l1, err := proof.Dial(cfg.GetRpcURL())
	if err != nil {
		return err
	}
	m.closers = append(m.closers, l1.Close)

	l2, err := starknet.Dial(cfg.GetStarknetRpcURL())
	if err != nil {
		return err
	}
	m.closers = append(m.closers, l2.Close)

	kv, err := store.InitStore(cfg.PersistenceType, cfg.GetPersistenceOptions())
	if err != nil {
		return fmt.Errorf("opening %q store: %w", cfg.PersistenceType, err)
	}
	m.closers = append(m.closers, func() {
		if err := kv.Close(); err != nil {
			log.Errorf("closing store: %s", err)
		}
	})

	chain := &strategy.Chain{
		ChainID:      cfg.ChainId,
		Proofs:       l1,
		Tokens:       evm.NewTokenCaller(l1.Eth()),
		Blocks:       evm.NewBlockFinder(l1.Eth()),
		L2:           l2,
		Strategies:   strategy.NewRegistry(l2, cfg.Addresses.StrategyRegistry, store.WithKeyPrefix(kv, strategyKeyPrefix)),
		Pinner:       pin.NewStore(store.WithKeyPrefix(kv, pinKeyPrefix)),
		FactRegistry: cfg.Addresses.FactRegistry,
		HeadersStore: cfg.Addresses.HeadersStore,
	}
	if url := cfg.GetTraceRpcURL(); url != "" {
		tracer, err := evm.DialTrace(url)
		if err != nil {
			return err
		}
		m.closers = append(m.closers, tracer.Close)
		chain.Tracer = tracer
	} else {
		log.Infof("no trace rpc for chain %d, balance-of rounds cannot be created", cfg.ChainId)
	}
	m.chain = chain
	return nil
}
