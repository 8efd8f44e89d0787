package govpower

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/prophouse/govpower-sdk/strategy"
)

type Config struct {
	// ChainId of the L1 chain the strategies read tokens from.
	ChainId uint64 `json:"chain_id"`

	// RpcURL of an L1 node serving eth_getProof and eth_call.
	RpcURL string `json:"rpc_url"`

	// TraceRpcURL of an L1 node with the debug namespace enabled. Needed only
	// to create balance-of rounds, where the balance slot is traced.
	TraceRpcURL string `json:"trace_rpc_url"`

	// StarknetRpcURL of the L2 node the strategy contracts live on.
	StarknetRpcURL string `json:"starknet_rpc_url"`

	Addresses Addresses `json:"addresses"`

	// Persistence type for pinned allowlists and cached strategies, currently
	// supporting "syncmap", "file", "badgerdb" and "s3". Default to "syncmap".
	PersistenceType string `json:"persistence_type"`

	// Persistence options as JSON string. See store implementations for
	// details.
	PersistenceOptions string `json:"persistence_options"`
}

// Addresses of the L2 contracts of one deployment.
type Addresses struct {
	FactRegistry     string `json:"fact_registry"`
	HeadersStore     string `json:"headers_store"`
	StrategyRegistry string `json:"strategy_registry"`
	// Strategies maps each deployed strategy type to its contract. Types left
	// out get no default handler.
	Strategies map[strategy.Type]string `json:"strategies"`
}

func (c Config) GetRpcURL() string {
	return os.ExpandEnv(c.RpcURL)
}

func (c Config) GetTraceRpcURL() string {
	return os.ExpandEnv(c.TraceRpcURL)
}

func (c Config) GetStarknetRpcURL() string {
	return os.ExpandEnv(c.StarknetRpcURL)
}

func (c Config) GetPersistenceOptions() string {
	return os.ExpandEnv(c.PersistenceOptions)
}

// LoadConfig reads a JSON config file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the endpoints and addresses needed to dial a chain.
func (c Config) Validate() error {
	if c.ChainId == 0 {
		return fmt.Errorf("chain_id is required")
	}
	if c.GetRpcURL() == "" {
		return fmt.Errorf("rpc_url is required")
	}
	if c.GetStarknetRpcURL() == "" {
		return fmt.Errorf("starknet_rpc_url is required")
	}
	for t, addr := range c.Addresses.Strategies {
		if addr == "" {
			return fmt.Errorf("%w for %s", strategy.ErrMissingStrategyAddress, t)
		}
	}
	return nil
}
