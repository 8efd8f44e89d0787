package strategy

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/prophouse/govpower-sdk/encoding"
	"github.com/prophouse/govpower-sdk/evm"
	"github.com/prophouse/govpower-sdk/pin"
	"github.com/prophouse/govpower-sdk/proof"
	"github.com/prophouse/govpower-sdk/starknet"
)

type ProofFetcher interface {
	FetchProofInputs(ctx context.Context, contract common.Address, keys []common.Hash, block uint64) (*proof.ProofInputs, error)
	ProcessBlockInputs(ctx context.Context, block uint64) (*proof.ProcessBlockInputs, error)
}

type TokenReader interface {
	BalanceOf(ctx context.Context, token, account common.Address, block *big.Int) (*big.Int, error)
	BalanceOfERC1155(ctx context.Context, token, account common.Address, id, block *big.Int) (*big.Int, error)
	PriorVotes(ctx context.Context, token, account common.Address, block *big.Int) (*big.Int, error)
}

type BlockResolver interface {
	NumberForTimestamp(ctx context.Context, ts uint64) (uint64, error)
}

type SlotTracer interface {
	SlotIndexOfQueriedMapping(ctx context.Context, contract common.Address, asset evm.AssetType, args ...interface{}) (evm.SlotInfo, error)
}

// Chain holds the collaborators of one chain deployment that the built-in
// handlers share. Tracer is nil when the chain has no trace rpc.
type Chain struct {
	ChainID      uint64
	Proofs       ProofFetcher
	Tokens       TokenReader
	Blocks       BlockResolver
	Tracer       SlotTracer
	L2           starknet.Provider
	Strategies   ParamsSource
	Pinner       pin.Pinner
	FactRegistry string
	HeadersStore string
}

func requireAddress(t Type, address string) error {
	if address == "" {
		return fmt.Errorf("%w for %s", ErrMissingStrategyAddress, t)
	}
	return nil
}

// storageProofBase is shared by the strategies proving an L1 storage slot.
type storageProofBase struct {
	typ     Type
	address string
	chain   *Chain
}

func newStorageProofBase(t Type, address string, chain *Chain) (storageProofBase, error) {
	if err := requireAddress(t, address); err != nil {
		return storageProofBase{}, err
	}
	if chain == nil {
		return storageProofBase{}, fmt.Errorf("%s strategy needs chain collaborators", t)
	}
	return storageProofBase{typ: t, address: address, chain: chain}, nil
}

func (b storageProofBase) Type() Type {
	return b.typ
}

func (b storageProofBase) Address() string {
	return b.address
}

// registered loads the stored params of id, which start with the token
// address, and checks there are at least n of them.
func (b storageProofBase) registered(ctx context.Context, id *big.Int, n int) (common.Address, []string, error) {
	reg, err := b.chain.Strategies.Strategy(ctx, id)
	if err != nil {
		return common.Address{}, nil, err
	}
	if len(reg.Params) < n {
		return common.Address{}, nil, fmt.Errorf("%s strategy %s has %d params, need %d", b.typ, id, len(reg.Params), n)
	}
	token, err := encoding.FeltToAddress(reg.Params[0])
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("%s strategy %s token: %w", b.typ, id, err)
	}
	return token, reg.Params, nil
}

func (b storageProofBase) tracer() (SlotTracer, error) {
	if b.chain.Tracer == nil {
		return nil, fmt.Errorf("%w %d", ErrNoTraceRPC, b.chain.ChainID)
	}
	return b.chain.Tracer, nil
}

func (b storageProofBase) block(ctx context.Context, timestamp uint64) (uint64, error) {
	n, err := b.chain.Blocks.NumberForTimestamp(ctx, timestamp)
	if err != nil {
		return 0, fmt.Errorf("resolving block for timestamp %d: %w", timestamp, err)
	}
	return n, nil
}

// storageProof fetches the proof of a single slot and returns it encoded.
func (b storageProofBase) storageProof(ctx context.Context, token common.Address, key common.Hash, block uint64) (proof.StorageProof, error) {
	in, err := b.chain.Proofs.FetchProofInputs(ctx, token, []common.Hash{key}, block)
	if err != nil {
		return proof.StorageProof{}, err
	}
	if len(in.StorageProofs) != 1 {
		return proof.StorageProof{}, fmt.Errorf("expected one storage proof for %s, got %d", key.Hex(), len(in.StorageProofs))
	}
	return in.StorageProofs[0], nil
}

// preCalls returns process_block when the headers store lacks block and
// prove_account when the fact registry lacks the storage hash of token.
func (b storageProofBase) preCalls(ctx context.Context, token common.Address, block uint64) ([]starknet.Call, error) {
	var calls []starknet.Call
	root, err := b.chain.L2.CallContract(ctx, proof.StateRootQuery(b.chain.HeadersStore, block))
	if err != nil {
		return nil, fmt.Errorf("reading state root of block %d: %w", block, err)
	}
	if allZero(root) {
		in, err := b.chain.Proofs.ProcessBlockInputs(ctx, block)
		if err != nil {
			return nil, err
		}
		calls = append(calls, proof.ProcessBlockCall(b.chain.HeadersStore, in))
	}

	in, err := b.chain.Proofs.FetchProofInputs(ctx, token, []common.Hash{}, block)
	if err != nil {
		return nil, err
	}
	hash, err := b.chain.L2.CallContract(ctx, proof.StorageHashQuery(b.chain.FactRegistry, in))
	if err != nil {
		return nil, fmt.Errorf("reading storage hash of %s at block %d: %w", token.Hex(), block, err)
	}
	if allZero(hash) {
		calls = append(calls, proof.ProveAccountCall(b.chain.FactRegistry, in))
	}
	return calls, nil
}

func (b storageProofBase) PreCalls(ctx context.Context, account common.Address, timestamp uint64, strategyID *big.Int) ([]starknet.Call, error) {
	token, _, err := b.registered(ctx, strategyID, 1)
	if err != nil {
		return nil, err
	}
	block, err := b.block(ctx, timestamp)
	if err != nil {
		return nil, err
	}
	return b.preCalls(ctx, token, block)
}

func allZero(felts []string) bool {
	for _, f := range felts {
		x, err := encoding.ParseFelt(f)
		if err != nil || x.Sign() != 0 {
			return false
		}
	}
	return true
}

func scale(power *big.Int, cfg Config) *big.Int {
	return new(big.Int).Mul(power, cfg.MultiplierOrDefault())
}

func splitParam(params []string, i int) (*big.Int, error) {
	s, err := encoding.SplitFromStrings(params[i], params[i+1])
	if err != nil {
		return nil, err
	}
	return s.ToUint(), nil
}
