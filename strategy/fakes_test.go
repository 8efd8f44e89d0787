package strategy

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/prophouse/govpower-sdk/encoding"
	"github.com/prophouse/govpower-sdk/evm"
	"github.com/prophouse/govpower-sdk/proof"
	"github.com/prophouse/govpower-sdk/starknet"
)

type fakeRegistry struct {
	mu         sync.Mutex
	strategies map[string]*Registered
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{strategies: map[string]*Registered{}}
}

func (r *fakeRegistry) register(id int64, address string, params []string) *big.Int {
	r.mu.Lock()
	defer r.mu.Unlock()
	bid := big.NewInt(id)
	r.strategies[bid.String()] = &Registered{WithID: WithID{ID: bid, Address: address}, Params: params}
	return bid
}

func (r *fakeRegistry) Strategy(ctx context.Context, id *big.Int) (*Registered, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.strategies[id.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStrategyNotFound, id)
	}
	return reg, nil
}

// fakeProofs serves storage proofs whose single word is the slot value.
type fakeProofs struct {
	mu     sync.Mutex
	values map[common.Hash]uint64
	keys   []common.Hash
	blocks []uint64
}

func (p *fakeProofs) FetchProofInputs(ctx context.Context, contract common.Address, keys []common.Hash, block uint64) (*proof.ProofInputs, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	in := &proof.ProofInputs{
		BlockNumber:    block,
		AccountOptions: proof.AccountOptions,
		EthAddress:     encoding.IntsSequenceFromBytes(contract.Bytes()),
		EthAddressFelt: encoding.AddressToFelt(contract),
	}
	for _, k := range keys {
		p.keys = append(p.keys, k)
		p.blocks = append(p.blocks, block)
		v := p.values[k]
		in.StorageProofs = append(in.StorageProofs, proof.StorageProof{
			Key:        k,
			Value:      encoding.FromUint64(v),
			SizesBytes: []int{8},
			SizesWords: []int{1},
			Proof:      []uint64{v},
		})
	}
	return in, nil
}

func (p *fakeProofs) ProcessBlockInputs(ctx context.Context, block uint64) (*proof.ProcessBlockInputs, error) {
	return &proof.ProcessBlockInputs{
		BlockNumber:  block,
		BlockOptions: proof.BlockOptions,
		HeaderInts:   encoding.IntsSequenceFromBytes([]byte("header")),
	}, nil
}

type fakeTokens struct {
	balance *big.Int
	block   *big.Int
}

func (f *fakeTokens) BalanceOf(ctx context.Context, token, account common.Address, block *big.Int) (*big.Int, error) {
	f.block = block
	return f.balance, nil
}

func (f *fakeTokens) BalanceOfERC1155(ctx context.Context, token, account common.Address, id, block *big.Int) (*big.Int, error) {
	f.block = block
	return f.balance, nil
}

func (f *fakeTokens) PriorVotes(ctx context.Context, token, account common.Address, block *big.Int) (*big.Int, error) {
	f.block = block
	return f.balance, nil
}

// fakeBlocks maps a timestamp to timestamp/12.
type fakeBlocks struct{}

func (fakeBlocks) NumberForTimestamp(ctx context.Context, ts uint64) (uint64, error) {
	return ts / 12, nil
}

type fakeTracer struct {
	slot  int64
	asset evm.AssetType
	args  []interface{}
}

func (f *fakeTracer) SlotIndexOfQueriedMapping(ctx context.Context, contract common.Address, asset evm.AssetType, args ...interface{}) (evm.SlotInfo, error) {
	f.asset = asset
	f.args = args
	return evm.SlotInfo{SlotIndex: big.NewInt(f.slot), ReadCount: 1}, nil
}

type fakeL2 struct {
	mu      sync.Mutex
	results map[string][]string
	calls   []starknet.Call
}

func (f *fakeL2) StorageAt(ctx context.Context, contract, key string) (*big.Int, error) {
	return new(big.Int), nil
}

func (f *fakeL2) CallContract(ctx context.Context, call starknet.Call) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	res, ok := f.results[call.Entrypoint]
	if !ok {
		return nil, fmt.Errorf("unexpected call %s", call.Entrypoint)
	}
	return res, nil
}

func uint64Ptr(x uint64) *uint64 {
	return &x
}
