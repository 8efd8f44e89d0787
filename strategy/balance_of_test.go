package strategy

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gpcommon "github.com/prophouse/govpower-sdk/common"
	"github.com/prophouse/govpower-sdk/encoding"
	"github.com/prophouse/govpower-sdk/evm"
)

var (
	testToken   = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testAccount = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

type testChain struct {
	*Chain
	proofs *fakeProofs
	tokens *fakeTokens
	tracer *fakeTracer
	l2     *fakeL2
	reg    *fakeRegistry
}

func newTestChain() *testChain {
	tc := &testChain{
		proofs: &fakeProofs{values: map[common.Hash]uint64{}},
		tokens: &fakeTokens{balance: big.NewInt(7)},
		tracer: &fakeTracer{slot: 3},
		l2: &fakeL2{results: map[string][]string{
			"get_state_root":                    {"0x0", "0x0"},
			"get_verified_account_storage_hash": {"0x0", "0x0"},
		}},
		reg: newFakeRegistry(),
	}
	tc.Chain = &Chain{
		ChainID:      1,
		Proofs:       tc.proofs,
		Tokens:       tc.tokens,
		Blocks:       fakeBlocks{},
		Tracer:       tc.tracer,
		L2:           tc.l2,
		Strategies:   tc.reg,
		FactRegistry: "0xfact",
		HeadersStore: "0xheaders",
	}
	return tc
}

func TestBalanceOfStrategyParams(t *testing.T) {
	tc := newTestChain()
	h, err := NewBalanceOf("0xb0", tc.Chain)
	require.NoError(t, err)
	ctx := context.Background()

	params, err := h.StrategyParams(ctx, Config{StrategyType: BalanceOf, Address: testToken})
	require.NoError(t, err)
	assert.Equal(t, []string{encoding.AddressToFelt(testToken), "0x3", "0x0"}, params)
	assert.Equal(t, evm.ERC20, tc.tracer.asset)

	params, err = h.StrategyParams(ctx, Config{StrategyType: BalanceOf, Address: testToken, Multiplier: uint64Ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, []string{encoding.AddressToFelt(testToken), "0x3", "0x0", "0x3"}, params)

	tc.Tracer = nil
	_, err = h.StrategyParams(ctx, Config{StrategyType: BalanceOf, Address: testToken})
	assert.True(t, errors.Is(err, ErrNoTraceRPC))
}

func TestBalanceOfMultiplier(t *testing.T) {
	tc := newTestChain()
	h, err := NewBalanceOf("0xb0", tc.Chain)
	require.NoError(t, err)

	p, err := h.Power(context.Background(), PowerQuery{
		Account:   testAccount,
		Timestamp: 1200,
		Config:    Config{StrategyType: BalanceOf, Address: testToken, Multiplier: uint64Ptr(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(21), p.Int64())
	assert.Equal(t, int64(100), tc.tokens.block.Int64())
}

func TestBalanceOfUserParams(t *testing.T) {
	tc := newTestChain()
	h, err := NewBalanceOf("0xb0", tc.Chain)
	require.NoError(t, err)
	id := tc.reg.register(5, "0xb0", []string{encoding.AddressToFelt(testToken), "0x3", "0x0"})
	key := encoding.SlotKey(encoding.AddressKey(testAccount), big.NewInt(3))
	tc.proofs.values[key] = 9

	params, err := h.UserParams(context.Background(), testAccount, 2400, id)
	require.NoError(t, err)
	assert.Equal(t, []common.Hash{key}, tc.proofs.keys)
	assert.Equal(t, []uint64{200}, tc.proofs.blocks)
	assert.Equal(t, []string{"0x1", "0x8", "0x1", "0x1", "0x1", "0x9"}, params)
}

func TestStorageProofPreCalls(t *testing.T) {
	tc := newTestChain()
	h, err := NewBalanceOf("0xb0", tc.Chain)
	require.NoError(t, err)
	id := tc.reg.register(5, "0xb0", []string{encoding.AddressToFelt(testToken), "0x3", "0x0"})
	ctx := context.Background()

	calls, err := h.PreCalls(ctx, testAccount, 1200, id)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "process_block", calls[0].Entrypoint)
	assert.Equal(t, "0xheaders", calls[0].ContractAddress)
	assert.Equal(t, "prove_account", calls[1].Entrypoint)
	assert.Equal(t, "0xfact", calls[1].ContractAddress)

	tc.l2.results["get_state_root"] = []string{"0x1234", "0x0"}
	tc.l2.results["get_verified_account_storage_hash"] = []string{"0x99", "0x1"}
	calls, err = h.PreCalls(ctx, testAccount, 1200, id)
	require.NoError(t, err)
	assert.Empty(t, calls)
}

func TestBalanceOfERC1155(t *testing.T) {
	tc := newTestChain()
	h, err := NewBalanceOfERC1155("0xb1", tc.Chain)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = h.StrategyParams(ctx, Config{StrategyType: BalanceOfERC1155, Address: testToken})
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	cfg := Config{StrategyType: BalanceOfERC1155, Address: testToken, TokenID: big.NewInt(4)}
	params, err := h.StrategyParams(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{encoding.AddressToFelt(testToken), "0x3", "0x0", "0x4", "0x0"}, params)
	assert.Equal(t, evm.ERC1155, tc.tracer.asset)
	assert.Equal(t, []interface{}{big.NewInt(4)}, tc.tracer.args)

	id := tc.reg.register(6, "0xb1", params)
	_, err = h.UserParams(ctx, testAccount, 120, id)
	require.NoError(t, err)
	want := encoding.NestedSlotKey([]*big.Int{big.NewInt(4), encoding.AddressKey(testAccount)}, big.NewInt(3))
	assert.Equal(t, []common.Hash{want}, tc.proofs.keys)

	p, err := h.Power(ctx, PowerQuery{Account: testAccount, Timestamp: 120, Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.Int64())
}

func TestCheckpointableERC721(t *testing.T) {
	tc := newTestChain()
	h, err := NewCheckpointableERC721("0xc0", tc.Chain)
	require.NoError(t, err)
	ctx := context.Background()
	nouns := common.HexToAddress(gpcommon.NounsToken)

	_, err = h.StrategyParams(ctx, Config{StrategyType: CheckpointableERC721, Address: testToken})
	assert.True(t, errors.Is(err, ErrUnsupportedToken))

	params, err := h.StrategyParams(ctx, Config{StrategyType: CheckpointableERC721, Address: nouns})
	require.NoError(t, err)
	assert.Equal(t, []string{encoding.AddressToFelt(nouns), "0xd", "0x0", "0xc", "0x0"}, params)

	id := tc.reg.register(7, "0xc0", params)
	numKey := encoding.SlotKey(encoding.AddressKey(testAccount), big.NewInt(0xd))
	cpKey := encoding.NestedSlotKey([]*big.Int{encoding.AddressKey(testAccount), big.NewInt(1)}, big.NewInt(0xc))
	tc.proofs.values[numKey] = 2
	tc.proofs.values[cpKey] = 5

	user, err := h.UserParams(ctx, testAccount, 120, id)
	require.NoError(t, err)
	assert.Equal(t, []common.Hash{numKey, cpKey}, tc.proofs.keys)
	assert.Equal(t, []string{
		"0x6", "0x1", "0x8", "0x1", "0x1", "0x1", "0x2",
		"0x6", "0x1", "0x8", "0x1", "0x1", "0x1", "0x5",
	}, user)

	p, err := h.Power(ctx, PowerQuery{Account: testAccount, Timestamp: 120, Config: Config{StrategyType: CheckpointableERC721, Address: nouns, Multiplier: uint64Ptr(2)}})
	require.NoError(t, err)
	assert.Equal(t, int64(14), p.Int64())
}

func TestCheckpointableNoCheckpoints(t *testing.T) {
	tc := newTestChain()
	h, err := NewCheckpointableERC721("0xc0", tc.Chain)
	require.NoError(t, err)
	id := tc.reg.register(7, "0xc0", []string{encoding.AddressToFelt(common.HexToAddress(gpcommon.NounsToken)), "0xd", "0x0", "0xc", "0x0"})

	_, err = h.UserParams(context.Background(), testAccount, 120, id)
	assert.Error(t, err)
}
