package evm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/dop251/goja"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sentinelHex = fmt.Sprintf("%x", Sentinel.Bytes())

func TestAnalyzeTraceSingleRead(t *testing.T) {
	res := TraceResult{Writes: []string{"80", sentinelHex, "3"}, Reads: 1}
	info, err := AnalyzeTrace(res, ERC20, Sentinel.Big())
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.SlotIndex.Int64())
	assert.Equal(t, 1, info.ReadCount)
}

func TestAnalyzeTraceERC1155(t *testing.T) {
	// balances[id][account]: id and slot are hashed first, then account with the
	// inner hash.
	res := TraceResult{Writes: []string{"7", "0", sentinelHex, "abcdef"}, Reads: 1}
	info, err := AnalyzeTrace(res, ERC1155, Sentinel.Big())
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.SlotIndex.Int64())

	info, err = AnalyzeTrace(TraceResult{Writes: []string{"7", "2", sentinelHex, "abcdef"}, Reads: 1}, ERC1155, Sentinel.Big())
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.SlotIndex.Int64())
}

func TestAnalyzeTraceFailures(t *testing.T) {
	_, err := AnalyzeTrace(TraceResult{Writes: []string{sentinelHex, "3", sentinelHex, "4"}, Reads: 2}, ERC20, Sentinel.Big())
	assert.True(t, errors.Is(err, ErrAmbiguousImplementation))

	_, err = AnalyzeTrace(TraceResult{Writes: []string{"1", "2"}, Reads: 0}, ERC20, Sentinel.Big())
	assert.True(t, errors.Is(err, ErrNoMappingsRead))

	_, err = AnalyzeTrace(TraceResult{Writes: []string{"1", "2"}, Reads: 1}, ERC20, Sentinel.Big())
	assert.True(t, errors.Is(err, ErrNoMappingsRead))

	_, err = AnalyzeTrace(TraceResult{Writes: []string{"1", sentinelHex}, Reads: 1}, ERC20, Sentinel.Big())
	assert.True(t, errors.Is(err, ErrNoMappingsRead))

	_, err = AnalyzeTrace(TraceResult{Writes: []string{sentinelHex, "zz"}, Reads: 1}, ERC20, Sentinel.Big())
	assert.Error(t, err)
}

type step struct {
	Op    string  `json:"op"`
	Stack []int64 `json:"stack"`
}

// runTracer executes TracerScript the way a node's JS tracer host would, with
// minimal log objects.
func runTracer(t *testing.T, steps []step) TraceResult {
	vm := goja.New()
	in, err := json.Marshal(steps)
	require.NoError(t, err)
	_, err = vm.RunString("var tracer = " + TracerScript + ";")
	require.NoError(t, err)
	_, err = vm.RunString(`
		function run(steps) {
			for (var i = 0; i < steps.length; i++) {
				var s = steps[i];
				tracer.step({
					op: { toString: function() { return s.op; } },
					stack: { peek: function(n) { return s.stack[n]; } }
				}, null);
			}
			return JSON.stringify(tracer.result(null, null));
		}`)
	require.NoError(t, err)
	out, err := vm.RunString("run(" + string(in) + ")")
	require.NoError(t, err)

	var res TraceResult
	require.NoError(t, json.Unmarshal([]byte(out.String()), &res))
	return res
}

func TestTracerScriptSingleMapping(t *testing.T) {
	res := runTracer(t, []step{
		{Op: "PUSH1"},
		{Op: "MSTORE", Stack: []int64{0, 0xbeef}},
		{Op: "MSTORE", Stack: []int64{32, 5}},
		{Op: "KECCAK256"},
		{Op: "SLOAD"},
		{Op: "SLOAD"},
	})
	assert.Equal(t, TracerVersion, res.Version)
	assert.Equal(t, []string{"beef", "5"}, res.Writes)
	assert.Equal(t, 1, res.Reads)

	info, err := AnalyzeTrace(res, ERC20, big.NewInt(0xbeef))
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.SlotIndex.Int64())
}

func TestTracerScriptCountsEachHashedLoad(t *testing.T) {
	res := runTracer(t, []step{
		{Op: "MSTORE", Stack: []int64{0, 0xbeef}},
		{Op: "SHA3"},
		{Op: "SLOAD"},
		{Op: "MSTORE", Stack: []int64{0, 0xbeef}},
		{Op: "KECCAK256"},
		{Op: "SLOAD"},
	})
	assert.Equal(t, 2, res.Reads)

	res = runTracer(t, []step{{Op: "SLOAD"}, {Op: "STOP"}})
	assert.Equal(t, 0, res.Reads)
	assert.Empty(t, res.Writes)
}

type fakeDebug struct {
	tracer string
	data   []byte
}

func (f *fakeDebug) TraceCall(ctx context.Context, args traceCallArgs, block string, cfg traceConfig) (TraceResult, error) {
	f.tracer = cfg.Tracer
	f.data = args.Data
	return TraceResult{Version: TracerVersion, Writes: []string{sentinelHex, "9"}, Reads: 1}, nil
}

func TestTraceClientSlotIndex(t *testing.T) {
	svc := &fakeDebug{}
	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("debug", svc))
	defer srv.Stop()

	c := NewTraceClient(rpc.DialInProc(srv))
	token := common.HexToAddress("0x1000000000000000000000000000000000000001")
	info, err := c.SlotIndexOfQueriedMapping(context.Background(), token, ERC721)
	require.NoError(t, err)
	assert.Equal(t, int64(9), info.SlotIndex.Int64())
	assert.Equal(t, TracerScript, svc.tracer)

	method := erc20ABI.Methods["balanceOf"]
	assert.Equal(t, method.ID, svc.data[:4])
	args, err := method.Inputs.Unpack(svc.data[4:])
	require.NoError(t, err)
	assert.Equal(t, Sentinel, args[0])
}
