// Package evm holds the L1 side of the strategies: balance mapping slot
// discovery through debug_traceCall, token reads and timestamp to block
// resolution.
package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/celer-network/goutils/log"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	ErrNoMappingsRead          = errors.New("no mappings read")
	ErrAmbiguousImplementation = errors.New("ambiguous implementation: more than one mapping read")
)

// Sentinel is the account passed to the traced balanceOf call. Its value must
// not collide with anything a token writes to memory on its own.
var Sentinel = common.HexToAddress("0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef")

type AssetType int

const (
	ERC20 AssetType = iota
	ERC721
	ERC1155
)

func (a AssetType) String() string {
	switch a {
	case ERC20:
		return "ERC20"
	case ERC721:
		return "ERC721"
	case ERC1155:
		return "ERC1155"
	default:
		return fmt.Sprintf("AssetType(%d)", int(a))
	}
}

// SlotInfo is the result of tracing one balanceOf call.
type SlotInfo struct {
	SlotIndex *big.Int
	ReadCount int
}

// TracerVersion identifies TracerScript. Bump it whenever the script changes.
const TracerVersion = "1"

// TracerScript is shipped to the node's debug_traceCall and runs inside the
// node's tracing VM. It records every MSTORE value, flags a KECCAK256 as a
// mapping read in progress, and counts the SLOADs that follow a flag.
var TracerScript = fmt.Sprintf(`{
	writes: [],
	reads: 0,
	hashing: false,
	step: function(log, db) {
		var op = log.op.toString();
		if (op === "%s") {
			this.writes.push(log.stack.peek(1).toString(16));
		} else if (op === "%s" || op === "SHA3") {
			this.hashing = true;
		} else if (op === "%s" && this.hashing) {
			this.reads++;
			this.hashing = false;
		}
	},
	fault: function(log, db) {},
	result: function(ctx, db) {
		return { version: "%s", writes: this.writes, reads: this.reads };
	}
}`, vm.MSTORE, vm.KECCAK256, vm.SLOAD, TracerVersion)

// TraceResult is what TracerScript returns.
type TraceResult struct {
	Version string   `json:"version"`
	Writes  []string `json:"writes"`
	Reads   int      `json:"reads"`
}

// AnalyzeTrace finds sentinel among the memory writes and returns the slot
// written next to it. For balances[account] the slot follows the key; for the
// ERC1155 balances[id][account] the account is hashed with the inner mapping
// hash, so the declared slot is the write before the sentinel.
func AnalyzeTrace(res TraceResult, asset AssetType, sentinel *big.Int) (SlotInfo, error) {
	if res.Reads == 0 {
		return SlotInfo{}, ErrNoMappingsRead
	}
	if res.Reads > 1 {
		return SlotInfo{ReadCount: res.Reads}, fmt.Errorf("%w (%d reads)", ErrAmbiguousImplementation, res.Reads)
	}
	offset := 1
	if asset == ERC1155 {
		offset = -1
	}
	for i, w := range res.Writes {
		v, ok := new(big.Int).SetString(w, 16)
		if !ok {
			return SlotInfo{}, fmt.Errorf("malformed memory write %q at %d", w, i)
		}
		if v.Cmp(sentinel) != 0 {
			continue
		}
		j := i + offset
		if j < 0 || j >= len(res.Writes) {
			return SlotInfo{}, fmt.Errorf("%w: no memory write next to the sentinel", ErrNoMappingsRead)
		}
		slot, ok := new(big.Int).SetString(res.Writes[j], 16)
		if !ok {
			return SlotInfo{}, fmt.Errorf("malformed memory write %q at %d", res.Writes[j], j)
		}
		return SlotInfo{SlotIndex: slot, ReadCount: res.Reads}, nil
	}
	return SlotInfo{}, fmt.Errorf("%w: sentinel not found in memory writes", ErrNoMappingsRead)
}

// TraceClient talks to a node exposing the debug namespace.
type TraceClient struct {
	c *rpc.Client
}

func DialTrace(url string) (*TraceClient, error) {
	c, err := rpc.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing trace rpc %s: %w", url, err)
	}
	return &TraceClient{c: c}, nil
}

func NewTraceClient(c *rpc.Client) *TraceClient {
	return &TraceClient{c: c}
}

func (c *TraceClient) Close() {
	c.c.Close()
}

type traceCallArgs struct {
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

type traceConfig struct {
	Tracer string `json:"tracer"`
}

// TraceCall runs TracerScript over a call to contract with calldata.
func (c *TraceClient) TraceCall(ctx context.Context, contract common.Address, calldata []byte) (TraceResult, error) {
	var res TraceResult
	err := c.c.CallContext(ctx, &res, "debug_traceCall",
		traceCallArgs{To: contract, Data: calldata}, "latest", traceConfig{Tracer: TracerScript})
	if err != nil {
		return TraceResult{}, fmt.Errorf("debug_traceCall on %s: %w", contract.Hex(), err)
	}
	return res, nil
}

// SlotIndexOfQueriedMapping traces balanceOf(Sentinel, args...) on contract and
// recovers the slot of the balance mapping. args is the token id for ERC1155.
func (c *TraceClient) SlotIndexOfQueriedMapping(ctx context.Context, contract common.Address, asset AssetType, args ...interface{}) (SlotInfo, error) {
	method := balanceOfMethod(asset)
	calldata, err := pack(method, append([]interface{}{Sentinel}, args...)...)
	if err != nil {
		return SlotInfo{}, err
	}
	log.Infof("tracing %s balanceOf on %s", asset, contract.Hex())
	res, err := c.TraceCall(ctx, contract, calldata)
	if err != nil {
		return SlotInfo{}, err
	}
	info, err := AnalyzeTrace(res, asset, new(big.Int).SetBytes(Sentinel.Bytes()))
	if err != nil {
		return SlotInfo{}, fmt.Errorf("slot discovery on %s: %w", contract.Hex(), err)
	}
	log.Infof("%s balance mapping of %s at slot %s", asset, contract.Hex(), info.SlotIndex)
	return info, nil
}

func balanceOfMethod(asset AssetType) abi.Method {
	if asset == ERC1155 {
		return erc1155ABI.Methods["balanceOf"]
	}
	return erc20ABI.Methods["balanceOf"]
}
