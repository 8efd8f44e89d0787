package evm

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const erc20ABIJSON = `[{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

const erc1155ABIJSON = `[{"inputs":[{"name":"account","type":"address"},{"name":"id","type":"uint256"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

const checkpointABIJSON = `[{"inputs":[{"name":"account","type":"address"},{"name":"blockNumber","type":"uint256"}],"name":"getPriorVotes","outputs":[{"name":"","type":"uint96"}],"stateMutability":"view","type":"function"}]`

var (
	erc20ABI      = mustParseABI(erc20ABIJSON)
	erc1155ABI    = mustParseABI(erc1155ABIJSON)
	checkpointABI = mustParseABI(checkpointABIJSON)
)

func mustParseABI(s string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("invalid abi: %s", err))
	}
	return a
}

func pack(method abi.Method, args ...interface{}) ([]byte, error) {
	inputs, err := method.Inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", method.Sig, err)
	}
	return append(method.ID, inputs...), nil
}
