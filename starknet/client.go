// Package starknet is a minimal L2 JSON-RPC provider: storage reads and
// contract calls against a fixed network.
package starknet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/celer-network/goutils/log"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/prophouse/govpower-sdk/encoding"
)

const blockLatest = "latest"

// Call is an L2 invocation, used both for reads and as a pre-call executed by
// the transaction submission layer.
type Call struct {
	ContractAddress string   `json:"contractAddress"`
	Entrypoint      string   `json:"entrypoint"`
	Calldata        []string `json:"calldata"`
}

// Provider is the L2 surface the strategies depend on.
type Provider interface {
	StorageAt(ctx context.Context, contract, key string) (*big.Int, error)
	CallContract(ctx context.Context, call Call) ([]string, error)
}

type Client struct {
	c *rpc.Client
}

var _ Provider = (*Client)(nil)

func Dial(url string) (*Client, error) {
	c, err := rpc.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing starknet rpc %s: %w", url, err)
	}
	return &Client{c: c}, nil
}

func NewClient(c *rpc.Client) *Client {
	return &Client{c: c}
}

func (c *Client) Close() {
	c.c.Close()
}

func (c *Client) StorageAt(ctx context.Context, contract, key string) (*big.Int, error) {
	var res string
	err := c.c.CallContext(ctx, &res, "starknet_getStorageAt", contract, key, blockLatest)
	if err != nil {
		return nil, fmt.Errorf("starknet_getStorageAt %s key %s: %w", contract, key, err)
	}
	return encoding.ParseFelt(res)
}

type functionCall struct {
	ContractAddress    string   `json:"contract_address"`
	EntryPointSelector string   `json:"entry_point_selector"`
	Calldata           []string `json:"calldata"`
}

func (c *Client) CallContract(ctx context.Context, call Call) ([]string, error) {
	req := functionCall{
		ContractAddress:    call.ContractAddress,
		EntryPointSelector: SelectorFromName(call.Entrypoint),
		Calldata:           call.Calldata,
	}
	if req.Calldata == nil {
		req.Calldata = []string{}
	}
	log.Debugf("starknet_call %s.%s", call.ContractAddress, call.Entrypoint)
	var res []string
	err := c.c.CallContext(ctx, &res, "starknet_call", req, blockLatest)
	if err != nil {
		return nil, fmt.Errorf("starknet_call %s.%s: %w", call.ContractAddress, call.Entrypoint, err)
	}
	return res, nil
}
