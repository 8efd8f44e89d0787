package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// TokenCaller reads governance power sources from L1 token contracts at a
// given block.
type TokenCaller struct {
	c ethereum.ContractCaller
}

func NewTokenCaller(c ethereum.ContractCaller) *TokenCaller {
	return &TokenCaller{c: c}
}

// BalanceOf calls balanceOf(account) on an ERC20 or ERC721 token.
func (t *TokenCaller) BalanceOf(ctx context.Context, token, account common.Address, block *big.Int) (*big.Int, error) {
	return t.callUint(ctx, token, erc20ABI.Methods["balanceOf"], block, account)
}

// BalanceOfERC1155 calls balanceOf(account, id) on an ERC1155 token.
func (t *TokenCaller) BalanceOfERC1155(ctx context.Context, token, account common.Address, id, block *big.Int) (*big.Int, error) {
	return t.callUint(ctx, token, erc1155ABI.Methods["balanceOf"], block, account, id)
}

// PriorVotes calls getPriorVotes(account, block) on a checkpointing token. The
// call runs against the latest state since the token only answers for blocks
// already mined.
func (t *TokenCaller) PriorVotes(ctx context.Context, token, account common.Address, block *big.Int) (*big.Int, error) {
	return t.callUint(ctx, token, checkpointABI.Methods["getPriorVotes"], nil, account, block)
}

func (t *TokenCaller) callUint(ctx context.Context, token common.Address, method abi.Method, block *big.Int, args ...interface{}) (*big.Int, error) {
	data, err := pack(method, args...)
	if err != nil {
		return nil, err
	}
	out, err := t.c.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, block)
	if err != nil {
		return nil, fmt.Errorf("calling %s on %s: %w", method.Name, token.Hex(), err)
	}
	res, err := method.Outputs.Unpack(out)
	if err != nil {
		return nil, fmt.Errorf("unpacking %s result from %s: %w", method.Name, token.Hex(), err)
	}
	if len(res) != 1 {
		return nil, fmt.Errorf("%s on %s returned %d values", method.Name, token.Hex(), len(res))
	}
	v, ok := res[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s on %s returned %T", method.Name, token.Hex(), res[0])
	}
	return v, nil
}
