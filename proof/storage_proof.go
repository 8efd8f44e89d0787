// Package proof fetches L1 account and storage proofs and repackages them into
// the word-based calldata the bridge fact registry verifies.
package proof

import (
	"context"
	"fmt"
	"math/big"

	"github.com/celer-network/goutils/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/prophouse/govpower-sdk/encoding"
)

// AccountOptions asks the fact registry to store every account field (storage
// hash, code hash, nonce, balance).
const AccountOptions = 15

type ProofInputs struct {
	BlockNumber            uint64
	AccountOptions         uint64
	EthAddress             encoding.IntsSequence
	EthAddressFelt         string
	AccountProofSizesBytes []int
	AccountProofSizesWords []int
	AccountProof           []uint64
	StorageHash            common.Hash
	StorageProofs          []StorageProof
	// StorageProofSubArrayLength is the encoded length of the first storage
	// proof.
	StorageProofSubArrayLength int
}

type StorageProof struct {
	Key        common.Hash
	Value      encoding.SplitUint256
	SizesBytes []int
	SizesWords []int
	Proof      []uint64
}

// Encode returns [nBytes, ...sizesBytes, nWords, ...sizesWords, nProof, ...proof].
func (p StorageProof) Encode() []string {
	return encodeNodes(p.SizesBytes, p.SizesWords, p.Proof)
}

type rawStorageProof struct {
	Key   string          `json:"key"`
	Value *hexutil.Big    `json:"value"`
	Proof []hexutil.Bytes `json:"proof"`
}

type rawProof struct {
	Address      common.Address    `json:"address"`
	AccountProof []hexutil.Bytes   `json:"accountProof"`
	StorageHash  common.Hash       `json:"storageHash"`
	StorageProof []rawStorageProof `json:"storageProof"`
}

// Client wraps an L1 node. It never retries: a failed eth_getProof is returned
// to the caller as is.
type Client struct {
	ec *ethclient.Client
}

func Dial(url string) (*Client, error) {
	ec, err := ethclient.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing evm rpc %s: %w", url, err)
	}
	return &Client{ec: ec}, nil
}

func NewClient(c *rpc.Client) *Client {
	return &Client{ec: ethclient.NewClient(c)}
}

func (c *Client) Eth() *ethclient.Client {
	return c.ec
}

func (c *Client) Close() {
	c.ec.Close()
}

// StorageAt reads a raw storage word at block.
func (c *Client) StorageAt(ctx context.Context, contract common.Address, key common.Hash, block uint64) (*big.Int, error) {
	v, err := c.ec.StorageAt(ctx, contract, key, new(big.Int).SetUint64(block))
	if err != nil {
		return nil, fmt.Errorf("cannot get storage value for account %s with slot %s block %d: %w", contract.Hex(), key.Hex(), block, err)
	}
	return new(big.Int).SetBytes(v), nil
}

// FetchProofInputs calls eth_getProof for keys of contract at block and packs
// the result. Storage proofs are checked locally against the returned storage
// hash before they are encoded.
func (c *Client) FetchProofInputs(ctx context.Context, contract common.Address, keys []common.Hash, block uint64) (*ProofInputs, error) {
	hexKeys := make([]string, len(keys))
	for i, k := range keys {
		hexKeys[i] = k.Hex()
	}
	log.Infof("eth_getProof %s keys %v block %d", contract.Hex(), hexKeys, block)
	var raw rawProof
	err := c.ec.Client().CallContext(ctx, &raw, "eth_getProof", contract, hexKeys, hexutil.Uint64(block))
	if err != nil {
		return nil, fmt.Errorf("eth_getProof for %s at block %d: %w", contract.Hex(), block, err)
	}
	if len(raw.StorageProof) != len(keys) {
		return nil, fmt.Errorf("eth_getProof returned %d storage proofs for %d keys", len(raw.StorageProof), len(keys))
	}
	return buildProofInputs(block, contract, raw)
}

func buildProofInputs(block uint64, contract common.Address, raw rawProof) (*ProofInputs, error) {
	in := &ProofInputs{
		BlockNumber:    block,
		AccountOptions: AccountOptions,
		EthAddress:     encoding.IntsSequenceFromBytes(contract.Bytes()),
		EthAddressFelt: encoding.ToFeltHex(new(big.Int).SetBytes(contract.Bytes())),
		StorageHash:    raw.StorageHash,
	}
	in.AccountProofSizesBytes, in.AccountProofSizesWords, in.AccountProof = packNodes(raw.AccountProof)

	for _, sp := range raw.StorageProof {
		key := common.HexToHash(sp.Key)
		nodes := make([][]byte, len(sp.Proof))
		for i, n := range sp.Proof {
			nodes[i] = n
		}
		proven, err := VerifyStorageProof(raw.StorageHash, key, nodes)
		if err != nil {
			return nil, err
		}
		value := new(big.Int)
		if sp.Value != nil {
			value = sp.Value.ToInt()
		}
		if proven.Cmp(value) != 0 {
			return nil, fmt.Errorf("storage proof for key %s proves %s, node reported %s", key.Hex(), proven, value)
		}
		split, err := encoding.FromUint(value)
		if err != nil {
			return nil, err
		}
		p := StorageProof{Key: key, Value: split}
		p.SizesBytes, p.SizesWords, p.Proof = packNodes(sp.Proof)
		in.StorageProofs = append(in.StorageProofs, p)
	}
	if len(in.StorageProofs) > 0 {
		in.StorageProofSubArrayLength = len(in.StorageProofs[0].Encode())
	}
	return in, nil
}

func packNodes(nodes []hexutil.Bytes) (sizesBytes, sizesWords []int, words []uint64) {
	for _, n := range nodes {
		seq := encoding.IntsSequenceFromBytes(n)
		sizesBytes = append(sizesBytes, seq.BytesLength)
		sizesWords = append(sizesWords, len(seq.Values))
		words = append(words, seq.Values...)
	}
	return
}

func encodeNodes(sizesBytes, sizesWords []int, words []uint64) []string {
	out := make([]string, 0, 3+len(sizesBytes)+len(sizesWords)+len(words))
	out = append(out, encoding.Uint64ToFeltHex(uint64(len(sizesBytes))))
	out = append(out, intsToHex(sizesBytes)...)
	out = append(out, encoding.Uint64ToFeltHex(uint64(len(sizesWords))))
	out = append(out, intsToHex(sizesWords)...)
	out = append(out, encoding.Uint64ToFeltHex(uint64(len(words))))
	for _, w := range words {
		out = append(out, encoding.Uint64ToFeltHex(w))
	}
	return out
}

func intsToHex(xs []int) []string {
	ret := make([]string, len(xs))
	for i, x := range xs {
		ret[i] = encoding.Uint64ToFeltHex(uint64(x))
	}
	return ret
}
