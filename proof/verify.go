package proof

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethereum/go-ethereum/trie"
)

// VerifyStorageProof checks nodes against storageHash and returns the proven
// slot value. A valid proof of absence returns zero.
func VerifyStorageProof(storageHash common.Hash, key common.Hash, nodes [][]byte) (*big.Int, error) {
	enc, err := trie.VerifyProof(storageHash, crypto.Keccak256(key[:]), NewNodeList(nodes))
	if err != nil {
		return nil, fmt.Errorf("invalid storage proof for key %s: %w", key.Hex(), err)
	}
	if len(enc) == 0 {
		return new(big.Int), nil
	}
	var content []byte
	if err := rlp.DecodeBytes(enc, &content); err != nil {
		return nil, fmt.Errorf("decoding storage value for key %s: %w", key.Hex(), err)
	}
	return new(big.Int).SetBytes(content), nil
}

// VerifyAccountProof checks an account proof against a state root and returns
// the proven storage root.
func VerifyAccountProof(stateRoot common.Hash, account common.Address, nodes [][]byte) (common.Hash, error) {
	enc, err := trie.VerifyProof(stateRoot, crypto.Keccak256(account.Bytes()), NewNodeList(nodes))
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid account proof for %s: %w", account.Hex(), err)
	}
	if len(enc) == 0 {
		return common.Hash{}, fmt.Errorf("account %s not in state", account.Hex())
	}
	var acc struct {
		Nonce    uint64
		Balance  *big.Int
		Root     common.Hash
		CodeHash []byte
	}
	if err := rlp.DecodeBytes(enc, &acc); err != nil {
		return common.Hash{}, fmt.Errorf("decoding account %s: %w", account.Hex(), err)
	}
	return acc.Root, nil
}
