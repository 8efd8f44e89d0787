package proof

import (
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
)

// NodeList collects trie nodes in the order they are written and serves them
// by hash, so it works both as a proof writer and as a proof database.
type NodeList struct {
	nodes  [][]byte
	byHash map[string][]byte
}

// NewNodeList indexes root-to-leaf nodes by their keccak hash.
func NewNodeList(nodes [][]byte) *NodeList {
	n := &NodeList{byHash: map[string][]byte{}}
	for _, node := range nodes {
		_ = n.Put(crypto.Keccak256(node), node)
	}
	return n
}

func (n *NodeList) Put(key []byte, value []byte) error {
	if n.byHash == nil {
		n.byHash = map[string][]byte{}
	}
	n.nodes = append(n.nodes, value)
	n.byHash[string(key)] = value
	return nil
}

func (n *NodeList) Delete(key []byte) error {
	return nil
}

func (n *NodeList) Has(key []byte) (bool, error) {
	_, ok := n.byHash[string(key)]
	return ok, nil
}

func (n *NodeList) Get(key []byte) ([]byte, error) {
	v, ok := n.byHash[string(key)]
	if !ok {
		return nil, errors.New("proof node not found")
	}
	return v, nil
}

func (n *NodeList) Nodes() [][]byte {
	return n.nodes
}
