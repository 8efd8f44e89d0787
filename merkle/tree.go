// Package merkle implements the allow-list Merkle tree over the L2 Pedersen
// hash. Leaves are sorted before building so the root only depends on the leaf
// set; pairs are hashed as H(left, right) with the even index on the left and
// odd levels padded with zero.
package merkle

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	"github.com/NethermindEth/juno/core/crypto"
	"github.com/NethermindEth/juno/core/felt"
)

type Tree struct {
	leaves []*felt.Felt
	levels [][]*felt.Felt
}

// New builds a tree from leaf hashes. The input slice is not modified.
func New(leaves []*felt.Felt) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("cannot build merkle tree without leaves")
	}
	sorted := SortLeaves(leaves)
	levels := [][]*felt.Felt{sorted}
	for cur := sorted; len(cur) > 1; {
		cur = nextLevel(cur)
		levels = append(levels, cur)
	}
	return &Tree{leaves: sorted, levels: levels}, nil
}

// NewFromBig is New for leaves given as integers.
func NewFromBig(leaves []*big.Int) (*Tree, error) {
	fs := make([]*felt.Felt, len(leaves))
	for i, l := range leaves {
		fs[i] = new(felt.Felt).SetBigInt(l)
	}
	return New(fs)
}

func (t *Tree) Root() *felt.Felt {
	return t.levels[len(t.levels)-1][0]
}

// Leaves returns the sorted leaves.
func (t *Tree) Leaves() []*felt.Felt {
	return t.leaves
}

// IndexOf returns the position of leaf in the sorted leaves, or -1.
func (t *Tree) IndexOf(leaf *felt.Felt) int {
	for i, l := range t.leaves {
		if l.Equal(leaf) {
			return i
		}
	}
	return -1
}

// Proof returns the siblings from the leaf at index (in sorted order) up to the
// root.
func (t *Tree) Proof(index int) ([]*felt.Felt, error) {
	if index < 0 || index >= len(t.leaves) {
		return nil, fmt.Errorf("leaf index %d out of range [0, %d)", index, len(t.leaves))
	}
	var proof []*felt.Felt
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := index ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		} else {
			proof = append(proof, &felt.Zero)
		}
		index /= 2
	}
	return proof, nil
}

// GetProof builds a tree over leaves and returns the proof of the leaf at index
// of the sorted leaves.
func GetProof(leaves []*felt.Felt, index int) ([]*felt.Felt, error) {
	t, err := New(leaves)
	if err != nil {
		return nil, err
	}
	return t.Proof(index)
}

// ComputeRoot hashes leaf up through proof the way the on-chain verifier does.
func ComputeRoot(leaf *felt.Felt, index int, proof []*felt.Felt) *felt.Felt {
	cur := leaf
	for _, sibling := range proof {
		if index%2 == 0 {
			cur = crypto.Pedersen(cur, sibling)
		} else {
			cur = crypto.Pedersen(sibling, cur)
		}
		index /= 2
	}
	return cur
}

// SortLeaves returns a copy of leaves in ascending order of their 32-byte
// big-endian representation.
func SortLeaves(leaves []*felt.Felt) []*felt.Felt {
	sorted := make([]*felt.Felt, len(leaves))
	copy(sorted, leaves)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Bytes(), sorted[j].Bytes()
		return bytes.Compare(a[:], b[:]) < 0
	})
	return sorted
}

func nextLevel(level []*felt.Felt) []*felt.Felt {
	next := make([]*felt.Felt, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		right := &felt.Zero
		if i+1 < len(level) {
			right = level[i+1]
		}
		next = append(next, crypto.Pedersen(level[i], right))
	}
	return next
}
