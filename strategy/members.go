package strategy

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/ethereum/go-ethereum/common"

	"github.com/prophouse/govpower-sdk/encoding"
	"github.com/prophouse/govpower-sdk/merkle"
)

// sortMembers returns a copy of members ordered by address.
func sortMembers(members []Member) []Member {
	sorted := append([]Member{}, members...)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Address.Bytes(), sorted[j].Address.Bytes()) < 0
	})
	return sorted
}

// memberTree hashes every member into a leaf and builds the tree over them.
// The input order does not matter.
func memberTree(members []Member) (*merkle.Tree, error) {
	if err := validateMembers(members); err != nil {
		return nil, err
	}
	leaves := make([]*felt.Felt, len(members))
	for i, m := range sortMembers(members) {
		leaf, err := merkle.LeafHash(m.Address, m.GovPower)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", m.Address.Hex(), err)
		}
		leaves[i] = leaf
	}
	return merkle.New(leaves)
}

func findMember(members []Member, account common.Address) (Member, bool) {
	for _, m := range members {
		if m.Address == account {
			return m, true
		}
	}
	return Member{}, false
}

// allowlistDocument is the pinned form of an allowlist. Powers are decimal
// strings so that no JSON number precision is lost.
type allowlistDocument struct {
	Type    Type           `json:"type"`
	Members []pinnedMember `json:"members"`
	Tree    pinnedTree     `json:"tree"`
}

type pinnedMember struct {
	Address  string `json:"address"`
	GovPower string `json:"govPower"`
}

type pinnedTree struct {
	Root   string   `json:"root"`
	Leaves []string `json:"leaves"`
}

func newAllowlistDocument(t Type, members []Member, tree *merkle.Tree) allowlistDocument {
	doc := allowlistDocument{
		Type: t,
		Tree: pinnedTree{Root: tree.Root().String(), Leaves: merkle.FeltsToHex(tree.Leaves())},
	}
	for _, m := range sortMembers(members) {
		doc.Members = append(doc.Members, pinnedMember{Address: m.Address.Hex(), GovPower: m.GovPower.String()})
	}
	return doc
}

func (d allowlistDocument) members() ([]Member, error) {
	out := make([]Member, len(d.Members))
	for i, m := range d.Members {
		if !common.IsHexAddress(m.Address) {
			return nil, fmt.Errorf("pinned member %d has invalid address %q", i, m.Address)
		}
		p, ok := new(big.Int).SetString(m.GovPower, 10)
		if !ok {
			return nil, fmt.Errorf("pinned member %s has invalid power %q", m.Address, m.GovPower)
		}
		out[i] = Member{Address: common.HexToAddress(m.Address), GovPower: p}
	}
	return out, nil
}

func feltEqual(f *felt.Felt, s string) bool {
	a, err := encoding.ParseFelt(f.String())
	if err != nil {
		return false
	}
	b, err := encoding.ParseFelt(s)
	if err != nil {
		return false
	}
	return a.Cmp(b) == 0
}
