package encoding

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// SlotKey returns keccak256(leftPad32(key) ‖ leftPad32(slot)), the storage key of
// mapping[key] for a mapping declared at slot. Negative keys are encoded in
// two's complement like solidity int keys.
func SlotKey(key, slot *big.Int) common.Hash {
	return crypto.Keccak256Hash(word(key), word(slot))
}

// NestedSlotKey returns the storage key of mapping[k1][k2]... for a mapping
// declared at slot. Keys are applied in declaration order, k1 first.
func NestedSlotKey(keys []*big.Int, slot *big.Int) common.Hash {
	cur := new(big.Int).Set(slot)
	var h common.Hash
	for _, k := range keys {
		h = SlotKey(k, cur)
		cur = h.Big()
	}
	if len(keys) == 0 {
		return common.BigToHash(slot)
	}
	return h
}

// AddressKey converts an address into a mapping key.
func AddressKey(a common.Address) *big.Int {
	return new(big.Int).SetBytes(a.Bytes())
}

func word(x *big.Int) []byte {
	return math.U256Bytes(new(big.Int).Set(x))
}
