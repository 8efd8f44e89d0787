package starknet

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/prophouse/govpower-sdk/encoding"
)

var mask250 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 250), big.NewInt(1))

// SelectorFromName returns the entry point selector of name: keccak256 of the
// name truncated to 250 bits.
func SelectorFromName(name string) string {
	h := new(big.Int).SetBytes(crypto.Keccak256([]byte(name)))
	return encoding.ToFeltHex(h.And(h, mask250))
}
