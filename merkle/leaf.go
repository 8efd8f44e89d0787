package merkle

import (
	"math/big"

	"github.com/NethermindEth/juno/core/crypto"
	"github.com/NethermindEth/juno/core/felt"
	"github.com/ethereum/go-ethereum/common"

	"github.com/prophouse/govpower-sdk/encoding"
)

// LeafHash returns H(address, powerLow, powerHigh), the allow-list leaf of a
// member, as the Pedersen hash on elements (chained with the element count).
func LeafHash(address common.Address, power *big.Int) (*felt.Felt, error) {
	split, err := encoding.FromUint(power)
	if err != nil {
		return nil, err
	}
	return crypto.PedersenArray(
		new(felt.Felt).SetBytes(address.Bytes()),
		new(felt.Felt).SetBigInt(split.Low),
		new(felt.Felt).SetBigInt(split.High),
	), nil
}

// FeltsToHex formats felts as 0x prefixed hex strings.
func FeltsToHex(fs []*felt.Felt) []string {
	ret := make([]string, len(fs))
	for i, f := range fs {
		ret[i] = f.String()
	}
	return ret
}
