package encoding

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// StarkPrime is the modulus of the L2 field.
var StarkPrime = fp.Modulus()

// ToFeltHex formats x as a minimal 0x prefixed hex string. Zero is "0x0".
func ToFeltHex(x *big.Int) string {
	if x == nil {
		return "0x0"
	}
	return hexutil.EncodeBig(x)
}

func Uint64ToFeltHex(x uint64) string {
	return hexutil.EncodeUint64(x)
}

// ParseFelt accepts 0x prefixed hex or decimal strings.
func ParseFelt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	var (
		x  *big.Int
		ok bool
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := s[2:]
		if digits == "" {
			digits = "0"
		}
		x, ok = new(big.Int).SetString(digits, 16)
	} else {
		x, ok = new(big.Int).SetString(s, 10)
	}
	if !ok {
		return nil, fmt.Errorf("invalid felt %q", s)
	}
	return x, CheckFelt(x)
}

// CheckFelt returns an error if x is not a canonical field element.
func CheckFelt(x *big.Int) error {
	if x.Sign() < 0 || x.Cmp(StarkPrime) >= 0 {
		return fmt.Errorf("value %s is not a field element", x)
	}
	return nil
}

// FeltsToHex formats a list of values as felt hex strings.
func FeltsToHex(xs []*big.Int) []string {
	ret := make([]string, len(xs))
	for i, x := range xs {
		ret[i] = ToFeltHex(x)
	}
	return ret
}

// AddressToFelt encodes an L1 address as a felt.
func AddressToFelt(a common.Address) string {
	return ToFeltHex(new(big.Int).SetBytes(a.Bytes()))
}

// FeltToAddress decodes a felt holding an L1 address.
func FeltToAddress(s string) (common.Address, error) {
	x, err := ParseFelt(s)
	if err != nil {
		return common.Address{}, err
	}
	if x.BitLen() > 8*common.AddressLength {
		return common.Address{}, fmt.Errorf("felt %s does not fit an address", s)
	}
	return common.BigToAddress(x), nil
}
