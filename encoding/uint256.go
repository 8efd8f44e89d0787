package encoding

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// SplitUint256 is a 256-bit unsigned integer split into two 128-bit limbs, the
// layout used by the L2 VM whose field elements are narrower than 256 bits.
type SplitUint256 struct {
	Low  *big.Int
	High *big.Int
}

var two128 = new(big.Int).Lsh(big.NewInt(1), 128)

// FromUint splits x into low = x mod 2^128 and high = x div 2^128. x must be in
// [0, 2^256).
func FromUint(x *big.Int) (SplitUint256, error) {
	if x == nil {
		return SplitUint256{}, fmt.Errorf("cannot split nil value")
	}
	if x.Sign() < 0 {
		return SplitUint256{}, fmt.Errorf("cannot split negative value %s", x)
	}
	u, overflow := uint256.FromBig(x)
	if overflow {
		return SplitUint256{}, fmt.Errorf("value %s exceeds 256 bits", x)
	}
	low := uint256.Int{u[0], u[1], 0, 0}
	high := uint256.Int{u[2], u[3], 0, 0}
	return SplitUint256{Low: low.ToBig(), High: high.ToBig()}, nil
}

// MustFromUint is FromUint for values known to be in range.
func MustFromUint(x *big.Int) SplitUint256 {
	s, err := FromUint(x)
	if err != nil {
		panic(err)
	}
	return s
}

// FromUint64 never fails.
func FromUint64(x uint64) SplitUint256 {
	return SplitUint256{Low: new(big.Int).SetUint64(x), High: new(big.Int)}
}

// FromHex parses a hex string with or without 0x prefix and splits it.
func FromHex(s string) (SplitUint256, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		s = "0"
	}
	x, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return SplitUint256{}, fmt.Errorf("invalid hex value %q", s)
	}
	return FromUint(x)
}

// ToUint recombines the limbs as low + high*2^128.
func (s SplitUint256) ToUint() *big.Int {
	r := new(big.Int)
	if s.High != nil {
		r.Mul(s.High, two128)
	}
	if s.Low != nil {
		r.Add(r, s.Low)
	}
	return r
}

// ToHex returns the recombined value as a 0x prefixed hex string.
func (s SplitUint256) ToHex() string {
	return hexutil.EncodeBig(s.ToUint())
}

// Strings returns [low, high] as felt hex strings, the calldata order.
func (s SplitUint256) Strings() []string {
	return []string{ToFeltHex(s.Low), ToFeltHex(s.High)}
}

// Validate checks that both limbs are canonical 128-bit values.
func (s SplitUint256) Validate() error {
	for name, limb := range map[string]*big.Int{"low": s.Low, "high": s.High} {
		if limb == nil || limb.Sign() < 0 || limb.Cmp(two128) >= 0 {
			return fmt.Errorf("%s limb %v is not a 128-bit value", name, limb)
		}
	}
	return nil
}

// SplitFromStrings parses a [low, high] pair of felts.
func SplitFromStrings(low, high string) (SplitUint256, error) {
	l, err := ParseFelt(low)
	if err != nil {
		return SplitUint256{}, err
	}
	h, err := ParseFelt(high)
	if err != nil {
		return SplitUint256{}, err
	}
	s := SplitUint256{Low: l, High: h}
	return s, s.Validate()
}
