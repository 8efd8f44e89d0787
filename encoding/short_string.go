package encoding

import (
	"fmt"
	"math/big"
)

const shortStringLen = 31

// EncodeShortStrings packs s into 31-byte big-endian felts.
func EncodeShortStrings(s string) []string {
	b := []byte(s)
	var ret []string
	for i := 0; i < len(b); i += shortStringLen {
		end := i + shortStringLen
		if end > len(b) {
			end = len(b)
		}
		ret = append(ret, ToFeltHex(new(big.Int).SetBytes(b[i:end])))
	}
	return ret
}

// DecodeShortStrings reverses EncodeShortStrings. Strings containing NUL bytes
// cannot be restored and are not produced by this package.
func DecodeShortStrings(felts []string) (string, error) {
	var out []byte
	for i, f := range felts {
		x, err := ParseFelt(f)
		if err != nil {
			return "", err
		}
		chunk := x.Bytes()
		if len(chunk) > shortStringLen {
			return "", fmt.Errorf("felt %d exceeds %d bytes", i, shortStringLen)
		}
		out = append(out, chunk...)
	}
	return string(out), nil
}
