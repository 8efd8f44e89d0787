package utils

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// has0xPrefix validates str begins with '0x' or '0X'.
func has0xPrefix(str string) bool {
	return len(str) >= 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X')
}

// Hex2Bytes supports hex string with or without 0x prefix
// Calls hex.DecodeString directly and ignore err
func Hex2Bytes(s string) (b []byte) {
	if has0xPrefix(s) {
		s = s[2:]
	}
	// hex.DecodeString expects an even-length string
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ = hex.DecodeString(s)
	return b
}

// ParseNumber reads a 0x prefixed hex string or a decimal string.
func ParseNumber(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if has0xPrefix(s) {
		digits := s[2:]
		if digits == "" {
			return nil, false
		}
		return new(big.Int).SetString(digits, 16)
	}
	if s == "" {
		return nil, false
	}
	return new(big.Int).SetString(s, 10)
}

// PadHex64 formats x as 0x followed by 64 hex digits, the full width of an L2
// address.
func PadHex64(x *big.Int) string {
	return fmt.Sprintf("0x%064x", x)
}

// StripHexZeros drops the leading zero digits of a 0x prefixed hex string.
func StripHexZeros(s string) string {
	if !has0xPrefix(s) {
		return s
	}
	digits := strings.TrimLeft(s[2:], "0")
	if digits == "" {
		digits = "0"
	}
	return "0x" + strings.ToLower(digits)
}

// AddressForms returns every spelling of an L2 address a caller may use to
// refer to it: full width hex, zero stripped hex and decimal.
func AddressForms(addr string) ([]string, error) {
	x, ok := ParseNumber(addr)
	if !ok {
		return nil, fmt.Errorf("invalid address %q", addr)
	}
	return []string{PadHex64(x), StripHexZeros(PadHex64(x)), x.String()}, nil
}
