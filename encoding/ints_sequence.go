package encoding

import (
	"encoding/binary"
	"fmt"
)

const wordSize = 8

// IntsSequence is a byte string packed into 64-bit big-endian words, the format
// the bridge contracts use for RLP nodes. The last word carries the remaining
// bytes unpadded, so BytesLength is needed to restore the original string.
type IntsSequence struct {
	Values      []uint64
	BytesLength int
}

func IntsSequenceFromBytes(b []byte) IntsSequence {
	values := make([]uint64, 0, (len(b)+wordSize-1)/wordSize)
	for i := 0; i < len(b); i += wordSize {
		end := i + wordSize
		if end > len(b) {
			end = len(b)
		}
		var w uint64
		for _, c := range b[i:end] {
			w = w<<8 | uint64(c)
		}
		values = append(values, w)
	}
	return IntsSequence{Values: values, BytesLength: len(b)}
}

// Bytes restores the original byte string.
func (s IntsSequence) Bytes() ([]byte, error) {
	if want := (s.BytesLength + wordSize - 1) / wordSize; want != len(s.Values) {
		return nil, fmt.Errorf("ints sequence of %d bytes needs %d words, got %d", s.BytesLength, want, len(s.Values))
	}
	out := make([]byte, 0, s.BytesLength)
	for i, w := range s.Values {
		var buf [wordSize]byte
		binary.BigEndian.PutUint64(buf[:], w)
		n := wordSize
		if i == len(s.Values)-1 && s.BytesLength%wordSize != 0 {
			n = s.BytesLength % wordSize
		}
		out = append(out, buf[wordSize-n:]...)
	}
	return out, nil
}

// Strings returns the words as felt hex strings.
func (s IntsSequence) Strings() []string {
	ret := make([]string, len(s.Values))
	for i, v := range s.Values {
		ret[i] = Uint64ToFeltHex(v)
	}
	return ret
}
