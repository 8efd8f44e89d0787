package encoding

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitUint256RoundTrip(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	values := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		new(big.Int).Sub(two128, big.NewInt(1)),
		new(big.Int).Set(two128),
		new(big.Int).Add(two128, big.NewInt(7)),
		max,
	}
	for i := 0; i < 64; i++ {
		r, err := rand.Int(rand.Reader, new(big.Int).Add(max, big.NewInt(1)))
		require.NoError(t, err)
		values = append(values, r)
	}
	for _, v := range values {
		s, err := FromUint(v)
		require.NoError(t, err)
		require.NoError(t, s.Validate())
		assert.Equal(t, 0, v.Cmp(s.ToUint()), "round trip of %s", v)

		h, err := FromHex(s.ToHex())
		require.NoError(t, err)
		assert.Equal(t, 0, h.Low.Cmp(s.Low))
		assert.Equal(t, 0, h.High.Cmp(s.High))
	}
}

func TestSplitUint256Limbs(t *testing.T) {
	x := new(big.Int).Add(new(big.Int).Mul(big.NewInt(5), two128), big.NewInt(9))
	s, err := FromUint(x)
	require.NoError(t, err)
	assert.Equal(t, int64(9), s.Low.Int64())
	assert.Equal(t, int64(5), s.High.Int64())
	assert.Equal(t, []string{"0x9", "0x5"}, s.Strings())
}

func TestSplitUint256OutOfRange(t *testing.T) {
	_, err := FromUint(big.NewInt(-1))
	assert.Error(t, err)

	_, err = FromUint(new(big.Int).Lsh(big.NewInt(1), 256))
	assert.Error(t, err)

	_, err = FromHex("0xzz")
	assert.Error(t, err)

	_, err = SplitFromStrings("0x1", ToFeltHex(two128))
	assert.Error(t, err)
}
