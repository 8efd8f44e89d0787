package encoding

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotKey(t *testing.T) {
	h := SlotKey(big.NewInt(0), big.NewInt(0))
	assert.Equal(t, "0xad3228b676f7d3cd4284a5443f17f1962b36e491b30a40b2405849e597ba5fb5", h.Hex())

	holder := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	assert.Equal(t, SlotKey(AddressKey(holder), big.NewInt(3)), NestedSlotKey([]*big.Int{AddressKey(holder)}, big.NewInt(3)))
}

func TestNestedSlotKeyOrder(t *testing.T) {
	a := big.NewInt(11)
	b := big.NewInt(22)
	slot := big.NewInt(4)

	ab := NestedSlotKey([]*big.Int{a, b}, slot)
	ba := NestedSlotKey([]*big.Int{b, a}, slot)
	assert.NotEqual(t, ab, ba)

	inner := SlotKey(a, slot)
	assert.Equal(t, SlotKey(b, inner.Big()), ab)
}

func TestIntsSequence(t *testing.T) {
	b := common.FromHex("0xf8518080a0aabbccddeeff00112233")
	s := IntsSequenceFromBytes(b)
	assert.Equal(t, len(b), s.BytesLength)
	require.Len(t, s.Values, 2)
	assert.Equal(t, uint64(0xf8518080a0aabbcc), s.Values[0])
	assert.Equal(t, uint64(0xddeeff00112233), s.Values[1])

	back, err := s.Bytes()
	require.NoError(t, err)
	assert.Equal(t, b, back)

	empty := IntsSequenceFromBytes(nil)
	assert.Empty(t, empty.Values)

	_, err = IntsSequence{Values: []uint64{1}, BytesLength: 9}.Bytes()
	assert.Error(t, err)
}

func TestShortStrings(t *testing.T) {
	cid := "bafkreihdwdcefgh4dqkjv67uzcmw7ojee6xedzdetojuzjevtenxquvyku"
	felts := EncodeShortStrings(cid)
	assert.Len(t, felts, 2)
	assert.Equal(t, "0x68656c6c6f", EncodeShortStrings("hello")[0])

	back, err := DecodeShortStrings(felts)
	require.NoError(t, err)
	assert.Equal(t, cid, back)
}

func TestParseFelt(t *testing.T) {
	x, err := ParseFelt("0x1f")
	require.NoError(t, err)
	assert.Equal(t, int64(31), x.Int64())

	x, err = ParseFelt("31")
	require.NoError(t, err)
	assert.Equal(t, int64(31), x.Int64())

	_, err = ParseFelt(ToFeltHex(StarkPrime))
	assert.Error(t, err)
}

func TestAddressFelt(t *testing.T) {
	a := common.HexToAddress("0x9C8fF314C9Bc7F6e59A9d9225Fb22946427eDC03")
	f := AddressToFelt(a)
	assert.Equal(t, "0x9c8ff314c9bc7f6e59a9d9225fb22946427edc03", f)
	back, err := FeltToAddress(f)
	require.NoError(t, err)
	assert.Equal(t, a, back)

	_, err = FeltToAddress("0x1" + strings.Repeat("0", 40))
	assert.Error(t, err)
}
