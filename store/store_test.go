package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string
	Power int64
}

func TestInitStoreTypes(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		typ     string
		options string
	}{
		{"", ""},
		{TypeSyncMap, `{"codec":"gob"}`},
		{TypeFile, `{"dir":"` + filepath.Join(dir, "file") + `","codec":"json"}`},
		{TypeBadgerDB, `{"dir":"` + filepath.Join(dir, "badger") + `"}`},
	}
	for _, c := range cases {
		t.Run(c.typ, func(t *testing.T) {
			s, err := InitStore(c.typ, c.options)
			require.NoError(t, err)
			defer s.Close()

			require.NoError(t, s.Set("k", doc{Name: "a", Power: 7}))
			var got doc
			found, err := s.Get("k", &got)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, doc{Name: "a", Power: 7}, got)

			require.NoError(t, s.Delete("k"))
			found, err = s.Get("k", &got)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestInitStoreErrors(t *testing.T) {
	_, err := InitStore("redis", "")
	assert.Error(t, err)
	_, err = InitStore(TypeSyncMap, `{"codec":"xml"}`)
	assert.Error(t, err)
	_, err = InitStore(TypeS3, "")
	assert.Error(t, err)
	_, err = InitStore(TypeS3, `{"region":"eu-west-1"}`)
	assert.Error(t, err)
}

func TestKeyPrefix(t *testing.T) {
	inner, err := NewSyncMapStore("")
	require.NoError(t, err)
	a := WithKeyPrefix(inner, "a/")
	b := WithKeyPrefix(inner, "b/")

	require.NoError(t, a.Set("x", "from a"))
	require.NoError(t, b.Set("x", "from b"))

	var v string
	found, err := inner.Get("a/x", &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "from a", v)

	found, err = b.Get("x", &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "from b", v)

	assert.Equal(t, inner, WithKeyPrefix(inner, ""))
}
