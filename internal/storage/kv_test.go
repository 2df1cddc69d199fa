package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKV_SetGetDelete(t *testing.T) {
	kv := NewMemoryKV()

	_, ok, err := kv.Get("money")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set("money", []byte("12.5")))
	got, ok, err := kv.Get("money")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "12.5", string(got))

	got[0] = 'x'
	again, _, _ := kv.Get("money")
	assert.Equal(t, "12.5", string(again))

	require.NoError(t, kv.Delete("money"))
	_, ok, err = kv.Get("money")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileKV_PersistsAcrossInstances(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	kv, err := NewFileKV(dir)
	require.NoError(t, err)
	require.NoError(t, kv.Set("businesses", []byte(`[]`)))
	require.NoError(t, kv.Set("businesses", []byte(`[{"id":"a"}]`)))

	reopened, err := NewFileKV(dir)
	require.NoError(t, err)
	got, ok, err := reopened.Get("businesses")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	require.NoError(t, reopened.Delete("businesses"))
	require.NoError(t, reopened.Delete("businesses"))
	_, ok, err = reopened.Get("businesses")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKV_RejectsInvalidKeys(t *testing.T) {
	kv := NewMemoryKV()
	for _, key := range []string{"", "..", "a/b", `a\b`, "money key"} {
		assert.ErrorIs(t, kv.Set(key, nil), ErrInvalidKey, key)
	}

	fkv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)
	_, _, err = fkv.Get("../escape")
	assert.ErrorIs(t, err, ErrInvalidKey)
}
