package game

import (
	"testing"

	"tycoon/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletRestoresStoredValues(t *testing.T) {
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(KeyMoney, []byte("1250.75")))
	require.NoError(t, kv.Set(KeyXP, []byte("42")))
	require.NoError(t, kv.Set(KeyLevel, []byte(" 3\n")))

	w := NewWallet(kv, quietLogger())
	assert.Equal(t, 1250.75, w.Balance())
	assert.Equal(t, int64(42), w.XP())
	assert.Equal(t, int64(3), w.Level())
}

func TestWalletUnreadableValuesStartAtZero(t *testing.T) {
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(KeyMoney, []byte("lots")))
	w := NewWallet(kv, quietLogger())
	assert.Zero(t, w.Balance())
	assert.Zero(t, w.XP())
}

func TestWalletSpendAndCredit(t *testing.T) {
	kv := storage.NewMemoryKV()
	w := NewWallet(kv, quietLogger())

	_, err := w.Spend(1)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	bal, err := w.Credit(100.005)
	require.NoError(t, err)
	assert.Equal(t, 100.01, bal)

	bal, err = w.Spend(40.01)
	require.NoError(t, err)
	assert.Equal(t, 60.0, bal)

	_, err = w.Spend(-5)
	require.Error(t, err)
	assert.Equal(t, 60.0, w.Balance())

	raw, ok, err := kv.Get(KeyMoney)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "60", string(raw))

	restored := NewWallet(kv, quietLogger())
	assert.Equal(t, 60.0, restored.Balance())
}

func TestWalletClickGrantsExperience(t *testing.T) {
	kv := storage.NewMemoryKV()
	w := NewWallet(kv, quietLogger())

	for i := 0; i < 3; i++ {
		_, err := w.Click(2.5)
		require.NoError(t, err)
	}
	assert.Equal(t, 7.5, w.Balance())
	assert.Equal(t, int64(3), w.XP())

	raw, ok, err := kv.Get(KeyXP)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3", string(raw))

	require.NoError(t, w.SetLevel(2))
	assert.Equal(t, int64(2), NewWallet(kv, quietLogger()).Level())
}
