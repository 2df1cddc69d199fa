package game

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tycoon/internal/catalog"
	"tycoon/internal/storage"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	saves   int
	last    []Business
	loaded  []Business
	loadErr error
	saveErr error
}

func (s *fakeStore) Save(businesses []Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.last = append([]Business(nil), businesses...)
	return nil
}

func (s *fakeStore) Load() ([]Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded, s.loadErr
}

func (s *fakeStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var errBoom = errors.New("boom")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testGame struct {
	store   *fakeStore
	engine  *Engine
	wallet  *Wallet
	actions *Actions
}

func newTestGame(t *testing.T, money float64, preload ...Business) *testGame {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	store := &fakeStore{loaded: preload}
	engine := NewEngine(cat, store, quietLogger())
	engine.Load()

	wallet := NewWallet(storage.NewMemoryKV(), quietLogger())
	if money > 0 {
		_, err := wallet.Credit(money)
		require.NoError(t, err)
	}
	return &testGame{
		store:   store,
		engine:  engine,
		wallet:  wallet,
		actions: NewActions(engine, wallet, 1),
	}
}

func shopWithIncome(name string, income float64) *ShopBusiness {
	return &ShopBusiness{Upgradable: Upgradable{
		BaseBusiness:          newBase(name, TypeShop, ""),
		IncomePerHour:         income,
		IncomeMultiplier:      1,
		LevelUpCostMultiplier: 1,
		Level:                 1,
		MaxLevel:              1,
	}}
}

// failingKV rejects writes once failing is set.
type failingKV struct {
	*storage.MemoryKV
	failing atomic.Bool
}

func (f *failingKV) Set(key string, value []byte) error {
	if f.failing.Load() {
		return errBoom
	}
	return f.MemoryKV.Set(key, value)
}

// runConcurrently starts n goroutines running fn and waits for all of them.
func runConcurrently(n int, fn func()) {
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			fn()
		}()
	}
	close(start)
	wg.Wait()
}
