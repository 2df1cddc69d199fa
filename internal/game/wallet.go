package game

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"tycoon/internal/storage"
)

const (
	KeyMoney = "money"
	KeyXP    = "xp"
	KeyLevel = "level"
)

// Wallet holds the player's scalar progress. Balance, experience and level
// are each stored under their own key.
type Wallet struct {
	mu      sync.Mutex
	kv      storage.KV
	log     *slog.Logger
	balance float64
	xp      int64
	level   int64
}

// NewWallet restores the stored scalars. Missing or unreadable values start
// at zero.
func NewWallet(kv storage.KV, logger *slog.Logger) *Wallet {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Wallet{kv: kv, log: logger}
	w.balance = w.readFloat(KeyMoney)
	w.xp = w.readInt(KeyXP)
	w.level = w.readInt(KeyLevel)
	return w
}

func (w *Wallet) read(key string) string {
	raw, ok, err := w.kv.Get(key)
	if err != nil {
		w.log.Warn("read wallet value failed", "key", key, "err", err)
		return ""
	}
	if !ok {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func (w *Wallet) readFloat(key string) float64 {
	v, err := strconv.ParseFloat(w.read(key), 64)
	if err != nil {
		return 0
	}
	return v
}

func (w *Wallet) readInt(key string) int64 {
	v, err := strconv.ParseInt(w.read(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// errBalanceWrite marks a balance change that is applied in memory but could
// not be stored.
var errBalanceWrite = errors.New("persist balance")

func (w *Wallet) writeBalanceLocked() error {
	raw := strconv.FormatFloat(w.balance, 'f', -1, 64)
	if err := w.kv.Set(KeyMoney, []byte(raw)); err != nil {
		return fmt.Errorf("%w: %w", errBalanceWrite, err)
	}
	return nil
}

func (w *Wallet) Balance() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

func (w *Wallet) XP() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.xp
}

func (w *Wallet) Level() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.level
}

// Credit adds amount to the balance as it stands now and returns the new
// balance.
func (w *Wallet) Credit(amount float64) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance = Round2(w.balance + amount)
	return w.balance, w.writeBalanceLocked()
}

// Spend debits amount if the balance covers it.
func (w *Wallet) Spend(amount float64) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if amount < 0 {
		return w.balance, fmt.Errorf("spend negative amount %.2f", amount)
	}
	if w.balance < amount {
		return w.balance, ErrInsufficientFunds
	}
	w.balance = Round2(w.balance - amount)
	return w.balance, w.writeBalanceLocked()
}

// Click pays one manual click and grants one experience point.
func (w *Wallet) Click(perClick float64) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance = Round2(w.balance + perClick)
	w.xp++
	if err := w.writeBalanceLocked(); err != nil {
		return w.balance, err
	}
	if err := w.kv.Set(KeyXP, []byte(strconv.FormatInt(w.xp, 10))); err != nil {
		return w.balance, fmt.Errorf("persist xp: %w", err)
	}
	return w.balance, nil
}

func (w *Wallet) SetLevel(level int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.level = level
	if err := w.kv.Set(KeyLevel, []byte(strconv.FormatInt(level, 10))); err != nil {
		return fmt.Errorf("persist level: %w", err)
	}
	return nil
}
