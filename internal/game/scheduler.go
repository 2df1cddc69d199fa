package game

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler settles income and wears resources once per interval. It is idle
// until Start and returns to idle on Stop.
type Scheduler struct {
	engine *Engine
	wallet *Wallet
	every  time.Duration
	clock  Clock
	log    *slog.Logger

	// tickMu serializes settlements so Stop never returns mid-tick.
	tickMu sync.Mutex

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	last     TickReport
	hasTick  bool
	runStart time.Time
}

func NewScheduler(engine *Engine, wallet *Wallet, every time.Duration, clock Clock, logger *slog.Logger) *Scheduler {
	if every <= 0 {
		every = TickInterval
	}
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		engine: engine,
		wallet: wallet,
		every:  every,
		clock:  clock,
		log:    logger,
	}
}

func (s *Scheduler) Every() time.Duration {
	return s.every
}

// Start registers the recurring tick. Calling it while running does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.runStart = s.clock.Now()
	go s.loop(runCtx, s.done)
	s.log.Info("scheduler started", "tick_every", s.every.String())
}

// Stop cancels the timer and waits for the loop to exit. No tick is applied
// after Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer s.finish(done)
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tickUnlessCanceled(ctx)
		}
	}
}

// finish returns the scheduler to idle when the loop ends on its own, for
// example because the context given to Start was canceled.
func (s *Scheduler) finish(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != done {
		return
	}
	s.cancel()
	s.cancel, s.done = nil, nil
	s.log.Info("scheduler stopped", "reason", "context done")
}

func (s *Scheduler) tickUnlessCanceled(ctx context.Context) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	s.tickLocked()
}

// Tick runs one settlement now: pay a minute of income, then wear cars and
// advance constructions.
func (s *Scheduler) Tick() TickReport {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	return s.tickLocked()
}

func (s *Scheduler) tickLocked() TickReport {
	perHour := s.engine.CalculateAllIncomePerHour()
	income := Round2(perHour / MinutesPerHour)

	balance, err := s.wallet.Credit(income)
	if err != nil {
		s.log.Error("tick credit failed", "income", income, "err", err)
	}
	if err := s.engine.RemoveKilometersAndTime(); err != nil {
		s.log.Error("tick wear failed", "err", err)
	}

	report := TickReport{
		At:            s.clock.Now(),
		IncomePerHour: perHour,
		Income:        income,
		Balance:       balance,
	}
	s.mu.Lock()
	s.last = report
	s.hasTick = true
	s.mu.Unlock()

	s.log.Debug("tick settled", "income", income, "income_per_hour", perHour, "balance", balance)
	return report
}

func (s *Scheduler) LastTick() (TickReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasTick
}

// UntilNextTick estimates the time left before the running loop fires again.
func (s *Scheduler) UntilNextTick() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return 0, false
	}
	elapsed := s.clock.Now().Sub(s.runStart)
	if elapsed < 0 {
		elapsed = 0
	}
	return s.every - elapsed%s.every, true
}
