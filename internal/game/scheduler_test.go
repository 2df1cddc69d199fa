package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickPaysOneMinuteOfIncome(t *testing.T) {
	taxi := NewTaxiBusiness("Cabs", 3)
	car := taxi.AddCar("A", "Economy", 150000, 30)
	cb := NewConstructionBusiness("Builders")
	c := cb.AddConstruction("Cabin", 90*time.Second, 6000, 1)
	g := newTestGame(t, 10, taxi, shopWithIncome("s", 70), cb)

	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	s := NewScheduler(g.engine, g.wallet, time.Minute, clock, quietLogger())

	report := s.Tick()
	assert.Equal(t, 100.0, report.IncomePerHour)
	assert.Equal(t, 1.67, report.Income)
	assert.Equal(t, 11.67, report.Balance)
	assert.Equal(t, 11.67, g.wallet.Balance())
	assert.Equal(t, clock.now, report.At)

	assert.InDelta(t, 149940, car.Kilometers, 1e-6)
	assert.Equal(t, 30*time.Second, c.TimeLeft)
	assert.Equal(t, 1, g.store.Saves())

	last, ok := s.LastTick()
	require.True(t, ok)
	assert.Equal(t, report, last)
}

func TestTickCreditsCurrentBalance(t *testing.T) {
	g := newTestGame(t, 0, shopWithIncome("s", 60))
	s := NewScheduler(g.engine, g.wallet, time.Minute, nil, quietLogger())

	_, err := g.wallet.Credit(500)
	require.NoError(t, err)
	s.Tick()
	_, err = g.wallet.Spend(200)
	require.NoError(t, err)
	s.Tick()

	assert.Equal(t, 302.0, g.wallet.Balance())
}

func TestSchedulerStartStopIdempotent(t *testing.T) {
	g := newTestGame(t, 0)
	s := NewScheduler(g.engine, g.wallet, time.Hour, nil, quietLogger())
	assert.False(t, s.Running())
	_, ok := s.UntilNextTick()
	assert.False(t, ok)

	ctx := context.Background()
	s.Start(ctx)
	s.Start(ctx)
	assert.True(t, s.Running())

	s.Stop()
	s.Stop()
	assert.False(t, s.Running())
	_, ok = s.LastTick()
	assert.False(t, ok)

	s.Start(ctx)
	assert.True(t, s.Running())
	s.Stop()
}

func TestSchedulerTicksWhileRunning(t *testing.T) {
	g := newTestGame(t, 0, shopWithIncome("s", 60))
	s := NewScheduler(g.engine, g.wallet, 10*time.Millisecond, nil, quietLogger())

	s.Start(context.Background())
	require.Eventually(t, func() bool {
		_, ok := s.LastTick()
		return ok
	}, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	after := g.wallet.Balance()
	assert.GreaterOrEqual(t, after, 1.0)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, g.wallet.Balance())
}

func TestSchedulerStopsWithContext(t *testing.T) {
	g := newTestGame(t, 0)
	s := NewScheduler(g.engine, g.wallet, time.Hour, nil, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()
	s.Stop()
	assert.False(t, s.Running())
}

func TestSchedulerIdlesWhenParentContextEnds(t *testing.T) {
	g := newTestGame(t, 0)
	s := NewScheduler(g.engine, g.wallet, time.Hour, nil, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	require.True(t, s.Running())

	cancel()
	require.Eventually(t, func() bool { return !s.Running() }, 2*time.Second, 5*time.Millisecond)
	_, ok := s.UntilNextTick()
	assert.False(t, ok)

	s.Start(context.Background())
	assert.True(t, s.Running())
	s.Stop()
	assert.False(t, s.Running())
}

func TestUntilNextTick(t *testing.T) {
	g := newTestGame(t, 0)
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := NewScheduler(g.engine, g.wallet, time.Hour, clock, quietLogger())
	s.Start(context.Background())
	defer s.Stop()

	clock.Advance(20 * time.Minute)
	left, ok := s.UntilNextTick()
	require.True(t, ok)
	assert.Equal(t, 40*time.Minute, left)
}

func TestNewSchedulerDefaults(t *testing.T) {
	g := newTestGame(t, 0)
	s := NewScheduler(g.engine, g.wallet, 0, nil, nil)
	assert.Equal(t, TickInterval, s.Every())
}

func TestBuildDashboard(t *testing.T) {
	a := shopWithIncome("a", 30)
	b := shopWithIncome("b", 90)
	g := newTestGame(t, 25, a, b)
	s := NewScheduler(g.engine, g.wallet, time.Hour, nil, quietLogger())

	d := BuildDashboard(g.engine, g.wallet, s)
	assert.Equal(t, 25.0, d.Balance)
	assert.Equal(t, 120.0, d.IncomePerHour)
	assert.Equal(t, 2.0, d.IncomePerTick)
	require.NotNil(t, d.BestBusiness)
	assert.Equal(t, b.ID, d.BestBusiness.ID)
	assert.Len(t, d.Businesses, 2)
	assert.False(t, d.SchedulerRunning)
	assert.Nil(t, d.LastTickAt)

	s.Tick()
	d = BuildDashboard(g.engine, g.wallet, s)
	assert.Equal(t, 27.0, d.Balance)
	assert.NotNil(t, d.LastTickAt)
}
