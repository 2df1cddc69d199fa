package game

// BuildDashboard summarizes player and business state. sched may be nil.
func BuildDashboard(engine *Engine, wallet *Wallet, sched *Scheduler) Dashboard {
	perHour := engine.CalculateAllIncomePerHour()
	d := Dashboard{
		Balance:       wallet.Balance(),
		XP:            wallet.XP(),
		Level:         wallet.Level(),
		IncomePerHour: perHour,
		IncomePerTick: Round2(perHour / MinutesPerHour),
		Businesses:    engine.Views(),
	}
	if best, ok := engine.GetBestBusiness(); ok {
		if v, err := engine.View(best.Base().ID); err == nil {
			d.BestBusiness = &v
		}
	}
	if sched != nil {
		d.SchedulerRunning = sched.Running()
		if last, ok := sched.LastTick(); ok {
			at := last.At
			d.LastTickAt = &at
		}
		if left, ok := sched.UntilNextTick(); ok {
			d.SecondsToNextTick = int64(left.Seconds())
		}
	}
	return d
}
