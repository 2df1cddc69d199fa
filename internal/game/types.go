package game

import (
	"time"

	"tycoon/internal/catalog"
)

type Dashboard struct {
	Balance           float64        `json:"balance"`
	XP                int64          `json:"xp"`
	Level             int64          `json:"level"`
	IncomePerHour     float64        `json:"income_per_hour"`
	IncomePerTick     float64        `json:"income_per_tick"`
	BestBusiness      *BusinessView  `json:"best_business,omitempty"`
	Businesses        []BusinessView `json:"businesses"`
	SchedulerRunning  bool           `json:"scheduler_running"`
	LastTickAt        *time.Time     `json:"last_tick_at,omitempty"`
	SecondsToNextTick int64          `json:"seconds_to_next_tick,omitempty"`
}

type BusinessView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Type          int     `json:"type"`
	Kind          string  `json:"kind"`
	TypeName      string  `json:"type_name,omitempty"`
	IncomePerHour float64 `json:"income_per_hour"`

	Subtype               *int    `json:"subtype,omitempty"`
	SubtypeName           string  `json:"subtype_name,omitempty"`
	Level                 int     `json:"level,omitempty"`
	MaxLevel              int     `json:"max_level,omitempty"`
	LevelUpCost           float64 `json:"level_up_cost,omitempty"`
	NextIncomePerHour     float64 `json:"next_income_per_hour,omitempty"`
	IncomeMultiplier      float64 `json:"income_multiplier,omitempty"`
	LevelUpCostMultiplier float64 `json:"level_up_cost_multiplier,omitempty"`

	Cars     []CarView `json:"cars,omitempty"`
	MaxSpace int       `json:"max_space,omitempty"`

	Constructions          []ConstructionView `json:"constructions,omitempty"`
	Materials              map[string]int     `json:"materials,omitempty"`
	SalesByLevel           map[int]int        `json:"sales_by_level,omitempty"`
	FinishedProjectsIncome float64            `json:"finished_projects_income,omitempty"`
}

type CarView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Kilometers    float64 `json:"kilometers"`
	MaxKilometers float64 `json:"max_kilometers"`
	IncomePerHour float64 `json:"income_per_hour"`
}

type ConstructionView struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	TimeLeftMS int64   `json:"time_left_ms"`
	Price      float64 `json:"price"`
	Level      int     `json:"level"`
	Finished   bool    `json:"finished"`
}

type TickReport struct {
	At            time.Time `json:"at"`
	IncomePerHour float64   `json:"income_per_hour"`
	Income        float64   `json:"income"`
	Balance       float64   `json:"balance"`
}

func newBusinessView(b Business, cat *catalog.Catalog) BusinessView {
	base := b.Base()
	out := BusinessView{
		ID:            base.ID,
		Name:          base.Name,
		Type:          base.Type,
		Kind:          b.Kind().String(),
		IncomePerHour: b.CalculateIncomePerHour(),
	}
	if bt, ok := cat.Type(base.Type); ok {
		out.TypeName = bt.Name
	}

	if u, ok := upgradableOf(b); ok {
		subtype := u.Subtype
		out.Subtype = &subtype
		if sub, ok := cat.Subtype(base.Type, u.Subtype); ok {
			out.SubtypeName = sub.Name
		}
		out.Level = u.Level
		out.MaxLevel = u.MaxLevel
		out.LevelUpCost = u.LevelUpCost
		out.IncomeMultiplier = u.IncomeMultiplier
		out.LevelUpCostMultiplier = u.LevelUpCostMultiplier
		if u.CanLevelUp() {
			out.NextIncomePerHour = u.NextIncome()
		}
	}

	if f, ok := fleetOf(b); ok {
		out.MaxSpace = f.MaxSpace
		out.Cars = make([]CarView, 0, len(f.ActiveCars))
		for _, c := range f.ActiveCars {
			out.Cars = append(out.Cars, CarView{
				ID:            c.ID,
				Name:          c.Name,
				Category:      c.Category,
				Kilometers:    c.Kilometers,
				MaxKilometers: c.MaxKilometers,
				IncomePerHour: c.IncomePerHour,
			})
		}
	}

	if cb, ok := b.(*ConstructionBusiness); ok {
		out.Constructions = make([]ConstructionView, 0, len(cb.Constructions))
		for _, c := range cb.Constructions {
			out.Constructions = append(out.Constructions, ConstructionView{
				ID:         c.ID,
				Name:       c.Name,
				TimeLeftMS: c.TimeLeft.Milliseconds(),
				Price:      c.Price,
				Level:      c.Level,
				Finished:   c.Finished(),
			})
		}
		out.Materials = make(map[string]int, len(Materials))
		for _, m := range Materials {
			out.Materials[m] = cb.MaterialAmount(m)
		}
		out.SalesByLevel = make(map[int]int, len(cb.SalesMap))
		for level, n := range cb.SalesMap {
			out.SalesByLevel[level] = n
		}
		out.FinishedProjectsIncome = cb.FinishedProjectsIncome()
	}
	return out
}
