// Package snapshot turns the business collection into a flat, type-tagged
// record list and back.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"tycoon/internal/game"

	"github.com/google/uuid"
)

// record is one business in the stored sequence. Only the fields of the
// record's variant are set; the rest are omitted.
type record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type int    `json:"type"`

	Subtype               *int     `json:"subtype,omitempty"`
	IncomePerHour         *float64 `json:"incomePerHour,omitempty"`
	IncomeMultiplier      *float64 `json:"incomeMultiplier,omitempty"`
	LevelUpCost           *float64 `json:"levelUpCost,omitempty"`
	LevelUpCostMultiplier *float64 `json:"levelUpCostMultiplier,omitempty"`
	Level                 *int     `json:"level,omitempty"`
	MaxLevel              *int     `json:"maxLevel,omitempty"`

	ActiveCars []carRecord `json:"activeCars,omitempty"`
	MaxSpace   *int        `json:"maxSpace,omitempty"`

	Constructions []constructionRecord `json:"constructions,omitempty"`
	SalesMap      map[int]int          `json:"salesMap,omitempty"`
	Metal         *int                 `json:"metal,omitempty"`
	Workers       *int                 `json:"workers,omitempty"`
	Wood          *int                 `json:"wood,omitempty"`
	Concrete      *int                 `json:"concrete,omitempty"`
}

type carRecord struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Kilometers    float64  `json:"kilometers"`
	MaxKilometers *float64 `json:"maxKilometers,omitempty"`
	IncomePerHour float64  `json:"incomePerHour"`
}

type constructionRecord struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	TimeLeft int64   `json:"timeLeft"`
	Price    float64 `json:"price"`
	Level    int     `json:"level"`
}

func ptr[T any](v T) *T {
	return &v
}

func deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// Encode serializes businesses in collection order.
func Encode(businesses []game.Business) ([]byte, error) {
	records := make([]record, 0, len(businesses))
	for _, b := range businesses {
		records = append(records, toRecord(b))
	}
	return json.Marshal(records)
}

func toRecord(b game.Business) record {
	base := b.Base()
	r := record{ID: base.ID, Name: base.Name, Type: base.Type}

	switch v := b.(type) {
	case *game.ShopBusiness:
		setUpgradable(&r, &v.Upgradable)
	case *game.FactoryBusiness:
		setUpgradable(&r, &v.Upgradable)
	case *game.TaxiBusiness:
		setFleet(&r, &v.Fleet)
	case *game.TransportBusiness:
		setFleet(&r, &v.Fleet)
	case *game.ConstructionBusiness:
		r.Constructions = make([]constructionRecord, 0, len(v.Constructions))
		for _, c := range v.Constructions {
			r.Constructions = append(r.Constructions, constructionRecord{
				ID:       c.ID,
				Name:     c.Name,
				TimeLeft: c.TimeLeft.Milliseconds(),
				Price:    c.Price,
				Level:    c.Level,
			})
		}
		r.SalesMap = make(map[int]int, len(v.SalesMap))
		for level, n := range v.SalesMap {
			r.SalesMap[level] = n
		}
		r.Metal = ptr(v.Metal)
		r.Workers = ptr(v.Workers)
		r.Wood = ptr(v.Wood)
		r.Concrete = ptr(v.Concrete)
	}
	return r
}

func setUpgradable(r *record, u *game.Upgradable) {
	r.Subtype = ptr(u.Subtype)
	r.IncomePerHour = ptr(u.IncomePerHour)
	r.IncomeMultiplier = ptr(u.IncomeMultiplier)
	r.LevelUpCost = ptr(u.LevelUpCost)
	r.LevelUpCostMultiplier = ptr(u.LevelUpCostMultiplier)
	r.Level = ptr(u.Level)
	r.MaxLevel = ptr(u.MaxLevel)
}

func setFleet(r *record, f *game.Fleet) {
	r.ActiveCars = make([]carRecord, 0, len(f.ActiveCars))
	for _, c := range f.ActiveCars {
		r.ActiveCars = append(r.ActiveCars, carRecord{
			ID:            c.ID,
			Name:          c.Name,
			Category:      c.Category,
			Kilometers:    c.Kilometers,
			MaxKilometers: ptr(c.MaxKilometers),
			IncomePerHour: c.IncomePerHour,
		})
	}
	r.MaxSpace = ptr(f.MaxSpace)
	r.IncomePerHour = ptr(f.IncomePerHour)
}

// Decode rebuilds typed businesses from Encode output. A payload that is not
// a JSON array of records fails as a whole; missing fields take zero values.
func Decode(raw []byte) ([]game.Business, error) {
	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode business snapshot: %w", err)
	}
	if records == nil {
		return nil, fmt.Errorf("decode business snapshot: payload is not a sequence")
	}
	out := make([]game.Business, 0, len(records))
	for _, r := range records {
		out = append(out, fromRecord(r))
	}
	return out, nil
}

func fromRecord(r record) game.Business {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	base := game.BaseBusiness{ID: id, Name: r.Name, Type: r.Type}

	switch game.KindOf(r.Type) {
	case game.KindShop:
		return &game.ShopBusiness{Upgradable: upgradableFrom(base, r)}
	case game.KindFactory:
		return &game.FactoryBusiness{Upgradable: upgradableFrom(base, r)}
	case game.KindTaxi:
		return &game.TaxiBusiness{Fleet: fleetFrom(base, r)}
	case game.KindTransport:
		return &game.TransportBusiness{Fleet: fleetFrom(base, r)}
	case game.KindConstruction:
		cb := &game.ConstructionBusiness{
			BaseBusiness:  base,
			Constructions: make([]*game.Construction, 0, len(r.Constructions)),
			SalesMap:      map[int]int{},
			Metal:         deref(r.Metal, 0),
			Workers:       deref(r.Workers, 0),
			Wood:          deref(r.Wood, 0),
			Concrete:      deref(r.Concrete, 0),
		}
		for level, n := range r.SalesMap {
			cb.SalesMap[level] = n
		}
		for _, c := range r.Constructions {
			cid := c.ID
			if cid == "" {
				cid = uuid.NewString()
			}
			cb.Constructions = append(cb.Constructions, &game.Construction{
				ID:       cid,
				Name:     c.Name,
				TimeLeft: time.Duration(c.TimeLeft) * time.Millisecond,
				Price:    c.Price,
				Level:    c.Level,
			})
		}
		return cb
	default:
		return &base
	}
}

func upgradableFrom(base game.BaseBusiness, r record) game.Upgradable {
	return game.Upgradable{
		BaseBusiness:          base,
		Subtype:               deref(r.Subtype, 0),
		IncomePerHour:         deref(r.IncomePerHour, 0),
		IncomeMultiplier:      deref(r.IncomeMultiplier, 1),
		LevelUpCost:           deref(r.LevelUpCost, 0),
		LevelUpCostMultiplier: deref(r.LevelUpCostMultiplier, 1),
		Level:                 deref(r.Level, 1),
		MaxLevel:              deref(r.MaxLevel, 1),
	}
}

func fleetFrom(base game.BaseBusiness, r record) game.Fleet {
	f := game.Fleet{
		BaseBusiness: base,
		ActiveCars:   make([]*game.Car, 0, len(r.ActiveCars)),
		MaxSpace:     deref(r.MaxSpace, 0),
	}
	for _, c := range r.ActiveCars {
		cid := c.ID
		if cid == "" {
			cid = uuid.NewString()
		}
		f.ActiveCars = append(f.ActiveCars, &game.Car{
			ID:            cid,
			Name:          c.Name,
			Category:      c.Category,
			Kilometers:    c.Kilometers,
			MaxKilometers: deref(c.MaxKilometers, c.Kilometers),
			IncomePerHour: c.IncomePerHour,
		})
	}
	if r.IncomePerHour != nil {
		f.IncomePerHour = *r.IncomePerHour
	} else {
		f.IncomePerHour = f.CalculateIncomePerHour()
	}
	return f
}
