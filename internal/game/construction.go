package game

import (
	"time"

	"github.com/google/uuid"
)

// Construction is a building project. It stays in its business after it
// finishes until the player sells it.
type Construction struct {
	ID       string
	Name     string
	TimeLeft time.Duration
	Price    float64
	Level    int
}

func NewConstruction(name string, timeLeft time.Duration, price float64, level int) *Construction {
	return &Construction{
		ID:       uuid.NewString(),
		Name:     name,
		TimeLeft: timeLeft,
		Price:    price,
		Level:    level,
	}
}

func (c *Construction) Finished() bool {
	return c.TimeLeft == 0
}

// RemoveTime advances the build by one tick, stopping at zero.
func (c *Construction) RemoveTime() {
	if c.TimeLeft <= 0 {
		return
	}
	c.TimeLeft -= ConstructionStep
	if c.TimeLeft < 0 {
		c.TimeLeft = 0
	}
}

type ConstructionBusiness struct {
	BaseBusiness
	Constructions []*Construction
	Metal         int
	Workers       int
	Wood          int
	Concrete      int
	// SalesMap counts sold constructions per level.
	SalesMap map[int]int
}

func NewConstructionBusiness(name string) *ConstructionBusiness {
	return &ConstructionBusiness{
		BaseBusiness:  newBase(name, TypeConstruction, ""),
		Constructions: []*Construction{},
		SalesMap:      map[int]int{},
	}
}

func (*ConstructionBusiness) Kind() Kind {
	return KindConstruction
}

// CalculateIncomePerHour is always zero: construction pays out on sale, not
// over time. See FinishedProjectsIncome.
func (*ConstructionBusiness) CalculateIncomePerHour() float64 {
	return 0
}

// AddConstruction starts a project. Materials are not checked or deducted
// here; the caller spends them first.
func (b *ConstructionBusiness) AddConstruction(name string, buildTime time.Duration, price float64, level int) *Construction {
	c := NewConstruction(name, buildTime, price, level)
	b.Constructions = append(b.Constructions, c)
	return c
}

func (b *ConstructionBusiness) stock(name string) *int {
	switch name {
	case MaterialMetal:
		return &b.Metal
	case MaterialWorkers:
		return &b.Workers
	case MaterialWood:
		return &b.Wood
	case MaterialConcrete:
		return &b.Concrete
	default:
		return nil
	}
}

// AddMaterial ignores unknown material names.
func (b *ConstructionBusiness) AddMaterial(name string, quantity int) {
	if s := b.stock(name); s != nil {
		*s += quantity
	}
}

// UseMaterial ignores unknown material names. Stock is allowed to go negative.
func (b *ConstructionBusiness) UseMaterial(name string, quantity int) {
	if s := b.stock(name); s != nil {
		*s -= quantity
	}
}

func (b *ConstructionBusiness) MaterialAmount(name string) int {
	if s := b.stock(name); s != nil {
		return *s
	}
	return 0
}

func (b *ConstructionBusiness) findConstruction(id string) (int, *Construction) {
	for i, c := range b.Constructions {
		if c.ID == id {
			return i, c
		}
	}
	return -1, nil
}

// SellConstruction removes the construction and records the sale for its
// level. Unknown ids change nothing.
func (b *ConstructionBusiness) SellConstruction(id string) (Construction, bool) {
	i, c := b.findConstruction(id)
	if c == nil {
		return Construction{}, false
	}
	if b.SalesMap == nil {
		b.SalesMap = map[int]int{}
	}
	b.SalesMap[c.Level]++
	b.Constructions = append(b.Constructions[:i:i], b.Constructions[i+1:]...)
	return *c, true
}

func (b *ConstructionBusiness) SoldCount(level int) int {
	return b.SalesMap[level]
}

func (b *ConstructionBusiness) FinishedProjectsIncome() float64 {
	income := 0.0
	for _, c := range b.Constructions {
		if c.Finished() {
			income += c.Price
		}
	}
	return income
}

func (b *ConstructionBusiness) removeTime() {
	for _, c := range b.Constructions {
		c.RemoveTime()
	}
}
