// Package catalog holds the read-only table of purchasable business types.
// Field names follow the businessData.json layout, so a JSON catalog loads as
// well as a YAML one.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Catalog struct {
	Types []BusinessType `yaml:"businessTypes" json:"businessTypes"`
}

// BusinessType describes one purchasable business. Which optional sections
// are populated depends on the business variant the type index maps to.
type BusinessType struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Category    string `yaml:"category" json:"category"`
	Icon        string `yaml:"icon" json:"icon"`

	// Shop / Factory
	Subtypes []Subtype `yaml:"subtypes,omitempty" json:"subtypes,omitempty"`

	// Taxi / Transport
	Cost         float64      `yaml:"cost,omitempty" json:"cost,omitempty"`
	BaseIncome   float64      `yaml:"baseIncome,omitempty" json:"baseIncome,omitempty"`
	MaxBaseSpace int          `yaml:"maxBaseSpace,omitempty" json:"maxBaseSpace,omitempty"`
	Cars         []CarModel   `yaml:"cars,omitempty" json:"cars,omitempty"`
	SpacePrices  []SpacePrice `yaml:"spacePrices,omitempty" json:"spacePrices,omitempty"`

	// Construction
	Materials     []Material         `yaml:"materials,omitempty" json:"materials,omitempty"`
	Constructions []ConstructionPlan `yaml:"constructions,omitempty" json:"constructions,omitempty"`
}

type Subtype struct {
	Subtype               int     `yaml:"subtype" json:"subtype"`
	Name                  string  `yaml:"name" json:"name"`
	Cost                  float64 `yaml:"cost" json:"cost"`
	LevelUpCost           float64 `yaml:"levelUpCost" json:"levelUpCost"`
	LevelUpCostMultiplier float64 `yaml:"levelUpCostMultiplier" json:"levelUpCostMultiplier"`
	BaseIncome            float64 `yaml:"baseIncome" json:"baseIncome"`
	IncomeMultiplier      float64 `yaml:"incomeMultiplier" json:"incomeMultiplier"`
	MaxLevel              int     `yaml:"maxLevel" json:"maxLevel"`
}

type CarModel struct {
	Name          string  `yaml:"name" json:"name"`
	Category      string  `yaml:"category" json:"category"`
	Kilometers    float64 `yaml:"kilometers" json:"kilometers"`
	IncomePerHour float64 `yaml:"incomePerHour" json:"incomePerHour"`
	Price         float64 `yaml:"price" json:"price"`
}

type SpacePrice struct {
	AddedSpace int     `yaml:"addedSpace" json:"addedSpace"`
	Price      float64 `yaml:"price" json:"price"`
}

type Material struct {
	Name  string  `yaml:"name" json:"name"`
	Price float64 `yaml:"price" json:"price"`
}

type MaterialAmount struct {
	Name   string `yaml:"name" json:"name"`
	Amount int    `yaml:"amount" json:"amount"`
}

// ConstructionPlan is a project a construction business can start. Time is in
// milliseconds. A plan unlocks once Previous projects of Level-1 were sold.
type ConstructionPlan struct {
	Name      string           `yaml:"name" json:"name"`
	Time      int64            `yaml:"time" json:"time"`
	Price     float64          `yaml:"price" json:"price"`
	Level     int              `yaml:"level" json:"level"`
	Previous  int              `yaml:"previous" json:"previous"`
	Materials []MaterialAmount `yaml:"materials" json:"materials"`
}

var ErrEmptyCatalog = errors.New("catalog has no business types")

// Load reads a catalog file from disk.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog bytes. Both a top-level mapping with a
// businessTypes key and a bare sequence of types are accepted.
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&c.Types); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		if err := root.Decode(&c); err != nil {
			return nil, err
		}
	default:
		return nil, ErrEmptyCatalog
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Types) == 0 {
		return ErrEmptyCatalog
	}
	for i, t := range c.Types {
		if t.Cost < 0 || t.MaxBaseSpace < 0 {
			return fmt.Errorf("business type %d (%s): negative cost or space", i, t.Name)
		}
		for j, s := range t.Subtypes {
			if s.MaxLevel < 1 {
				return fmt.Errorf("business type %d subtype %d: maxLevel must be >= 1", i, j)
			}
			if s.Cost < 0 || s.LevelUpCost < 0 || s.BaseIncome < 0 {
				return fmt.Errorf("business type %d subtype %d: negative economics", i, j)
			}
		}
		for j, car := range t.Cars {
			if car.Price < 0 || car.IncomePerHour < 0 || car.Kilometers < 0 {
				return fmt.Errorf("business type %d car %d: negative values", i, j)
			}
		}
		for j, sp := range t.SpacePrices {
			if sp.AddedSpace <= 0 || sp.Price < 0 {
				return fmt.Errorf("business type %d space tier %d: invalid", i, j)
			}
		}
		for j, p := range t.Constructions {
			if p.Time < 0 || p.Price < 0 {
				return fmt.Errorf("business type %d construction %d: negative values", i, j)
			}
		}
	}
	return nil
}

func (c *Catalog) Len() int {
	return len(c.Types)
}

func (c *Catalog) Type(t int) (BusinessType, bool) {
	if t < 0 || t >= len(c.Types) {
		return BusinessType{}, false
	}
	return c.Types[t], true
}

// Subtype looks a subtype up by its position within the type.
func (c *Catalog) Subtype(t, s int) (Subtype, bool) {
	bt, ok := c.Type(t)
	if !ok || s < 0 || s >= len(bt.Subtypes) {
		return Subtype{}, false
	}
	return bt.Subtypes[s], true
}

func (c *Catalog) Car(t, i int) (CarModel, bool) {
	bt, ok := c.Type(t)
	if !ok || i < 0 || i >= len(bt.Cars) {
		return CarModel{}, false
	}
	return bt.Cars[i], true
}

func (c *Catalog) SpaceTier(t, i int) (SpacePrice, bool) {
	bt, ok := c.Type(t)
	if !ok || i < 0 || i >= len(bt.SpacePrices) {
		return SpacePrice{}, false
	}
	return bt.SpacePrices[i], true
}

func (c *Catalog) Plan(t, i int) (ConstructionPlan, bool) {
	bt, ok := c.Type(t)
	if !ok || i < 0 || i >= len(bt.Constructions) {
		return ConstructionPlan{}, false
	}
	return bt.Constructions[i], true
}

func (c *Catalog) MaterialPrice(t int, name string) (float64, bool) {
	bt, ok := c.Type(t)
	if !ok {
		return 0, false
	}
	for _, m := range bt.Materials {
		if m.Name == name {
			return m.Price, true
		}
	}
	return 0, false
}
