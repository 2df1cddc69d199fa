package game

import "tycoon/internal/catalog"

// Upgradable is the level-based economy shared by shops and factories.
// Income and upgrade cost only change through LevelUp.
type Upgradable struct {
	BaseBusiness
	Subtype               int
	IncomePerHour         float64
	IncomeMultiplier      float64
	LevelUpCost           float64
	LevelUpCostMultiplier float64
	Level                 int
	MaxLevel              int
}

func newUpgradable(name string, businessType, subtype int, sub catalog.Subtype) Upgradable {
	maxLevel := sub.MaxLevel
	if maxLevel < 1 {
		maxLevel = 1
	}
	return Upgradable{
		BaseBusiness:          newBase(name, businessType, ""),
		Subtype:               subtype,
		IncomePerHour:         sub.BaseIncome,
		IncomeMultiplier:      sub.IncomeMultiplier,
		LevelUpCost:           sub.LevelUpCost,
		LevelUpCostMultiplier: sub.LevelUpCostMultiplier,
		Level:                 1,
		MaxLevel:              maxLevel,
	}
}

func (u *Upgradable) CanLevelUp() bool {
	return u.Level < u.MaxLevel
}

// LevelUp raises the level by one and compounds income and cost, rounding to
// cents at every step. It reports false at max level and changes nothing.
func (u *Upgradable) LevelUp() bool {
	if !u.CanLevelUp() {
		return false
	}
	u.Level++
	u.IncomePerHour = Round2(u.IncomePerHour * u.IncomeMultiplier)
	u.LevelUpCost = Round2(u.LevelUpCost * u.LevelUpCostMultiplier)
	return true
}

// NextIncome is the hourly income after one more level.
func (u *Upgradable) NextIncome() float64 {
	return Round2(u.IncomePerHour * u.IncomeMultiplier)
}

func (u *Upgradable) CalculateIncomePerHour() float64 {
	return u.IncomePerHour
}

type ShopBusiness struct {
	Upgradable
}

func NewShopBusiness(name string, subtype int, sub catalog.Subtype) *ShopBusiness {
	return &ShopBusiness{Upgradable: newUpgradable(name, TypeShop, subtype, sub)}
}

func (*ShopBusiness) Kind() Kind {
	return KindShop
}

type FactoryBusiness struct {
	Upgradable
}

func NewFactoryBusiness(name string, subtype int, sub catalog.Subtype) *FactoryBusiness {
	return &FactoryBusiness{Upgradable: newUpgradable(name, TypeFactory, subtype, sub)}
}

func (*FactoryBusiness) Kind() Kind {
	return KindFactory
}
