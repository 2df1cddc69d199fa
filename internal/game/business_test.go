package game

import (
	"testing"
	"time"

	"tycoon/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		businessType int
		want         Kind
	}{
		{TypeShop, KindShop},
		{TypeTaxi, KindTaxi},
		{TypeFactory, KindFactory},
		{TypeTransport, KindTransport},
		{TypeConstruction, KindConstruction},
		{5, KindUnknown},
		{-1, KindUnknown},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, KindOf(tc.businessType), "type %d", tc.businessType)
	}
	assert.Equal(t, "construction", KindConstruction.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestBaseBusinessStub(t *testing.T) {
	b := NewBaseBusiness("Mystery", 42, "")
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, KindUnknown, b.Kind())
	assert.Zero(t, b.CalculateIncomePerHour())

	fixed := NewBaseBusiness("Fixed", 42, "abc")
	assert.Equal(t, "abc", fixed.ID)
}

func TestLevelUpCompoundsAndStopsAtMax(t *testing.T) {
	u := Upgradable{
		IncomePerHour:         100,
		IncomeMultiplier:      1.5,
		LevelUpCost:           50,
		LevelUpCostMultiplier: 2,
		Level:                 1,
		MaxLevel:              2,
	}

	require.True(t, u.LevelUp())
	assert.Equal(t, 2, u.Level)
	assert.Equal(t, 150.0, u.IncomePerHour)
	assert.Equal(t, 100.0, u.LevelUpCost)

	assert.False(t, u.LevelUp())
	assert.Equal(t, 2, u.Level)
	assert.Equal(t, 150.0, u.IncomePerHour)
	assert.Equal(t, 100.0, u.LevelUpCost)
}

func TestLevelUpRoundsEachStep(t *testing.T) {
	u := Upgradable{
		IncomePerHour:         10,
		IncomeMultiplier:      1.333,
		LevelUpCost:           10,
		LevelUpCostMultiplier: 1.1,
		Level:                 1,
		MaxLevel:              3,
	}
	assert.Equal(t, 13.33, u.NextIncome())
	require.True(t, u.LevelUp())
	assert.Equal(t, 13.33, u.IncomePerHour)
	assert.Equal(t, 11.0, u.LevelUpCost)
	require.True(t, u.LevelUp())
	assert.Equal(t, 17.77, u.IncomePerHour)
}

func TestNewShopUsesSubtypeData(t *testing.T) {
	sub := catalog.Subtype{Name: "Kiosk", BaseIncome: 12, IncomeMultiplier: 1.35, LevelUpCost: 250, LevelUpCostMultiplier: 1.8, MaxLevel: 5}
	s := NewShopBusiness("Corner", 0, sub)
	assert.Equal(t, KindShop, s.Kind())
	assert.Equal(t, TypeShop, s.Type)
	assert.Equal(t, 1, s.Level)
	assert.Equal(t, 12.0, s.CalculateIncomePerHour())

	f := NewFactoryBusiness("Mill", 1, catalog.Subtype{BaseIncome: 400})
	assert.Equal(t, KindFactory, f.Kind())
	assert.Equal(t, 1, f.MaxLevel)
	assert.False(t, f.CanLevelUp())
}

func TestFleetIncomeIgnoresMileage(t *testing.T) {
	taxi := NewTaxiBusiness("Cabs", 3)
	car := taxi.AddCar("City Hatch", "Economy", 150000, 30)
	taxi.AddCar("Family Sedan", "Comfort", 200000, 55)
	assert.Equal(t, 85.0, taxi.IncomePerHour)

	for i := 0; i < 10; i++ {
		taxi.drive()
	}
	assert.InDelta(t, 150000-10*60.0, car.Kilometers, 1e-6)
	assert.Equal(t, 150000.0, car.MaxKilometers)
	assert.Equal(t, 85.0, taxi.CalculateIncomePerHour())
}

func TestCarMileageGoesNegative(t *testing.T) {
	car := NewCar("Wreck", "Economy", 1000, 10)
	car.Kilometers = 0.2
	car.Drive()
	assert.InDelta(t, -0.2, car.Kilometers, 1e-9)
}

func TestTransportAddCarKeepsCache(t *testing.T) {
	tr := NewTransportBusiness("Haulage", 2)
	tr.AddCar("Box Van", "Light", 300000, 150)
	assert.Zero(t, tr.IncomePerHour)
	assert.Equal(t, 150.0, tr.CalculateIncomePerHour())
	assert.Equal(t, KindTransport, tr.Kind())
}

func TestFleetSpace(t *testing.T) {
	taxi := NewTaxiBusiness("Cabs", 1)
	assert.True(t, taxi.HasSpace())
	taxi.AddCar("A", "Economy", 10, 1)
	assert.False(t, taxi.HasSpace())
	taxi.AddSpace(2)
	assert.Equal(t, 3, taxi.MaxSpace)
	assert.True(t, taxi.HasSpace())
}

func TestMaterialsMayGoNegative(t *testing.T) {
	cb := NewConstructionBusiness("Builders")
	cb.AddMaterial(MaterialMetal, 5)
	cb.UseMaterial(MaterialMetal, 3)
	assert.Equal(t, 2, cb.MaterialAmount(MaterialMetal))
	cb.UseMaterial(MaterialMetal, 10)
	assert.Equal(t, -8, cb.MaterialAmount(MaterialMetal))

	cb.AddMaterial("Glass", 10)
	assert.Zero(t, cb.MaterialAmount("Glass"))
}

func TestConstructionTimeClampsAtZero(t *testing.T) {
	c := NewConstruction("Cabin", 90*time.Second, 6000, 1)
	c.RemoveTime()
	assert.Equal(t, 30*time.Second, c.TimeLeft)
	assert.False(t, c.Finished())
	c.RemoveTime()
	assert.Equal(t, time.Duration(0), c.TimeLeft)
	assert.True(t, c.Finished())
	c.RemoveTime()
	assert.Equal(t, time.Duration(0), c.TimeLeft)
}

func TestSellConstructionRecordsLevel(t *testing.T) {
	cb := NewConstructionBusiness("Builders")
	done := cb.AddConstruction("Cabin", 0, 6000, 1)
	cb.AddConstruction("House", time.Hour, 25000, 2)

	assert.Equal(t, 6000.0, cb.FinishedProjectsIncome())
	assert.Zero(t, cb.CalculateIncomePerHour())

	sold, ok := cb.SellConstruction(done.ID)
	require.True(t, ok)
	assert.Equal(t, "Cabin", sold.Name)
	assert.Equal(t, 1, cb.SoldCount(1))
	assert.Zero(t, cb.SoldCount(2))
	assert.Len(t, cb.Constructions, 1)
	assert.Zero(t, cb.FinishedProjectsIncome())

	_, ok = cb.SellConstruction("missing")
	assert.False(t, ok)
	assert.Len(t, cb.Constructions, 1)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.67, Round2(100.0/60))
	assert.Equal(t, 0.5, Round2(30.0/60))
	assert.Equal(t, 2.35, Round2(2.345))
	assert.Equal(t, -1.5, Round2(-1.499999))

	// Ties are judged on the stored binary value.
	assert.Equal(t, 1.0, Round2(1.005))
	assert.Equal(t, 2.67, Round2(2.675))
	assert.Equal(t, 8.35, Round2(8.345))
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, -0.13, Round2(-0.125))
	assert.Equal(t, 0.0, Round2(0))
}
