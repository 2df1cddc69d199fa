package game

import "github.com/google/uuid"

// Car is a vehicle owned by a taxi or transport business. Its income is
// fixed at purchase; mileage only goes down.
type Car struct {
	ID            string
	Name          string
	Category      string
	Kilometers    float64
	MaxKilometers float64
	IncomePerHour float64
}

func NewCar(name, category string, kilometers, incomePerHour float64) *Car {
	return &Car{
		ID:            uuid.NewString(),
		Name:          name,
		Category:      category,
		Kilometers:    kilometers,
		MaxKilometers: kilometers,
		IncomePerHour: incomePerHour,
	}
}

// Drive applies one tick of wear. Mileage may go below zero.
func (c *Car) Drive() {
	c.Kilometers -= c.MaxKilometers * CarWearPerTick
}

// Fleet is the garage shared by taxi and transport businesses.
// IncomePerHour is a cache; CalculateIncomePerHour always recomputes.
type Fleet struct {
	BaseBusiness
	ActiveCars    []*Car
	MaxSpace      int
	IncomePerHour float64
}

func newFleet(name string, businessType, maxSpace int) Fleet {
	return Fleet{
		BaseBusiness: newBase(name, businessType, ""),
		ActiveCars:   []*Car{},
		MaxSpace:     maxSpace,
	}
}

// AddSpace grows the garage. There is no upper bound.
func (f *Fleet) AddSpace(n int) {
	f.MaxSpace += n
}

func (f *Fleet) HasSpace() bool {
	return len(f.ActiveCars) < f.MaxSpace
}

func (f *Fleet) CalculateIncomePerHour() float64 {
	total := 0.0
	for _, c := range f.ActiveCars {
		total += c.IncomePerHour
	}
	return total
}

func (f *Fleet) drive() {
	for _, c := range f.ActiveCars {
		c.Drive()
	}
}

type TaxiBusiness struct {
	Fleet
}

func NewTaxiBusiness(name string, maxSpace int) *TaxiBusiness {
	return &TaxiBusiness{Fleet: newFleet(name, TypeTaxi, maxSpace)}
}

func (*TaxiBusiness) Kind() Kind {
	return KindTaxi
}

// AddCar appends a car and refreshes the cached hourly income.
func (t *TaxiBusiness) AddCar(name, category string, kilometers, incomePerHour float64) *Car {
	car := NewCar(name, category, kilometers, incomePerHour)
	t.ActiveCars = append(t.ActiveCars, car)
	t.IncomePerHour = t.CalculateIncomePerHour()
	return car
}

type TransportBusiness struct {
	Fleet
}

func NewTransportBusiness(name string, maxSpace int) *TransportBusiness {
	return &TransportBusiness{Fleet: newFleet(name, TypeTransport, maxSpace)}
}

func (*TransportBusiness) Kind() Kind {
	return KindTransport
}

// AddCar appends a car. Unlike taxis the cached IncomePerHour is left as is.
func (t *TransportBusiness) AddCar(name, category string, kilometers, incomePerHour float64) *Car {
	car := NewCar(name, category, kilometers, incomePerHour)
	t.ActiveCars = append(t.ActiveCars, car)
	return car
}
