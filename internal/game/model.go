package game

import (
	"errors"
	"math"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// TickInterval is the real-time length of one settlement.
	TickInterval = 60 * time.Second

	// MinutesPerHour converts hourly income into one tick's payout.
	MinutesPerHour = 60

	// CarWearPerTick is the fraction of a car's max mileage driven each tick.
	CarWearPerTick = 0.0004

	// ConstructionStep is how much build time one tick removes.
	ConstructionStep = 60 * time.Second
)

const (
	MaterialMetal    = "Metal"
	MaterialWorkers  = "Workers"
	MaterialWood     = "Wood"
	MaterialConcrete = "Concrete"
)

// Materials lists the resource stocks a construction business tracks, in
// catalog order.
var Materials = []string{MaterialMetal, MaterialWorkers, MaterialWood, MaterialConcrete}

var (
	ErrBusinessNotFound        = errors.New("business not found")
	ErrWrongVariant            = errors.New("operation not supported by this business")
	ErrUnknownType             = errors.New("unknown business type")
	ErrUnknownSubtype          = errors.New("unknown business subtype")
	ErrInvalidName             = errors.New("business name must not be empty")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrNoSpace                 = errors.New("no free space for another car")
	ErrMaxLevel                = errors.New("business already at max level")
	ErrUnknownCar              = errors.New("unknown car model")
	ErrUnknownSpaceTier        = errors.New("unknown space upgrade")
	ErrUnknownMaterial         = errors.New("unknown material")
	ErrInvalidQuantity         = errors.New("quantity must be > 0")
	ErrUnknownPlan             = errors.New("unknown construction plan")
	ErrConstructionLocked      = errors.New("construction plan is locked")
	ErrMissingMaterials        = errors.New("missing materials")
	ErrConstructionNotFound    = errors.New("construction not found")
	ErrConstructionNotFinished = errors.New("construction not finished")
)

var (
	hundred = big.NewRat(100, 1)
	oneCent = big.NewInt(1)
)

// Round2 rounds a currency amount to cents, half away from zero, using the
// exact binary value of v: 1.005 is stored just below 1.005 and rounds to 1.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	cents := new(big.Rat).SetFloat64(v)
	cents.Mul(cents, hundred)
	q, r := new(big.Int).QuoRem(cents.Num(), cents.Denom(), new(big.Int))
	r.Abs(r).Lsh(r, 1)
	if r.Cmp(cents.Denom()) >= 0 {
		if cents.Sign() < 0 {
			q.Sub(q, oneCent)
		} else {
			q.Add(q, oneCent)
		}
	}
	return decimal.NewFromBigInt(q, -2).InexactFloat64()
}

func isMaterial(name string) bool {
	for _, m := range Materials {
		if m == name {
			return true
		}
	}
	return false
}
