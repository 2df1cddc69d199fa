package game

import (
	"errors"
	"fmt"
	"strings"

	"tycoon/internal/catalog"
)

// MaterialShortfall is how much of one material a construction still needs.
type MaterialShortfall struct {
	Name    string  `json:"name"`
	Missing int     `json:"missing"`
	Cost    float64 `json:"cost"`
}

// MissingMaterialsError lists what blocks a construction from starting.
type MissingMaterialsError struct {
	Missing []MaterialShortfall
}

func (e *MissingMaterialsError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		parts = append(parts, fmt.Sprintf("%s x%d", m.Name, m.Missing))
	}
	return fmt.Sprintf("%s: %s", ErrMissingMaterials, strings.Join(parts, ", "))
}

func (e *MissingMaterialsError) Is(target error) bool {
	return target == ErrMissingMaterials
}

// TotalCost is the price of buying every missing unit.
func (e *MissingMaterialsError) TotalCost() float64 {
	total := 0.0
	for _, m := range e.Missing {
		total += m.Cost
	}
	return Round2(total)
}

// Actions are the player-facing purchases. They check funds and resources,
// then call the Engine, which trusts them to have done so.
type Actions struct {
	engine   *Engine
	wallet   *Wallet
	catalog  *catalog.Catalog
	perClick float64
}

func NewActions(engine *Engine, wallet *Wallet, perClick float64) *Actions {
	return &Actions{
		engine:   engine,
		wallet:   wallet,
		catalog:  engine.Catalog(),
		perClick: perClick,
	}
}

func (a *Actions) Click() (float64, error) {
	return a.wallet.Click(a.perClick)
}

// BusinessCost is the purchase price of a type, or of one of its subtypes for
// shops and factories.
func (a *Actions) BusinessCost(businessType, subtype int) (float64, error) {
	bt, ok := a.catalog.Type(businessType)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownType, businessType)
	}
	if len(bt.Subtypes) > 0 {
		sub, ok := a.catalog.Subtype(businessType, subtype)
		if !ok {
			return 0, fmt.Errorf("%w: type %d subtype %d", ErrUnknownSubtype, businessType, subtype)
		}
		return sub.Cost, nil
	}
	return bt.Cost, nil
}

func (a *Actions) BuyBusiness(name string, businessType, subtype int) (Business, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	cost, err := a.BusinessCost(businessType, subtype)
	if err != nil {
		return nil, err
	}
	if err := a.charge(cost); err != nil {
		return nil, err
	}
	b, err := a.engine.AddBusiness(name, businessType, subtype)
	if err != nil && b == nil {
		a.refund(cost)
		return nil, err
	}
	return b, err
}

// charge debits amount. A failed balance write is logged rather than
// returned: the debit already stands in memory, so the purchase goes ahead.
func (a *Actions) charge(amount float64) error {
	_, err := a.wallet.Spend(amount)
	if errors.Is(err, errBalanceWrite) {
		a.engine.log.Error("balance write failed after debit", "amount", amount, "err", err)
		return nil
	}
	return err
}

func (a *Actions) refund(amount float64) {
	if amount <= 0 {
		return
	}
	if _, err := a.wallet.Credit(amount); err != nil {
		a.engine.log.Error("refund failed", "amount", amount, "err", err)
	}
}

func (a *Actions) Rename(id, name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	return a.engine.ChangeBusinessName(id, name)
}

// LevelUp charges the current level-up cost and raises the level. The check,
// the charge and the level change happen under one engine lock, so concurrent
// calls never pay for a level that is not granted.
func (a *Actions) LevelUp(id string) error {
	return a.engine.mutate(id, func(b Business) error {
		u, ok := upgradableOf(b)
		if !ok {
			return ErrWrongVariant
		}
		if !u.CanLevelUp() {
			return ErrMaxLevel
		}
		if err := a.charge(u.LevelUpCost); err != nil {
			return err
		}
		u.LevelUp()
		return nil
	})
}

// BuyCar buys catalog car carIndex for a taxi or transport company with free
// space.
func (a *Actions) BuyCar(id string, carIndex int) error {
	return a.engine.mutate(id, func(b Business) error {
		f, ok := fleetOf(b)
		if !ok {
			return ErrWrongVariant
		}
		car, ok := a.catalog.Car(b.Base().Type, carIndex)
		if !ok {
			return ErrUnknownCar
		}
		if !f.HasSpace() {
			return ErrNoSpace
		}
		if err := a.charge(car.Price); err != nil {
			return err
		}
		return addCar(b, car)
	})
}

func (a *Actions) BuySpace(id string, tier int) error {
	return a.engine.mutate(id, func(b Business) error {
		f, ok := fleetOf(b)
		if !ok {
			return ErrWrongVariant
		}
		sp, ok := a.catalog.SpaceTier(b.Base().Type, tier)
		if !ok {
			return ErrUnknownSpaceTier
		}
		if err := a.charge(sp.Price); err != nil {
			return err
		}
		f.AddSpace(sp.AddedSpace)
		return nil
	})
}

func (a *Actions) BuyMaterial(id, material string, quantity int) error {
	return a.engine.withConstruction(id, func(cb *ConstructionBusiness) error {
		if quantity <= 0 {
			return ErrInvalidQuantity
		}
		price, ok := a.catalog.MaterialPrice(cb.Type, material)
		if !ok || !isMaterial(material) {
			return fmt.Errorf("%w: %s", ErrUnknownMaterial, material)
		}
		if err := a.charge(Round2(float64(quantity) * price)); err != nil {
			return err
		}
		cb.AddMaterial(material, quantity)
		return nil
	})
}

// Shortfall reports the materials a plan needs beyond current stock.
func (a *Actions) Shortfall(id string, plan catalog.ConstructionPlan) ([]MaterialShortfall, error) {
	var missing []MaterialShortfall
	err := a.engine.inspect(id, func(b Business) error {
		cb, ok := b.(*ConstructionBusiness)
		if !ok {
			return ErrWrongVariant
		}
		missing = a.shortfall(cb, plan)
		return nil
	})
	return missing, err
}

func (a *Actions) shortfall(cb *ConstructionBusiness, plan catalog.ConstructionPlan) []MaterialShortfall {
	var missing []MaterialShortfall
	for _, m := range plan.Materials {
		short := m.Amount - cb.MaterialAmount(m.Name)
		if short <= 0 {
			continue
		}
		price, _ := a.catalog.MaterialPrice(cb.Type, m.Name)
		missing = append(missing, MaterialShortfall{
			Name:    m.Name,
			Missing: short,
			Cost:    Round2(float64(short) * price),
		})
	}
	return missing
}

// StartConstruction begins plan planIndex. The plan must be unlocked by
// enough sales of the previous level. With buyMissing the shortfall is
// bought first; otherwise a *MissingMaterialsError is returned. Stock is
// checked and consumed under one engine lock, so it never goes negative here.
func (a *Actions) StartConstruction(id string, planIndex int, buyMissing bool) error {
	return a.engine.withConstruction(id, func(cb *ConstructionBusiness) error {
		plan, ok := a.catalog.Plan(cb.Type, planIndex)
		if !ok {
			return ErrUnknownPlan
		}
		if sold := cb.SoldCount(plan.Level - 1); sold < plan.Previous {
			return fmt.Errorf("%w: sell %d level %d projects first (sold %d)", ErrConstructionLocked, plan.Previous, plan.Level-1, sold)
		}

		if missing := a.shortfall(cb, plan); len(missing) > 0 {
			short := &MissingMaterialsError{Missing: missing}
			if !buyMissing {
				return short
			}
			if err := a.charge(short.TotalCost()); err != nil {
				return err
			}
			for _, m := range missing {
				cb.AddMaterial(m.Name, m.Missing)
			}
		}

		for _, m := range plan.Materials {
			cb.UseMaterial(m.Name, m.Amount)
		}
		addPlan(cb, plan)
		return nil
	})
}

// SellConstruction sells a finished construction and credits its price.
func (a *Actions) SellConstruction(id, constructionID string) (float64, error) {
	var balance float64
	err := a.engine.withConstruction(id, func(cb *ConstructionBusiness) error {
		_, c := cb.findConstruction(constructionID)
		if c == nil {
			return ErrConstructionNotFound
		}
		if !c.Finished() {
			return ErrConstructionNotFinished
		}
		cb.SellConstruction(constructionID)
		var err error
		balance, err = a.wallet.Credit(c.Price)
		if errors.Is(err, errBalanceWrite) {
			a.engine.log.Error("balance write failed after sale", "amount", c.Price, "err", err)
			return nil
		}
		return err
	})
	return balance, err
}
