package game

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"tycoon/internal/catalog"
)

// Snapshotter persists and restores the full business collection.
type Snapshotter interface {
	Save(businesses []Business) error
	Load() ([]Business, error)
}

// Engine owns the business collection. Every successful mutation is followed
// by one full-collection snapshot write.
type Engine struct {
	mu         sync.Mutex
	catalog    *catalog.Catalog
	store      Snapshotter
	log        *slog.Logger
	businesses []Business
}

func NewEngine(cat *catalog.Catalog, store Snapshotter, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		catalog:    cat,
		store:      store,
		log:        logger,
		businesses: []Business{},
	}
}

// Load replaces the collection with the stored snapshot. A snapshot that
// cannot be decoded is logged and leaves the collection empty.
func (e *Engine) Load() {
	e.mu.Lock()
	defer e.mu.Unlock()

	loaded, err := e.store.Load()
	if err != nil {
		e.log.Error("business snapshot unreadable, starting empty", "err", err)
		e.businesses = []Business{}
		return
	}
	if loaded == nil {
		loaded = []Business{}
	}
	e.businesses = loaded
	e.log.Info("business snapshot loaded", "businesses", len(loaded))
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

func (e *Engine) persistLocked() error {
	if err := e.store.Save(e.businesses); err != nil {
		e.log.Error("persist businesses failed", "err", err)
		return fmt.Errorf("persist businesses: %w", err)
	}
	return nil
}

func (e *Engine) findLocked(id string) (int, Business) {
	for i, b := range e.businesses {
		if b.Base().ID == id {
			return i, b
		}
	}
	return -1, nil
}

func upgradableOf(b Business) (*Upgradable, bool) {
	switch v := b.(type) {
	case *ShopBusiness:
		return &v.Upgradable, true
	case *FactoryBusiness:
		return &v.Upgradable, true
	default:
		return nil, false
	}
}

func fleetOf(b Business) (*Fleet, bool) {
	switch v := b.(type) {
	case *TaxiBusiness:
		return &v.Fleet, true
	case *TransportBusiness:
		return &v.Fleet, true
	default:
		return nil, false
	}
}

// AddBusiness builds the variant for businessType from catalog data and
// appends it. subtype is only read for shops and factories.
func (e *Engine) AddBusiness(name string, businessType, subtype int) (Business, error) {
	b, err := e.build(name, businessType, subtype)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.businesses = append(e.businesses, b)
	return b, e.persistLocked()
}

func (e *Engine) build(name string, businessType, subtype int) (Business, error) {
	bt, ok := e.catalog.Type(businessType)
	kind := KindOf(businessType)
	if !ok && kind != KindUnknown {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, businessType)
	}

	switch kind {
	case KindShop, KindFactory:
		sub, ok := e.catalog.Subtype(businessType, subtype)
		if !ok {
			return nil, fmt.Errorf("%w: type %d subtype %d", ErrUnknownSubtype, businessType, subtype)
		}
		if kind == KindShop {
			return NewShopBusiness(name, subtype, sub), nil
		}
		return NewFactoryBusiness(name, subtype, sub), nil
	case KindTaxi:
		return NewTaxiBusiness(name, bt.MaxBaseSpace), nil
	case KindTransport:
		return NewTransportBusiness(name, bt.MaxBaseSpace), nil
	case KindConstruction:
		return NewConstructionBusiness(name), nil
	default:
		return NewBaseBusiness(name, businessType, ""), nil
	}
}

// mutate runs fn against the business with the given id under the engine lock
// and persists if fn succeeds.
func (e *Engine) mutate(id string, fn func(Business) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, b := e.findLocked(id)
	if b == nil {
		return ErrBusinessNotFound
	}
	if err := fn(b); err != nil {
		return err
	}
	return e.persistLocked()
}

// inspect runs fn against the business with the given id under the engine
// lock without writing the snapshot.
func (e *Engine) inspect(id string, fn func(Business) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, b := e.findLocked(id)
	if b == nil {
		return ErrBusinessNotFound
	}
	return fn(b)
}

// ChangeBusinessName renames in place. Names need not be unique.
func (e *Engine) ChangeBusinessName(id, newName string) error {
	return e.mutate(id, func(b Business) error {
		b.Base().SetName(newName)
		return nil
	})
}

// UpdateBusinessLevel levels a shop or factory. At max level nothing changes,
// though the snapshot is still written.
func (e *Engine) UpdateBusinessLevel(id string) error {
	return e.mutate(id, func(b Business) error {
		u, ok := upgradableOf(b)
		if !ok {
			return ErrWrongVariant
		}
		u.LevelUp()
		return nil
	})
}

func (e *Engine) AddCarToBusiness(id string, car catalog.CarModel) error {
	return e.mutate(id, func(b Business) error {
		return addCar(b, car)
	})
}

func addCar(b Business, car catalog.CarModel) error {
	switch v := b.(type) {
	case *TaxiBusiness:
		v.AddCar(car.Name, car.Category, car.Kilometers, car.IncomePerHour)
	case *TransportBusiness:
		v.AddCar(car.Name, car.Category, car.Kilometers, car.IncomePerHour)
	default:
		return ErrWrongVariant
	}
	return nil
}

func (e *Engine) AddMoreSpace(id string, n int) error {
	return e.mutate(id, func(b Business) error {
		f, ok := fleetOf(b)
		if !ok {
			return ErrWrongVariant
		}
		f.AddSpace(n)
		return nil
	})
}

func (e *Engine) withConstruction(id string, fn func(*ConstructionBusiness) error) error {
	return e.mutate(id, func(b Business) error {
		cb, ok := b.(*ConstructionBusiness)
		if !ok {
			return ErrWrongVariant
		}
		return fn(cb)
	})
}

func (e *Engine) AddConstructionToBusiness(id string, plan catalog.ConstructionPlan) error {
	return e.withConstruction(id, func(cb *ConstructionBusiness) error {
		addPlan(cb, plan)
		return nil
	})
}

func addPlan(cb *ConstructionBusiness, plan catalog.ConstructionPlan) {
	cb.AddConstruction(plan.Name, time.Duration(plan.Time)*time.Millisecond, plan.Price, plan.Level)
}

func (e *Engine) AddMaterial(id, material string, quantity int) error {
	return e.withConstruction(id, func(cb *ConstructionBusiness) error {
		cb.AddMaterial(material, quantity)
		return nil
	})
}

func (e *Engine) SpendMaterial(id, material string, quantity int) error {
	return e.withConstruction(id, func(cb *ConstructionBusiness) error {
		cb.UseMaterial(material, quantity)
		return nil
	})
}

// SellConstruction removes a construction and returns it so the caller can
// pay out its price.
func (e *Engine) SellConstruction(id, constructionID string) (Construction, error) {
	var sold Construction
	err := e.withConstruction(id, func(cb *ConstructionBusiness) error {
		c, ok := cb.SellConstruction(constructionID)
		if !ok {
			return ErrConstructionNotFound
		}
		sold = c
		return nil
	})
	return sold, err
}

func (e *Engine) DeleteBusiness(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, b := e.findLocked(id)
	if b == nil {
		return ErrBusinessNotFound
	}
	e.businesses = append(e.businesses[:i:i], e.businesses[i+1:]...)
	return e.persistLocked()
}

// RemoveKilometersAndTime wears every car and advances every construction by
// one tick, then writes the snapshot once.
func (e *Engine) RemoveKilometersAndTime() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, b := range e.businesses {
		switch v := b.(type) {
		case *TaxiBusiness:
			v.drive()
		case *TransportBusiness:
			v.drive()
		case *ConstructionBusiness:
			v.removeTime()
		}
	}
	return e.persistLocked()
}

func (e *Engine) CalculateAllIncomePerHour() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.allIncomeLocked()
}

func (e *Engine) allIncomeLocked() float64 {
	total := 0.0
	for _, b := range e.businesses {
		total += b.CalculateIncomePerHour()
	}
	return Round2(total)
}

// GetBestBusiness returns the highest-earning business, the first one on
// ties. ok is false for an empty collection.
func (e *Engine) GetBestBusiness() (best Business, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, b := range e.businesses {
		if best == nil || b.CalculateIncomePerHour() > best.CalculateIncomePerHour() {
			best = b
		}
	}
	return best, best != nil
}

// GetMaterialAmount reads a construction business's stock. Unknown material
// names read as zero.
func (e *Engine) GetMaterialAmount(id, material string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, b := e.findLocked(id)
	if b == nil {
		return 0, ErrBusinessNotFound
	}
	cb, ok := b.(*ConstructionBusiness)
	if !ok {
		return 0, ErrWrongVariant
	}
	return cb.MaterialAmount(material), nil
}

func (e *Engine) SoldCount(id string, level int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, b := e.findLocked(id)
	if b == nil {
		return 0, ErrBusinessNotFound
	}
	cb, ok := b.(*ConstructionBusiness)
	if !ok {
		return 0, ErrWrongVariant
	}
	return cb.SoldCount(level), nil
}

func (e *Engine) FinishedProjectsIncome(id string) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, b := e.findLocked(id)
	if b == nil {
		return 0, ErrBusinessNotFound
	}
	cb, ok := b.(*ConstructionBusiness)
	if !ok {
		return 0, ErrWrongVariant
	}
	return cb.FinishedProjectsIncome(), nil
}

// Lookup returns the live business handle. Callers must not mutate it;
// mutations go through the Engine.
func (e *Engine) Lookup(id string) (Business, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, b := e.findLocked(id)
	return b, b != nil
}

// Businesses returns the collection in insertion order.
func (e *Engine) Businesses() []Business {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Business, len(e.businesses))
	copy(out, e.businesses)
	return out
}

func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.businesses)
}

// Views renders every business while holding the lock, so the result is safe
// to hand to other goroutines.
func (e *Engine) Views() []BusinessView {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]BusinessView, 0, len(e.businesses))
	for _, b := range e.businesses {
		out = append(out, e.viewLocked(b))
	}
	return out
}

func (e *Engine) View(id string) (BusinessView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, b := e.findLocked(id)
	if b == nil {
		return BusinessView{}, ErrBusinessNotFound
	}
	return e.viewLocked(b), nil
}

func (e *Engine) viewLocked(b Business) BusinessView {
	return newBusinessView(b, e.catalog)
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}
