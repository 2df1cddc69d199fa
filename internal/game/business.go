package game

import "github.com/google/uuid"

// Catalog type indices. The business variant is fixed by the index.
const (
	TypeShop = iota
	TypeTaxi
	TypeFactory
	TypeTransport
	TypeConstruction
)

type Kind int

const (
	KindUnknown Kind = iota
	KindShop
	KindTaxi
	KindFactory
	KindTransport
	KindConstruction
)

// KindOf maps a catalog type index to its business variant.
func KindOf(businessType int) Kind {
	switch businessType {
	case TypeShop:
		return KindShop
	case TypeTaxi:
		return KindTaxi
	case TypeFactory:
		return KindFactory
	case TypeTransport:
		return KindTransport
	case TypeConstruction:
		return KindConstruction
	default:
		return KindUnknown
	}
}

func (k Kind) String() string {
	switch k {
	case KindShop:
		return "shop"
	case KindTaxi:
		return "taxi"
	case KindFactory:
		return "factory"
	case KindTransport:
		return "transport"
	case KindConstruction:
		return "construction"
	default:
		return "unknown"
	}
}

// Business is the closed set of business variants. Only types in this
// package implement it.
type Business interface {
	Base() *BaseBusiness
	Kind() Kind
	CalculateIncomePerHour() float64
}

// BaseBusiness carries the fields every variant shares. On its own it is the
// inert stub used for type indices the game does not know.
type BaseBusiness struct {
	ID   string
	Name string
	Type int
}

func newBase(name string, businessType int, id string) BaseBusiness {
	if id == "" {
		id = uuid.NewString()
	}
	return BaseBusiness{ID: id, Name: name, Type: businessType}
}

// NewBaseBusiness builds the stub variant. An empty id gets a fresh one.
func NewBaseBusiness(name string, businessType int, id string) *BaseBusiness {
	b := newBase(name, businessType, id)
	return &b
}

func (b *BaseBusiness) Base() *BaseBusiness {
	return b
}

func (b *BaseBusiness) Kind() Kind {
	return KindUnknown
}

func (b *BaseBusiness) SetName(name string) {
	b.Name = name
}

func (b *BaseBusiness) CalculateIncomePerHour() float64 {
	return 0
}
