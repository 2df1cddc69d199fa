package snapshot

import (
	"testing"
	"time"

	"tycoon/internal/catalog"
	"tycoon/internal/game"
	"tycoon/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBusinesses(t *testing.T) []game.Business {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	sub, ok := cat.Subtype(game.TypeShop, 1)
	require.True(t, ok)

	shop := game.NewShopBusiness("Corner Bakery", 1, sub)
	shop.LevelUp()

	factory := game.NewFactoryBusiness("Mill", 0, catalog.Subtype{BaseIncome: 400, IncomeMultiplier: 1.5, LevelUpCost: 9000, LevelUpCostMultiplier: 2, MaxLevel: 5})

	taxi := game.NewTaxiBusiness("Cabs", 3)
	taxi.AddCar("City Hatch", "Economy", 150000, 30)
	taxi.ActiveCars[0].Drive()

	transport := game.NewTransportBusiness("Haulage", 2)
	transport.AddCar("Box Van", "Light", 300000, 150)

	cb := game.NewConstructionBusiness("Builders")
	cb.AddConstruction("Cabin", 30*time.Minute, 6000, 1)
	done := cb.AddConstruction("Cabin", 0, 6000, 1)
	cb.SellConstruction(done.ID)
	cb.AddMaterial(game.MaterialMetal, 5)
	cb.UseMaterial(game.MaterialMetal, 13)
	cb.AddMaterial(game.MaterialWood, 40)

	stub := game.NewBaseBusiness("Mystery", 9, "")

	return []game.Business{shop, factory, taxi, transport, cb, stub}
}

func TestRoundTripPreservesState(t *testing.T) {
	in := sampleBusinesses(t)
	raw, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i], out[i], "business %d", i)
	}
}

func TestEncodeUsesCamelCaseRecords(t *testing.T) {
	taxi := game.NewTaxiBusiness("Cabs", 3)
	taxi.AddCar("City Hatch", "Economy", 150000, 30)
	cb := game.NewConstructionBusiness("Builders")
	cb.AddConstruction("Cabin", 90*time.Second, 6000, 1)

	raw, err := Encode([]game.Business{taxi, cb})
	require.NoError(t, err)
	s := string(raw)
	for _, field := range []string{`"activeCars"`, `"maxSpace":3`, `"incomePerHour":30`, `"maxKilometers":150000`, `"timeLeft":90000`, `"salesMap"`, `"type":4`} {
		assert.Contains(t, s, field)
	}
	assert.NotContains(t, s, `"levelUpCost"`)
}

func TestDecodeDispatchesOnType(t *testing.T) {
	raw := []byte(`[
		{"id":"a","name":"Shop","type":0,"subtype":2,"incomePerHour":320,"incomeMultiplier":1.45,"levelUpCost":6500,"levelUpCostMultiplier":2,"level":1,"maxLevel":8},
		{"id":"b","name":"Cabs","type":1,"activeCars":[{"id":"c1","name":"Old","category":"Economy","kilometers":1000,"incomePerHour":20}],"maxSpace":3},
		{"name":"Future","type":11}
	]`)
	out, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, out, 3)

	shop, ok := out[0].(*game.ShopBusiness)
	require.True(t, ok)
	assert.Equal(t, 2, shop.Subtype)
	assert.Equal(t, 8, shop.MaxLevel)

	taxi, ok := out[1].(*game.TaxiBusiness)
	require.True(t, ok)
	require.Len(t, taxi.ActiveCars, 1)
	assert.Equal(t, 1000.0, taxi.ActiveCars[0].MaxKilometers)
	assert.Equal(t, 20.0, taxi.IncomePerHour)

	assert.Equal(t, game.KindUnknown, out[2].Kind())
	assert.Equal(t, "Future", out[2].Base().Name)
	assert.NotEmpty(t, out[2].Base().ID)
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	for _, raw := range []string{`{"id":"a"}`, `not json`, `null`, `[{"type":"shop"}]`} {
		_, err := Decode([]byte(raw))
		assert.Error(t, err, raw)
	}

	out, err := Decode([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStoreSaveLoad(t *testing.T) {
	kv := storage.NewMemoryKV()
	store := NewStore(kv)

	empty, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, empty)

	in := sampleBusinesses(t)
	require.NoError(t, store.Save(in))

	_, ok, err := kv.Get(KeyBusinesses)
	require.NoError(t, err)
	assert.True(t, ok)

	out, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestStoreLoadCorrupt(t *testing.T) {
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(KeyBusinesses, []byte("{broken")))
	_, err := NewStore(kv).Load()
	require.Error(t, err)
}

func TestEngineRestoresFromStore(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	dir := t.TempDir()
	kv, err := storage.NewFileKV(dir)
	require.NoError(t, err)

	first := game.NewEngine(cat, NewStore(kv), nil)
	first.Load()
	b, err := first.AddBusiness("Cabs", game.TypeTaxi, 0)
	require.NoError(t, err)
	car, _ := cat.Car(game.TypeTaxi, 1)
	require.NoError(t, first.AddCarToBusiness(b.Base().ID, car))

	second := game.NewEngine(cat, NewStore(kv), nil)
	second.Load()
	require.Equal(t, 1, second.Len())
	assert.Equal(t, 55.0, second.CalculateAllIncomePerHour())
}
