package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/studio-inventory/internal/common"
	"github.com/joseph-ayodele/studio-inventory/internal/entity"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestOrderRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestDB(t)
	repo := NewOrderRepository(testLogger())

	o := &entity.Order{
		OrderUID:          "uid-1",
		Vendor:            "mcmaster",
		Invoice:           "55152414",
		OrderRef:          "55152414",
		OrderDate:         "2025-08-25",
		PaymentInstrument: "Amex ****2008",
		Merchandise:       decPtr("17.77"),
		Total:             decPtr("24.19"),
		FileHash:          "hash-a",
		UpdatedUTC:        "2025-08-26T00:00:00Z",
	}
	require.NoError(t, repo.Upsert(ctx, db, o))

	got, err := repo.Get(ctx, db, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "mcmaster", got.Vendor)
	assert.Equal(t, "55152414", got.Invoice)
	require.NotNil(t, got.Merchandise)
	assert.True(t, got.Merchandise.Equal(dec("17.77")))
	assert.Nil(t, got.Shipping, "absent money stays nil through the database")
	assert.False(t, got.IsVoided)

	byRef, err := repo.FindByRef(ctx, db, "mcmaster", "55152414")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", byRef.OrderUID)

	_, err = repo.Get(ctx, db, "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestOrderUpsertPreservesVoidFlag(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestDB(t)
	repo := NewOrderRepository(testLogger())

	o := &entity.Order{OrderUID: "uid-1", Vendor: "digikey", OrderRef: "123", FileHash: "h"}
	require.NoError(t, repo.Upsert(ctx, db, o))
	require.NoError(t, repo.SetVoided(ctx, db, "uid-1", true, "2025-08-26T00:00:00Z"))

	// Re-ingesting the same order must not silently un-void it.
	require.NoError(t, repo.Upsert(ctx, db, o))
	got, err := repo.Get(ctx, db, "uid-1")
	require.NoError(t, err)
	assert.True(t, got.IsVoided)
	assert.Equal(t, "2025-08-26T00:00:00Z", got.VoidedUTC)

	assert.ErrorIs(t, repo.SetVoided(ctx, db, "missing", true, "x"), common.ErrNotFound)
}

func TestOrderCountByFileHash(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestDB(t)
	repo := NewOrderRepository(testLogger())

	require.NoError(t, repo.Upsert(ctx, db, &entity.Order{OrderUID: "a", Vendor: "v", FileHash: "shared"}))
	require.NoError(t, repo.Upsert(ctx, db, &entity.Order{OrderUID: "b", Vendor: "v", FileHash: "shared"}))

	n, err := repo.CountByFileHash(ctx, db, "shared")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, repo.Delete(ctx, db, "a"))
	n, err = repo.CountByFileHash(ctx, db, "shared")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIngestedFileRegistry(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestDB(t)
	repo := NewIngestedFileRepository(testLogger())

	f := &entity.IngestedFile{
		FileHash:     "h1",
		FirstSeenUTC: "2025-08-25T00:00:00Z",
		OriginalPath: "/in/receipt.pdf",
		Vendor:       "mcmaster",
		OrderRef:     "55152414",
	}
	require.NoError(t, repo.Register(ctx, db, f))
	// Duplicate registration is a no-op, not an error.
	require.NoError(t, repo.Register(ctx, db, f))

	ok, err := repo.Exists(ctx, db, "h1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, db, "h2")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetVoided(ctx, db, "h1", true))
	got, err := repo.Get(ctx, db, "h1")
	require.NoError(t, err)
	assert.True(t, got.IsVoided)

	require.NoError(t, repo.Delete(ctx, db, "h1"))
	ok, err = repo.Exists(ctx, db, "h1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInventoryRefreshAndList(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestDB(t)
	parts := NewPartRepository(testLogger())
	removals := NewRemovalRepository(testLogger())
	inv := NewInventoryRepository(testLogger())

	avg := dec("9.55")
	require.NoError(t, parts.Upsert(ctx, db, &entity.PartReceived{
		PartKey:       "mcmaster:91290A115",
		Vendor:        "mcmaster",
		SKU:           "91290A115",
		Description:   "Alloy Steel Screw",
		UnitsReceived: dec("10"),
		TotalSpend:    dec("95.50"),
		AvgUnitCost:   &avg,
		LastInvoice:   "55152414",
	}))
	require.NoError(t, parts.Upsert(ctx, db, &entity.PartReceived{
		PartKey:       "digikey:296-1234-ND",
		Vendor:        "digikey",
		SKU:           "296-1234-ND",
		UnitsReceived: dec("4"),
		TotalSpend:    dec("2.10"),
	}))
	require.NoError(t, removals.Insert(ctx, db, &entity.RemovalEvent{
		RemovalUID: "r1",
		PartKey:    "digikey:296-1234-ND",
		QtyRemoved: dec("4"),
		Project:    "synth-panel",
	}))

	require.NoError(t, inv.Refresh(ctx, db, "2025-08-26T00:00:00Z"))

	rows, err := inv.List(ctx, db, InventoryFilter{SortBy: "part_key"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	screws := rows[1]
	assert.Equal(t, "mcmaster:91290A115", screws.PartKey)
	assert.True(t, screws.OnHand.Equal(dec("10")))
	assert.True(t, screws.UnitsRemoved.IsZero())

	chips := rows[0]
	assert.Equal(t, "digikey:296-1234-ND", chips.PartKey)
	assert.True(t, chips.OnHand.IsZero())
	assert.True(t, chips.UnitsRemoved.Equal(dec("4")))

	inStock, err := inv.List(ctx, db, InventoryFilter{OnlyInStock: true})
	require.NoError(t, err)
	require.Len(t, inStock, 1)
	assert.Equal(t, "mcmaster:91290A115", inStock[0].PartKey)

	byVendor, err := inv.List(ctx, db, InventoryFilter{Vendor: "digikey"})
	require.NoError(t, err)
	require.Len(t, byVendor, 1)

	matched, err := inv.List(ctx, db, InventoryFilter{PartKeyLike: "91290"})
	require.NoError(t, err)
	require.Len(t, matched, 1)

	_, err = inv.List(ctx, db, InventoryFilter{SortBy: "drop table"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestRemovalVoidRows(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestDB(t)
	repo := NewRemovalRepository(testLogger())

	require.NoError(t, repo.Insert(ctx, db, &entity.RemovalEvent{
		RemovalUID: "r1", PartKey: "k", QtyRemoved: dec("2"),
		Reason: "order_void", OrderUID: "o1", Project: "order_void",
	}))
	require.NoError(t, repo.Insert(ctx, db, &entity.RemovalEvent{
		RemovalUID: "r2", PartKey: "k", QtyRemoved: dec("1"), Project: "bench",
	}))

	void, err := repo.ListVoidRows(ctx, db, "o1")
	require.NoError(t, err)
	require.Len(t, void, 1)
	assert.Equal(t, "r1", void[0].RemovalUID)

	n, err := repo.DeleteVoidRows(ctx, db, "o1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := repo.ListByPart(ctx, db, "k")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "r2", all[0].RemovalUID)
}
