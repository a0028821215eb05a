package ledger

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/studio-inventory/internal/common"
	"github.com/joseph-ayodele/studio-inventory/internal/entity"
	"github.com/joseph-ayodele/studio-inventory/internal/repository"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := repository.Open(filepath.Join(t.TempDir(), "studio.db"), 5*time.Second, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewService(db, logger)
	svc.now = func() time.Time {
		return time.Date(2025, 8, 26, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

// seedOrder persists an order with its line items the way ingest does:
// order row, line item rows, aggregate merge, hash registration.
func seedOrder(t *testing.T, svc *Service, order *entity.Order, items []*entity.LineItem) {
	t.Helper()
	ctx := context.Background()
	err := repository.WithTx(ctx, svc.db, func(tx *sql.Tx) error {
		if err := svc.orders.Upsert(ctx, tx, order); err != nil {
			return err
		}
		for _, li := range items {
			li.OrderUID = order.OrderUID
			li.FileHash = order.FileHash
			if err := svc.lineItems.Upsert(ctx, tx, li); err != nil {
				return err
			}
		}
		if err := svc.ApplyLineItems(ctx, tx, items, svc.nowUTC()); err != nil {
			return err
		}
		return svc.files.Register(ctx, tx, &entity.IngestedFile{
			FileHash:     order.FileHash,
			FirstSeenUTC: svc.nowUTC(),
			Vendor:       order.Vendor,
			OrderRef:     order.OrderRef,
		})
	})
	require.NoError(t, err)
}

func onHand(t *testing.T, svc *Service, partKey string) decimal.Decimal {
	t.Helper()
	rows, err := svc.List(context.Background(), repository.InventoryFilter{PartKeyLike: partKey})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0].OnHand
}

func TestReceiveValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	err := svc.Receive(ctx, ReceiveRequest{Qty: dec("1")})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	err = svc.Receive(ctx, ReceiveRequest{PartKey: "k", Qty: dec("0")})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	err = svc.Receive(ctx, ReceiveRequest{PartKey: "k", Qty: dec("-3")})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestReceiveCreatesPartAndTracksCost(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cost := dec("2.50")
	require.NoError(t, svc.Receive(ctx, ReceiveRequest{
		PartKey:     "misc:standoffs",
		Vendor:      "misc",
		Description: "M3 standoffs",
		Qty:         dec("20"),
		UnitCost:    &cost,
		Invoice:     "INV-1",
	}))

	rows, err := svc.List(ctx, repository.InventoryFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].OnHand.Equal(dec("20")))
	assert.True(t, rows[0].TotalSpend.Equal(dec("50")))
	require.NotNil(t, rows[0].AvgUnitCost)
	assert.True(t, rows[0].AvgUnitCost.Equal(dec("2.5")))

	// A costless receipt adds units but must not wipe the known cost.
	require.NoError(t, svc.Receive(ctx, ReceiveRequest{PartKey: "misc:standoffs", Qty: dec("5")}))
	rows, err = svc.List(ctx, repository.InventoryFilter{})
	require.NoError(t, err)
	require.NotNil(t, rows[0].AvgUnitCost)
	assert.True(t, rows[0].OnHand.Equal(dec("25")))

	events, err := svc.History(ctx, "misc:standoffs")
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestRemoveValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Remove(ctx, RemoveRequest{PartKey: "k", Qty: dec("0")})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = svc.Remove(ctx, RemoveRequest{PartKey: "nope", Qty: dec("1")})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestRemoveConservation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Receive(ctx, ReceiveRequest{PartKey: "misc:wire", Qty: dec("10")}))

	uid, err := svc.Remove(ctx, RemoveRequest{PartKey: "misc:wire", Qty: dec("3"), Project: "synth-panel"})
	require.NoError(t, err)
	assert.NotEmpty(t, uid)

	assert.True(t, onHand(t, svc, "misc:wire").Equal(dec("7")))

	// Removals may legitimately outrun receipts.
	_, err = svc.Remove(ctx, RemoveRequest{PartKey: "misc:wire", Qty: dec("9")})
	require.NoError(t, err)
	assert.True(t, onHand(t, svc, "misc:wire").Equal(dec("-2")))
}

func testOrder() (*entity.Order, []*entity.LineItem) {
	total1 := dec("9.55")
	total2 := dec("8.22")
	order := &entity.Order{
		OrderUID: "order-1",
		Vendor:   "mcmaster",
		Invoice:  "55152414",
		OrderRef: "55152414",
		FileHash: "hash-1",
	}
	items := []*entity.LineItem{
		{
			LineItemUID:   "li-1",
			Vendor:        "mcmaster",
			Invoice:       "55152414",
			PartKey:       "mcmaster:91290A115",
			SKU:           "91290A115",
			Description:   "Alloy Steel Screw",
			PackQty:       1,
			UnitsReceived: dec("1"),
			LineTotal:     &total1,
		},
		{
			LineItemUID:   "li-2",
			Vendor:        "mcmaster",
			Invoice:       "55152414",
			PartKey:       "mcmaster:9452K177",
			SKU:           "9452K177",
			Description:   "O-Ring",
			PackQty:       10,
			UnitsReceived: dec("10"),
			LineTotal:     &total2,
		},
	}
	return order, items
}

func TestVoidAndUndoVoid(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	order, items := testOrder()
	seedOrder(t, svc, order, items)

	assert.True(t, onHand(t, svc, "mcmaster:91290A115").Equal(dec("1")))
	assert.True(t, onHand(t, svc, "mcmaster:9452K177").Equal(dec("10")))

	voided, err := svc.VoidOrder(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, 2, voided, "one compensating removal per part")

	assert.True(t, onHand(t, svc, "mcmaster:91290A115").IsZero())
	assert.True(t, onHand(t, svc, "mcmaster:9452K177").IsZero())

	got, err := svc.orders.Get(ctx, svc.db, "order-1")
	require.NoError(t, err)
	assert.True(t, got.IsVoided)
	assert.NotEmpty(t, got.VoidedUTC)

	file, err := svc.files.Get(ctx, svc.db, "hash-1")
	require.NoError(t, err)
	assert.True(t, file.IsVoided)

	// Voiding twice would double the reversal.
	_, err = svc.VoidOrder(ctx, "order-1")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	deleted, err := svc.UndoVoid(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	assert.True(t, onHand(t, svc, "mcmaster:91290A115").Equal(dec("1")))
	assert.True(t, onHand(t, svc, "mcmaster:9452K177").Equal(dec("10")))

	got, err = svc.orders.Get(ctx, svc.db, "order-1")
	require.NoError(t, err)
	assert.False(t, got.IsVoided)
	assert.Empty(t, got.VoidedUTC)

	rows, err := svc.removals.ListVoidRows(ctx, svc.db, "order-1")
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = svc.UndoVoid(ctx, "order-1")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestVoidLeavesManualRemovalsAlone(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	order, items := testOrder()
	seedOrder(t, svc, order, items)

	_, err := svc.Remove(ctx, RemoveRequest{PartKey: "mcmaster:9452K177", Qty: dec("2"), Project: "bench"})
	require.NoError(t, err)

	_, err = svc.VoidOrder(ctx, "order-1")
	require.NoError(t, err)
	_, err = svc.UndoVoid(ctx, "order-1")
	require.NoError(t, err)

	// The manual removal survives the void/unvoid cycle.
	assert.True(t, onHand(t, svc, "mcmaster:9452K177").Equal(dec("8")))
}

func TestPurgeOrder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	order, items := testOrder()
	seedOrder(t, svc, order, items)

	require.NoError(t, svc.PurgeOrder(ctx, "order-1"))

	_, err := svc.orders.Get(ctx, svc.db, "order-1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// The hash is released so the PDF can be ingested fresh.
	ok, err := svc.files.Exists(ctx, svc.db, "hash-1")
	require.NoError(t, err)
	assert.False(t, ok)

	rows, err := svc.List(ctx, repository.InventoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPurgeKeepsSharedHash(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	order, items := testOrder()
	seedOrder(t, svc, order, items)

	second := &entity.Order{OrderUID: "order-2", Vendor: "mcmaster", OrderRef: "55152415", FileHash: "hash-1"}
	seedOrder(t, svc, second, nil)

	require.NoError(t, svc.PurgeOrder(ctx, "order-1"))

	ok, err := svc.files.Exists(ctx, svc.db, "hash-1")
	require.NoError(t, err)
	assert.True(t, ok, "hash still referenced by another order")
}

func TestRebuildDeduplicatesAggregates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	order, items := testOrder()
	seedOrder(t, svc, order, items)

	// Rebuild from line items must reproduce the incremental aggregates.
	require.NoError(t, svc.Rebuild(ctx))

	part, err := svc.parts.Get(ctx, svc.db, "mcmaster:9452K177")
	require.NoError(t, err)
	assert.True(t, part.UnitsReceived.Equal(dec("10")))
	assert.True(t, part.TotalSpend.Equal(dec("8.22")))
	require.NotNil(t, part.AvgUnitCost)
	assert.True(t, part.AvgUnitCost.Equal(dec("0.822")))
	assert.Equal(t, "55152414", part.LastInvoice)
}

func TestFindOrder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	order, items := testOrder()
	seedOrder(t, svc, order, items)

	byUID, err := svc.FindOrder(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, "order-1", byUID.OrderUID)

	byRef, err := svc.FindOrder(ctx, "55152414")
	require.NoError(t, err)
	assert.Equal(t, "order-1", byRef.OrderUID)

	_, err = svc.FindOrder(ctx, "nothing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
