// Package ledger owns the inventory ledger semantics: receipts accumulate,
// removals append, voiding an order reverses it with compensating removals,
// and purging erases it followed by a full rebuild. Every operation is one
// transaction and leaves the snapshot refreshed.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/studio-inventory/constants"
	"github.com/joseph-ayodele/studio-inventory/internal/common"
	"github.com/joseph-ayodele/studio-inventory/internal/entity"
	"github.com/joseph-ayodele/studio-inventory/internal/repository"
)

type Service struct {
	db        *sql.DB
	logger    *slog.Logger
	orders    repository.OrderRepository
	lineItems repository.LineItemRepository
	parts     repository.PartRepository
	removals  repository.RemovalRepository
	files     repository.IngestedFileRepository
	inventory repository.InventoryRepository
	events    repository.EventRepository

	now func() time.Time
}

func NewService(db *sql.DB, logger *slog.Logger) *Service {
	return &Service{
		db:        db,
		logger:    logger,
		orders:    repository.NewOrderRepository(logger),
		lineItems: repository.NewLineItemRepository(logger),
		parts:     repository.NewPartRepository(logger),
		removals:  repository.NewRemovalRepository(logger),
		files:     repository.NewIngestedFileRepository(logger),
		inventory: repository.NewInventoryRepository(logger),
		events:    repository.NewEventRepository(logger),
		now:       time.Now,
	}
}

func (s *Service) nowUTC() string {
	return s.now().UTC().Format("2006-01-02T15:04:05Z")
}

// ReceiveRequest is a manual stock receipt outside any order, e.g. found
// stock or donations.
type ReceiveRequest struct {
	PartKey     string
	Vendor      string
	SKU         string
	Description string
	Qty         decimal.Decimal
	UnitCost    *decimal.Decimal
	Invoice     string
	Note        string
}

// Receive adds stock to a part, creating the part row when new. The average
// unit cost only moves when the receipt carries a cost.
func (s *Service) Receive(ctx context.Context, req ReceiveRequest) error {
	if req.PartKey == "" {
		return common.InvalidInputf("part_key is required")
	}
	if !req.Qty.IsPositive() {
		return common.InvalidInputf("receive qty must be > 0, got %s", req.Qty)
	}
	now := s.nowUTC()

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		part, err := s.parts.Get(ctx, tx, req.PartKey)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		if part == nil {
			part = &entity.PartReceived{
				PartKey:     req.PartKey,
				Vendor:      req.Vendor,
				SKU:         req.SKU,
				Description: req.Description,
				DescClean:   req.Description,
			}
		}

		part.UnitsReceived = part.UnitsReceived.Add(req.Qty)
		if req.UnitCost != nil {
			part.TotalSpend = part.TotalSpend.Add(req.UnitCost.Mul(req.Qty))
		}
		if req.Invoice != "" && req.Invoice > part.LastInvoice {
			part.LastInvoice = req.Invoice
		}
		recomputeAvgCost(part)
		part.UpdatedUTC = now

		if err := s.parts.Upsert(ctx, tx, part); err != nil {
			return err
		}
		qty := req.Qty
		if err := s.events.Append(ctx, tx, &repository.Event{
			EventType: constants.EventReceive,
			PartKey:   req.PartKey,
			Qty:       &qty,
			Detail:    req.Note,
			TsUTC:     now,
		}); err != nil {
			return err
		}
		return s.inventory.Refresh(ctx, tx, now)
	})
	if err != nil {
		return err
	}
	s.logger.Info("ledger.receive.ok", "part_key", req.PartKey, "qty", req.Qty)
	return nil
}

// RemoveRequest records stock leaving the studio.
type RemoveRequest struct {
	PartKey string
	Qty     decimal.Decimal
	Project string
	Note    string
}

// Remove appends a removal event. The part must already exist; on-hand may
// legitimately go negative when removals outrun recorded receipts.
func (s *Service) Remove(ctx context.Context, req RemoveRequest) (string, error) {
	if req.PartKey == "" {
		return "", common.InvalidInputf("part_key is required")
	}
	if !req.Qty.IsPositive() {
		return "", common.InvalidInputf("remove qty must be > 0, got %s", req.Qty)
	}
	now := s.nowUTC()
	removalUID := uuid.NewString()

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		exists, err := s.parts.Exists(ctx, tx, req.PartKey)
		if err != nil {
			return err
		}
		if !exists {
			return common.InvalidInputf("unknown part_key %q", req.PartKey)
		}
		if err := s.removals.Insert(ctx, tx, &entity.RemovalEvent{
			RemovalUID: removalUID,
			PartKey:    req.PartKey,
			QtyRemoved: req.Qty,
			TsUTC:      now,
			Project:    req.Project,
			Note:       req.Note,
			UpdatedUTC: now,
		}); err != nil {
			return err
		}
		qty := req.Qty
		if err := s.events.Append(ctx, tx, &repository.Event{
			EventType: constants.EventRemove,
			PartKey:   req.PartKey,
			Qty:       &qty,
			Detail:    req.Project,
			TsUTC:     now,
		}); err != nil {
			return err
		}
		return s.inventory.Refresh(ctx, tx, now)
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("ledger.remove.ok", "part_key", req.PartKey, "qty", req.Qty, "removal_uid", removalUID)
	return removalUID, nil
}

// VoidOrder reverses an ingested order without erasing it: one compensating
// removal per part for the units the order received, tagged with the order
// so UndoVoid can find them. Returns the number of removals written.
// Voiding a voided order is rejected.
func (s *Service) VoidOrder(ctx context.Context, orderUID string) (int, error) {
	now := s.nowUTC()
	var removed int

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		order, err := s.orders.Get(ctx, tx, orderUID)
		if err != nil {
			return err
		}
		if order.IsVoided {
			return common.InvalidInputf("order %s is already voided", orderUID)
		}

		items, err := s.lineItems.ListByOrder(ctx, tx, orderUID)
		if err != nil {
			return err
		}
		perPart := map[string]decimal.Decimal{}
		var keys []string
		for _, li := range items {
			if li.PartKey == "" || !li.UnitsReceived.IsPositive() {
				continue
			}
			if _, ok := perPart[li.PartKey]; !ok {
				keys = append(keys, li.PartKey)
			}
			perPart[li.PartKey] = perPart[li.PartKey].Add(li.UnitsReceived)
		}

		for _, pk := range keys {
			qty := perPart[pk]
			if err := s.removals.Insert(ctx, tx, &entity.RemovalEvent{
				RemovalUID: uuid.NewString(),
				PartKey:    pk,
				QtyRemoved: qty,
				TsUTC:      now,
				Project:    constants.ReasonOrderVoid,
				Note:       fmt.Sprintf("void of order %s", order.OrderRef),
				Reason:     constants.ReasonOrderVoid,
				OrderUID:   orderUID,
				FileHash:   order.FileHash,
				UpdatedUTC: now,
			}); err != nil {
				return err
			}
			if err := s.events.Append(ctx, tx, &repository.Event{
				EventType: constants.EventOrderVoid,
				PartKey:   pk,
				OrderUID:  orderUID,
				Qty:       &qty,
				Detail:    order.OrderRef,
				TsUTC:     now,
			}); err != nil {
				return err
			}
			removed++
		}

		if err := s.orders.SetVoided(ctx, tx, orderUID, true, now); err != nil {
			return err
		}
		if order.FileHash != "" {
			if err := s.files.SetVoided(ctx, tx, order.FileHash, true); err != nil {
				return err
			}
		}
		return s.inventory.Refresh(ctx, tx, now)
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("ledger.void.ok", "order_uid", orderUID, "removals", removed)
	return removed, nil
}

// UndoVoid deletes exactly the compensating removals VoidOrder created and
// clears the void flags, returning how many removals were deleted. Only
// voided orders qualify.
func (s *Service) UndoVoid(ctx context.Context, orderUID string) (int, error) {
	now := s.nowUTC()
	var deleted int64

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		order, err := s.orders.Get(ctx, tx, orderUID)
		if err != nil {
			return err
		}
		if !order.IsVoided {
			return common.InvalidInputf("order %s is not voided", orderUID)
		}
		deleted, err = s.removals.DeleteVoidRows(ctx, tx, orderUID)
		if err != nil {
			return err
		}
		if err := s.orders.SetVoided(ctx, tx, orderUID, false, ""); err != nil {
			return err
		}
		if order.FileHash != "" {
			if err := s.files.SetVoided(ctx, tx, order.FileHash, false); err != nil {
				return err
			}
		}
		return s.inventory.Refresh(ctx, tx, now)
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("ledger.unvoid.ok", "order_uid", orderUID, "removals_deleted", deleted)
	return int(deleted), nil
}

// PurgeOrder erases an order as if never ingested: its void removals, line
// items and order row go away, the file hash is released when no other
// order references it, and the receipts table is rebuilt from what remains.
func (s *Service) PurgeOrder(ctx context.Context, orderUID string) error {
	now := s.nowUTC()

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		order, err := s.orders.Get(ctx, tx, orderUID)
		if err != nil {
			return err
		}

		if _, err := s.removals.DeleteVoidRows(ctx, tx, orderUID); err != nil {
			return err
		}
		if err := s.lineItems.DeleteByOrder(ctx, tx, orderUID); err != nil {
			return err
		}
		if err := s.orders.Delete(ctx, tx, orderUID); err != nil {
			return err
		}

		if order.FileHash != "" {
			n, err := s.orders.CountByFileHash(ctx, tx, order.FileHash)
			if err != nil {
				return err
			}
			if n == 0 {
				if err := s.files.Delete(ctx, tx, order.FileHash); err != nil {
					return err
				}
			}
		}
		return s.rebuildTx(ctx, tx, now)
	})
	if err != nil {
		return err
	}
	s.logger.Info("ledger.purge.ok", "order_uid", orderUID)
	return nil
}

// Rebuild recomputes parts_received from every surviving line item and
// refreshes the snapshot. Manual receipts live only in the aggregate, so a
// rebuild resets them; purge accepts that in exchange for exactness.
func (s *Service) Rebuild(ctx context.Context) error {
	now := s.nowUTC()
	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.rebuildTx(ctx, tx, now)
	})
	if err != nil {
		return err
	}
	s.logger.Info("ledger.rebuild.ok")
	return nil
}

func (s *Service) rebuildTx(ctx context.Context, tx *sql.Tx, now string) error {
	items, err := s.lineItems.ListAll(ctx, tx)
	if err != nil {
		return err
	}
	if err := s.parts.DeleteAll(ctx, tx); err != nil {
		return err
	}

	agg := map[string]*entity.PartReceived{}
	var keys []string
	for _, li := range items {
		if li.PartKey == "" {
			continue
		}
		part, ok := agg[li.PartKey]
		if !ok {
			part = &entity.PartReceived{
				PartKey:     li.PartKey,
				Vendor:      li.Vendor,
				SKU:         li.SKU,
				Description: li.Description,
				DescClean:   li.DescClean,
				LabelLine1:  li.LabelLine1,
				LabelLine2:  li.LabelLine2,
				LabelShort:  li.LabelShort,
				PurchaseURL: li.PurchaseURL,
				AirtableURL: li.AirtableURL,
				QRTargetURL: li.QRTargetURL,
			}
			agg[li.PartKey] = part
			keys = append(keys, li.PartKey)
		}
		MergeLineItem(part, li)
	}

	for _, pk := range keys {
		part := agg[pk]
		recomputeAvgCost(part)
		part.UpdatedUTC = now
		if err := s.parts.Upsert(ctx, tx, part); err != nil {
			return err
		}
	}
	return s.inventory.Refresh(ctx, tx, now)
}

// ApplyLineItems merges freshly ingested line items into parts_received
// inside the caller's transaction and refreshes the snapshot. Descriptive
// fields stick on first write; numbers accumulate.
func (s *Service) ApplyLineItems(ctx context.Context, tx *sql.Tx, items []*entity.LineItem, now string) error {
	touched := map[string]*entity.PartReceived{}
	var keys []string
	for _, li := range items {
		if li.PartKey == "" {
			continue
		}
		part, ok := touched[li.PartKey]
		if !ok {
			existing, err := s.parts.Get(ctx, tx, li.PartKey)
			if err != nil && !errors.Is(err, common.ErrNotFound) {
				return err
			}
			if existing != nil {
				part = existing
			} else {
				part = &entity.PartReceived{
					PartKey: li.PartKey,
					Vendor:  li.Vendor,
					SKU:     li.SKU,
				}
			}
			touched[li.PartKey] = part
			keys = append(keys, li.PartKey)
		}
		MergeLineItem(part, li)
	}

	for _, pk := range keys {
		part := touched[pk]
		recomputeAvgCost(part)
		part.UpdatedUTC = now
		if err := s.parts.Upsert(ctx, tx, part); err != nil {
			return err
		}
	}
	return s.inventory.Refresh(ctx, tx, now)
}

// MergeLineItem folds one line item's numbers into a part aggregate.
// Descriptive fields are first-seen-wins; last_invoice keeps the greatest
// invoice string.
func MergeLineItem(part *entity.PartReceived, li *entity.LineItem) {
	part.UnitsReceived = part.UnitsReceived.Add(li.UnitsReceived)
	if li.LineTotal != nil {
		part.TotalSpend = part.TotalSpend.Add(*li.LineTotal)
	}
	if li.Invoice != "" && li.Invoice > part.LastInvoice {
		part.LastInvoice = li.Invoice
	}
	if part.Description == "" {
		part.Description = li.Description
	}
	if part.DescClean == "" {
		part.DescClean = li.DescClean
	}
	if part.LabelLine1 == "" {
		part.LabelLine1 = li.LabelLine1
	}
	if part.LabelLine2 == "" {
		part.LabelLine2 = li.LabelLine2
	}
	if part.LabelShort == "" {
		part.LabelShort = li.LabelShort
	}
	if part.PurchaseURL == "" {
		part.PurchaseURL = li.PurchaseURL
	}
	if part.AirtableURL == "" {
		part.AirtableURL = li.AirtableURL
	}
	if part.QRTargetURL == "" {
		part.QRTargetURL = li.QRTargetURL
	}
}

// recomputeAvgCost derives avg_unit_cost = total_spend / units_received.
// The average stays untouched when either total is non-positive, so a
// zero-cost receipt cannot wipe a known cost.
func recomputeAvgCost(part *entity.PartReceived) {
	if part.UnitsReceived.IsPositive() && part.TotalSpend.IsPositive() {
		avg := part.TotalSpend.Div(part.UnitsReceived).Round(4)
		part.AvgUnitCost = &avg
	}
}

// List returns the on-hand report.
func (s *Service) List(ctx context.Context, f repository.InventoryFilter) ([]*entity.InventoryRow, error) {
	return s.inventory.List(ctx, s.db, f)
}

// History returns the audit trail for a part.
func (s *Service) History(ctx context.Context, partKey string) ([]*repository.Event, error) {
	return s.events.ListByPart(ctx, s.db, partKey)
}

// FindOrder resolves an order by UID first, then by vendor+ref.
func (s *Service) FindOrder(ctx context.Context, ref string) (*entity.Order, error) {
	if o, err := s.orders.Get(ctx, s.db, ref); err == nil {
		return o, nil
	}
	for _, v := range constants.AsStringSlice() {
		if o, err := s.orders.FindByRef(ctx, s.db, v, ref); err == nil {
			return o, nil
		}
	}
	return nil, common.ErrNotFound
}
