// Package export writes the ledger out for people and spreadsheets: stamped
// per-run CSVs, cumulative master CSVs keyed by row identity, and a single
// XLSX workbook.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/studio-inventory/internal/common"
	"github.com/joseph-ayodele/studio-inventory/internal/entity"
	"github.com/joseph-ayodele/studio-inventory/internal/repository"
)

// Service is a façade over repositories that renders CSV/XLSX exports.
type Service struct {
	db        *sql.DB
	orders    repository.OrderRepository
	lineItems repository.LineItemRepository
	inventory repository.InventoryRepository
	logger    *slog.Logger

	now func() time.Time
}

func NewService(db *sql.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:        db,
		orders:    repository.NewOrderRepository(logger),
		lineItems: repository.NewLineItemRepository(logger),
		inventory: repository.NewInventoryRepository(logger),
		logger:    logger,
		now:       time.Now,
	}
}

type orderRow struct {
	OrderUID      string `csv:"order_uid"`
	Vendor        string `csv:"vendor"`
	Invoice       string `csv:"invoice"`
	PurchaseOrder string `csv:"purchase_order"`
	OrderDate     string `csv:"order_date"`
	Merchandise   string `csv:"merchandise"`
	Shipping      string `csv:"shipping"`
	Tax           string `csv:"tax"`
	Total         string `csv:"total"`
	SourceFile    string `csv:"source_file"`
	IsVoided      bool   `csv:"is_voided"`
}

type lineItemRow struct {
	LineItemUID   string `csv:"line_item_uid"`
	OrderUID      string `csv:"order_uid"`
	Vendor        string `csv:"vendor"`
	Invoice       string `csv:"invoice"`
	PartKey       string `csv:"part_key"`
	SKU           string `csv:"sku"`
	Description   string `csv:"description"`
	Ordered       string `csv:"ordered"`
	Shipped       string `csv:"shipped"`
	PackQty       int64  `csv:"pack_qty"`
	UnitsReceived string `csv:"units_received"`
	UnitPrice     string `csv:"unit_price"`
	LineTotal     string `csv:"line_total"`
	LabelShort    string `csv:"label_short"`
	QRTargetURL   string `csv:"label_qr_url"`
}

type inventoryRow struct {
	PartKey       string `csv:"part_key"`
	Vendor        string `csv:"vendor"`
	SKU           string `csv:"sku"`
	DescClean     string `csv:"desc_clean"`
	LabelShort    string `csv:"label_short"`
	UnitsReceived string `csv:"units_received"`
	UnitsRemoved  string `csv:"units_removed"`
	OnHand        string `csv:"on_hand"`
	AvgUnitCost   string `csv:"avg_unit_cost"`
	TotalSpend    string `csv:"total_spend"`
	LastInvoice   string `csv:"last_invoice"`
	PurchaseURL   string `csv:"purchase_url"`
}

// ExportCSV writes a stamped snapshot of orders, line items and inventory
// into dir, then folds each into its cumulative master file. Returns the
// stamped paths.
func (s *Service) ExportCSV(ctx context.Context, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, common.WrapError(err, "create exports dir")
	}
	stamp := s.now().UTC().Format("20060102_150405")

	orders, err := s.orders.List(ctx, s.db, "")
	if err != nil {
		return nil, err
	}
	items, err := s.lineItems.ListAll(ctx, s.db)
	if err != nil {
		return nil, err
	}
	inv, err := s.inventory.List(ctx, s.db, repository.InventoryFilter{})
	if err != nil {
		return nil, err
	}

	oRows := make([]*orderRow, 0, len(orders))
	for _, o := range orders {
		oRows = append(oRows, &orderRow{
			OrderUID:      o.OrderUID,
			Vendor:        o.Vendor,
			Invoice:       o.Invoice,
			PurchaseOrder: o.PurchaseOrder,
			OrderDate:     o.OrderDate,
			Merchandise:   decCSV(o.Merchandise),
			Shipping:      decCSV(o.Shipping),
			Tax:           decCSV(o.Tax),
			Total:         decCSV(o.Total),
			SourceFile:    o.SourceFile,
			IsVoided:      o.IsVoided,
		})
	}
	liRows := make([]*lineItemRow, 0, len(items))
	for _, li := range items {
		liRows = append(liRows, &lineItemRow{
			LineItemUID:   li.LineItemUID,
			OrderUID:      li.OrderUID,
			Vendor:        li.Vendor,
			Invoice:       li.Invoice,
			PartKey:       li.PartKey,
			SKU:           li.SKU,
			Description:   li.Description,
			Ordered:       intCSV(li.Ordered),
			Shipped:       intCSV(li.Shipped),
			PackQty:       li.PackQty,
			UnitsReceived: li.UnitsReceived.String(),
			UnitPrice:     decCSV(li.UnitPrice),
			LineTotal:     decCSV(li.LineTotal),
			LabelShort:    li.LabelShort,
			QRTargetURL:   li.QRTargetURL,
		})
	}
	ivRows := make([]*inventoryRow, 0, len(inv))
	for _, iv := range inv {
		ivRows = append(ivRows, &inventoryRow{
			PartKey:       iv.PartKey,
			Vendor:        iv.Vendor,
			SKU:           iv.SKU,
			DescClean:     iv.DescClean,
			LabelShort:    iv.LabelShort,
			UnitsReceived: iv.UnitsReceived.String(),
			UnitsRemoved:  iv.UnitsRemoved.String(),
			OnHand:        iv.OnHand.String(),
			AvgUnitCost:   decCSV(iv.AvgUnitCost),
			TotalSpend:    iv.TotalSpend.String(),
			LastInvoice:   iv.LastInvoice,
			PurchaseURL:   iv.PurchaseURL,
		})
	}

	var written []string
	type job struct {
		stem   string
		rows   any
		master func() error
	}
	jobs := []job{
		{"orders", oRows, func() error {
			return upsertMaster(filepath.Join(dir, "orders_master.csv"), oRows,
				func(r *orderRow) string { return r.OrderUID })
		}},
		{"line_items", liRows, func() error {
			return upsertMaster(filepath.Join(dir, "line_items_master.csv"), liRows,
				func(r *lineItemRow) string { return r.LineItemUID })
		}},
		{"inventory", ivRows, func() error {
			return upsertMaster(filepath.Join(dir, "inventory_master.csv"), ivRows,
				func(r *inventoryRow) string { return r.PartKey })
		}},
	}
	for _, j := range jobs {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", j.stem, stamp))
		if err := writeCSV(path, j.rows); err != nil {
			return nil, err
		}
		written = append(written, path)
		if err := j.master(); err != nil {
			return nil, err
		}
	}

	s.logger.Info("export.csv.ok", "dir", dir, "stamp", stamp,
		"orders", len(oRows), "line_items", len(liRows), "inventory", len(ivRows))
	return written, nil
}

func writeCSV(path string, rows any) error {
	f, err := os.Create(path)
	if err != nil {
		return common.WrapError(err, "create csv")
	}
	defer f.Close()
	if err := gocsv.MarshalFile(rows, f); err != nil {
		return common.WrapError(err, "write csv "+filepath.Base(path))
	}
	return nil
}

// upsertMaster merges rows into the cumulative file by key: existing keys
// are replaced in place, new keys append, unrelated history survives.
func upsertMaster[T any](path string, rows []*T, key func(*T) string) error {
	var existing []*T
	if f, err := os.Open(path); err == nil {
		decodeErr := gocsv.UnmarshalFile(f, &existing)
		f.Close()
		if decodeErr != nil {
			return common.WrapError(decodeErr, "read master csv "+filepath.Base(path))
		}
	}

	index := map[string]int{}
	for i, r := range existing {
		index[key(r)] = i
	}
	for _, r := range rows {
		if i, ok := index[key(r)]; ok {
			existing[i] = r
		} else {
			index[key(r)] = len(existing)
			existing = append(existing, r)
		}
	}
	return writeCSV(path, existing)
}

// ExportXLSX writes one workbook with Orders, LineItems and Inventory
// sheets and returns its path.
func (s *Service) ExportXLSX(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", common.WrapError(err, "create exports dir")
	}

	orders, err := s.orders.List(ctx, s.db, "")
	if err != nil {
		return "", err
	}
	items, err := s.lineItems.ListAll(ctx, s.db)
	if err != nil {
		return "", err
	}
	inv, err := s.inventory.List(ctx, s.db, repository.InventoryFilter{})
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	if err := writeOrdersSheet(f, orders); err != nil {
		return "", err
	}
	if err := writeLineItemsSheet(f, items); err != nil {
		return "", err
	}
	if err := writeInventorySheet(f, inv); err != nil {
		return "", err
	}
	// Drop the default sheet created by excelize.
	_ = f.DeleteSheet("Sheet1")

	path := filepath.Join(dir, fmt.Sprintf("studio_inventory_%s.xlsx", s.now().UTC().Format("20060102_150405")))
	if err := f.SaveAs(path); err != nil {
		return "", common.WrapError(err, "save xlsx")
	}
	s.logger.Info("export.xlsx.ok", "path", path)
	return path, nil
}

func newSheet(f *excelize.File, name string, headers []string) error {
	if _, err := f.NewSheet(name); err != nil {
		return common.WrapError(err, "create sheet "+name)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(name, cell, h); err != nil {
			return common.WrapError(err, "write header")
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func writeOrdersSheet(f *excelize.File, orders []*entity.Order) error {
	const sheet = "Orders"
	if err := newSheet(f, sheet, []string{
		"Order UID", "Vendor", "Invoice", "PO", "Date", "Merchandise", "Shipping", "Tax", "Total", "Source File", "Voided",
	}); err != nil {
		return err
	}
	for i, o := range orders {
		writeRow(f, sheet, i+2, []any{
			o.OrderUID, o.Vendor, o.Invoice, o.PurchaseOrder, o.OrderDate,
			decCSV(o.Merchandise), decCSV(o.Shipping), decCSV(o.Tax), decCSV(o.Total),
			o.SourceFile, o.IsVoided,
		})
	}
	_ = f.SetColWidth(sheet, "A", "A", 38)
	_ = f.SetColWidth(sheet, "J", "J", 30)
	return nil
}

func writeLineItemsSheet(f *excelize.File, items []*entity.LineItem) error {
	const sheet = "LineItems"
	if err := newSheet(f, sheet, []string{
		"Line Item UID", "Order UID", "Vendor", "Part Key", "SKU", "Description",
		"Ordered", "Shipped", "Pack Qty", "Units Received", "Unit Price", "Line Total", "Label",
	}); err != nil {
		return err
	}
	for i, li := range items {
		writeRow(f, sheet, i+2, []any{
			li.LineItemUID, li.OrderUID, li.Vendor, li.PartKey, li.SKU, li.Description,
			intCSV(li.Ordered), intCSV(li.Shipped), li.PackQty, li.UnitsReceived.String(),
			decCSV(li.UnitPrice), decCSV(li.LineTotal), li.LabelShort,
		})
	}
	_ = f.SetColWidth(sheet, "F", "F", 48)
	return nil
}

func writeInventorySheet(f *excelize.File, inv []*entity.InventoryRow) error {
	const sheet = "Inventory"
	if err := newSheet(f, sheet, []string{
		"Part Key", "Vendor", "SKU", "Description", "Units Received", "Units Removed",
		"On Hand", "Avg Unit Cost", "Total Spend", "Last Invoice", "Purchase URL",
	}); err != nil {
		return err
	}
	for i, iv := range inv {
		writeRow(f, sheet, i+2, []any{
			iv.PartKey, iv.Vendor, iv.SKU, iv.DescClean, iv.UnitsReceived.String(),
			iv.UnitsRemoved.String(), iv.OnHand.String(), decCSV(iv.AvgUnitCost),
			iv.TotalSpend.String(), iv.LastInvoice, iv.PurchaseURL,
		})
	}
	_ = f.SetColWidth(sheet, "D", "D", 48)
	return nil
}

// decCSV renders an optional money value: absent stays blank, never "0".
func decCSV(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func intCSV(v *int64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}
