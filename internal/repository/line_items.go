package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/joseph-ayodele/studio-inventory/internal/common"
	"github.com/joseph-ayodele/studio-inventory/internal/entity"
)

type LineItemRepository interface {
	Upsert(ctx context.Context, q Querier, li *entity.LineItem) error
	ListByOrder(ctx context.Context, q Querier, orderUID string) ([]*entity.LineItem, error)
	DeleteByOrder(ctx context.Context, q Querier, orderUID string) error
	ListAll(ctx context.Context, q Querier) ([]*entity.LineItem, error)
}

type lineItemRepository struct {
	logger *slog.Logger
}

func NewLineItemRepository(logger *slog.Logger) LineItemRepository {
	return &lineItemRepository{logger: logger}
}

const lineItemCols = `line_item_uid, order_uid, vendor, invoice, purchase_order, part_key,
	line, sku, manufacturer, mfg_pn, coo, description, desc_clean,
	ordered, shipped, balance, unit_price, line_total, pack_qty, units_received,
	label_line1, label_line2, label_short, purchase_url, airtable_url, label_qr_url,
	file_hash, updated_utc`

func (r *lineItemRepository) Upsert(ctx context.Context, q Querier, li *entity.LineItem) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO line_items (`+lineItemCols+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(line_item_uid) DO UPDATE SET
			part_key=excluded.part_key, description=excluded.description,
			desc_clean=excluded.desc_clean,
			ordered=excluded.ordered, shipped=excluded.shipped, balance=excluded.balance,
			unit_price=excluded.unit_price, line_total=excluded.line_total,
			pack_qty=excluded.pack_qty, units_received=excluded.units_received,
			label_line1=excluded.label_line1, label_line2=excluded.label_line2,
			label_short=excluded.label_short, purchase_url=excluded.purchase_url,
			airtable_url=excluded.airtable_url, label_qr_url=excluded.label_qr_url,
			updated_utc=excluded.updated_utc`,
		li.LineItemUID, li.OrderUID, li.Vendor, li.Invoice, li.PurchaseOrder, li.PartKey,
		intArg(li.Line), li.SKU, li.Manufacturer, li.MfgPartNumber, li.CountryOfOrig,
		li.Description, li.DescClean,
		intArg(li.Ordered), intArg(li.Shipped), intArg(li.Balance),
		decArg(li.UnitPrice), decArg(li.LineTotal), li.PackQty, decValArg(li.UnitsReceived),
		li.LabelLine1, li.LabelLine2, li.LabelShort, li.PurchaseURL, li.AirtableURL, li.QRTargetURL,
		li.FileHash, li.UpdatedUTC)
	if err != nil {
		r.logger.Error("failed to upsert line item", "line_item_uid", li.LineItemUID, "error", err)
		return common.WrapError(err, "upsert line item")
	}
	return nil
}

func (r *lineItemRepository) ListByOrder(ctx context.Context, q Querier, orderUID string) ([]*entity.LineItem, error) {
	return r.list(ctx, q, `SELECT `+lineItemCols+` FROM line_items WHERE order_uid = ? ORDER BY line, line_item_uid`, orderUID)
}

func (r *lineItemRepository) ListAll(ctx context.Context, q Querier) ([]*entity.LineItem, error) {
	return r.list(ctx, q, `SELECT `+lineItemCols+` FROM line_items ORDER BY order_uid, line, line_item_uid`)
}

func (r *lineItemRepository) list(ctx context.Context, q Querier, query string, args ...any) ([]*entity.LineItem, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.WrapError(err, "list line items")
	}
	defer rows.Close()

	var out []*entity.LineItem
	for rows.Next() {
		li, err := scanLineItem(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan line item")
		}
		out = append(out, li)
	}
	return out, rows.Err()
}

func (r *lineItemRepository) DeleteByOrder(ctx context.Context, q Querier, orderUID string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM line_items WHERE order_uid = ?`, orderUID)
	if err != nil {
		return common.WrapError(err, "delete line items")
	}
	return nil
}

func scanLineItem(row rowScanner) (*entity.LineItem, error) {
	var (
		li                          entity.LineItem
		line, ordered, shipped, bal sql.NullInt64
		unitPrice, lineTotal        sql.NullString
		packQty                     sql.NullInt64
		unitsReceived               sql.NullString
		str                         [18]sql.NullString
	)
	err := row.Scan(&li.LineItemUID, &str[0], &str[1], &str[2], &str[3], &str[4],
		&line, &str[5], &str[6], &str[7], &str[8], &str[9], &str[10],
		&ordered, &shipped, &bal, &unitPrice, &lineTotal, &packQty, &unitsReceived,
		&str[11], &str[12], &str[13], &str[14], &str[15], &str[16],
		&str[17], &li.UpdatedUTC)
	if err != nil {
		return nil, err
	}
	li.OrderUID = scanStr(str[0])
	li.Vendor = scanStr(str[1])
	li.Invoice = scanStr(str[2])
	li.PurchaseOrder = scanStr(str[3])
	li.PartKey = scanStr(str[4])
	li.SKU = scanStr(str[5])
	li.Manufacturer = scanStr(str[6])
	li.MfgPartNumber = scanStr(str[7])
	li.CountryOfOrig = scanStr(str[8])
	li.Description = scanStr(str[9])
	li.DescClean = scanStr(str[10])
	li.LabelLine1 = scanStr(str[11])
	li.LabelLine2 = scanStr(str[12])
	li.LabelShort = scanStr(str[13])
	li.PurchaseURL = scanStr(str[14])
	li.AirtableURL = scanStr(str[15])
	li.QRTargetURL = scanStr(str[16])
	li.FileHash = scanStr(str[17])

	li.Line = scanIntPtr(line)
	li.Ordered = scanIntPtr(ordered)
	li.Shipped = scanIntPtr(shipped)
	li.Balance = scanIntPtr(bal)
	li.UnitPrice = scanDecPtr(unitPrice)
	li.LineTotal = scanDecPtr(lineTotal)
	if packQty.Valid {
		li.PackQty = packQty.Int64
	} else {
		li.PackQty = 1
	}
	li.UnitsReceived = scanDec(unitsReceived)
	return &li, nil
}
