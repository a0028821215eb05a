package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/studio-inventory/internal/common"
	"github.com/joseph-ayodele/studio-inventory/internal/entity"
)

type PartRepository interface {
	Upsert(ctx context.Context, q Querier, p *entity.PartReceived) error
	Get(ctx context.Context, q Querier, partKey string) (*entity.PartReceived, error)
	ListAll(ctx context.Context, q Querier) ([]*entity.PartReceived, error)
	DeleteAll(ctx context.Context, q Querier) error
	Exists(ctx context.Context, q Querier, partKey string) (bool, error)
}

type partRepository struct {
	logger *slog.Logger
}

func NewPartRepository(logger *slog.Logger) PartRepository {
	return &partRepository{logger: logger}
}

const partCols = `part_key, vendor, sku, description, desc_clean,
	label_line1, label_line2, label_short, purchase_url, airtable_url, label_qr_url,
	units_received, total_spend, last_invoice, avg_unit_cost, updated_utc`

func (r *partRepository) Upsert(ctx context.Context, q Querier, p *entity.PartReceived) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO parts_received (`+partCols+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(part_key) DO UPDATE SET
			vendor=excluded.vendor, sku=excluded.sku,
			description=excluded.description, desc_clean=excluded.desc_clean,
			label_line1=excluded.label_line1, label_line2=excluded.label_line2,
			label_short=excluded.label_short, purchase_url=excluded.purchase_url,
			airtable_url=excluded.airtable_url, label_qr_url=excluded.label_qr_url,
			units_received=excluded.units_received, total_spend=excluded.total_spend,
			last_invoice=excluded.last_invoice, avg_unit_cost=excluded.avg_unit_cost,
			updated_utc=excluded.updated_utc`,
		p.PartKey, p.Vendor, p.SKU, p.Description, p.DescClean,
		p.LabelLine1, p.LabelLine2, p.LabelShort, p.PurchaseURL, p.AirtableURL, p.QRTargetURL,
		decValArg(p.UnitsReceived), decValArg(p.TotalSpend), p.LastInvoice,
		decArg(p.AvgUnitCost), p.UpdatedUTC)
	if err != nil {
		r.logger.Error("failed to upsert part", "part_key", p.PartKey, "error", err)
		return common.WrapError(err, "upsert part")
	}
	return nil
}

func (r *partRepository) Get(ctx context.Context, q Querier, partKey string) (*entity.PartReceived, error) {
	row := q.QueryRowContext(ctx, `SELECT `+partCols+` FROM parts_received WHERE part_key = ?`, partKey)
	p, err := scanPart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "get part")
	}
	return p, nil
}

func (r *partRepository) Exists(ctx context.Context, q Querier, partKey string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM parts_received WHERE part_key = ?`, partKey).Scan(&n)
	if err != nil {
		return false, common.WrapError(err, "check part exists")
	}
	return n > 0, nil
}

func (r *partRepository) ListAll(ctx context.Context, q Querier) ([]*entity.PartReceived, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+partCols+` FROM parts_received ORDER BY part_key`)
	if err != nil {
		return nil, common.WrapError(err, "list parts")
	}
	defer rows.Close()

	var out []*entity.PartReceived
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan part")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *partRepository) DeleteAll(ctx context.Context, q Querier) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM parts_received`); err != nil {
		return common.WrapError(err, "clear parts")
	}
	return nil
}

func scanPart(row rowScanner) (*entity.PartReceived, error) {
	var (
		p                        entity.PartReceived
		str                      [10]sql.NullString
		units, spend, avg        sql.NullString
		lastInvoice, updatedUTC  sql.NullString
	)
	err := row.Scan(&p.PartKey, &str[0], &str[1], &str[2], &str[3],
		&str[4], &str[5], &str[6], &str[7], &str[8], &str[9],
		&units, &spend, &lastInvoice, &avg, &updatedUTC)
	if err != nil {
		return nil, err
	}
	p.Vendor = scanStr(str[0])
	p.SKU = scanStr(str[1])
	p.Description = scanStr(str[2])
	p.DescClean = scanStr(str[3])
	p.LabelLine1 = scanStr(str[4])
	p.LabelLine2 = scanStr(str[5])
	p.LabelShort = scanStr(str[6])
	p.PurchaseURL = scanStr(str[7])
	p.AirtableURL = scanStr(str[8])
	p.QRTargetURL = scanStr(str[9])
	p.UnitsReceived = scanDec(units)
	p.TotalSpend = scanDec(spend)
	p.LastInvoice = scanStr(lastInvoice)
	p.AvgUnitCost = scanDecPtr(avg)
	p.UpdatedUTC = scanStr(updatedUTC)
	return &p, nil
}

// InventoryFilter narrows and orders the on-hand report.
type InventoryFilter struct {
	Vendor      string
	PartKeyLike string
	OnlyInStock bool
	SortBy      string // part_key | vendor | on_hand | total_spend
	Desc        bool
	Limit       int
	Offset      int
}

type InventoryRepository interface {
	Refresh(ctx context.Context, q Querier, nowUTC string) error
	List(ctx context.Context, q Querier, f InventoryFilter) ([]*entity.InventoryRow, error)
}

type inventoryRepository struct {
	logger *slog.Logger
}

func NewInventoryRepository(logger *slog.Logger) InventoryRepository {
	return &inventoryRepository{logger: logger}
}

// Refresh rematerializes the inventory snapshot from the on-hand view in a
// single statement, so readers never see a half-built snapshot.
func (r *inventoryRepository) Refresh(ctx context.Context, q Querier, nowUTC string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM inventory`); err != nil {
		return common.WrapError(err, "clear inventory snapshot")
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO inventory (part_key, vendor, sku, description, desc_clean,
			label_line1, label_line2, label_short, purchase_url, airtable_url, label_qr_url,
			units_received, units_removed, on_hand, avg_unit_cost, total_spend, last_invoice, updated_utc)
		SELECT part_key, vendor, sku, description, desc_clean,
			label_line1, label_line2, label_short, purchase_url, airtable_url, label_qr_url,
			units_received, units_removed, on_hand, avg_unit_cost, total_spend, last_invoice, ?
		FROM inventory_view`, nowUTC)
	if err != nil {
		r.logger.Error("failed to refresh inventory snapshot", "error", err)
		return common.WrapError(err, "refresh inventory snapshot")
	}
	return nil
}

var inventorySortCols = map[string]string{
	"":            "part_key",
	"part_key":    "part_key",
	"vendor":      "vendor, part_key",
	"on_hand":     "CAST(on_hand AS REAL), part_key",
	"total_spend": "CAST(total_spend AS REAL), part_key",
}

func (r *inventoryRepository) List(ctx context.Context, q Querier, f InventoryFilter) ([]*entity.InventoryRow, error) {
	orderBy, ok := inventorySortCols[f.SortBy]
	if !ok {
		return nil, common.InvalidInputf("unknown sort column %q", f.SortBy)
	}
	if f.Desc {
		orderBy = strings.Replace(orderBy, ",", " DESC,", 1)
		if !strings.Contains(orderBy, " DESC") {
			orderBy += " DESC"
		}
	}

	query := `SELECT part_key, vendor, sku, description, desc_clean,
		label_line1, label_line2, label_short, purchase_url, airtable_url, label_qr_url,
		units_received, units_removed, on_hand, avg_unit_cost, total_spend, last_invoice
		FROM inventory`
	var conds []string
	var args []any
	if f.Vendor != "" {
		conds = append(conds, "vendor = ?")
		args = append(args, f.Vendor)
	}
	if f.PartKeyLike != "" {
		conds = append(conds, "part_key LIKE ?")
		args = append(args, "%"+f.PartKeyLike+"%")
	}
	if f.OnlyInStock {
		conds = append(conds, "CAST(on_hand AS REAL) > 0")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + orderBy
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.WrapError(err, "list inventory")
	}
	defer rows.Close()

	var out []*entity.InventoryRow
	for rows.Next() {
		var (
			iv                        entity.InventoryRow
			str                       [10]sql.NullString
			recv, removed, onHand     sql.NullString
			avg, spend, lastInvoice   sql.NullString
		)
		err := rows.Scan(&iv.PartKey, &str[0], &str[1], &str[2], &str[3],
			&str[4], &str[5], &str[6], &str[7], &str[8], &str[9],
			&recv, &removed, &onHand, &avg, &spend, &lastInvoice)
		if err != nil {
			return nil, common.WrapError(err, "scan inventory row")
		}
		iv.Vendor = scanStr(str[0])
		iv.SKU = scanStr(str[1])
		iv.Description = scanStr(str[2])
		iv.DescClean = scanStr(str[3])
		iv.LabelLine1 = scanStr(str[4])
		iv.LabelLine2 = scanStr(str[5])
		iv.LabelShort = scanStr(str[6])
		iv.PurchaseURL = scanStr(str[7])
		iv.AirtableURL = scanStr(str[8])
		iv.QRTargetURL = scanStr(str[9])
		iv.UnitsReceived = scanDec(recv)
		iv.UnitsRemoved = scanDec(removed)
		iv.OnHand = scanDec(onHand)
		iv.AvgUnitCost = scanDecPtr(avg)
		iv.TotalSpend = scanDec(spend)
		iv.LastInvoice = scanStr(lastInvoice)
		out = append(out, &iv)
	}
	return out, rows.Err()
}
