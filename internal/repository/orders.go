package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/studio-inventory/internal/common"
	"github.com/joseph-ayodele/studio-inventory/internal/entity"
)

type OrderRepository interface {
	Upsert(ctx context.Context, q Querier, o *entity.Order) error
	Get(ctx context.Context, q Querier, orderUID string) (*entity.Order, error)
	FindByRef(ctx context.Context, q Querier, vendor, orderRef string) (*entity.Order, error)
	SetVoided(ctx context.Context, q Querier, orderUID string, voided bool, voidedUTC string) error
	Delete(ctx context.Context, q Querier, orderUID string) error
	CountByFileHash(ctx context.Context, q Querier, fileHash string) (int, error)
	List(ctx context.Context, q Querier, vendor string) ([]*entity.Order, error)
}

type orderRepository struct {
	logger *slog.Logger
}

func NewOrderRepository(logger *slog.Logger) OrderRepository {
	return &orderRepository{logger: logger}
}

const orderCols = `order_uid, vendor, invoice, purchase_order, order_ref, order_date,
	account_number, payment_date, payment_instrument,
	merchandise, shipping, tax, total,
	source_file, source_path, file_hash, is_voided, voided_utc, updated_utc`

func (r *orderRepository) Upsert(ctx context.Context, q Querier, o *entity.Order) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO orders (`+orderCols+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(order_uid) DO UPDATE SET
			vendor=excluded.vendor, invoice=excluded.invoice,
			purchase_order=excluded.purchase_order, order_ref=excluded.order_ref,
			order_date=excluded.order_date, account_number=excluded.account_number,
			payment_date=excluded.payment_date, payment_instrument=excluded.payment_instrument,
			merchandise=excluded.merchandise, shipping=excluded.shipping,
			tax=excluded.tax, total=excluded.total,
			source_file=excluded.source_file, source_path=excluded.source_path,
			file_hash=excluded.file_hash, updated_utc=excluded.updated_utc`,
		o.OrderUID, o.Vendor, o.Invoice, o.PurchaseOrder, o.OrderRef, o.OrderDate,
		o.AccountNumber, o.PaymentDate, o.PaymentInstrument,
		decArg(o.Merchandise), decArg(o.Shipping), decArg(o.Tax), decArg(o.Total),
		o.SourceFile, o.SourcePath, o.FileHash, boolArg(o.IsVoided), o.VoidedUTC, o.UpdatedUTC)
	if err != nil {
		r.logger.Error("failed to upsert order", "order_uid", o.OrderUID, "error", err)
		return common.WrapError(err, "upsert order")
	}
	return nil
}

func (r *orderRepository) Get(ctx context.Context, q Querier, orderUID string) (*entity.Order, error) {
	row := q.QueryRowContext(ctx, `SELECT `+orderCols+` FROM orders WHERE order_uid = ?`, orderUID)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get order", "order_uid", orderUID, "error", err)
		return nil, common.WrapError(err, "get order")
	}
	return o, nil
}

func (r *orderRepository) FindByRef(ctx context.Context, q Querier, vendor, orderRef string) (*entity.Order, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+orderCols+` FROM orders WHERE vendor = ? AND order_ref = ? ORDER BY updated_utc DESC LIMIT 1`,
		vendor, orderRef)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "find order by ref")
	}
	return o, nil
}

func (r *orderRepository) SetVoided(ctx context.Context, q Querier, orderUID string, voided bool, voidedUTC string) error {
	res, err := q.ExecContext(ctx,
		`UPDATE orders SET is_voided = ?, voided_utc = ? WHERE order_uid = ?`,
		boolArg(voided), voidedUTC, orderUID)
	if err != nil {
		return common.WrapError(err, "set order voided")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, q Querier, orderUID string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM orders WHERE order_uid = ?`, orderUID)
	if err != nil {
		return common.WrapError(err, "delete order")
	}
	return nil
}

// CountByFileHash reports how many orders reference a source PDF. Purge uses
// it to decide whether the hash registry entry may be released.
func (r *orderRepository) CountByFileHash(ctx context.Context, q Querier, fileHash string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE file_hash = ?`, fileHash).Scan(&n)
	if err != nil {
		return 0, common.WrapError(err, "count orders by file hash")
	}
	return n, nil
}

func (r *orderRepository) List(ctx context.Context, q Querier, vendor string) ([]*entity.Order, error) {
	query := `SELECT ` + orderCols + ` FROM orders`
	var args []any
	if vendor != "" {
		query += ` WHERE vendor = ?`
		args = append(args, vendor)
	}
	query += ` ORDER BY order_date, order_uid`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.WrapError(err, "list orders")
	}
	defer rows.Close()

	var out []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan order")
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var (
		o                                      entity.Order
		merch, ship, tax, total                sql.NullString
		invoice, po, ref, date, acct           sql.NullString
		payDate, payInst, srcFile, srcPath     sql.NullString
		fileHash, voidedUTC, updatedUTC        sql.NullString
		isVoided                               int
	)
	err := row.Scan(&o.OrderUID, &o.Vendor, &invoice, &po, &ref, &date,
		&acct, &payDate, &payInst,
		&merch, &ship, &tax, &total,
		&srcFile, &srcPath, &fileHash, &isVoided, &voidedUTC, &updatedUTC)
	if err != nil {
		return nil, err
	}
	o.Invoice = scanStr(invoice)
	o.PurchaseOrder = scanStr(po)
	o.OrderRef = scanStr(ref)
	o.OrderDate = scanStr(date)
	o.AccountNumber = scanStr(acct)
	o.PaymentDate = scanStr(payDate)
	o.PaymentInstrument = scanStr(payInst)
	o.Merchandise = scanDecPtr(merch)
	o.Shipping = scanDecPtr(ship)
	o.Tax = scanDecPtr(tax)
	o.Total = scanDecPtr(total)
	o.SourceFile = scanStr(srcFile)
	o.SourcePath = scanStr(srcPath)
	o.FileHash = scanStr(fileHash)
	o.IsVoided = isVoided != 0
	o.VoidedUTC = scanStr(voidedUTC)
	o.UpdatedUTC = scanStr(updatedUTC)
	return &o, nil
}
