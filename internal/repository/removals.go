package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/joseph-ayodele/studio-inventory/constants"
	"github.com/joseph-ayodele/studio-inventory/internal/common"
	"github.com/joseph-ayodele/studio-inventory/internal/entity"
)

type RemovalRepository interface {
	Insert(ctx context.Context, q Querier, ev *entity.RemovalEvent) error
	ListByPart(ctx context.Context, q Querier, partKey string) ([]*entity.RemovalEvent, error)
	ListVoidRows(ctx context.Context, q Querier, orderUID string) ([]*entity.RemovalEvent, error)
	DeleteVoidRows(ctx context.Context, q Querier, orderUID string) (int64, error)
}

type removalRepository struct {
	logger *slog.Logger
}

func NewRemovalRepository(logger *slog.Logger) RemovalRepository {
	return &removalRepository{logger: logger}
}

const removalCols = `removal_uid, part_key, qty_removed, ts_utc, project, note,
	reason, order_uid, file_hash, updated_utc`

func (r *removalRepository) Insert(ctx context.Context, q Querier, ev *entity.RemovalEvent) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO parts_removed (`+removalCols+`)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		ev.RemovalUID, ev.PartKey, decValArg(ev.QtyRemoved), ev.TsUTC, ev.Project, ev.Note,
		ev.Reason, ev.OrderUID, ev.FileHash, ev.UpdatedUTC)
	if err != nil {
		r.logger.Error("failed to insert removal", "removal_uid", ev.RemovalUID, "error", err)
		return common.WrapError(err, "insert removal")
	}
	return nil
}

func (r *removalRepository) ListByPart(ctx context.Context, q Querier, partKey string) ([]*entity.RemovalEvent, error) {
	return r.list(ctx, q, `SELECT `+removalCols+` FROM parts_removed WHERE part_key = ? ORDER BY ts_utc`, partKey)
}

// ListVoidRows returns the reversal rows generated by voiding an order.
func (r *removalRepository) ListVoidRows(ctx context.Context, q Querier, orderUID string) ([]*entity.RemovalEvent, error) {
	return r.list(ctx, q,
		`SELECT `+removalCols+` FROM parts_removed WHERE order_uid = ? AND reason = ? ORDER BY removal_uid`,
		orderUID, constants.ReasonOrderVoid)
}

// DeleteVoidRows removes exactly the reversal rows a void created. Manual
// removals never carry the order_void reason, so they are untouched.
func (r *removalRepository) DeleteVoidRows(ctx context.Context, q Querier, orderUID string) (int64, error) {
	res, err := q.ExecContext(ctx,
		`DELETE FROM parts_removed WHERE order_uid = ? AND reason = ?`, orderUID, constants.ReasonOrderVoid)
	if err != nil {
		return 0, common.WrapError(err, "delete void removals")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *removalRepository) list(ctx context.Context, q Querier, query string, args ...any) ([]*entity.RemovalEvent, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.WrapError(err, "list removals")
	}
	defer rows.Close()

	var out []*entity.RemovalEvent
	for rows.Next() {
		var (
			ev  entity.RemovalEvent
			qty sql.NullString
			str [7]sql.NullString
		)
		err := rows.Scan(&ev.RemovalUID, &ev.PartKey, &qty, &str[0], &str[1], &str[2],
			&str[3], &str[4], &str[5], &str[6])
		if err != nil {
			return nil, common.WrapError(err, "scan removal")
		}
		ev.QtyRemoved = scanDec(qty)
		ev.TsUTC = scanStr(str[0])
		ev.Project = scanStr(str[1])
		ev.Note = scanStr(str[2])
		ev.Reason = scanStr(str[3])
		ev.OrderUID = scanStr(str[4])
		ev.FileHash = scanStr(str[5])
		ev.UpdatedUTC = scanStr(str[6])
		out = append(out, &ev)
	}
	return out, rows.Err()
}
