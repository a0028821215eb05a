package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/studio-inventory/constants"
	"github.com/joseph-ayodele/studio-inventory/internal/common"
)

// Event is one row of the append-only audit log.
type Event struct {
	EventUID  string
	EventType constants.EventType
	PartKey   string
	OrderUID  string
	Qty       *decimal.Decimal
	Detail    string
	TsUTC     string
}

type EventRepository interface {
	Append(ctx context.Context, q Querier, ev *Event) error
	ListByPart(ctx context.Context, q Querier, partKey string) ([]*Event, error)
}

type eventRepository struct {
	logger *slog.Logger
}

func NewEventRepository(logger *slog.Logger) EventRepository {
	return &eventRepository{logger: logger}
}

func (r *eventRepository) Append(ctx context.Context, q Querier, ev *Event) error {
	if ev.EventUID == "" {
		ev.EventUID = uuid.NewString()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO inventory_events (event_uid, event_type, part_key, order_uid, qty, detail, ts_utc)
		VALUES (?,?,?,?,?,?,?)`,
		ev.EventUID, string(ev.EventType), ev.PartKey, ev.OrderUID, decArg(ev.Qty), ev.Detail, ev.TsUTC)
	if err != nil {
		r.logger.Error("failed to append event", "event_type", ev.EventType, "error", err)
		return common.WrapError(err, "append event")
	}
	return nil
}

func (r *eventRepository) ListByPart(ctx context.Context, q Querier, partKey string) ([]*Event, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT event_uid, event_type, part_key, order_uid, qty, detail, ts_utc
		FROM inventory_events WHERE part_key = ? ORDER BY ts_utc, event_uid`, partKey)
	if err != nil {
		return nil, common.WrapError(err, "list events")
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		var (
			ev             Event
			typ            string
			pk, ouid, det  sql.NullString
			qty            sql.NullString
		)
		if err := rows.Scan(&ev.EventUID, &typ, &pk, &ouid, &qty, &det, &ev.TsUTC); err != nil {
			return nil, common.WrapError(err, "scan event")
		}
		ev.EventType = constants.EventType(typ)
		ev.PartKey = scanStr(pk)
		ev.OrderUID = scanStr(ouid)
		ev.Qty = scanDecPtr(qty)
		ev.Detail = scanStr(det)
		out = append(out, &ev)
	}
	return out, rows.Err()
}
