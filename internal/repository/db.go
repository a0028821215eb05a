// Package repository is the SQLite persistence layer. One process owns the
// database file; the pool is capped at a single connection so every
// transaction serializes, which is the concurrency model the ledger
// semantics assume.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/studio-inventory/internal/common"
)

// Money and quantity columns are declared NUMERIC but always written as
// canonical decimal strings, so nothing round-trips through floats.
const schema = `
CREATE TABLE IF NOT EXISTS ingested_files (
	file_hash      TEXT PRIMARY KEY,
	first_seen_utc TEXT NOT NULL,
	original_path  TEXT,
	vendor         TEXT,
	order_ref      TEXT,
	is_voided      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS orders (
	order_uid          TEXT PRIMARY KEY,
	vendor             TEXT,
	invoice            TEXT,
	purchase_order     TEXT,
	order_ref          TEXT,
	order_date         TEXT,
	account_number     TEXT,
	payment_date       TEXT,
	payment_instrument TEXT,
	merchandise        NUMERIC,
	shipping           NUMERIC,
	tax                NUMERIC,
	total              NUMERIC,
	source_file        TEXT,
	source_path        TEXT,
	file_hash          TEXT,
	is_voided          INTEGER NOT NULL DEFAULT 0,
	voided_utc         TEXT,
	updated_utc        TEXT
);

CREATE TABLE IF NOT EXISTS line_items (
	line_item_uid  TEXT PRIMARY KEY,
	order_uid      TEXT,
	vendor         TEXT,
	invoice        TEXT,
	purchase_order TEXT,
	part_key       TEXT,
	line           INTEGER,
	sku            TEXT,
	manufacturer   TEXT,
	mfg_pn         TEXT,
	coo            TEXT,
	description    TEXT,
	desc_clean     TEXT,
	ordered        INTEGER,
	shipped        INTEGER,
	balance        INTEGER,
	unit_price     NUMERIC,
	line_total     NUMERIC,
	pack_qty       INTEGER,
	units_received NUMERIC,
	label_line1    TEXT,
	label_line2    TEXT,
	label_short    TEXT,
	purchase_url   TEXT,
	airtable_url   TEXT,
	label_qr_url   TEXT,
	file_hash      TEXT,
	updated_utc    TEXT
);

CREATE TABLE IF NOT EXISTS parts_received (
	part_key       TEXT PRIMARY KEY,
	vendor         TEXT,
	sku            TEXT,
	description    TEXT,
	desc_clean     TEXT,
	label_line1    TEXT,
	label_line2    TEXT,
	label_short    TEXT,
	purchase_url   TEXT,
	airtable_url   TEXT,
	label_qr_url   TEXT,
	units_received NUMERIC,
	total_spend    NUMERIC,
	last_invoice   TEXT,
	avg_unit_cost  NUMERIC,
	updated_utc    TEXT
);

CREATE TABLE IF NOT EXISTS parts_removed (
	removal_uid TEXT PRIMARY KEY,
	part_key    TEXT NOT NULL,
	qty_removed NUMERIC NOT NULL,
	ts_utc      TEXT,
	project     TEXT,
	note        TEXT,
	reason      TEXT,
	order_uid   TEXT,
	file_hash   TEXT,
	updated_utc TEXT
);

CREATE TABLE IF NOT EXISTS inventory (
	part_key       TEXT PRIMARY KEY,
	vendor         TEXT,
	sku            TEXT,
	description    TEXT,
	desc_clean     TEXT,
	label_line1    TEXT,
	label_line2    TEXT,
	label_short    TEXT,
	purchase_url   TEXT,
	airtable_url   TEXT,
	label_qr_url   TEXT,
	units_received NUMERIC,
	units_removed  NUMERIC,
	on_hand        NUMERIC,
	avg_unit_cost  NUMERIC,
	total_spend    NUMERIC,
	last_invoice   TEXT,
	updated_utc    TEXT
);

CREATE TABLE IF NOT EXISTS inventory_events (
	event_uid   TEXT PRIMARY KEY,
	event_type  TEXT NOT NULL,
	part_key    TEXT,
	order_uid   TEXT,
	qty         NUMERIC,
	detail      TEXT,
	ts_utc      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_line_items_order_uid ON line_items(order_uid);
CREATE INDEX IF NOT EXISTS idx_line_items_part_key ON line_items(part_key);
CREATE INDEX IF NOT EXISTS idx_parts_removed_part_key ON parts_removed(part_key);
CREATE INDEX IF NOT EXISTS idx_parts_removed_order_uid ON parts_removed(order_uid);
CREATE INDEX IF NOT EXISTS idx_orders_vendor ON orders(vendor);
CREATE INDEX IF NOT EXISTS idx_events_part_key ON inventory_events(part_key);
`

// inventoryView is recreated on every open so schema upgrades propagate.
const inventoryView = `
CREATE VIEW inventory_view AS
SELECT
	pr.part_key,
	pr.vendor,
	pr.sku,
	pr.description,
	pr.desc_clean,
	pr.label_line1,
	pr.label_line2,
	pr.label_short,
	pr.purchase_url,
	pr.airtable_url,
	pr.label_qr_url,
	pr.units_received,
	COALESCE(r.removed, 0) AS units_removed,
	(pr.units_received - COALESCE(r.removed, 0)) AS on_hand,
	pr.avg_unit_cost,
	pr.total_spend,
	pr.last_invoice
FROM parts_received pr
LEFT JOIN (
	SELECT part_key, SUM(qty_removed) AS removed
	FROM parts_removed
	GROUP BY part_key
) r ON pr.part_key = r.part_key;
`

// Open creates or opens the database file, bootstraps the schema and applies
// column migrations. The single-connection pool is load-bearing.
func Open(path string, busyTimeout time.Duration, logger *slog.Logger) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, common.WrapError(err, "create database dir")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, common.WrapError(err, "open database")
	}
	db.SetMaxOpenConns(1)

	if err := bootstrap(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("db.open.ok", "path", path)
	return db, nil
}

func bootstrap(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return common.WrapError(err, "create schema")
	}

	// Upgrades for databases created before these columns existed.
	migrations := map[string][]string{
		"ingested_files": {"is_voided INTEGER NOT NULL DEFAULT 0"},
		"orders":         {"is_voided INTEGER NOT NULL DEFAULT 0", "voided_utc TEXT", "source_file TEXT", "source_path TEXT"},
		"line_items":     {"desc_clean TEXT", "label_line1 TEXT", "label_line2 TEXT", "label_short TEXT", "purchase_url TEXT", "airtable_url TEXT", "label_qr_url TEXT"},
		"parts_received": {"desc_clean TEXT", "label_line1 TEXT", "label_line2 TEXT", "label_short TEXT", "purchase_url TEXT", "airtable_url TEXT", "label_qr_url TEXT"},
		"parts_removed":  {"reason TEXT", "order_uid TEXT", "file_hash TEXT"},
	}
	for table, cols := range migrations {
		if err := ensureColumns(db, table, cols); err != nil {
			return err
		}
	}

	if _, err := db.Exec("DROP VIEW IF EXISTS inventory_view"); err != nil {
		return common.WrapError(err, "drop inventory view")
	}
	if _, err := db.Exec(inventoryView); err != nil {
		return common.WrapError(err, "create inventory view")
	}
	return nil
}

// ensureColumns adds each missing column with ALTER TABLE. SQLite has no
// ADD COLUMN IF NOT EXISTS, so existing columns are read first.
func ensureColumns(db *sql.DB, table string, defs []string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return common.WrapError(err, "inspect table "+table)
	}
	existing := map[string]bool{}
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return common.WrapError(err, "scan table info")
		}
		existing[name] = true
	}
	if err := rows.Close(); err != nil {
		return common.WrapError(err, "close table info")
	}

	for _, def := range defs {
		col := def
		if idx := strings.IndexByte(def, ' '); idx > 0 {
			col = def[:idx]
		}
		if existing[col] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, def)
		if _, err := db.Exec(stmt); err != nil {
			return common.WrapError(err, "add column "+table+"."+col)
		}
	}
	return nil
}

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// repository methods run identically inside and outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn in a transaction, rolling back on error or panic.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "begin tx")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return common.WrapError(err, "commit tx")
	}
	return nil
}

// HealthCheck pings the database.
func HealthCheck(ctx context.Context, db *sql.DB) error {
	return db.PingContext(ctx)
}
