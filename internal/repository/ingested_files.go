package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/studio-inventory/internal/common"
	"github.com/joseph-ayodele/studio-inventory/internal/entity"
)

// IngestedFileRepository is the duplicate registry: a hash is registered
// only after its order committed, so a crashed ingest retries cleanly.
type IngestedFileRepository interface {
	Register(ctx context.Context, q Querier, f *entity.IngestedFile) error
	Exists(ctx context.Context, q Querier, fileHash string) (bool, error)
	Get(ctx context.Context, q Querier, fileHash string) (*entity.IngestedFile, error)
	SetVoided(ctx context.Context, q Querier, fileHash string, voided bool) error
	Delete(ctx context.Context, q Querier, fileHash string) error
}

type ingestedFileRepository struct {
	logger *slog.Logger
}

func NewIngestedFileRepository(logger *slog.Logger) IngestedFileRepository {
	return &ingestedFileRepository{logger: logger}
}

func (r *ingestedFileRepository) Register(ctx context.Context, q Querier, f *entity.IngestedFile) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO ingested_files (file_hash, first_seen_utc, original_path, vendor, order_ref, is_voided)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(file_hash) DO NOTHING`,
		f.FileHash, f.FirstSeenUTC, f.OriginalPath, f.Vendor, f.OrderRef, boolArg(f.IsVoided))
	if err != nil {
		r.logger.Error("failed to register file hash", "file_hash", f.FileHash, "error", err)
		return common.WrapError(err, "register file hash")
	}
	return nil
}

func (r *ingestedFileRepository) Exists(ctx context.Context, q Querier, fileHash string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM ingested_files WHERE file_hash = ?`, fileHash).Scan(&n)
	if err != nil {
		return false, common.WrapError(err, "check file hash")
	}
	return n > 0, nil
}

func (r *ingestedFileRepository) Get(ctx context.Context, q Querier, fileHash string) (*entity.IngestedFile, error) {
	var (
		f              entity.IngestedFile
		path, vnd, ref sql.NullString
		voided         int
	)
	err := q.QueryRowContext(ctx, `
		SELECT file_hash, first_seen_utc, original_path, vendor, order_ref, is_voided
		FROM ingested_files WHERE file_hash = ?`, fileHash).
		Scan(&f.FileHash, &f.FirstSeenUTC, &path, &vnd, &ref, &voided)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "get ingested file")
	}
	f.OriginalPath = scanStr(path)
	f.Vendor = scanStr(vnd)
	f.OrderRef = scanStr(ref)
	f.IsVoided = voided != 0
	return &f, nil
}

func (r *ingestedFileRepository) SetVoided(ctx context.Context, q Querier, fileHash string, voided bool) error {
	_, err := q.ExecContext(ctx, `UPDATE ingested_files SET is_voided = ? WHERE file_hash = ?`,
		boolArg(voided), fileHash)
	if err != nil {
		return common.WrapError(err, "set file voided")
	}
	return nil
}

func (r *ingestedFileRepository) Delete(ctx context.Context, q Querier, fileHash string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM ingested_files WHERE file_hash = ?`, fileHash)
	if err != nil {
		return common.WrapError(err, "delete file hash")
	}
	return nil
}
