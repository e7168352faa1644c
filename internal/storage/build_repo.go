package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_build_store.go -package=mocks openio-assistant/internal/storage BuildStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// BuildRecord is an audit record of one successful index build or load.
type BuildRecord struct {
	ID         string
	RootHash   string
	Source     string
	Chunks     int
	DurationMs int64
	CreatedAt  time.Time
}

// BuildStore defines the interface for build history operations.
type BuildStore interface {
	// Record inserts a build record. The record ID must be set (UUID).
	Record(ctx context.Context, rec *BuildRecord) error
	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]*BuildRecord, error)
}

// BuildRepo provides methods for build history operations backed by SQLite.
// It implements the BuildStore interface.
type BuildRepo struct {
	db *sql.DB
}

// NewBuildRepo creates a new BuildRepo.
func NewBuildRepo(db *sql.DB) *BuildRepo {
	return &BuildRepo{db: db}
}

// Record inserts a build record.
func (r *BuildRepo) Record(ctx context.Context, rec *BuildRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO index_builds (id, root_hash, source, chunks, duration_ms) VALUES (?, ?, ?, ?, ?)",
		rec.ID, rec.RootHash, rec.Source, rec.Chunks, rec.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to insert build record: %w", err)
	}
	return nil
}

// ListRecent returns up to limit build records, newest first.
// Returns an empty slice if no builds have been recorded (not an error).
func (r *BuildRepo) ListRecent(ctx context.Context, limit int) ([]*BuildRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, root_hash, source, chunks, duration_ms, created_at FROM index_builds ORDER BY created_at DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query build records: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []*BuildRecord
	for rows.Next() {
		rec := &BuildRecord{}
		if err := rows.Scan(&rec.ID, &rec.RootHash, &rec.Source, &rec.Chunks, &rec.DurationMs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan build record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate build records: %w", err)
	}

	if records == nil {
		records = []*BuildRecord{}
	}
	return records, nil
}
