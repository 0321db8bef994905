// Package audit persists one summary row per finished upload.
//
// Rows describe the outcome only (state, counts, error code). Record data
// is never written.
package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/csvrelay/internal/core"
)

// DBTX is the subset of pgxpool.Pool the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS upload_outcomes (
    upload_id      UUID PRIMARY KEY,
    file_name      TEXT,
    status         TEXT NOT NULL,
    error_kind     TEXT,
    error_code     TEXT,
    message        TEXT,
    rows_accepted  INTEGER NOT NULL DEFAULT 0,
    rows_forwarded INTEGER NOT NULL DEFAULT 0,
    failed_row     INTEGER,
    client_ip      TEXT,
    user_agent     TEXT,
    duration_ms    BIGINT NOT NULL DEFAULT 0,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const createIndexSQL = `
CREATE INDEX IF NOT EXISTS upload_outcomes_created_at_idx ON upload_outcomes (created_at DESC)`

const insertSQL = `
INSERT INTO upload_outcomes (
    upload_id, file_name, status, error_kind, error_code, message,
    rows_accepted, rows_forwarded, failed_row, client_ip, user_agent, duration_ms
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// Store writes outcome rows to PostgreSQL. It implements core.Recorder.
type Store struct {
	db DBTX
}

// NewStore creates a Store over db.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the outcome table and its index if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createTableSQL, createIndexSQL} {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure audit schema: %w", err)
		}
	}
	return nil
}

// Record inserts one outcome row.
func (s *Store) Record(ctx context.Context, rec core.OutcomeRecord) error {
	id, err := ToPgUUID(rec.UploadID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, insertSQL,
		id,
		ToPgText(rec.FileName),
		string(rec.State),
		ToPgText(rec.ErrorKind),
		ToPgText(rec.ErrorCode),
		ToPgText(rec.Message),
		int32(rec.Accepted),
		int32(rec.Forwarded),
		ToPgInt4(rec.FailedRow),
		ToPgText(rec.ClientIP),
		ToPgText(rec.UserAgent),
		rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert upload outcome: %w", err)
	}
	return nil
}

/* ----------------------------------------
	Pgx Helpers
---------------------------------------- */

// ToPgUUID parses s into a pgtype.UUID.
func ToPgUUID(s string) (pgtype.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("invalid upload id %q: %w", s, err)
	}
	return pgtype.UUID{Bytes: id, Valid: true}, nil
}

// ToPgText maps blank strings to NULL.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgInt4 maps zero to NULL.
func ToPgInt4(n int) pgtype.Int4 {
	if n == 0 {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(n), Valid: true}
}
