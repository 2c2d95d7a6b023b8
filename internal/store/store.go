// Package store reads module records from the relational reporting
// store. Each module's registry config carries a parameterized query
// whose columns are already aliased to canonical field keys, so rows
// come back as loosely-typed objects the pipeline normalizes directly.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// RecordStore runs module queries against Postgres.
type RecordStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open connects to the reporting database and verifies the connection.
func Open(dsn string, maxConns int, logger *slog.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect reporting store: %w", err)
	}
	db.SetMaxOpenConns(maxConns)
	db.SetConnMaxIdleTime(5 * time.Minute)
	logger.Info("connected to reporting store", slog.Int("max_conns", maxConns))
	return db, nil
}

// New wraps an open database handle.
func New(db *sqlx.DB, logger *slog.Logger) *RecordStore {
	return &RecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "record_store")),
	}
}

// Fetch runs a module query and returns its rows as loosely-typed
// objects. A query failure degrades to an empty result rather than
// propagating: the dashboard then reports "no data" while the real
// cause lands in the log. Callers cannot distinguish an outage from an
// empty filter by payload alone, only by logs.
func (s *RecordStore) Fetch(ctx context.Context, query string, args ...any) []map[string]any {
	if s.db == nil {
		s.logger.WarnContext(ctx, "record store has no database handle, returning empty result")
		return nil
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		s.logger.ErrorContext(ctx, "module query failed, degrading to empty result",
			slog.String("error", err.Error()))
		return nil
	}
	defer rows.Close()

	var objects []map[string]any
	for rows.Next() {
		obj := make(map[string]any)
		if err := rows.MapScan(obj); err != nil {
			s.logger.ErrorContext(ctx, "row scan failed, skipping row",
				slog.String("error", err.Error()))
			continue
		}
		objects = append(objects, normalizeRow(obj))
	}
	if err := rows.Err(); err != nil {
		s.logger.ErrorContext(ctx, "row iteration failed, returning partial result",
			slog.String("error", err.Error()),
			slog.Int("rows_read", len(objects)))
	}
	return objects
}

// normalizeRow rewrites driver-specific scan types into the plain
// scalars the pipeline expects. lib/pq hands text columns back as
// []byte; everything else passes through.
func normalizeRow(obj map[string]any) map[string]any {
	for key, v := range obj {
		if b, ok := v.([]byte); ok {
			obj[key] = string(b)
		}
	}
	return obj
}
