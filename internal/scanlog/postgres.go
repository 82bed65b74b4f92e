package scanlog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/joinby-app/qr-gateway/internal/model"
)

// Store persists scan events in Postgres. The document store itself is
// never written; this is gateway-local analytics only.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and ensures the scan table exists.
func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("scanlog: database connection string is empty")
	}

	ctx := context.Background()
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("scanlog: connecting: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("scanlog: ping: %w", err)
	}

	store := &Store{pool: pool}

	if err := store.createTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) createTable(ctx context.Context) error {
	createTableQuery := `
		CREATE TABLE IF NOT EXISTS qr_scans (
			id BIGSERIAL PRIMARY KEY,
			short_id VARCHAR(64) NOT NULL,
			owner_user_id VARCHAR(128) NOT NULL,
			request_id VARCHAR(64) NOT NULL UNIQUE,
			occurred_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
	`

	if _, err := s.pool.Exec(ctx, createTableQuery); err != nil {
		return fmt.Errorf("scanlog: creating table: %w", err)
	}

	createIndexQuery := `
		CREATE INDEX IF NOT EXISTS idx_qr_scans_short_id ON qr_scans(short_id);
	`

	if _, err := s.pool.Exec(ctx, createIndexQuery); err != nil {
		return fmt.Errorf("scanlog: creating index: %w", err)
	}

	return nil
}

// RecordScans inserts a batch of events. A replayed request id (unique
// violation) is silently skipped; any other failure aborts the batch.
func (s *Store) RecordScans(ctx context.Context, events []model.ScanEvent) error {
	for _, event := range events {
		_, err := s.pool.Exec(ctx,
			"INSERT INTO qr_scans (short_id, owner_user_id, request_id, occurred_at) VALUES ($1, $2, $3, $4)",
			event.ShortID, event.OwnerUserID, event.RequestID, event.OccurredAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				continue
			}
			return fmt.Errorf("scanlog: inserting scan %s: %w", event.ShortID, err)
		}
	}

	return nil
}

// Ping reports store health for the /ping endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
