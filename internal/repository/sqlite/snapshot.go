package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/oppkey/leadboard/internal/model"
	"github.com/oppkey/leadboard/internal/repository"
)

// Compile-time check that *DB satisfies the store interface.
var _ repository.SnapshotStore = (*DB)(nil)

// Load returns the snapshot stored under key, or false when none exists.
func (db *DB) Load(ctx context.Context, key string) ([]model.Record, bool, error) {
	var payload string
	err := db.conn.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE key = ?`,
		key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: loading snapshot: %w", err)
	}

	var records []model.Record
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		// A corrupt payload behaves like a cache miss; the caller will
		// refresh and overwrite it.
		return nil, false, nil
	}
	return records, true, nil
}

// Save stores records under key, replacing any previous snapshot for the
// same key.
func (db *DB) Save(ctx context.Context, key string, records []model.Record) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("sqlite: encoding snapshot: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO snapshots (id, key, payload, row_count, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			row_count = excluded.row_count,
			created_at = excluded.created_at`,
		xid.New().String(),
		key,
		string(payload),
		len(records),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving snapshot: %w", err)
	}
	return nil
}
