// Package repository defines the storage interfaces the service layer
// depends on.
package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/oppkey/leadboard/internal/model"
)

// SnapshotStore persists normalized record sets between renders so a
// filter change does not re-fetch the three exports.
type SnapshotStore interface {
	// Load returns the snapshot stored under key. The bool is false when
	// no snapshot exists for that key.
	Load(ctx context.Context, key string) ([]model.Record, bool, error)
	// Save stores records under key, replacing any previous snapshot for
	// the same key.
	Save(ctx context.Context, key string, records []model.Record) error
}

// SnapshotKey derives the cache key from the source locators and the
// normalization rule-set version. Changing any locator, their order, or
// the sentinel rules yields a new key, which is exactly the invalidation
// the cache contract requires.
func SnapshotKey(locators []string, rulesVersion string) string {
	h := sha256.New()
	h.Write([]byte(rulesVersion))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(locators, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}
