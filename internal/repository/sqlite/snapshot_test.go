package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/oppkey/leadboard/internal/model"
	"github.com/oppkey/leadboard/internal/repository"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	lat := 35.68
	records := []model.Record{
		{
			UserID:       "1",
			Username:     "alice",
			Organization: "Ricoh",
			Country:      "Japan",
			Latitude:     &lat,
			CreatedAt:    time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			PostsRead:    12,
		},
	}

	key := repository.SnapshotKey([]string{"a.csv", "b.csv", "c.csv"}, "v1")
	if err := db.Save(ctx, key, records); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := db.Load(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Load = (ok=%v, err=%v), want hit", ok, err)
	}
	if len(got) != 1 {
		t.Fatalf("loaded %d records, want 1", len(got))
	}
	if got[0].Username != "alice" || got[0].Country != "Japan" || got[0].PostsRead != 12 {
		t.Errorf("record = %+v", got[0])
	}
	if got[0].Latitude == nil || *got[0].Latitude != lat {
		t.Errorf("latitude did not survive the round trip: %v", got[0].Latitude)
	}
	if !got[0].CreatedAt.Equal(records[0].CreatedAt) {
		t.Errorf("created_at = %v, want %v", got[0].CreatedAt, records[0].CreatedAt)
	}
}

func TestLoadMiss(t *testing.T) {
	db := newTestDB(t)
	if _, ok, err := db.Load(context.Background(), "no-such-key"); ok || err != nil {
		t.Errorf("Load miss = (ok=%v, err=%v), want clean miss", ok, err)
	}
}

func TestSaveReplacesExistingSnapshot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	key := repository.SnapshotKey([]string{"a.csv"}, "v1")

	if err := db.Save(ctx, key, []model.Record{{UserID: "1"}}); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := db.Save(ctx, key, []model.Record{{UserID: "2"}, {UserID: "3"}}); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, ok, err := db.Load(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Load = (ok=%v, err=%v)", ok, err)
	}
	if len(got) != 2 || got[0].UserID != "2" {
		t.Errorf("snapshot not replaced: %+v", got)
	}
}

func TestSnapshotKeySensitivity(t *testing.T) {
	base := repository.SnapshotKey([]string{"a", "b", "c"}, "v1")

	if repository.SnapshotKey([]string{"a", "b", "c"}, "v2") == base {
		t.Error("rule-set version change did not change the key")
	}
	if repository.SnapshotKey([]string{"a", "b", "d"}, "v1") == base {
		t.Error("locator change did not change the key")
	}
	if repository.SnapshotKey([]string{"c", "b", "a"}, "v1") == base {
		t.Error("locator order change did not change the key")
	}
	if repository.SnapshotKey([]string{"a", "b", "c"}, "v1") != base {
		t.Error("key is not deterministic")
	}
}
