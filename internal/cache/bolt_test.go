package cache

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPutThenGetRoundTrips(t *testing.T) {
	db := openTestDB(t)

	standardForm := []byte(`[{"t":2,"v":[0,1,2]}]`)
	result := Result{
		HasIntersection:      true,
		MinimalQuorums:       [][]uint32{{0, 1}, {0, 2}, {1, 2}},
		MinimalBlockingSets:  [][]uint32{{0}, {1}, {2}},
		MinimalSplittingSets: nil,
		ComputedAt:           "2026-07-30T00:00:00Z",
	}

	if err := db.Put(standardForm, result); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, hit, err := db.Get(standardForm)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected a cache hit after Put")
	}
	if got.HasIntersection != result.HasIntersection {
		t.Errorf("HasIntersection = %v, want %v", got.HasIntersection, result.HasIntersection)
	}
	if len(got.MinimalQuorums) != len(result.MinimalQuorums) {
		t.Errorf("MinimalQuorums length = %d, want %d", len(got.MinimalQuorums), len(result.MinimalQuorums))
	}
}

func TestGetMissReturnsFalse(t *testing.T) {
	db := openTestDB(t)
	_, hit, err := db.Get([]byte("never written"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Fatal("expected a cache miss for unwritten key")
	}
}

func TestKeyIsStableAndSha256Sized(t *testing.T) {
	k1 := Key([]byte("same input"))
	k2 := Key([]byte("same input"))
	if k1 != k2 {
		t.Errorf("expected Key to be deterministic, got %q vs %q", k1, k2)
	}
	if len(k1) != 64 {
		t.Errorf("expected a 64-char hex-encoded sha256 digest, got length %d", len(k1))
	}

	k3 := Key([]byte("different input"))
	if k1 == k3 {
		t.Error("expected different inputs to produce different keys")
	}
}

func TestPutOverwritesExistingEntry(t *testing.T) {
	db := openTestDB(t)
	standardForm := []byte("key")

	if err := db.Put(standardForm, Result{HasIntersection: true}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := db.Put(standardForm, Result{HasIntersection: false}); err != nil {
		t.Fatalf("Put (overwrite): %v", err)
	}

	got, hit, err := db.Get(standardForm)
	if err != nil || !hit {
		t.Fatalf("Get after overwrite: hit=%v err=%v", hit, err)
	}
	if got.HasIntersection {
		t.Error("expected the overwritten value to be reflected in a later Get")
	}
}
