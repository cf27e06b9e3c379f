// Package cache — bolt.go
//
// BoltDB-backed standard-form result cache for fbas-analyzer.
//
// Schema (BoltDB bucket layout):
//
//	/analyses
//	    key:   sha256(standard-form JSON)  [32 bytes hex-encoded = 64 chars]
//	    value: JSON-encoded Result
//
//	/meta
//	    key:   "schema_version"
//	    value: "1"
//
// Consistency model:
//   - Single-process, single-writer (BoltDB does not support concurrent writers).
//   - All writes use ACID transactions (bbolt Tx.Commit()).
//   - Reads use read-only transactions (bbolt.View()).
//   - CRC32 integrity check on database open (bbolt built-in).
//
// Two FBASs that serialize to the same standard form (see fbasio.StandardForm)
// share a cache entry, regardless of their original public-key labels or
// NodeId numbering — this is what makes the cache key meaningful across runs.
//
// Failure modes:
//   - BoltDB file corruption: bbolt detects via CRC and returns an error on
//     Open(). The caller should treat this as "cache unavailable" and proceed
//     uncached rather than fail the analysis.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	// SchemaVersion is the current database schema version.
	SchemaVersion = "1"

	bucketAnalyses = "analyses"
	bucketMeta     = "meta"
)

// Result is the persisted form of a single FBAS analysis, keyed by standard
// form. NodeIds here are relative to the standard-form renumbering, not to
// any particular caller's original Fbas.
type Result struct {
	HasIntersection      bool       `json:"has_intersection"`
	MinimalQuorums       [][]uint32 `json:"minimal_quorums"`
	MinimalBlockingSets  [][]uint32 `json:"minimal_blocking_sets"`
	MinimalSplittingSets [][]uint32 `json:"minimal_splitting_sets"`
	ComputedAt           string     `json:"computed_at"` // RFC3339, supplied by caller
}

// DB wraps a BoltDB instance with typed accessors for cached analysis results.
type DB struct {
	db *bolt.DB
}

// Open opens (or creates) the BoltDB database at the given path and
// initialises the required buckets.
func Open(path string) (*DB, error) {
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("bolt.Open(%q): %w", path, err)
	}

	d := &DB{db: bdb}

	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketAnalyses, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("CreateBucketIfNotExists(%q): %w", name, err)
			}
		}
		meta := tx.Bucket([]byte(bucketMeta))
		if meta.Get([]byte("schema_version")) == nil {
			if err := meta.Put([]byte("schema_version"), []byte(SchemaVersion)); err != nil {
				return fmt.Errorf("write schema_version: %w", err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("cache database initialisation failed: %w", err)
	}

	return d, nil
}

// Close closes the underlying BoltDB file.
func (d *DB) Close() error {
	return d.db.Close()
}

// Key computes the cache key for a standard-form serialization: the hex
// SHA-256 digest of the given bytes.
func Key(standardForm []byte) string {
	h := sha256.Sum256(standardForm)
	key := make([]byte, hex.EncodedLen(len(h)))
	hex.Encode(key, h[:])
	return string(key)
}

// Get retrieves a cached result for the given standard-form bytes.
// Returns (result, true, nil) on a hit, (Result{}, false, nil) on a miss.
func (d *DB) Get(standardForm []byte) (Result, bool, error) {
	key := Key(standardForm)
	var rec Result
	found := false

	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketAnalyses))
		data := b.Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return Result{}, false, fmt.Errorf("cache.Get: %w", err)
	}
	return rec, found, nil
}

// Put writes or overwrites the cached result for the given standard-form
// bytes. Uses a single ACID write transaction.
func (d *DB) Put(standardForm []byte, result Result) error {
	key := Key(standardForm)

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache.Put marshal: %w", err)
	}

	return d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketAnalyses))
		if err := b.Put([]byte(key), data); err != nil {
			return fmt.Errorf("cache.Put bolt.Put: %w", err)
		}
		return nil
	})
}
