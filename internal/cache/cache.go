// Package cache stores one fundamentals snapshot per index per calendar day.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"StockScreener/internal/model"
)

// ErrCacheCorrupt means a cache entry exists but cannot be decoded.
var ErrCacheCorrupt = errors.New("cache corrupt")

const dateLayout = "2006-01-02"

// FileCache keeps snapshots as JSON files named <index>_<date>.json.
// Entries are never overwritten or deleted; the first writer of a day wins.
type FileCache struct {
	Dir string
	Now func() time.Time
}

// NewFileCache creates the cache directory if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{Dir: dir, Now: time.Now}, nil
}

// Path returns today's entry path for indexID, using the local calendar date.
func (c *FileCache) Path(indexID string) string {
	return filepath.Join(c.Dir, fmt.Sprintf("%s_%s.json", indexID, c.Now().Format(dateLayout)))
}

// Get returns today's snapshot for indexID. A missing entry is reported
// with ok=false and no error.
func (c *FileCache) Get(indexID string) (*model.Snapshot, bool, error) {
	path := c.Path(indexID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[INFO] cache miss: %s", path)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: read %s: %w", ErrCacheCorrupt, path, err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, fmt.Errorf("%w: decode %s: %w", ErrCacheCorrupt, path, err)
	}
	// only complete snapshots are written, so an empty one was not put here
	if snap.Index != indexID || len(snap.Companies) == 0 {
		return nil, false, fmt.Errorf("%w: %s holds index %q with %d companies",
			ErrCacheCorrupt, path, snap.Index, len(snap.Companies))
	}
	return &snap, true, nil
}

// Put stores snap as today's entry for indexID. If the entry already exists
// the call is a silent no-op.
func (c *FileCache) Put(indexID string, snap *model.Snapshot) error {
	path := c.Path(indexID)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	// Write the full entry under a temporary name, then link it into place.
	// os.Link fails if the target exists, which gives exclusive creation
	// without readers ever seeing a half-written file.
	tmp, err := os.CreateTemp(c.Dir, ".tmp-"+indexID+"-*")
	if err != nil {
		return fmt.Errorf("create temp entry: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp entry: %w", err)
	}

	if err := os.Link(tmp.Name(), path); err != nil {
		if os.IsExist(err) {
			log.Printf("[INFO] cache entry already present, keeping it: %s", path)
			return nil
		}
		return fmt.Errorf("publish entry: %w", err)
	}
	log.Printf("[INFO] cached snapshot: %s", path)
	return nil
}
