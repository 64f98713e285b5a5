package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"emitscan/internal/logger"
	"emitscan/internal/types"
)

// entryVersion guards against loading blobs written by an older layout.
const entryVersion = 1

// Entry is the single persisted blob: one scan's results plus the two
// timestamps that govern its lifetime. LastHeartbeat is refreshed on every
// active read and never moves backwards while the entry is alive.
type Entry struct {
	Version       int                    `json:"version"`
	Results       []types.AnalysisResult `json:"results"`
	ProducedAt    time.Time              `json:"produced_at"`
	LastHeartbeat time.Time              `json:"last_heartbeat"`
}

// ResultCache persists the last scan to a single JSON file so a long-lived
// session does not force a re-scan on every read. The file is always
// written whole via a temp file and rename; a mutex serializes writers
// within the process.
type ResultCache struct {
	path string
	ttl  time.Duration

	mu  sync.Mutex
	now func() time.Time
}

func New(path string, ttl time.Duration) *ResultCache {
	return &ResultCache{path: path, ttl: ttl, now: time.Now}
}

// Save atomically overwrites the cache with a fresh entry. The heartbeat
// starts at the write time.
func (c *ResultCache) Save(ctx context.Context, results []types.AnalysisResult, producedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := Entry{
		Version:       entryVersion,
		Results:       results,
		ProducedAt:    producedAt,
		LastHeartbeat: c.now(),
	}
	if err := c.write(&entry); err != nil {
		return fmt.Errorf("failed to save cache: %w", err)
	}
	logger.Debug(ctx, "Cache saved", "path", c.path, "results", len(results))
	return nil
}

// Load returns the stored entry, or nil on a miss. An expired, corrupt or
// version-mismatched file is deleted and treated as a miss; a cache problem
// is never fatal to the caller.
func (c *ResultCache) Load(ctx context.Context) (*Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.read(ctx)
	if !ok {
		return nil, nil
	}
	return entry, nil
}

// Touch refreshes the heartbeat without altering results, keeping an
// actively viewed entry alive across repeated reads. Touching a missing or
// expired entry is a no-op.
func (c *ResultCache) Touch(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.read(ctx)
	if !ok {
		return nil
	}
	entry.LastHeartbeat = c.now()
	if err := c.write(entry); err != nil {
		return fmt.Errorf("failed to touch cache: %w", err)
	}
	return nil
}

// Clear removes the cache unconditionally.
func (c *ResultCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	logger.Debug(ctx, "Cache cleared", "path", c.path)
	return nil
}

// read loads and validates the entry under the held lock. Any defect
// deletes the file and reports a miss.
func (c *ResultCache) read(ctx context.Context) (*Entry, bool) {
	b, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(b, &entry); err != nil {
		logger.Warn(ctx, "Cache file corrupt, discarding", "path", c.path, "error", err)
		os.Remove(c.path)
		return nil, false
	}
	if entry.Version != entryVersion {
		logger.Warn(ctx, "Cache version mismatch, discarding",
			"path", c.path, "version", entry.Version, "expected", entryVersion)
		os.Remove(c.path)
		return nil, false
	}
	if c.now().Sub(entry.LastHeartbeat) > c.ttl {
		logger.Debug(ctx, "Cache expired, discarding", "path", c.path)
		os.Remove(c.path)
		return nil, false
	}
	return &entry, true
}

// write serializes the entry to a sibling temp file and renames it into
// place so readers never observe a partial blob.
func (c *ResultCache) write(entry *Entry) error {
	b, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
