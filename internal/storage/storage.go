package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/cfp-events/internal/cfp"
)

const (
	snapshotFile = "snapshot.json"
	detailsFile  = "details.json"
)

// ErrIndexOutOfRange is returned by EventByIndex for positions outside the
// stored listing
var ErrIndexOutOfRange = errors.New("index out of range")

// Storage handles persistence of snapshots and cached details
type Storage struct {
	dataDir string
}

// New creates a Storage rooted at dataDir, creating the directory if needed.
// A leading "~/" is expanded to the user's home directory.
func New(dataDir string) (*Storage, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{dataDir: dataDir}, nil
}

// Dir returns the resolved data directory
func (s *Storage) Dir() string {
	return s.dataDir
}

// LoadSnapshot loads the last listing snapshot.
// A missing file yields an empty snapshot.
func (s *Storage) LoadSnapshot() (*cfp.Snapshot, error) {
	snapshot := cfp.NewSnapshot()
	found, err := s.readJSON(snapshotFile, snapshot)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	if !found {
		return cfp.NewSnapshot(), nil
	}

	if snapshot.Events == nil {
		snapshot.Events = make(map[string]*cfp.Event)
	}
	return snapshot, nil
}

// SaveSnapshot writes the snapshot, stamping its update time
func (s *Storage) SaveSnapshot(snapshot *cfp.Snapshot) error {
	snapshot.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := s.writeJSON(snapshotFile, snapshot); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// SaveListing replaces the stored snapshot with the given listing
func (s *Storage) SaveListing(events []*cfp.Event) error {
	return s.SaveSnapshot(cfp.CreateSnapshot(events, ""))
}

// EventByIndex returns the event at a 1-based position of the stored
// listing, as shown by "cfp-events list"
func (s *Storage) EventByIndex(index int) (*cfp.Event, error) {
	snapshot, err := s.LoadSnapshot()
	if err != nil {
		return nil, err
	}

	events := snapshot.Ordered()
	if index < 1 || index > len(events) {
		return nil, fmt.Errorf("%w: %d (stored listing has %d events)", ErrIndexOutOfRange, index, len(events))
	}
	return events[index-1], nil
}

// LoadDetailCache loads the detail cache and applies ttl to it.
// A missing file yields an empty cache.
func (s *Storage) LoadDetailCache(ttl time.Duration) (*cfp.DetailCache, error) {
	cache := cfp.NewDetailCache()
	if _, err := s.readJSON(detailsFile, cache); err != nil {
		return nil, fmt.Errorf("loading detail cache: %w", err)
	}

	if cache.Entries == nil {
		cache.Entries = make(map[string]*cfp.CachedDetail)
	}
	// TTL is excluded from JSON
	cache.TTL = ttl
	return cache, nil
}

// SaveDetailCache drops expired entries and writes the cache
func (s *Storage) SaveDetailCache(cache *cfp.DetailCache) error {
	cache.CleanExpired()
	if err := s.writeJSON(detailsFile, cache); err != nil {
		return fmt.Errorf("saving detail cache: %w", err)
	}
	return nil
}

func (s *Storage) readJSON(name string, v interface{}) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing %s: %w", name, err)
	}
	return true, nil
}

// writeJSON replaces name atomically through a temp file
func (s *Storage) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	path := filepath.Join(s.dataDir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
