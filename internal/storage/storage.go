// Package storage keeps a local ledger of pending scrape snapshots.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// SnapshotRecord is a snapshot accepted for asynchronous processing.
type SnapshotRecord struct {
	ID          string    `json:"snapshot_id"`
	DatasetID   string    `json:"dataset_id"`
	ProgressURL string    `json:"progress_url"`
	SubmittedAt time.Time `json:"submitted_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Store tracks snapshots that still need to be checked.
type Store interface {
	Close() error
	RecordSnapshot(rec SnapshotRecord) error
	PendingSnapshots() ([]SnapshotRecord, error)
	ForgetSnapshot(id string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	SnapshotTTL     time.Duration
	CleanupInterval time.Duration
}

const (
	defaultSnapshotTTL     = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = defaultSnapshotTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                                { return nil }
func (noopStore) RecordSnapshot(SnapshotRecord) error         { return nil }
func (noopStore) PendingSnapshots() ([]SnapshotRecord, error) { return nil, nil }
func (noopStore) ForgetSnapshot(string) error                 { return nil }
