// Package history keeps the bounded, most-recent-first log of completed
// translations and persists it through a pluggable BlobStore.
package history

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/ZaguanLabs/polyglot"
	"github.com/ZaguanLabs/polyglot/metrics"
)

const (
	// MaxEntries is the number of records the log keeps.
	MaxEntries = 50

	// StorageKey is the blob key the log is persisted under.
	StorageKey = "translationHistory"
)

// BlobStore persists opaque values under string keys.
type BlobStore interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Set replaces the value for key.
	Set(ctx context.Context, key string, data []byte) error
}

// Store is a history log backed by a BlobStore.
// Every mutation is followed by a full overwrite of the persisted blob.
type Store struct {
	mu      sync.Mutex
	blobs   BlobStore
	key     string
	entries []polyglot.TranslationRecord
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the blob key (default: StorageKey).
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithMetrics records history mutations in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open loads the log persisted in blobs. A missing key yields an empty log.
func Open(ctx context.Context, blobs BlobStore, opts ...Option) (*Store, error) {
	s := &Store{
		blobs:  blobs,
		key:    StorageKey,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, ok, err := blobs.Get(ctx, s.key)
	if err != nil {
		return nil, &polyglot.StorageError{Key: s.key, Message: "failed to load history", Cause: err}
	}
	if !ok || len(data) == 0 {
		return s, nil
	}

	var entries []polyglot.TranslationRecord
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &polyglot.StorageError{Key: s.key, Message: "corrupt history", Cause: err}
	}
	if len(entries) > MaxEntries {
		s.logger.Warn("persisted history exceeds bound, truncating",
			zap.String("key", s.key),
			zap.Int("entries", len(entries)))
		entries = entries[:MaxEntries]
	}
	s.entries = entries
	return s, nil
}

// Key returns the blob key the log is persisted under.
func (s *Store) Key() string {
	return s.key
}

// Append adds rec as the most recent entry, dropping the oldest entry
// when the log is full.
func (s *Store) Append(ctx context.Context, rec polyglot.TranslationRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, "append", prepend(s.entries, rec))
}

// Clear empties the log.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, "clear", []polyglot.TranslationRecord{})
}

// Remove deletes the entry at index (0 is the most recent). An index
// outside the log is a no-op and reports false.
func (s *Store) Remove(ctx context.Context, index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.entries) {
		return false, nil
	}

	next := make([]polyglot.TranslationRecord, 0, len(s.entries)-1)
	next = append(next, s.entries[:index]...)
	next = append(next, s.entries[index+1:]...)
	if err := s.commit(ctx, "remove", next); err != nil {
		return false, err
	}
	return true, nil
}

// Restore moves rec to the front of the log. Entries are matched by
// timestamp only, so restoring twice leaves a single copy.
func (s *Store) Restore(ctx context.Context, rec polyglot.TranslationRecord) (polyglot.TranslationRecord, error) {
	if err := rec.Validate(); err != nil {
		return polyglot.TranslationRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]polyglot.TranslationRecord, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Timestamp != rec.Timestamp {
			kept = append(kept, e)
		}
	}
	if err := s.commit(ctx, "restore", prepend(kept, rec)); err != nil {
		return polyglot.TranslationRecord{}, err
	}
	return rec, nil
}

// Entries returns a copy of the log, most recent first.
func (s *Store) Entries() []polyglot.TranslationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]polyglot.TranslationRecord, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// commit persists next and installs it as the log. On failure the
// current log is left untouched. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, op string, next []polyglot.TranslationRecord) error {
	data, err := json.Marshal(next)
	if err != nil {
		s.metrics.HistoryOperation(op, true)
		return &polyglot.StorageError{Key: s.key, Message: "failed to encode history", Cause: err}
	}

	if err := s.blobs.Set(ctx, s.key, data); err != nil {
		s.metrics.HistoryOperation(op, true)
		s.logger.Error("history persist failed",
			zap.String("key", s.key),
			zap.String("operation", op),
			zap.Error(err))
		return &polyglot.StorageError{Key: s.key, Message: "failed to save history", Cause: err}
	}

	s.entries = next
	s.metrics.HistoryOperation(op, false)
	return nil
}

// prepend returns a new slice with rec in front of entries, bounded by MaxEntries.
func prepend(entries []polyglot.TranslationRecord, rec polyglot.TranslationRecord) []polyglot.TranslationRecord {
	n := len(entries) + 1
	if n > MaxEntries {
		n = MaxEntries
	}
	next := make([]polyglot.TranslationRecord, 0, n)
	next = append(next, rec)
	next = append(next, entries[:n-1]...)
	return next
}
