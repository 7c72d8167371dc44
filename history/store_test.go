package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ZaguanLabs/polyglot"
	"github.com/ZaguanLabs/polyglot/metrics"
)

var baseTime = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func record(i int) polyglot.TranslationRecord {
	return polyglot.NewTranslationRecord(
		fmt.Sprintf("text %d", i),
		fmt.Sprintf("texto %d", i),
		"en", "es",
		baseTime.Add(time.Duration(i)*time.Minute),
	)
}

// failingBlobStore fails every Set after the first failAfter calls.
type failingBlobStore struct {
	*MemoryBlobStore
	failAfter int
	sets      int
}

func (f *failingBlobStore) Set(ctx context.Context, key string, data []byte) error {
	f.sets++
	if f.sets > f.failAfter {
		return errors.New("disk full")
	}
	return f.MemoryBlobStore.Set(ctx, key, data)
}

func openStore(t *testing.T, blobs BlobStore, opts ...Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), blobs, opts...)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func TestOpen_MissingKey(t *testing.T) {
	s := openStore(t, NewMemoryBlobStore())

	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if s.Key() != StorageKey {
		t.Errorf("Key() = %q, want %q", s.Key(), StorageKey)
	}
}

func TestOpen_CorruptBlob(t *testing.T) {
	blobs := NewMemoryBlobStore()
	_ = blobs.Set(context.Background(), StorageKey, []byte("{not json"))

	_, err := Open(context.Background(), blobs)
	var storageErr *polyglot.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if storageErr.Key != StorageKey {
		t.Errorf("Key = %q", storageErr.Key)
	}
}

func TestOpen_TruncatesOversizedLog(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobStore()

	// Build 60 entries by hand, bypassing the bound.
	entries := make([]polyglot.TranslationRecord, 60)
	for i := range entries {
		entries[i] = record(60 - i)
	}
	s := openStore(t, blobs)
	s.entries = entries
	if err := s.commit(ctx, "seed", entries); err != nil {
		t.Fatal(err)
	}

	reopened := openStore(t, blobs)
	if reopened.Len() != MaxEntries {
		t.Fatalf("Len() = %d, want %d", reopened.Len(), MaxEntries)
	}
	if reopened.Entries()[0] != record(60) {
		t.Error("truncation should keep the most recent entries")
	}
}

func TestAppend_MostRecentFirst(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, NewMemoryBlobStore())

	for i := 1; i <= 3; i++ {
		if err := s.Append(ctx, record(i)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got := s.Entries()
	want := []polyglot.TranslationRecord{record(3), record(2), record(1)}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAppend_BoundedAtMaxEntries(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, NewMemoryBlobStore())

	for i := 1; i <= MaxEntries+1; i++ {
		if err := s.Append(ctx, record(i)); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	got := s.Entries()
	if len(got) != MaxEntries {
		t.Fatalf("len = %d, want %d", len(got), MaxEntries)
	}
	if got[0] != record(MaxEntries+1) {
		t.Errorf("first = %+v, want newest", got[0])
	}
	if got[len(got)-1] != record(2) {
		t.Errorf("last = %+v, want record 2 (record 1 evicted)", got[len(got)-1])
	}
}

func TestAppend_RejectsInvalidRecord(t *testing.T) {
	s := openStore(t, NewMemoryBlobStore())

	tests := []struct {
		name  string
		rec   polyglot.TranslationRecord
		field string
	}{
		{"missing input language", polyglot.TranslationRecord{OutputLanguage: "es", Timestamp: "2024-03-10T12:00:00.000Z"}, "inputLanguage"},
		{"missing output language", polyglot.TranslationRecord{InputLanguage: "en", Timestamp: "2024-03-10T12:00:00.000Z"}, "outputLanguage"},
		{"bad timestamp", polyglot.TranslationRecord{InputLanguage: "en", OutputLanguage: "es", Timestamp: "yesterday"}, "timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Append(context.Background(), tt.rec)
			var valErr *polyglot.ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if valErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", valErr.Field, tt.field)
			}
		})
	}
	if s.Len() != 0 {
		t.Errorf("invalid records should not be stored, Len() = %d", s.Len())
	}
}

func TestAppend_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobStore()

	s := openStore(t, blobs)
	_ = s.Append(ctx, record(1))
	_ = s.Append(ctx, record(2))

	reopened := openStore(t, blobs)
	got := reopened.Entries()
	if len(got) != 2 || got[0] != record(2) || got[1] != record(1) {
		t.Errorf("reopened entries = %+v", got)
	}
}

func TestAppend_RollbackOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	blobs := &failingBlobStore{MemoryBlobStore: NewMemoryBlobStore(), failAfter: 1}
	s := openStore(t, blobs)

	if err := s.Append(ctx, record(1)); err != nil {
		t.Fatalf("first Append() error = %v", err)
	}

	err := s.Append(ctx, record(2))
	var storageErr *polyglot.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}

	got := s.Entries()
	if len(got) != 1 || got[0] != record(1) {
		t.Errorf("log should be unchanged after failed persist, got %+v", got)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobStore()
	s := openStore(t, blobs)
	_ = s.Append(ctx, record(1))

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after Clear", s.Len())
	}

	data, ok, _ := blobs.Get(ctx, StorageKey)
	if !ok || string(data) != "[]" {
		t.Errorf("persisted blob = %q, want []", data)
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, NewMemoryBlobStore())
	for i := 1; i <= 3; i++ {
		_ = s.Append(ctx, record(i))
	}

	removed, err := s.Remove(ctx, 1)
	if err != nil || !removed {
		t.Fatalf("Remove(1) = %v, %v", removed, err)
	}

	got := s.Entries()
	if len(got) != 2 || got[0] != record(3) || got[1] != record(1) {
		t.Errorf("entries after Remove(1) = %+v", got)
	}
}

func TestRemove_OutOfRange(t *testing.T) {
	ctx := context.Background()
	blobs := &failingBlobStore{MemoryBlobStore: NewMemoryBlobStore(), failAfter: 2}
	s := openStore(t, blobs)
	_ = s.Append(ctx, record(1))
	_ = s.Append(ctx, record(2))

	for _, index := range []int{-1, 2, 100} {
		removed, err := s.Remove(ctx, index)
		if err != nil || removed {
			t.Errorf("Remove(%d) = %v, %v; want false, nil", index, removed, err)
		}
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if blobs.sets != 2 {
		t.Errorf("out-of-range removes should not persist, sets = %d", blobs.sets)
	}
}

func TestRestore_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, NewMemoryBlobStore())
	for i := 1; i <= 3; i++ {
		_ = s.Append(ctx, record(i))
	}

	for range 2 {
		got, err := s.Restore(ctx, record(1))
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if got != record(1) {
			t.Errorf("Restore() = %+v", got)
		}
	}

	entries := s.Entries()
	want := []polyglot.TranslationRecord{record(1), record(3), record(2)}
	if len(entries) != len(want) {
		t.Fatalf("len = %d, want %d", len(entries), len(want))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestRestore_NotInLog(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, NewMemoryBlobStore())
	_ = s.Append(ctx, record(1))

	if _, err := s.Restore(ctx, record(9)); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	entries := s.Entries()
	if len(entries) != 2 || entries[0] != record(9) {
		t.Errorf("entries = %+v", entries)
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, NewMemoryBlobStore())
	_ = s.Append(ctx, record(1))

	entries := s.Entries()
	entries[0].OutputText = "mutated"

	if s.Entries()[0].OutputText == "mutated" {
		t.Error("Entries() should return a copy")
	}
}

func TestStore_Metrics(t *testing.T) {
	ctx := context.Background()
	m := metrics.New(prometheus.NewRegistry())
	blobs := &failingBlobStore{MemoryBlobStore: NewMemoryBlobStore(), failAfter: 1}
	s := openStore(t, blobs, WithMetrics(m))

	_ = s.Append(ctx, record(1))
	_ = s.Append(ctx, record(2))

	if got := testutil.ToFloat64(m.HistoryOperations.WithLabelValues("append")); got != 2 {
		t.Errorf("append operations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.HistoryStorageError); got != 1 {
		t.Errorf("storage errors = %v, want 1", got)
	}
}

func TestStore_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, NewMemoryBlobStore())

	done := make(chan struct{})
	for i := range 20 {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			_ = s.Append(ctx, record(i))
		}(i)
	}
	for range 20 {
		<-done
	}

	if s.Len() != 20 {
		t.Errorf("Len() = %d, want 20", s.Len())
	}
}
