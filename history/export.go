package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ZaguanLabs/polyglot"
)

// ExportVersion is the version written into exports.
const ExportVersion = "1.0"

// ExportFormat represents the JSON structure for history export/import.
type ExportFormat struct {
	Version    string                       `json:"version"`
	ExportedAt string                       `json:"exported_at"`
	Entries    []polyglot.TranslationRecord `json:"entries"`
}

// Export writes the log to w, most recent first.
func Export(w io.Writer, s *Store, now time.Time) error {
	export := ExportFormat{
		Version:    ExportVersion,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Entries:    s.Entries(),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ExportToFile exports the log to a file.
// The path is provided by the caller and is intentionally user-controlled.
func ExportToFile(path string, s *Store, now time.Time) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := Export(f, s, now); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string
	Imported int
	Skipped  int
}

// Import appends the exported entries to s. Entries are applied oldest
// first so the log keeps their relative order.
func Import(ctx context.Context, r io.Reader, s *Store) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{Version: export.Version}
	for i := len(export.Entries) - 1; i >= 0; i-- {
		rec := export.Entries[i]
		if err := rec.Validate(); err != nil {
			result.Skipped++
			continue
		}
		if err := s.Append(ctx, rec); err != nil {
			return result, err
		}
		result.Imported++
	}
	return result, nil
}

// ImportFromFile imports history entries from a file.
// The path is provided by the caller and is intentionally user-controlled.
func ImportFromFile(ctx context.Context, path string, s *Store) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return Import(ctx, f, s)
}
