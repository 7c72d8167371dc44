package history

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileBlobStore keeps each blob in its own JSON file under a directory.
type FileBlobStore struct {
	dir string
}

// NewFileBlobStore creates a store rooted at dir, creating it if needed.
func NewFileBlobStore(dir string) (*FileBlobStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	return &FileBlobStore{dir: dir}, nil
}

// Path returns the file that holds key.
func (f *FileBlobStore) Path(key string) string {
	return filepath.Join(f.dir, fileName(key)+".json")
}

// Get reads the blob for key.
func (f *FileBlobStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set writes the blob for key. The file is replaced atomically.
func (f *FileBlobStore) Set(ctx context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, fileName(key)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, f.Path(key)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// fileName maps a key onto a portable file name. Bytes outside
// [A-Za-z0-9.-] are written as '_' plus two hex digits, so distinct keys
// never share a file.
func fileName(key string) string {
	const hex = "0123456789abcdef"
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '.':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}

var _ BlobStore = (*FileBlobStore)(nil)
