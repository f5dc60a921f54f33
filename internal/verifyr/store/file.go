package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// FileStore keeps the snapshot as one JSON document.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store: path required")
	}
	return &FileStore{path: path}, nil
}

func (f *FileStore) Load(ctx context.Context) (*Snapshot, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := checkVersion(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes to path.tmp and renames it over path.
func (f *FileStore) Save(ctx context.Context, s *Snapshot) error {
	tmp := f.path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Close() error { return nil }
