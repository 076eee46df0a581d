// Package cartstore provides durable backends for cart slot persistence.
package cartstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStorage keeps each slot in its own JSON file under a directory.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a torn slot behind.
type FileStorage struct {
	dir string
}

// NewFileStorage creates the directory if needed and returns the storage
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cart storage dir: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

// Read returns the slot contents, or (nil, nil) if the slot is absent
func (f *FileStorage) Read(_ context.Context, slot string) ([]byte, error) {
	data, err := os.ReadFile(f.path(slot))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Write replaces the slot contents atomically
func (f *FileStorage) Write(_ context.Context, slot string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, slot+".*")
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

	return os.Rename(tmpName, f.path(slot))
}

// Delete removes the slot; deleting an absent slot is a no-op
func (f *FileStorage) Delete(_ context.Context, slot string) error {
	err := os.Remove(f.path(slot))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (f *FileStorage) path(slot string) string {
	return filepath.Join(f.dir, slot+".json")
}
