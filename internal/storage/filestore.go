// Package storage persists uploaded expense proof files on local disk and
// hands back stable reference paths for the ledger to store.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore saves uploads under a base directory with generated names so
// client-supplied filenames can never collide or escape the directory.
type FileStore struct {
	basePath string
}

// NewFileStore creates a FileStore rooted at basePath, creating the
// directory if needed.
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("could not create upload directory: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// Save writes the content to a new file and returns its reference path
// relative to the store root. The original filename contributes only its
// extension.
func (fs *FileStore) Save(originalName string, content io.Reader) (string, error) {
	ext := filepath.Ext(filepath.Base(originalName))
	if strings.ContainsAny(ext, "/\\") {
		ext = ""
	}
	name := uuid.New().String() + ext

	target := filepath.Join(fs.basePath, name)
	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("could not create proof file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(target) // Clean up partial file
		return "", fmt.Errorf("could not write proof file: %w", err)
	}
	return name, nil
}

// Open returns a reader for a previously stored reference.
func (fs *FileStore) Open(ref string) (io.ReadCloser, error) {
	clean := filepath.Base(ref)
	return os.Open(filepath.Join(fs.basePath, clean))
}
