// Package store is the filesystem object store backing document
// uploads. Keys are opaque uuids; the two-level fan-out keeps any one
// directory from growing unbounded.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/emitia/nfse-backoffice/internal/config"
	"github.com/emitia/nfse-backoffice/internal/document/domain"
)

type DiskStore struct {
	root string
}

func NewDiskStore(cfg config.Config) (*DiskStore, error) {
	if err := os.MkdirAll(cfg.DocumentDir, 0o755); err != nil {
		return nil, fmt.Errorf("document store root: %w", err)
	}
	return &DiskStore{root: cfg.DocumentDir}, nil
}

// Put streams r into the object at key, enforcing maxBytes. A partial
// write is removed before the error is returned.
func (s *DiskStore) Put(key string, r io.Reader, maxBytes int64) (int64, error) {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(f, io.LimitReader(r, maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > maxBytes {
		err = domain.ErrDocumentTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return written, nil
}

func (s *DiskStore) Get(key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *DiskStore) Remove(key string) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *DiskStore) path(key string) string {
	if len(key) < 2 {
		return filepath.Join(s.root, key)
	}
	return filepath.Join(s.root, key[:2], key)
}
