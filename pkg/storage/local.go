package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/scanwise/invoice-extractor/pkg/logger"
)

// Store abstracts the temporary artifact store so tests can substitute it.
type Store interface {
	// CreateWorkspace makes an isolated directory for one request and
	// returns its path.
	CreateWorkspace(requestID string) (string, error)
	// SaveUpload writes the raw upload into the workspace and returns the
	// file path.
	SaveUpload(workspace, filename string, data []byte) (string, error)
	// Remove deletes a single tracked artifact.
	Remove(path string) error
	// RemoveWorkspace deletes the workspace directory itself.
	RemoveWorkspace(workspace string) error
}

// LocalStore keeps per-request artifacts under a root directory on local
// disk. Each request gets its own subdirectory so concurrent uploads with
// the same filename never collide.
type LocalStore struct {
	root   string
	logger logger.Logger
}

func NewLocalStore(root string, log logger.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}
	return &LocalStore{root: root, logger: log}, nil
}

func (s *LocalStore) CreateWorkspace(requestID string) (string, error) {
	dir := filepath.Join(s.root, requestID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create workspace: %w", err)
	}
	return dir, nil
}

func (s *LocalStore) SaveUpload(workspace, filename string, data []byte) (string, error) {
	// Drop any path components a hostile client put in the filename.
	dest := filepath.Join(workspace, filepath.Base(filename))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	s.logger.Info("Saved upload",
		logger.String("path", dest),
		logger.Int("size", len(data)),
	)
	return dest, nil
}

func (s *LocalStore) Remove(path string) error {
	return os.Remove(path)
}

func (s *LocalStore) RemoveWorkspace(workspace string) error {
	return os.RemoveAll(workspace)
}
