package pipeline

import (
	"sync"

	"github.com/scanwise/invoice-extractor/pkg/logger"
	"github.com/scanwise/invoice-extractor/pkg/storage"
)

// Janitor tracks every temporary artifact a request produces and removes all
// of them exactly once on the way out. Deletion failures are logged, never
// propagated, so cleanup can run on any exit path including panics.
type Janitor struct {
	mu        sync.Mutex
	store     storage.Store
	logger    logger.Logger
	paths     []string
	workspace string
	released  bool
}

func NewJanitor(store storage.Store, workspace string, log logger.Logger) *Janitor {
	return &Janitor{store: store, workspace: workspace, logger: log}
}

// Track registers an artifact for removal. Safe for concurrent use: page
// rendering registers images as they are produced.
func (j *Janitor) Track(path string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.paths = append(j.paths, path)
}

// ReleaseAll removes every tracked artifact and then the workspace directory.
// Idempotent; the second and later calls are no-ops.
func (j *Janitor) ReleaseAll() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.released {
		return
	}
	j.released = true

	for _, path := range j.paths {
		if err := j.store.Remove(path); err != nil {
			j.logger.Warn("Failed to remove artifact",
				logger.String("path", path),
				logger.Error(err),
			)
		}
	}
	j.paths = nil

	if j.workspace == "" {
		return
	}
	if err := j.store.RemoveWorkspace(j.workspace); err != nil {
		j.logger.Warn("Failed to remove workspace",
			logger.String("workspace", j.workspace),
			logger.Error(err),
		)
	}
}
