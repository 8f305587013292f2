package hotspot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/airsentry/airsentry/internal/pollution"
)

// ModelStore persists trained clustering models across restarts.
type ModelStore interface {
	// Load returns the stored model for a pollutant. ErrNoModel when none
	// exists, ErrCorruptModel when one exists but cannot be used.
	Load(ctx context.Context, pollutant pollution.Pollutant) (*Model, error)

	// Save replaces the stored model for the model's pollutant.
	Save(ctx context.Context, model *Model) error
}

// FileModelStore keeps one JSON artifact per pollutant under a directory.
// Saves are atomic (write to temp, rename) so a crashed worker never leaves
// a half-written model behind.
type FileModelStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileModelStore creates a store rooted at dir, creating it if needed.
func NewFileModelStore(dir string) (*FileModelStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	return &FileModelStore{dir: dir}, nil
}

func (s *FileModelStore) path(pollutant pollution.Pollutant) string {
	return filepath.Join(s.dir, fmt.Sprintf("hotspot_%s.json", pollutant))
}

// Load reads and validates a model artifact.
func (s *FileModelStore) Load(_ context.Context, pollutant pollution.Pollutant) (*Model, error) {
	data, err := os.ReadFile(s.path(pollutant))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoModel
		}
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptModel, err)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return &model, nil
}

// Save atomically writes a model artifact.
func (s *FileModelStore) Save(_ context.Context, model *Model) error {
	if err := model.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path(model.Pollutant) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write model artifact: %w", err)
	}
	if err := os.Rename(tmp, s.path(model.Pollutant)); err != nil {
		return fmt.Errorf("replace model artifact: %w", err)
	}
	return nil
}

// MemoryModelStore is an in-memory ModelStore for tests.
type MemoryModelStore struct {
	mu     sync.RWMutex
	models map[pollution.Pollutant]*Model
}

// NewMemoryModelStore creates an empty in-memory store.
func NewMemoryModelStore() *MemoryModelStore {
	return &MemoryModelStore{models: make(map[pollution.Pollutant]*Model)}
}

// Load returns the stored model, ErrNoModel when absent.
func (s *MemoryModelStore) Load(_ context.Context, pollutant pollution.Pollutant) (*Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	model, ok := s.models[pollutant]
	if !ok {
		return nil, ErrNoModel
	}
	return model, nil
}

// Save replaces the stored model.
func (s *MemoryModelStore) Save(_ context.Context, model *Model) error {
	if err := model.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[model.Pollutant] = model
	return nil
}

// Ensure implementations satisfy ModelStore.
var (
	_ ModelStore = (*FileModelStore)(nil)
	_ ModelStore = (*MemoryModelStore)(nil)
)
