package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/seu-repo/restoran-pos/internal/domain"
	"github.com/seu-repo/restoran-pos/internal/ports"
)

// TriggerRepository keeps the trigger set in a human-editable JSON file.
type TriggerRepository struct {
	path string
	mu   sync.RWMutex
	log  *zap.Logger
}

func NewTriggerRepository(path string, log *zap.Logger) ports.TriggerRepository {
	return &TriggerRepository{
		path: path,
		log:  log,
	}
}

// Load reads the file. A missing file is an empty set; unreadable or malformed JSON is an error.
func (r *TriggerRepository) Load(ctx context.Context) (domain.TriggerSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		r.log.Debug("Trigger file not found, starting empty", zap.String("path", r.path))
		return domain.TriggerSet{}, nil
	}
	if err != nil {
		return domain.TriggerSet{}, fmt.Errorf("read trigger file %s: %w", r.path, err)
	}

	var set domain.TriggerSet
	if err := json.Unmarshal(data, &set); err != nil {
		return domain.TriggerSet{}, fmt.Errorf("parse trigger file %s: %w", r.path, err)
	}
	return set, nil
}

// Save rewrites the whole file with 2-space indentation.
func (r *TriggerRepository) Save(ctx context.Context, set domain.TriggerSet) error {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("encode trigger set: %w", err)
	}
	data = append(data, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create trigger directory: %w", err)
		}
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write trigger file %s: %w", r.path, err)
	}

	r.log.Debug("Trigger file written",
		zap.String("path", r.path),
		zap.Int("intents", set.Len()),
	)
	return nil
}
