package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"vmcp/internal/config"
	"vmcp/internal/domain"
	"vmcp/internal/project"
)

// JSONStorage stores run results as JSON under the active project root.
type JSONStorage struct {
	cfg *config.Config
	ctx *project.Context
}

// NewJSONStorage returns a Storage writing to the project's last-run path.
func NewJSONStorage(cfg *config.Config, ctx *project.Context) *JSONStorage {
	return &JSONStorage{cfg: cfg, ctx: ctx}
}

func (s *JSONStorage) path() (string, error) {
	root, err := s.ctx.Root()
	if err != nil {
		return "", err
	}
	return s.cfg.LastRunPath(root.Path), nil
}

// Save writes the run output, creating the artifact directory if needed.
func (s *JSONStorage) Save(output *domain.LastRunOutput) error {
	path, err := s.path()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// Load reads the last persisted run output.
func (s *JSONStorage) Load() (*domain.LastRunOutput, error) {
	path, err := s.path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var output domain.LastRunOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse results file: %w", err)
	}
	return &output, nil
}
