package storage

import "vmcp/internal/domain"

// Storage persists the last run's results (consumed by the failures viewer
// and the CLI formatter).
type Storage interface {
	Save(output *domain.LastRunOutput) error
	Load() (*domain.LastRunOutput, error)
}
