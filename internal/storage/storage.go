package storage

import (
	"context"

	"taskboard/internal/models"
)

// Storage - хранилище экспортированных снимков.
type Storage interface {
	SaveSnapshot(ctx context.Context, snap models.Snapshot) error
	LoadSnapshot(ctx context.Context) (models.Snapshot, error)

	// Закрытие соединения
	Close() error
}

var _ Storage = (*SQLiteStorage)(nil)
