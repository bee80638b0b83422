package repository

import (
	"context"

	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
)

// SnapshotRepository mirrors the latest run snapshot for out-of-process readers.
type SnapshotRepository interface {
	Save(ctx context.Context, snap model.Snapshot) error
	Load(ctx context.Context) (*model.Snapshot, error)
	Clear(ctx context.Context) error
}
