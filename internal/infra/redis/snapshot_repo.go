package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hiktan44/Adgeniusfashion/internal/domain"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/ports/repository"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/metrics"
)

var _ repository.SnapshotRepository = (*SnapshotRepo)(nil)

const snapshotKey = "adgenius:snapshot"

// SnapshotRepo mirrors run snapshots (metadata only, no media bytes) for other processes.
type SnapshotRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewSnapshotRepo(client RedisClient, ttl time.Duration) *SnapshotRepo {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SnapshotRepo{client: client, ttl: ttl}
}

func (r *SnapshotRepo) Save(ctx context.Context, snap model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, snapshotKey, data, r.ttl)
}

func (r *SnapshotRepo) Load(ctx context.Context) (*model.Snapshot, error) {
	data, err := r.client.Get(ctx, snapshotKey)
	if errors.Is(err, ErrNil) {
		metrics.IncCacheRequest("snapshot", "miss")
		return nil, domain.ErrNotFound
	}
	if err != nil {
		metrics.IncCacheRequest("snapshot", "error")
		return nil, err
	}
	var snap model.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		metrics.IncCacheRequest("snapshot", "error")
		return nil, err
	}
	metrics.IncCacheRequest("snapshot", "hit")
	return &snap, nil
}

func (r *SnapshotRepo) Clear(ctx context.Context) error {
	return r.client.Del(ctx, snapshotKey)
}
