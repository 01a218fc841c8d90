package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"blog-client/internal/domain"
	"blog-client/internal/repository"
)

const snapshotKey = "session"

// Snapshot is the durable part of the session. IsLoading is never persisted.
type Snapshot struct {
	User *domain.User `json:"user"`
}

// Persister serializes the session on write and deserializes it on init.
type Persister interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// NopPersister keeps nothing. Used where every request re-verifies.
type NopPersister struct{}

func (NopPersister) Load(context.Context) (*Snapshot, error) { return nil, nil }
func (NopPersister) Save(context.Context, Snapshot) error    { return nil }

// KVPersister stores the snapshot as JSON under a single key.
type KVPersister struct {
	repo repository.KVRepository
}

func NewKVPersister(repo repository.KVRepository) *KVPersister {
	return &KVPersister{repo: repo}
}

func (p *KVPersister) Load(ctx context.Context) (*Snapshot, error) {
	raw, err := p.repo.Get(ctx, snapshotKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode session snapshot: %w", err)
	}
	return &snap, nil
}

func (p *KVPersister) Save(ctx context.Context, snap Snapshot) error {
	if snap.User == nil {
		return p.repo.Delete(ctx, snapshotKey)
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session snapshot: %w", err)
	}
	return p.repo.Set(ctx, snapshotKey, raw)
}
