package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blog-client/internal/repository"
)

const tokenKey = "token"

type storedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// KVStore keeps the token under a single durable key.
type KVStore struct {
	repo repository.KVRepository
	now  func() time.Time
}

func NewKVStore(repo repository.KVRepository) *KVStore {
	return &KVStore{repo: repo, now: time.Now}
}

func (s *KVStore) Token(ctx context.Context) (string, error) {
	raw, err := s.repo.Get(ctx, tokenKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read token: %w", err)
	}

	var stored storedToken
	if err := json.Unmarshal(raw, &stored); err != nil {
		// unreadable value is treated as no token
		_ = s.repo.Delete(ctx, tokenKey)
		return "", nil
	}
	if !stored.ExpiresAt.IsZero() && !s.now().Before(stored.ExpiresAt) {
		if err := s.repo.Delete(ctx, tokenKey); err != nil {
			return "", fmt.Errorf("drop expired token: %w", err)
		}
		return "", nil
	}
	return stored.Token, nil
}

func (s *KVStore) SetToken(ctx context.Context, token string, expiresAt time.Time) error {
	if token == "" {
		return s.ClearToken(ctx)
	}
	raw, err := json.Marshal(storedToken{Token: token, ExpiresAt: expiresAt.UTC()})
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := s.repo.Set(ctx, tokenKey, raw); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (s *KVStore) ClearToken(ctx context.Context) error {
	if err := s.repo.Delete(ctx, tokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

var _ Store = (*KVStore)(nil)
