package redis

import (
	"context"
	"errors"

	"github.com/hiktan44/Adgeniusfashion/internal/domain"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/security"
)

var _ security.KeyStore = (*CredentialStore)(nil)

const credentialKey = "adgenius:credential"

// CredentialStore keeps the sealed selected key without expiry.
type CredentialStore struct {
	client RedisClient
}

func NewCredentialStore(client RedisClient) *CredentialStore {
	return &CredentialStore{client: client}
}

func (s *CredentialStore) SaveKey(ctx context.Context, sealed string) error {
	return s.client.Set(ctx, credentialKey, sealed, 0)
}

func (s *CredentialStore) LoadKey(ctx context.Context) (string, error) {
	v, err := s.client.Get(ctx, credentialKey)
	if errors.Is(err, ErrNil) {
		return "", domain.ErrNotFound
	}
	return v, err
}

func (s *CredentialStore) DeleteKey(ctx context.Context) error {
	return s.client.Del(ctx, credentialKey)
}
