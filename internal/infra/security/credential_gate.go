// File: internal/infra/security/credential_gate.go
package security

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hiktan44/Adgeniusfashion/internal/domain"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/ports/adapter"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/logging"
)

var _ adapter.CredentialGate = (*KeyGate)(nil)

// KeyStore persists the sealed user-selected key. Implementations return domain.ErrNotFound when empty.
type KeyStore interface {
	SaveKey(ctx context.Context, sealed string) error
	LoadKey(ctx context.Context) (string, error)
	DeleteKey(ctx context.Context) error
}

// CredentialStatus is what the presentation layer shows about the key.
type CredentialStatus struct {
	HasCredential bool   `json:"has_credential"`
	Requested     bool   `json:"selection_requested"`
	Source        string `json:"source,omitempty"` // env|selected
	Hint          string `json:"hint,omitempty"`
}

// KeyGate holds the provider API key. A key selected at run time wins over the configured one.
// RequestCredential drops the selected key so the next run asks again.
type KeyGate struct {
	mu        sync.RWMutex
	envKey    string
	selected  string
	requested bool

	store  KeyStore
	sealer *EncryptionService
	log    *zerolog.Logger
}

// NewKeyGate wires an optional persistent store; store and sealer must both be set to persist.
func NewKeyGate(envKey string, store KeyStore, sealer *EncryptionService, log *zerolog.Logger) *KeyGate {
	if log == nil {
		log = logging.Nop()
	}
	if store == nil || sealer == nil {
		store, sealer = nil, nil
	}
	return &KeyGate{envKey: strings.TrimSpace(envKey), store: store, sealer: sealer, log: log}
}

// Restore loads a previously selected key, if one was persisted.
func (g *KeyGate) Restore(ctx context.Context) error {
	if g.store == nil {
		return nil
	}
	sealed, err := g.store.LoadKey(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	key, err := g.sealer.Decrypt(sealed)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.selected = key
	g.mu.Unlock()
	return nil
}

// APIKey returns the active key or "".
func (g *KeyGate) APIKey(ctx context.Context) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.selected != "" {
		return g.selected
	}
	if g.requested {
		return ""
	}
	return g.envKey
}

func (g *KeyGate) HasCredential(ctx context.Context) bool { return g.APIKey(ctx) != "" }

// RequestCredential flags that a key must be selected and always reports ErrCredentialMissing.
func (g *KeyGate) RequestCredential(ctx context.Context) error {
	g.mu.Lock()
	g.selected = ""
	g.requested = true
	g.mu.Unlock()
	if g.store != nil {
		if err := g.store.DeleteKey(ctx); err != nil {
			logging.With(ctx, g.log).Warn().Err(err).Msg("could not drop persisted key")
		}
	}
	logging.With(ctx, g.log).Info().Msg("credential selection requested")
	return domain.ErrCredentialMissing
}

// Select installs a user-provided key and clears the pending request.
func (g *KeyGate) Select(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrInvalidArgument
	}
	if g.store != nil {
		sealed, err := g.sealer.Encrypt(key)
		if err != nil {
			return err
		}
		if err := g.store.SaveKey(ctx, sealed); err != nil {
			return err
		}
	}
	g.mu.Lock()
	g.selected = key
	g.requested = false
	g.mu.Unlock()
	logging.With(ctx, g.log).Info().Str("key", logging.Redact(key, false)).Msg("credential selected")
	return nil
}

func (g *KeyGate) Status(ctx context.Context) CredentialStatus {
	key := g.APIKey(ctx)
	g.mu.RLock()
	defer g.mu.RUnlock()
	st := CredentialStatus{HasCredential: key != "", Requested: g.requested}
	switch {
	case g.selected != "":
		st.Source = "selected"
	case key != "":
		st.Source = "env"
	}
	if key != "" {
		st.Hint = logging.Redact(key, false)
	}
	return st
}
