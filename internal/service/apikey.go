package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/enterprise-auth/appmodel/internal/auth"
	"github.com/enterprise-auth/appmodel/internal/model"
	"github.com/enterprise-auth/appmodel/internal/record"
	"github.com/enterprise-auth/appmodel/internal/repository"
)

// API key errors.
var (
	ErrInvalidKey  = errors.New("invalid API key")
	ErrKeyInactive = errors.New("API key is inactive")
	ErrKeyExpired  = errors.New("API key has expired")
)

// SecretStore holds the verification hashes of issued keys.
type SecretStore interface {
	CreateAPIKeySecret(ctx context.Context, s *repository.APIKeySecret) error
	GetAPIKeySecretsByPrefix(ctx context.Context, prefix string) ([]*repository.APIKeySecret, error)
	RevokeAPIKeySecret(ctx context.Context, keyID string, at time.Time) error
}

// APIKeyService issues, verifies and revokes API keys. Key records go
// through RecordService; hashes stay in the SecretStore.
type APIKeyService struct {
	records *RecordService
	secrets SecretStore
	env     string
	logger  *slog.Logger
}

// NewAPIKeyService creates a new APIKeyService issuing keys for env.
func NewAPIKeyService(records *RecordService, secrets SecretStore, env string, logger *slog.Logger) *APIKeyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIKeyService{
		records: records,
		secrets: secrets,
		env:     env,
		logger:  logger.With("component", "apikey.service"),
	}
}

// IssueKey creates a key for req and persists its record and hash. The
// returned response is the only place the plaintext key appears.
func (s *APIKeyService) IssueKey(ctx context.Context, req model.CreateAPIKeyRequest, now time.Time) (*model.CreateAPIKeyResponse, error) {
	issued, err := auth.Issue(req, s.env, now)
	if err != nil {
		return nil, err
	}
	key := issued.Response.APIKey

	secret := &repository.APIKeySecret{
		KeyID:     key.ID,
		KeyPrefix: key.KeyPrefix,
		KeyHash:   issued.Hash,
		Scopes:    scopeStrings(key.Scopes),
		CreatedAt: key.CreatedAt,
	}
	if err := s.secrets.CreateAPIKeySecret(ctx, secret); err != nil {
		return nil, err
	}
	if _, err := s.records.Put(ctx, key.ID, key); err != nil {
		return nil, fmt.Errorf("store key record: %w", err)
	}

	s.logger.Info("api key issued", "key_id", key.ID, "key_prefix", key.KeyPrefix, "scopes", secret.Scopes)
	return &issued.Response, nil
}

// VerifyKey authenticates a presented plaintext key and records the use.
// It returns the updated key record.
func (s *APIKeyService) VerifyKey(ctx context.Context, plaintext string, now time.Time) (model.APIKey, error) {
	parsed, err := auth.ParseAPIKey(plaintext)
	if err != nil {
		return model.APIKey{}, ErrInvalidKey
	}

	candidates, err := s.secrets.GetAPIKeySecretsByPrefix(ctx, parsed.Prefix)
	if err != nil {
		return model.APIKey{}, err
	}

	var keyID string
	for _, c := range candidates {
		ok, err := auth.VerifyAPIKey(plaintext, c.KeyHash)
		if err != nil {
			s.logger.Warn("unreadable key hash", "key_id", c.KeyID, "error", err)
			continue
		}
		if ok {
			keyID = c.KeyID
			break
		}
	}
	if keyID == "" {
		return model.APIKey{}, ErrInvalidKey
	}

	key, err := GetAs[model.APIKey](ctx, s.records, keyID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			s.logger.Error("key secret without record", "key_id", keyID)
			return model.APIKey{}, ErrInvalidKey
		}
		return model.APIKey{}, err
	}
	if !key.IsActive {
		return model.APIKey{}, ErrKeyInactive
	}
	if key.IsExpired(now) {
		return model.APIKey{}, ErrKeyExpired
	}

	now = now.UTC()
	used := record.CopyWith(key, func(k *model.APIKey) {
		k.UsageCount++
		k.LastUsedAt = &now
		k.DaysUntilExpiry = model.DaysUntil(k.ExpiresAt, now)
	})
	if _, err := s.records.Put(ctx, used.ID, used); err != nil {
		return model.APIKey{}, fmt.Errorf("record key use: %w", err)
	}

	return used, nil
}

// RevokeKey revokes the key's secret and marks its record inactive.
func (s *APIKeyService) RevokeKey(ctx context.Context, id string, now time.Time) (model.APIKey, error) {
	key, err := GetAs[model.APIKey](ctx, s.records, id)
	if err != nil {
		return model.APIKey{}, err
	}

	now = now.UTC()
	if err := s.secrets.RevokeAPIKeySecret(ctx, id, now); err != nil && !errors.Is(err, repository.ErrAPIKeyNotFound) {
		return model.APIKey{}, err
	}

	inactive := false
	revoked := key.ApplyUpdate(model.UpdateAPIKeyRequest{IsActive: &inactive}, now)
	if _, err := s.records.Put(ctx, id, revoked); err != nil {
		return model.APIKey{}, fmt.Errorf("store revoked key: %w", err)
	}

	s.logger.Info("api key revoked", "key_id", id)
	return revoked, nil
}

func scopeStrings(scopes []model.APIKeyScope) []string {
	out := make([]string, len(scopes))
	for i, sc := range scopes {
		out[i] = string(sc)
	}
	return out
}
