package auth

import (
	"crypto/rand"
	"fmt"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/enterprise-auth/appmodel/internal/model"
)

const (
	// DefaultRateLimit is applied when a request leaves rate_limit at 0.
	DefaultRateLimit = 1000

	issueWarning = "Store this key securely. It will not be shown again."
)

// Issued is a freshly issued key: the response shown to the owner once and
// the hash that is persisted in place of the secret.
type Issued struct {
	Response model.CreateAPIKeyResponse
	Hash     string
}

// Issue generates a key for req and builds its APIKey record. Requests
// without scopes get read access.
func Issue(req model.CreateAPIKeyRequest, env string, now time.Time) (*Issued, error) {
	for _, s := range req.Scopes {
		if !s.IsValid() {
			return nil, fmt.Errorf("issue key: unknown scope %q", s)
		}
	}

	gen, err := GenerateAPIKey(env)
	if err != nil {
		return nil, fmt.Errorf("issue key: %w", err)
	}

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("issue key: generate id: %w", err)
	}

	scopes := slices.Clone(req.Scopes)
	if len(scopes) == 0 {
		scopes = []model.APIKeyScope{model.ScopeRead}
	}
	rateLimit := req.RateLimit
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}
	var description *string
	if req.Description != nil {
		d := *req.Description
		description = &d
	}
	allowed := slices.Clone(req.AllowedIPs)
	if allowed == nil {
		allowed = []string{}
	}

	now = now.UTC()
	var expiresAt *time.Time
	if req.ExpiresInDays != nil && *req.ExpiresInDays > 0 {
		t := now.AddDate(0, 0, *req.ExpiresInDays)
		expiresAt = &t
	}

	key := model.APIKey{
		ID:              id.String(),
		Name:            req.Name,
		Description:     description,
		KeyPrefix:       gen.Prefix,
		Scopes:          scopes,
		RateLimit:       rateLimit,
		AllowedIPs:      allowed,
		IsActive:        true,
		UsageCount:      0,
		CreatedAt:       now,
		UpdatedAt:       now,
		ExpiresAt:       expiresAt,
		DaysUntilExpiry: model.DaysUntil(expiresAt, now),
	}

	return &Issued{
		Response: model.CreateAPIKeyResponse{
			APIKey:  key,
			Key:     gen.Plaintext,
			Warning: issueWarning,
		},
		Hash: gen.Hash,
	}, nil
}
