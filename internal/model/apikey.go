// Package model defines the application's data records.
package model

import (
	"slices"
	"time"

	"github.com/enterprise-auth/appmodel/internal/record"
)

// APIKey is an API key as exposed to its owner. The secret and its hash
// never appear here.
type APIKey struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     *string       `json:"description,omitempty"`
	KeyPrefix       string        `json:"key_prefix"`
	Scopes          []APIKeyScope `json:"scopes"`
	RateLimit       int           `json:"rate_limit"` // requests per hour
	AllowedIPs      []string      `json:"allowed_ips"`
	IsActive        bool          `json:"is_active"`
	UsageCount      int64         `json:"usage_count"`
	LastUsedAt      *time.Time    `json:"last_used_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	ExpiresAt       *time.Time    `json:"expires_at,omitempty"`
	DaysUntilExpiry *int          `json:"days_until_expiry,omitempty"`
}

// IsExpired returns true if the key has an expiry at or before now.
func (k APIKey) IsExpired(now time.Time) bool {
	return k.ExpiresAt != nil && !now.Before(*k.ExpiresAt)
}

// HasScope checks if the key has a specific scope.
// Admin scope implies all other scopes.
func (k APIKey) HasScope(scope APIKeyScope) bool {
	if slices.Contains(k.Scopes, ScopeAdmin) {
		return true
	}
	return slices.Contains(k.Scopes, scope)
}

// ApplyUpdate returns a copy of k with the fields set in req applied.
// Fields left nil in req keep their current value.
func (k APIKey) ApplyUpdate(req UpdateAPIKeyRequest, now time.Time) APIKey {
	return record.CopyWith(k, func(c *APIKey) {
		if req.Name != nil {
			c.Name = *req.Name
		}
		if req.Description != nil {
			c.Description = req.Description
		}
		if req.Scopes != nil {
			c.Scopes = slices.Clone(req.Scopes)
		}
		if req.RateLimit != nil {
			c.RateLimit = *req.RateLimit
		}
		if req.AllowedIPs != nil {
			c.AllowedIPs = slices.Clone(req.AllowedIPs)
		}
		if req.IsActive != nil {
			c.IsActive = *req.IsActive
		}
		c.UpdatedAt = now
	})
}

// DaysUntil returns whole days from now until expiresAt, or nil for keys
// that never expire. Expired keys report 0.
func DaysUntil(expiresAt *time.Time, now time.Time) *int {
	if expiresAt == nil {
		return nil
	}
	days := int(expiresAt.Sub(now) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	return &days
}

// CreateAPIKeyRequest represents a request to create a new API key.
type CreateAPIKeyRequest struct {
	Name          string        `json:"name"`
	Description   *string       `json:"description,omitempty"`
	Scopes        []APIKeyScope `json:"scopes"`
	RateLimit     int           `json:"rate_limit"`
	AllowedIPs    []string      `json:"allowed_ips,omitempty"`
	ExpiresInDays *int          `json:"expires_in_days,omitempty"`
}

// UpdateAPIKeyRequest represents a partial update of an API key.
type UpdateAPIKeyRequest struct {
	Name        *string       `json:"name,omitempty"`
	Description *string       `json:"description,omitempty"`
	Scopes      []APIKeyScope `json:"scopes,omitempty"`
	RateLimit   *int          `json:"rate_limit,omitempty"`
	AllowedIPs  []string      `json:"allowed_ips,omitempty"`
	IsActive    *bool         `json:"is_active,omitempty"`
}

// CreateAPIKeyResponse includes the plaintext key (shown only once).
type CreateAPIKeyResponse struct {
	APIKey  APIKey `json:"api_key"`
	Key     string `json:"key"`
	Warning string `json:"warning"`
}

// APIKeyList is a page of API keys.
type APIKeyList struct {
	APIKeys []APIKey `json:"api_keys"`
	Total   int64    `json:"total"`
	HasMore bool     `json:"has_more"`
}

// APIKeyUsageStats describes how one key was used over a period.
type APIKeyUsageStats struct {
	APIKeyID           string            `json:"api_key_id"`
	Period             TimeRange         `json:"period"`
	TotalRequests      int64             `json:"total_requests"`
	SuccessfulRequests int64             `json:"successful_requests"`
	FailedRequests     int64             `json:"failed_requests"`
	RateLimitHits      int64             `json:"rate_limit_hits"`
	UniqueIPs          int64             `json:"unique_ips"`
	MostUsedEndpoints  []EndpointUsage   `json:"most_used_endpoints"`
	DailyUsage         []TimeSeriesPoint `json:"daily_usage"`
	ErrorBreakdown     map[string]int64  `json:"error_breakdown"`
}

// APIKeyStats is the fleet-wide API key overview.
type APIKeyStats struct {
	TotalKeys          int64            `json:"total_keys"`
	ActiveKeys         int64            `json:"active_keys"`
	ExpiredKeys        int64            `json:"expired_keys"`
	KeysExpiringSoon   int64            `json:"keys_expiring_soon"`
	TotalRequestsToday int64            `json:"total_requests_today"`
	TotalRequestsMonth int64            `json:"total_requests_month"`
	ScopeDistribution  map[string]int64 `json:"scope_distribution"`
}

// APIKeyPermission states whether a key holds one scope.
type APIKeyPermission struct {
	Scope       APIKeyScope `json:"scope"`
	Description string      `json:"description"`
	Granted     bool        `json:"granted"`
}

// APIKeyScopeInfo documents a scope and the permissions it grants.
type APIKeyScopeInfo struct {
	Name        APIKeyScope `json:"name"`
	Description string      `json:"description"`
	Permissions []string    `json:"permissions"`
}

// APIKeyActivity is one entry of a key's activity log.
type APIKeyActivity struct {
	ID         string         `json:"id"`
	APIKeyID   string         `json:"api_key_id"`
	Action     string         `json:"action"`
	Endpoint   *string        `json:"endpoint,omitempty"`
	IPAddress  *string        `json:"ip_address,omitempty"`
	UserAgent  *string        `json:"user_agent,omitempty"`
	StatusCode *int           `json:"status_code,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
