package model

import (
	"time"

	"github.com/enterprise-auth/appmodel/internal/record"
)

// Profile is the account profile of the signed-in user.
type Profile struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	PhoneNumber *string    `json:"phone_number,omitempty"`
	Bio         *string    `json:"bio,omitempty"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	Timezone    *string    `json:"timezone,omitempty"`
	Language    *string    `json:"language,omitempty"`
	IsActive    bool       `json:"is_active"`
	IsVerified  bool       `json:"is_verified"`
	Roles       []string   `json:"roles"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

// ApplyUpdate returns a copy of p with the fields set in req applied.
func (p Profile) ApplyUpdate(req ProfileUpdateRequest, now time.Time) Profile {
	return record.CopyWith(p, func(c *Profile) {
		if req.FullName != nil {
			c.FullName = *req.FullName
		}
		if req.PhoneNumber != nil {
			c.PhoneNumber = req.PhoneNumber
		}
		if req.Bio != nil {
			c.Bio = req.Bio
		}
		if req.Timezone != nil {
			c.Timezone = req.Timezone
		}
		if req.Language != nil {
			c.Language = req.Language
		}
		c.UpdatedAt = now
	})
}

// Completion reports which optional profile fields are filled in.
func (p Profile) Completion() ProfileCompletion {
	fields := []struct {
		name   string
		filled bool
		hint   string
	}{
		{"full_name", p.FullName != "", "Add your full name"},
		{"phone_number", p.PhoneNumber != nil && *p.PhoneNumber != "", "Add a phone number for account recovery"},
		{"bio", p.Bio != nil && *p.Bio != "", "Write a short bio"},
		{"avatar_url", p.AvatarURL != nil && *p.AvatarURL != "", "Upload a profile picture"},
		{"timezone", p.Timezone != nil && *p.Timezone != "", "Set your timezone"},
		{"language", p.Language != nil && *p.Language != "", "Choose a preferred language"},
		{"email_verified", p.IsVerified, "Verify your email address"},
	}

	c := ProfileCompletion{
		CompletedFields: []string{},
		MissingFields:   []string{},
		Suggestions:     []string{},
	}
	for _, f := range fields {
		if f.filled {
			c.CompletedFields = append(c.CompletedFields, f.name)
			continue
		}
		c.MissingFields = append(c.MissingFields, f.name)
		c.Suggestions = append(c.Suggestions, f.hint)
	}
	c.Percentage = float64(len(c.CompletedFields)) / float64(len(fields)) * 100
	return c
}

// ProfileUpdateRequest is a partial update of the profile.
type ProfileUpdateRequest struct {
	FullName    *string `json:"full_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
	Language    *string `json:"language,omitempty"`
}

// PasswordChangeRequest changes the account password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// EmailChangeRequest changes the account email.
type EmailChangeRequest struct {
	NewEmail string `json:"new_email"`
	Password string `json:"password"`
}

type PrivacySettings struct {
	ProfileVisibility    ProfileVisibility `json:"profile_visibility"`
	ShowEmail            bool              `json:"show_email"`
	ShowActivity         bool              `json:"show_activity"`
	AllowDataCollection  bool              `json:"allow_data_collection"`
	AllowPersonalization bool              `json:"allow_personalization"`
}

type NotificationSettings struct {
	EmailNotifications bool `json:"email_notifications"`
	PushNotifications  bool `json:"push_notifications"`
	SMSNotifications   bool `json:"sms_notifications"`
	MarketingEmails    bool `json:"marketing_emails"`
	SecurityAlerts     bool `json:"security_alerts"`
}

// DefaultNotificationSettings mirrors the defaults applied at sign-up.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		EmailNotifications: true,
		PushNotifications:  true,
		SMSNotifications:   false,
		MarketingEmails:    false,
		SecurityAlerts:     true,
	}
}

type AccountSettings struct {
	Language         string `json:"language"`
	Timezone         string `json:"timezone"`
	DateFormat       string `json:"date_format"`
	Theme            Theme  `json:"theme"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
	SessionTimeout   int    `json:"session_timeout"` // minutes
}

// ProfileCompletion reports how much of the profile is filled in.
type ProfileCompletion struct {
	Percentage      float64  `json:"percentage"`
	CompletedFields []string `json:"completed_fields"`
	MissingFields   []string `json:"missing_fields"`
	Suggestions     []string `json:"suggestions"`
}

// SecurityOverview is the account's security posture.
type SecurityOverview struct {
	TwoFactorEnabled    bool       `json:"two_factor_enabled"`
	LoginAlerts         bool       `json:"login_alerts"`
	SessionTimeout      int        `json:"session_timeout"`
	PasswordLastChanged *time.Time `json:"password_last_changed,omitempty"`
	ActiveSessions      int        `json:"active_sessions"`
	SecurityScore       int        `json:"security_score"`
	Recommendations     []string   `json:"recommendations"`
}
