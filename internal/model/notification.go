package model

import (
	"time"

	"github.com/enterprise-auth/appmodel/internal/record"
)

// NotificationAction is a button attached to a notification.
type NotificationAction struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	ActionType string         `json:"action_type"`
	URL        *string        `json:"url,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// Notification is a message addressed to one user.
type Notification struct {
	ID          string               `json:"id"`
	UserID      string               `json:"user_id"`
	Title       string               `json:"title"`
	Message     string               `json:"message"`
	Type        NotificationType     `json:"type"`
	Priority    NotificationPriority `json:"priority"`
	Category    NotificationCategory `json:"category"`
	Status      NotificationStatus   `json:"status"`
	Data        map[string]any       `json:"data"`
	Actions     []NotificationAction `json:"actions,omitempty"`
	TemplateID  *string              `json:"template_id,omitempty"`
	ReadAt      *time.Time           `json:"read_at,omitempty"`
	SentAt      *time.Time           `json:"sent_at,omitempty"`
	DeliveredAt *time.Time           `json:"delivered_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	ExpiresAt   *time.Time           `json:"expires_at,omitempty"`
}

// IsRead returns true once the recipient has read the notification.
func (n Notification) IsRead() bool {
	return n.ReadAt != nil
}

// IsExpired returns true if the notification has an expiry at or before now.
func (n Notification) IsExpired(now time.Time) bool {
	return n.ExpiresAt != nil && !now.Before(*n.ExpiresAt)
}

// MarkRead returns a read copy of n. Already read notifications keep their
// original read time.
func (n Notification) MarkRead(now time.Time) Notification {
	if n.IsRead() {
		return record.Clone(n)
	}
	return record.CopyWith(n, func(c *Notification) {
		c.ReadAt = &now
		c.Status = StatusRead
	})
}

// NotificationList is a page of notifications.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	Total         int64          `json:"total"`
	UnreadCount   int64          `json:"unread_count"`
	HasMore       bool           `json:"has_more"`
}

// NotificationTemplate is a reusable message body with placeholders.
type NotificationTemplate struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Subject   string               `json:"subject"`
	Body      string               `json:"body"`
	Type      NotificationType     `json:"type"`
	Category  NotificationCategory `json:"category"`
	Variables []string             `json:"variables"`
	IsActive  bool                 `json:"is_active"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// ChannelSettings configures one delivery channel for a user.
type ChannelSettings struct {
	Channel         NotificationType  `json:"channel"`
	Enabled         bool              `json:"enabled"`
	Frequency       DeliveryFrequency `json:"frequency"`
	QuietHoursStart *string           `json:"quiet_hours_start,omitempty"` // HH:MM
	QuietHoursEnd   *string           `json:"quiet_hours_end,omitempty"`
}

// NotificationPreferences is a user's notification configuration.
type NotificationPreferences struct {
	UserID             string            `json:"user_id"`
	EmailNotifications bool              `json:"email_notifications"`
	PushNotifications  bool              `json:"push_notifications"`
	SMSNotifications   bool              `json:"sms_notifications"`
	InAppNotifications bool              `json:"in_app_notifications"`
	MarketingEmails    bool              `json:"marketing_emails"`
	SecurityAlerts     bool              `json:"security_alerts"`
	FrequencySettings  map[string]string `json:"frequency_settings"`
	Channels           []ChannelSettings `json:"channels,omitempty"`
}

// NotificationBatch is a bulk send of one template to many recipients.
type NotificationBatch struct {
	ID              string               `json:"id"`
	Template        NotificationTemplate `json:"template"`
	RecipientIDs    []string             `json:"recipient_ids"`
	Variables       map[string]string    `json:"variables"`
	Status          NotificationStatus   `json:"status"`
	ScheduledAt     *time.Time           `json:"scheduled_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	CompletedAt     *time.Time           `json:"completed_at,omitempty"`
	TotalRecipients int                  `json:"total_recipients"`
	SentCount       int                  `json:"sent_count"`
	FailedCount     int                  `json:"failed_count"`
}

// Progress returns the fraction of recipients already processed, in [0,1].
func (b NotificationBatch) Progress() float64 {
	if b.TotalRecipients <= 0 {
		return 0
	}
	p := float64(b.SentCount+b.FailedCount) / float64(b.TotalRecipients)
	return min(p, 1)
}

// DeliveryResult is the outcome of delivering a notification to one
// recipient over one channel.
type DeliveryResult struct {
	NotificationID string           `json:"notification_id"`
	RecipientID    string           `json:"recipient_id"`
	Channel        NotificationType `json:"channel"`
	Status         DeliveryStatus   `json:"status"`
	AttemptedAt    time.Time        `json:"attempted_at"`
	DeliveredAt    *time.Time       `json:"delivered_at,omitempty"`
	Error          *string          `json:"error,omitempty"`
	RetryCount     int              `json:"retry_count"`
}

// NotificationSubscription subscribes a user to a topic.
type NotificationSubscription struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	Topic     string             `json:"topic"`
	Channels  []NotificationType `json:"channels"`
	IsActive  bool               `json:"is_active"`
	CreatedAt time.Time          `json:"created_at"`
}

// EngagementMetrics measures how recipients interact with notifications.
type EngagementMetrics struct {
	OpenRate                 float64 `json:"open_rate"`
	ClickRate                float64 `json:"click_rate"`
	DismissRate              float64 `json:"dismiss_rate"`
	AverageTimeToReadSeconds float64 `json:"average_time_to_read_seconds"`
}

// NotificationAnalytics summarizes delivery and engagement over a period.
type NotificationAnalytics struct {
	Period             TimeRange         `json:"period"`
	TotalNotifications int64             `json:"total_notifications"`
	Sent               int64             `json:"sent_notifications"`
	Failed             int64             `json:"failed_notifications"`
	Pending            int64             `json:"pending_notifications"`
	DeliveryRate       float64           `json:"delivery_rate"`
	ReadRate           float64           `json:"read_rate"`
	TypeBreakdown      map[string]int64  `json:"type_breakdown"`
	CategoryBreakdown  map[string]int64  `json:"category_breakdown"`
	Engagement         EngagementMetrics `json:"engagement"`
}

// CreateNotificationRequest asks for a notification to be sent.
type CreateNotificationRequest struct {
	UserID      *string              `json:"user_id,omitempty"`
	Title       string               `json:"title"`
	Message     string               `json:"message"`
	Type        NotificationType     `json:"notification_type"`
	Priority    NotificationPriority `json:"priority"`
	Category    NotificationCategory `json:"category"`
	Data        map[string]any       `json:"data,omitempty"`
	TemplateID  *string              `json:"template_id,omitempty"`
	ScheduledAt *time.Time           `json:"scheduled_at,omitempty"`
	ExpiresAt   *time.Time           `json:"expires_at,omitempty"`
}
