package model

import "slices"

// TimeRange is the aggregation window of an analytics report.
type TimeRange string

const (
	TimeRangeLastHour    TimeRange = "1h"
	TimeRangeLastDay     TimeRange = "24h"
	TimeRangeLastWeek    TimeRange = "7d"
	TimeRangeLastMonth   TimeRange = "30d"
	TimeRangeLastQuarter TimeRange = "90d"
	TimeRangeLastYear    TimeRange = "1y"
)

// EnumValues implements record.Enum.
func (TimeRange) EnumValues() []string {
	return []string{"1h", "24h", "7d", "30d", "90d", "1y"}
}

// ThreatLevel summarizes the current security posture.
type ThreatLevel string

const (
	ThreatLevelLow      ThreatLevel = "low"
	ThreatLevelMedium   ThreatLevel = "medium"
	ThreatLevelHigh     ThreatLevel = "high"
	ThreatLevelCritical ThreatLevel = "critical"
	ThreatLevelUnknown  ThreatLevel = "unknown"
)

// EnumValues implements record.Enum.
func (ThreatLevel) EnumValues() []string {
	return []string{"low", "medium", "high", "critical", "unknown"}
}

// Severity grades a single suspicious activity.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// EnumValues implements record.Enum.
func (Severity) EnumValues() []string {
	return []string{"info", "low", "medium", "high", "critical"}
}

// APIKeyScope is a permission granted to an API key.
type APIKeyScope string

const (
	ScopeRead              APIKeyScope = "read"
	ScopeWrite             APIKeyScope = "write"
	ScopeDelete            APIKeyScope = "delete"
	ScopeAdmin             APIKeyScope = "admin"
	ScopeUsersRead         APIKeyScope = "users:read"
	ScopeUsersWrite        APIKeyScope = "users:write"
	ScopeMetricsRead       APIKeyScope = "metrics:read"
	ScopeWebhooksManage    APIKeyScope = "webhooks:manage"
	ScopeNotificationsSend APIKeyScope = "notifications:send"
)

// ValidScopes contains all valid scope values.
var ValidScopes = []APIKeyScope{
	ScopeRead, ScopeWrite, ScopeDelete, ScopeAdmin,
	ScopeUsersRead, ScopeUsersWrite, ScopeMetricsRead,
	ScopeWebhooksManage, ScopeNotificationsSend,
}

// EnumValues implements record.Enum.
func (APIKeyScope) EnumValues() []string {
	out := make([]string, len(ValidScopes))
	for i, s := range ValidScopes {
		out[i] = string(s)
	}
	return out
}

// IsValid reports whether s is a known scope.
func (s APIKeyScope) IsValid() bool {
	return slices.Contains(ValidScopes, s)
}

// ProfileVisibility controls who can see a profile.
type ProfileVisibility string

const (
	VisibilityPublic   ProfileVisibility = "public"
	VisibilityContacts ProfileVisibility = "contacts"
	VisibilityPrivate  ProfileVisibility = "private"
)

// EnumValues implements record.Enum.
func (ProfileVisibility) EnumValues() []string {
	return []string{"public", "contacts", "private"}
}

// Theme is the preferred UI theme.
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

// EnumValues implements record.Enum.
func (Theme) EnumValues() []string {
	return []string{"system", "light", "dark"}
}

// NotificationType is the delivery channel of a notification.
type NotificationType string

const (
	NotificationEmail   NotificationType = "email"
	NotificationSMS     NotificationType = "sms"
	NotificationPush    NotificationType = "push"
	NotificationInApp   NotificationType = "in_app"
	NotificationWebhook NotificationType = "webhook"
)

// EnumValues implements record.Enum.
func (NotificationType) EnumValues() []string {
	return []string{"email", "sms", "push", "in_app", "webhook"}
}

// NotificationPriority orders notifications for delivery.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

// EnumValues implements record.Enum.
func (NotificationPriority) EnumValues() []string {
	return []string{"low", "normal", "high", "urgent"}
}

// NotificationStatus is the lifecycle state of a notification.
type NotificationStatus string

const (
	StatusPending   NotificationStatus = "pending"
	StatusSent      NotificationStatus = "sent"
	StatusDelivered NotificationStatus = "delivered"
	StatusFailed    NotificationStatus = "failed"
	StatusCancelled NotificationStatus = "cancelled"
	StatusRead      NotificationStatus = "read"
)

// EnumValues implements record.Enum.
func (NotificationStatus) EnumValues() []string {
	return []string{"pending", "sent", "delivered", "failed", "cancelled", "read"}
}

// NotificationCategory groups notifications for preferences.
type NotificationCategory string

const (
	CategorySecurity  NotificationCategory = "security"
	CategoryAccount   NotificationCategory = "account"
	CategoryBilling   NotificationCategory = "billing"
	CategorySystem    NotificationCategory = "system"
	CategoryMarketing NotificationCategory = "marketing"
	CategoryGeneral   NotificationCategory = "general"
)

// EnumValues implements record.Enum.
func (NotificationCategory) EnumValues() []string {
	return []string{"security", "account", "billing", "system", "marketing", "general"}
}

// DeliveryStatus is the outcome of delivering to one recipient.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
	DeliveryBounced   DeliveryStatus = "bounced"
)

// EnumValues implements record.Enum.
func (DeliveryStatus) EnumValues() []string {
	return []string{"pending", "sent", "delivered", "failed", "bounced"}
}

// IsTerminal reports whether no further delivery attempts will be made.
func (s DeliveryStatus) IsTerminal() bool {
	return s == DeliveryDelivered || s == DeliveryBounced
}

// DeliveryFrequency controls digesting per channel.
type DeliveryFrequency string

const (
	FrequencyImmediate DeliveryFrequency = "immediate"
	FrequencyHourly    DeliveryFrequency = "hourly"
	FrequencyDaily     DeliveryFrequency = "daily"
	FrequencyWeekly    DeliveryFrequency = "weekly"
	FrequencyNever     DeliveryFrequency = "never"
)

// EnumValues implements record.Enum.
func (DeliveryFrequency) EnumValues() []string {
	return []string{"immediate", "hourly", "daily", "weekly", "never"}
}
