package model

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/enterprise-auth/appmodel/internal/record"
)

// Kind is the stable registry name of a record type.
type Kind string

// ErrUnknownKind indicates a kind or Go type that is not registered.
var ErrUnknownKind = errors.New("unknown record kind")

type kindCodec struct {
	typ        reflect.Type
	decode     func(map[string]any) (any, error)
	decodeJSON func([]byte) (any, error)
}

var (
	codecs = map[Kind]kindCodec{}
	kinds  = map[reflect.Type]Kind{}
)

func register[T any](kind Kind) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	codecs[kind] = kindCodec{
		typ: t,
		decode: func(m map[string]any) (any, error) {
			v, err := record.Decode[T](m)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
		decodeJSON: func(data []byte) (any, error) {
			v, err := record.DecodeJSON[T](data)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
	kinds[t] = kind
}

func init() {
	// analytics
	register[TimeSeriesPoint]("time_series_point")
	register[DashboardSummary]("dashboard_summary")
	register[UserAnalytics]("user_analytics")
	register[AuthenticationAnalytics]("authentication_analytics")
	register[SuspiciousActivity]("suspicious_activity")
	register[SecurityAnalytics]("security_analytics")
	register[EndpointUsage]("endpoint_usage")
	register[APIUsageAnalytics]("api_usage_analytics")
	register[APIPerformance]("api_performance")
	register[DatabasePerformance]("database_performance")
	register[CachePerformance]("cache_performance")
	register[ResourceUtilization]("resource_utilization")
	register[ErrorRates]("error_rates")
	register[PerformanceMetrics]("performance_metrics")

	// api keys
	register[APIKey]("api_key")
	register[CreateAPIKeyRequest]("create_api_key_request")
	register[UpdateAPIKeyRequest]("update_api_key_request")
	register[CreateAPIKeyResponse]("create_api_key_response")
	register[APIKeyList]("api_key_list")
	register[APIKeyUsageStats]("api_key_usage_stats")
	register[APIKeyStats]("api_key_stats")
	register[APIKeyPermission]("api_key_permission")
	register[APIKeyScopeInfo]("api_key_scope_info")
	register[APIKeyActivity]("api_key_activity")

	// profile
	register[Profile]("profile")
	register[ProfileUpdateRequest]("profile_update_request")
	register[PasswordChangeRequest]("password_change_request")
	register[EmailChangeRequest]("email_change_request")
	register[PrivacySettings]("privacy_settings")
	register[NotificationSettings]("notification_settings")
	register[AccountSettings]("account_settings")
	register[ProfileCompletion]("profile_completion")
	register[SecurityOverview]("security_overview")

	// notifications
	register[NotificationAction]("notification_action")
	register[Notification]("notification")
	register[NotificationList]("notification_list")
	register[NotificationTemplate]("notification_template")
	register[ChannelSettings]("channel_settings")
	register[NotificationPreferences]("notification_preferences")
	register[NotificationBatch]("notification_batch")
	register[DeliveryResult]("delivery_result")
	register[NotificationSubscription]("notification_subscription")
	register[EngagementMetrics]("engagement_metrics")
	register[NotificationAnalytics]("notification_analytics")
	register[CreateNotificationRequest]("create_notification_request")
}

// Kinds returns every registered kind in sorted order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(codecs))
	for k := range codecs {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// IsKnown reports whether kind is registered.
func (k Kind) IsKnown() bool {
	_, ok := codecs[k]
	return ok
}

// KindOf returns the kind of a record value or pointer to one.
func KindOf(v any) (Kind, error) {
	t := reflect.TypeOf(v)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	k, ok := kinds[t]
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrUnknownKind, t)
	}
	return k, nil
}

// KindFor returns the kind registered for T.
func KindFor[T any]() (Kind, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	k, ok := kinds[t]
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrUnknownKind, t)
	}
	return k, nil
}

// Decode decodes m into the record type registered for kind. The returned
// value is the record itself, not a pointer.
func Decode(kind Kind, m map[string]any) (any, error) {
	c, ok := codecs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return c.decode(m)
}

// DecodeJSON decodes JSON bytes into the record type registered for kind.
func DecodeJSON(kind Kind, data []byte) (any, error) {
	c, ok := codecs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return c.decodeJSON(data)
}

// Schema returns the JSON schema derived for kind.
func Schema(kind Kind) (map[string]any, error) {
	c, ok := codecs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return record.SchemaOf(c.typ), nil
}
