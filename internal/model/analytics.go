package model

import "time"

// TimeSeriesPoint is a single sample of a time series.
type TimeSeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Label     *string   `json:"label,omitempty"`
}

// DashboardSummary is the headline numbers of the admin dashboard.
type DashboardSummary struct {
	TotalUsers            int64     `json:"total_users"`
	ActiveUsers           int64     `json:"active_users"`
	NewUsersToday         int64     `json:"new_users_today"`
	TotalSessions         int64     `json:"total_sessions"`
	ActiveSessions        int64     `json:"active_sessions"`
	FailedLoginsToday     int64     `json:"failed_logins_today"`
	APIRequestsToday      int64     `json:"api_requests_today"`
	AverageResponseTimeMs float64   `json:"average_response_time_ms"`
	SystemHealth          string    `json:"system_health"`
	LastUpdated           time.Time `json:"last_updated"`
}

// UserAnalytics describes user growth and retention over a period.
type UserAnalytics struct {
	Period            TimeRange          `json:"period"`
	StartDate         time.Time          `json:"start_date"`
	EndDate           time.Time          `json:"end_date"`
	TotalUsers        int64              `json:"total_users"`
	ActiveUsers       int64              `json:"active_users"`
	ActivationRate    float64            `json:"activation_rate"`
	NewUsersByDay     []TimeSeriesPoint  `json:"new_users_by_day"`
	VerificationStats map[string]int64   `json:"verification_stats"`
	UsersByRole       map[string]int64   `json:"users_by_role"`
	Retention         map[string]float64 `json:"retention,omitempty"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// AuthenticationAnalytics describes login behaviour.
type AuthenticationAnalytics struct {
	TotalLogins                   int64            `json:"total_logins"`
	SuccessfulLogins              int64            `json:"successful_logins"`
	FailedLogins                  int64            `json:"failed_logins"`
	SuccessRate                   float64          `json:"success_rate"`
	LoginsByHour                  map[string]int64 `json:"logins_by_hour"`
	LoginMethods                  map[string]int64 `json:"login_methods"`
	MFAUsageRate                  float64          `json:"mfa_usage_rate"`
	AverageSessionDurationMinutes float64          `json:"average_session_duration_minutes"`
}

// SuspiciousActivity is one detected anomaly.
type SuspiciousActivity struct {
	Type        string    `json:"type"`
	IPAddress   string    `json:"ip_address"`
	UserID      *string   `json:"user_id,omitempty"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	DetectedAt  time.Time `json:"detected_at"`
}

// SecurityAnalytics summarizes threats over a period.
type SecurityAnalytics struct {
	Period               TimeRange            `json:"period"`
	FailedAttempts       int64                `json:"failed_attempts"`
	UniqueIPs            int64                `json:"unique_ips"`
	BlockedAccounts      int64                `json:"blocked_accounts"`
	SuspiciousActivities []SuspiciousActivity `json:"suspicious_activities"`
	ThreatLevel          ThreatLevel          `json:"threat_level"`
	Countries            map[string]int64     `json:"countries"`
	Recommendations      []string             `json:"recommendations"`
	GeneratedAt          time.Time            `json:"generated_at"`
}

// EndpointUsage aggregates traffic for one endpoint.
type EndpointUsage struct {
	Endpoint              string  `json:"endpoint"`
	Method                string  `json:"method"`
	RequestCount          int64   `json:"request_count"`
	AverageResponseTimeMs float64 `json:"average_response_time_ms"`
	ErrorRate             float64 `json:"error_rate"`
}

// APIUsageAnalytics describes API traffic over a period.
type APIUsageAnalytics struct {
	TotalRequests      int64             `json:"total_requests"`
	SuccessfulRequests int64             `json:"successful_requests"`
	FailedRequests     int64             `json:"failed_requests"`
	RequestsPerMinute  float64           `json:"requests_per_minute"`
	TopEndpoints       []EndpointUsage   `json:"top_endpoints"`
	StatusCodes        map[string]int64  `json:"status_codes"`
	RequestsOverTime   []TimeSeriesPoint `json:"requests_over_time"`
}

// APIPerformance is API latency and throughput.
type APIPerformance struct {
	AverageResponseTimeMs float64 `json:"average_response_time_ms"`
	P95ResponseTimeMs     float64 `json:"p95_response_time_ms"`
	RequestsPerMinute     float64 `json:"requests_per_minute"`
	ErrorRatePercent      float64 `json:"error_rate_percent"`
}

// DatabasePerformance is query latency and pool pressure.
type DatabasePerformance struct {
	AverageQueryTimeMs         float64 `json:"average_query_time_ms"`
	SlowQueries                int64   `json:"slow_queries"`
	ConnectionPoolUsagePercent float64 `json:"connection_pool_usage_percent"`
}

// CachePerformance is cache effectiveness.
type CachePerformance struct {
	HitRatePercent  float64 `json:"hit_rate_percent"`
	MissRatePercent float64 `json:"miss_rate_percent"`
	EvictionRate    float64 `json:"eviction_rate"`
}

// ResourceUtilization is host resource usage.
type ResourceUtilization struct {
	CPUUsagePercent    float64 `json:"cpu_usage_percent"`
	MemoryUsagePercent float64 `json:"memory_usage_percent"`
	DiskUsagePercent   float64 `json:"disk_usage_percent"`
}

// ErrorRates counts failed requests by class.
type ErrorRates struct {
	ClientErrors  int64 `json:"4xx_errors"`
	ServerErrors  int64 `json:"5xx_errors"`
	TotalRequests int64 `json:"total_requests"`
}

// Percent returns the share of failed requests, 0 when there was no traffic.
func (e ErrorRates) Percent() float64 {
	if e.TotalRequests == 0 {
		return 0
	}
	return float64(e.ClientErrors+e.ServerErrors) / float64(e.TotalRequests) * 100
}

// PerformanceMetrics bundles system performance for a period.
type PerformanceMetrics struct {
	Period              TimeRange           `json:"period"`
	APIPerformance      APIPerformance      `json:"api_performance"`
	DatabasePerformance DatabasePerformance `json:"database_performance"`
	CachePerformance    CachePerformance    `json:"cache_performance"`
	ErrorRates          ErrorRates          `json:"error_rates"`
	ResourceUtilization ResourceUtilization `json:"resource_utilization"`
	GeneratedAt         time.Time           `json:"generated_at"`
}
