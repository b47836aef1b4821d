package ratelimit

import "time"

// Rule limits one method+path combination.
type Rule struct {
	Path   string // exact path, or a prefix when it ends with "/"
	Method string
	Limit  int // requests per Window; 0 means unlimited
	Window time.Duration
	Burst  int // defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Rules           []Rule
}

// NewConfig builds the limits for the careers API. defaultPerMinute applies to
// every route without its own rule; applyPerHour caps resume uploads.
func NewConfig(enabled bool, defaultPerMinute, applyPerHour int) *Config {
	return &Config{
		Enabled:         enabled,
		DefaultLimit:    defaultPerMinute,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Rules:           DefaultRules(applyPerHour),
	}
}

// DefaultRules returns the per-route rules.
func DefaultRules(applyPerHour int) []Rule {
	burst := applyPerHour / 4
	if burst < 1 {
		burst = 1
	}
	return []Rule{
		// Uploads write to disk and the database
		{Path: "/api/apply", Method: "POST", Limit: applyPerHour, Window: time.Hour, Burst: burst},
		{Path: "/api/jobs", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},

		// Long-lived or operational endpoints
		{Path: "/api/events", Method: "GET", Limit: 0},
		{Path: "/health", Method: "GET", Limit: 0},
		{Path: "/metrics", Method: "GET", Limit: 0},
	}
}
