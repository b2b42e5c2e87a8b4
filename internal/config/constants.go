package config

import "time"

// Application constants
const (
	AppName = "E-commerce Sales Analyzer"

	// Analysis defaults
	DefaultStatusFilter   = "delivered"
	ReviewPolicyReject    = "reject"
	ReviewPolicyKeepFirst = "keep_first"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Timeouts
	DefaultRunTimeout  = 5 * time.Minute
	DefaultHTTPTimeout = 30 * time.Second

	// File Paths (relative to the working directory)
	DefaultDataDir    = "data"
	DefaultReportsDir = "reports"
	DefaultLogsDir    = "logs"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// API Endpoints
	APIBasePath      = "/api"
	AnalysisEndpoint = "/api/analysis"
	HealthEndpoint   = "/api/health"
	MetricsEndpoint  = "/metrics"
)
