package resilience

import "time"

// Circuit breaker defaults
const (
	DefaultMaxRequests           = 3
	DefaultInterval              = 60 * time.Second
	DefaultTimeout               = 30 * time.Second
	DefaultFailureThreshold      = 5
	DefaultSuccessThreshold      = 2
	DefaultFailureRatioThreshold = 0.5
	DefaultMinRequestsToTrip     = 10
)
