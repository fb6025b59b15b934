package resilience

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/procure-match/reconciliation-service/pkg/logging"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a call
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Name string

	// MaxRequests is the number of requests allowed in half-open state
	MaxRequests uint32

	// Interval is the cyclic period in closed state to clear counts
	Interval time.Duration

	// Timeout is how long the breaker stays open before moving to half-open
	Timeout time.Duration

	// FailureThreshold trips the breaker after this many consecutive failures
	FailureThreshold uint32

	// FailureRatioThreshold trips the breaker when the failure ratio exceeds
	// this value and at least MinRequestsToTrip requests have been observed
	FailureRatioThreshold float64
	MinRequestsToTrip     uint32
}

// DefaultCircuitBreakerConfig returns a config with sensible defaults
func DefaultCircuitBreakerConfig(name string) *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Name:                  name,
		MaxRequests:           DefaultMaxRequests,
		Interval:              DefaultInterval,
		Timeout:               DefaultTimeout,
		FailureThreshold:      DefaultFailureThreshold,
		FailureRatioThreshold: DefaultFailureRatioThreshold,
		MinRequestsToTrip:     DefaultMinRequestsToTrip,
	}
}

// CircuitBreaker wraps gobreaker with logging and state change callbacks
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	config  *CircuitBreakerConfig
	logger  *logging.Logger
}

// StateChangeCallback is invoked on circuit breaker state transitions
type StateChangeCallback func(name string, from, to gobreaker.State)

// NewCircuitBreaker creates a new circuit breaker. Logger may be nil, and
// onStateChange may be nil if no callback is needed.
func NewCircuitBreaker(config *CircuitBreakerConfig, logger *logging.Logger, onStateChange StateChangeCallback) *CircuitBreaker {
	cb := &CircuitBreaker{
		config: config,
		logger: logger,
	}

	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= config.FailureThreshold {
				return true
			}
			if counts.Requests >= config.MinRequestsToTrip {
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return ratio >= config.FailureRatioThreshold
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if cb.logger != nil {
				cb.logger.Warn("circuit breaker state change",
					"breaker", name,
					"from", from.String(),
					"to", to.String(),
				)
			}
			if onStateChange != nil {
				onStateChange(name, from, to)
			}
		},
	}

	cb.breaker = gobreaker.NewCircuitBreaker(settings)
	return cb
}

// Execute runs the given function through the circuit breaker
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cb.breaker.Execute(fn)
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, cb.config.Name)
	}
	return result, err
}

// State returns the current circuit breaker state
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the circuit breaker name
func (cb *CircuitBreaker) Name() string {
	return cb.config.Name
}

// Counts returns the current counts
func (cb *CircuitBreaker) Counts() gobreaker.Counts {
	return cb.breaker.Counts()
}
