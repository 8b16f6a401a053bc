/*
Package resilience provides a circuit breaker for outbound calls.

# Overview

The fetch client routes every HTTP request through a Breaker so a dead or
flapping remote host fails fast instead of tying up shell sessions.

# Features

- Three-state circuit breaker (Closed, Open, Half-Open)
- Configurable failure thresholds and timeouts
- Automatic state transitions
- Concurrent request handling
- State change callbacks for monitoring
- Pluggable success classification (caller cancellation is not a failure)
- Typed results through Do

# Usage

	// Create a circuit breaker
	breaker := resilience.New("fetch", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker state change", zap.String("name", name),
				zap.Stringer("from", from), zap.Stringer("to", to))
		},
	})

	// Execute request through breaker
	resp, err := resilience.Do(breaker, func() (*resty.Response, error) {
		return req.Execute(method, url)
	})

# States

- Closed: Normal operation, requests pass through
- Open: Service unavailable, requests fail immediately
- Half-Open: Testing if service recovered, limited requests allowed

# Pattern

The circuit breaker transitions between states based on success/failure rates:

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
