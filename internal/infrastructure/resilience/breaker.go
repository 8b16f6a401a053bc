package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrOpen is returned without running the call while the breaker is open.
	ErrOpen = errors.New("circuit breaker is open")
	// ErrProbeLimit is returned when a half-open breaker already has
	// MaxRequests trial calls in flight.
	ErrProbeLimit = errors.New("circuit breaker probe limit reached")
)

// State of a breaker.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	}
	return "unknown"
}

// Settings tunes a Breaker. Zero values get defaults in New.
type Settings struct {
	// MaxRequests is both the number of trial calls let through while
	// half-open and the number of successes that close the breaker again.
	MaxRequests uint32
	// Interval clears the closed-state counts periodically.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
	// ReadyToTrip decides, after each closed-state failure, whether to open.
	ReadyToTrip func(Counts) bool
	// OnStateChange observes transitions.
	OnStateChange func(name string, from, to State)
	// IsSuccessful classifies a call's error. By default nil and caller
	// cancellation count as success.
	IsSuccessful func(error) bool
	// Now is the clock; time.Now when nil.
	Now func() time.Time
}

// Counts are the call statistics of the current generation.
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

func (c *Counts) success() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) failure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// Breaker guards outbound calls. Results of calls that finish after the
// breaker moved on to a new generation are ignored.
type Breaker struct {
	name string
	cfg  Settings

	mu         sync.Mutex
	state      State
	counts     Counts
	generation uint64
	deadline   time.Time // end of the closed interval or of the open timeout
}

// New creates a closed breaker.
func New(name string, cfg Settings) *Breaker {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	if cfg.ReadyToTrip == nil {
		cfg.ReadyToTrip = func(c Counts) bool { return c.ConsecutiveFailures > 5 }
	}
	if cfg.IsSuccessful == nil {
		cfg.IsSuccessful = func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Breaker{
		name:     name,
		cfg:      cfg,
		deadline: cfg.Now().Add(cfg.Interval),
	}
}

// State reports the state as of now.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance(b.cfg.Now())
	return b.state
}

// Counts returns a copy of the current generation's counts.
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.counts
}

// Do runs fn unless the breaker rejects it, and records the outcome.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	gen, err := b.admit()
	if err != nil {
		return zero, err
	}

	done := false
	defer func() {
		if !done {
			b.record(gen, false)
		}
	}()

	result, err := fn()
	done = true
	b.record(gen, b.cfg.IsSuccessful(err))
	return result, err
}

func (b *Breaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance(b.cfg.Now())
	switch {
	case b.state == StateOpen:
		return 0, ErrOpen
	case b.state == StateHalfOpen && b.counts.Requests >= b.cfg.MaxRequests:
		return 0, ErrProbeLimit
	}
	b.counts.Requests++
	return b.generation, nil
}

func (b *Breaker) record(gen uint64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.cfg.Now()
	b.advance(now)
	if gen != b.generation {
		return
	}

	switch b.state {
	case StateClosed:
		if ok {
			b.counts.success()
			return
		}
		b.counts.failure()
		if b.cfg.ReadyToTrip(b.counts) {
			b.transition(StateOpen, now)
		}
	case StateHalfOpen:
		if !ok {
			b.transition(StateOpen, now)
			return
		}
		b.counts.success()
		if b.counts.ConsecutiveSuccesses >= b.cfg.MaxRequests {
			b.transition(StateClosed, now)
		}
	}
}

// advance applies time-driven changes: the closed interval rolling over and
// the open timeout expiring.
func (b *Breaker) advance(now time.Time) {
	if b.deadline.IsZero() || now.Before(b.deadline) {
		return
	}
	switch b.state {
	case StateClosed:
		b.newGeneration()
		b.deadline = now.Add(b.cfg.Interval)
	case StateOpen:
		b.transition(StateHalfOpen, now)
	}
}

func (b *Breaker) transition(to State, now time.Time) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.newGeneration()

	switch to {
	case StateClosed:
		b.deadline = now.Add(b.cfg.Interval)
	case StateOpen:
		b.deadline = now.Add(b.cfg.Timeout)
	case StateHalfOpen:
		b.deadline = time.Time{}
	}

	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.name, from, to)
	}
}

func (b *Breaker) newGeneration() {
	b.generation++
	b.counts = Counts{}
}
