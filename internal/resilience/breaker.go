// Package resilience provides reliability patterns for calls to the
// completion backend.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the circuit breaker is open and rejecting calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State describes the breaker's current position.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// Breaker implements a circuit breaker for the completion backend.
// Consecutive failures open the circuit; after the cool-off period a
// single probe call decides whether it closes again.
type Breaker struct {
	mu       sync.Mutex
	state    State
	failures int
	limit    int
	coolOff  time.Duration
	openedAt time.Time
	clock    func() time.Time // injectable for tests
}

// NewBreaker creates a breaker that opens after limit consecutive failures
// and stays open for the given cool-off period before probing.
func NewBreaker(limit int, coolOff time.Duration) *Breaker {
	return &Breaker{
		limit:   limit,
		coolOff: coolOff,
		clock:   time.Now,
	}
}

// Execute runs fn if the circuit is closed or half-open.
// Returns ErrCircuitOpen without calling fn when the circuit is open.
func (b *Breaker) Execute(fn func() error) error {
	if !b.admit() {
		return ErrCircuitOpen
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.recordFailure()
		return err
	}
	b.failures = 0
	b.state = StateClosed
	return nil
}

// State returns the breaker's current position.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.clock().Sub(b.openedAt) >= b.coolOff {
		return StateHalfOpen
	}
	return b.state
}

func (b *Breaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.clock().Sub(b.openedAt) >= b.coolOff {
			b.state = StateHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

// recordFailure must be called with b.mu held.
func (b *Breaker) recordFailure() {
	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.limit {
		b.state = StateOpen
		b.openedAt = b.clock()
	}
}
