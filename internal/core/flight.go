package core

import (
	"sort"
	"sync"

	"github.com/edvin/opsdash/internal/errdefs"
)

// Flights enforces single-flight per environment: at most one mutating
// operation (backup, copy, retention sweep) may touch an environment
// at a time. Acquisition never blocks; a busy environment is rejected
// immediately so the caller can surface a conflict.
type Flights struct {
	mu   sync.Mutex
	busy map[string]bool
}

func NewFlights() *Flights {
	return &Flights{busy: make(map[string]bool)}
}

// TryAcquire claims env. The returned release function is safe to call
// exactly once, typically via defer.
func (f *Flights) TryAcquire(env string) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.busy[env] {
		return nil, &errdefs.ConcurrencyError{Environment: env}
	}
	f.busy[env] = true
	return func() { f.release(env) }, nil
}

// TryAcquirePair claims both environments for a copy, in lexicographic
// order so two concurrent copies between the same pair cannot
// deadlock. If the second claim fails the first is released.
func (f *Flights) TryAcquirePair(a, b string) (func(), error) {
	envs := []string{a, b}
	sort.Strings(envs)

	first, err := f.TryAcquire(envs[0])
	if err != nil {
		return nil, err
	}
	second, err := f.TryAcquire(envs[1])
	if err != nil {
		first()
		return nil, err
	}
	return func() {
		second()
		first()
	}, nil
}

// Busy reports whether env currently has an operation in flight.
func (f *Flights) Busy(env string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy[env]
}

func (f *Flights) release(env string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.busy, env)
}
