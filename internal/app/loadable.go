package app

import (
	"context"
	"sync"

	"evaluation-console/internal/domain"
)

// LoadState is the lifecycle of an asynchronous view: idle → loading → ready or failed.
type LoadState string

const (
	StateIdle    LoadState = "idle"
	StateLoading LoadState = "loading"
	StateReady   LoadState = "ready"
	StateFailed  LoadState = "error"
)

// Loadable holds the value of one asynchronous view. A failed reload keeps
// the last value that loaded successfully.
type Loadable[T any] struct {
	mu    sync.RWMutex
	state LoadState
	value T
	err   error
	has   bool
}

func NewLoadable[T any]() *Loadable[T] {
	return &Loadable[T]{state: StateIdle}
}

// Load runs fn and records the outcome.
func (l *Loadable[T]) Load(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	l.mu.Lock()
	l.state = StateLoading
	l.err = nil
	l.mu.Unlock()

	v, err := fn(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.state = StateFailed
		l.err = err
		return l.value, err
	}
	l.state = StateReady
	l.value = v
	l.has = true
	return v, nil
}

func (l *Loadable[T]) State() LoadState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Err returns the error of the last failed load.
func (l *Loadable[T]) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Value returns the last successfully loaded value, or ErrNotLoaded.
func (l *Loadable[T]) Value() (T, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.has {
		var zero T
		return zero, domain.ErrNotLoaded
	}
	return l.value, nil
}
