package domain

import "sync"

// Future is a deferred action result. The runtime polls it once per tick and
// never blocks on it.
type Future interface {
	// Poll returns done=false while the result is pending. Once done, a non-nil
	// err means the computation was rejected, otherwise value holds the result.
	Poll() (value any, done bool, err error)
}

// Promise is a Future the host settles from its own goroutines or scheduler.
// Only the first Resolve or Reject takes effect.
type Promise struct {
	mu      sync.Mutex
	settled bool
	value   any
	err     error
}

// NewPromise returns a pending Promise.
func NewPromise() *Promise {
	return &Promise{}
}

// Resolve settles the promise with a value, normally Succeeded or Failed.
func (p *Promise) Resolve(value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.settled {
		return
	}
	p.settled = true
	p.value = value
}

// Reject settles the promise with an error. A nil err is replaced by ErrPromiseRejected.
func (p *Promise) Reject(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.settled {
		return
	}
	if err == nil {
		err = ErrPromiseRejected
	}
	p.settled = true
	p.err = err
}

// Poll implements Future.
func (p *Promise) Poll() (any, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.settled, p.err
}

// Resolved returns an already settled Future.
func Resolved(value any) Future {
	p := NewPromise()
	p.Resolve(value)
	return p
}
