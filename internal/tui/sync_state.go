package tui

import (
	"context"
	"sync"
)

// RequestState tracks cancel functions of in-flight requests by ticket sequence
type RequestState struct {
	mu      sync.Mutex
	cancels map[uint64]context.CancelFunc
}

// NewRequestState creates an empty RequestState
func NewRequestState() *RequestState {
	return &RequestState{cancels: make(map[uint64]context.CancelFunc)}
}

// Start registers the cancel function of a request
func (r *RequestState) Start(seq uint64, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels[seq] = cancel
}

// Done releases a finished request
func (r *RequestState) Done(seq uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cancel, ok := r.cancels[seq]; ok {
		cancel()
		delete(r.cancels, seq)
	}
}

// CancelAll aborts every in-flight request and returns how many were cancelled
func (r *RequestState) CancelAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.cancels)
	for seq, cancel := range r.cancels {
		cancel()
		delete(r.cancels, seq)
	}
	return n
}

// InFlight returns the number of requests not yet finished
func (r *RequestState) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cancels)
}
