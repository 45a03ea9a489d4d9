package viewmodel

import (
	"context"
	"sync"

	"github.com/spec-kit/trackify/internal/domain"
)

// RequestFetchFunc loads the full request list for this list's scope.
type RequestFetchFunc func(ctx context.Context) ([]domain.JobRequest, error)

// JobRequestList projects one job-request query: either the requests
// addressed to a service center or the requests sent by a vendor. A push
// hint about a new or updated request triggers a full re-fetch rather than a
// field-level merge; the list renders denormalized ticket/vendor/center
// display data the push payload does not carry in full.
type JobRequestList struct {
	mu       sync.Mutex
	fetch    RequestFetchFunc
	requests []domain.JobRequest
	closed   bool
}

// NewJobRequestList builds an empty list bound to a fetch function.
func NewJobRequestList(fetch RequestFetchFunc) *JobRequestList {
	return &JobRequestList{fetch: fetch}
}

// Refresh re-fetches the list and replaces it wholesale. A response landing
// after Close is discarded.
func (l *JobRequestList) Refresh(ctx context.Context) error {
	requests, err := l.fetch(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.requests = requests
	return nil
}

// ApplyDecision patches one request's status in place after the acting
// user's own successful write, so they see the result without waiting for
// the push round-trip. Push-originated changes go through Refresh instead.
func (l *JobRequestList) ApplyDecision(requestID string, status domain.JobRequestStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	for i := range l.requests {
		if l.requests[i].ID == requestID {
			l.requests[i].Status = status
			return
		}
	}
}

// Requests returns a copy of the current list.
func (l *JobRequestList) Requests() []domain.JobRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.JobRequest, len(l.requests))
	copy(out, l.requests)
	return out
}

// Accepted returns only accepted requests, the projection the service
// center's update-status flow works from.
func (l *JobRequestList) Accepted() []domain.JobRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.JobRequest, 0, len(l.requests))
	for _, request := range l.requests {
		if request.Status == domain.RequestAccepted {
			out = append(out, request)
		}
	}
	return out
}

// Close tears the list down; later refreshes and patches are discarded.
func (l *JobRequestList) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}
