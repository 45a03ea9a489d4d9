// Package viewmodel holds the in-memory projections that views render from.
// Each projection is exclusively owned by one live view and is never shared
// between views; cross-view consistency comes from every view observing the
// same push stream, not from shared memory.
package viewmodel

import (
	"sync"

	"github.com/spec-kit/trackify/internal/domain"
	"github.com/spec-kit/trackify/internal/timeline"
)

// TicketView is the authoritative projection of one ticket: status, timeline
// and assignment. All I/O happens in callers; methods only mutate in-memory
// state. Methods are safe for concurrent use because push dispatch arrives
// from the socket goroutine while the owning view mutates from its own.
type TicketView struct {
	mu       sync.Mutex
	ticket   domain.Ticket
	timeline *timeline.Reconciler
	closed   bool
}

// NewTicketView builds a view model seeded with a fetched ticket and its
// event history.
func NewTicketView(ticket domain.Ticket, events []domain.TimelineEvent) *TicketView {
	v := &TicketView{timeline: timeline.NewReconciler(ticket.TicketID)}
	v.load(ticket, events)
	return v
}

// Load replaces state wholesale after a fresh fetch.
func (v *TicketView) Load(ticket domain.Ticket, events []domain.TimelineEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.load(ticket, events)
}

func (v *TicketView) load(ticket domain.Ticket, events []domain.TimelineEvent) {
	v.ticket = ticket
	if v.timeline.TicketID() != ticket.TicketID {
		v.timeline = timeline.NewReconciler(ticket.TicketID)
	}
	v.timeline.Replace(events)
}

// ApplyStatusPatch sets the ticket status and merges the new event by id.
// Used both for the acting user's own successful write and for
// push-delivered updates, so the two paths converge on identical state no
// matter which lands first.
//
// The status is last-writer-wins on arrival order. The backend emits events
// in non-decreasing status order; if it ever emitted a corrective
// (backward) event, the header status would follow the latest arrival while
// the timeline still renders the event at its correct position. Ordering
// authority stays with the backend.
//
// A patch whose event belongs to a different ticket is a no-op, tolerating
// late cross-ticket push noise.
func (v *TicketView) ApplyStatusPatch(status domain.TicketStatus, event domain.TimelineEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if event.TicketID != "" && event.TicketID != v.ticket.TicketID {
		return
	}
	v.ticket.Status = status
	v.timeline.Merge(event)
}

// ApplyAssignment records the accepted service center.
func (v *TicketView) ApplyAssignment(center domain.ServiceCenterRef) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	ref := center
	v.ticket.AssignedServiceCenter = &ref
}

// RemoveEvent drops a timeline entry by id, leaving the rest in order.
func (v *TicketView) RemoveEvent(eventID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false
	}
	return v.timeline.Remove(eventID)
}

// Matches is the identity predicate the push router uses to decide whether
// an inbound event targets this view.
func (v *TicketView) Matches(ticketID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.closed && v.ticket.TicketID == ticketID
}

// Snapshot returns the ticket and its rendered timeline, newest event first.
func (v *TicketView) Snapshot() (domain.Ticket, []domain.TimelineEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ticket, v.timeline.Events()
}

// Close tears the view down when its owner unmounts. Every mutation after
// Close is discarded, including a previously-pending write's late response.
func (v *TicketView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

// Closed reports whether the view has been torn down.
func (v *TicketView) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}
