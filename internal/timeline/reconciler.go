// Package timeline merges a ticket's event history from its two sources of
// truth: bulk fetches over request/response and single events arriving via
// push. The result is always duplicate-free and ordered by timestamp
// descending, regardless of arrival order.
package timeline

import (
	"sort"

	"github.com/spec-kit/trackify/internal/domain"
)

// Reconciler owns the ordered event sequence for one ticket.
type Reconciler struct {
	ticketID string
	events   []domain.TimelineEvent
}

// NewReconciler creates an empty reconciler bound to a ticket id.
func NewReconciler(ticketID string) *Reconciler {
	return &Reconciler{ticketID: ticketID}
}

// TicketID returns the bound ticket id.
func (r *Reconciler) TicketID() string {
	return r.ticketID
}

// Replace swaps in a full sequence from a fetch and re-sorts it.
func (r *Reconciler) Replace(events []domain.TimelineEvent) {
	r.events = make([]domain.TimelineEvent, len(events))
	copy(r.events, events)
	r.sortDescending()
}

// Merge applies a single incoming event idempotently. An event whose id is
// already present is discarded: a push event and a direct-write response
// describing the same change must converge on one occurrence. Returns
// whether the event was applied.
func (r *Reconciler) Merge(event domain.TimelineEvent) bool {
	if event.ID == "" || event.TicketID != r.ticketID {
		return false
	}
	for _, existing := range r.events {
		if existing.ID == event.ID {
			return false
		}
	}
	r.events = append([]domain.TimelineEvent{event}, r.events...)
	r.sortDescending()
	return true
}

// Remove deletes an event by id. Remaining order is preserved as is.
func (r *Reconciler) Remove(eventID string) bool {
	for i, existing := range r.events {
		if existing.ID == eventID {
			r.events = append(r.events[:i], r.events[i+1:]...)
			return true
		}
	}
	return false
}

// Events returns a copy of the current sequence, newest first.
func (r *Reconciler) Events() []domain.TimelineEvent {
	out := make([]domain.TimelineEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Latest returns the most recent event, if any.
func (r *Reconciler) Latest() (domain.TimelineEvent, bool) {
	if len(r.events) == 0 {
		return domain.TimelineEvent{}, false
	}
	return r.events[0], true
}

// Len returns the number of events held.
func (r *Reconciler) Len() int {
	return len(r.events)
}

// sortDescending orders events newest first. Only events with parsable
// timestamps participate in the sort; an unparsable one keeps the position
// its arrival gave it instead of acting as a barrier between valid events.
// Valid events with equal timestamps keep their arrival order.
func (r *Reconciler) sortDescending() {
	valid := make([]domain.TimelineEvent, 0, len(r.events))
	invalidAt := make(map[int]domain.TimelineEvent)
	for i, event := range r.events {
		if event.Timestamp.Valid {
			valid = append(valid, event)
		} else {
			invalidAt[i] = event
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Timestamp.After(valid[j].Timestamp)
	})

	out := make([]domain.TimelineEvent, 0, len(r.events))
	next := 0
	for i := range r.events {
		if event, ok := invalidAt[i]; ok {
			out = append(out, event)
			continue
		}
		out = append(out, valid[next])
		next++
	}
	r.events = out
}
