// Package push delivers asynchronous server events to whichever local view
// models are currently live. Delivery is best effort: events may be lost or
// duplicated upstream, so consumers converge through idempotent merges.
package push

import (
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/trackify/internal/domain"
)

// TicketConsumer is the slice of a ticket view model the router dispatches
// into. Status events match by ticket id against every live consumer.
type TicketConsumer interface {
	Matches(ticketID string) bool
	ApplyStatusPatch(status domain.TicketStatus, event domain.TimelineEvent)
	ApplyAssignment(center domain.ServiceCenterRef)
}

// Disposer unsubscribes. Calling it more than once is a no-op. Views call
// their disposer on every exit path so no dispatch reaches discarded state.
type Disposer func()

// Router fans inbound push events out to subscribed consumers.
type Router struct {
	mu       sync.Mutex
	logger   *zap.Logger
	nextID   int
	tickets  map[int]TicketConsumer
	requests map[int]func(JobRequestSignal)
	centers  map[int]func(CenterVerification)
	closed   bool
}

// NewRouter creates an empty router.
func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		logger:   logger,
		tickets:  make(map[int]TicketConsumer),
		requests: make(map[int]func(JobRequestSignal)),
		centers:  make(map[int]func(CenterVerification)),
	}
}

// SubscribeTicket registers a ticket view for status updates.
func (r *Router) SubscribeTicket(consumer TicketConsumer) Disposer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return func() {}
	}
	id := r.nextID
	r.nextID++
	r.tickets[id] = consumer
	return r.disposer(func() { delete(r.tickets, id) })
}

// SubscribeJobRequests registers a list view for request signals. The
// handler re-fetches its list; the signal payload is a hint, not a record.
func (r *Router) SubscribeJobRequests(handler func(JobRequestSignal)) Disposer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return func() {}
	}
	id := r.nextID
	r.nextID++
	r.requests[id] = handler
	return r.disposer(func() { delete(r.requests, id) })
}

// SubscribeCenterVerification registers a directory view for verification
// changes.
func (r *Router) SubscribeCenterVerification(handler func(CenterVerification)) Disposer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return func() {}
	}
	id := r.nextID
	r.nextID++
	r.centers[id] = handler
	return r.disposer(func() { delete(r.centers, id) })
}

func (r *Router) disposer(remove func()) Disposer {
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			remove()
		})
	}
}

// DispatchTicketStatus applies a status update to every matching live view.
// Malformed updates are dropped without touching any view.
func (r *Router) DispatchTicketStatus(update TicketStatusUpdate) {
	if update.TicketID == "" {
		r.warn("dropping status update without ticket id")
		return
	}
	if _, err := domain.ParseTicketStatus(string(update.Status)); err != nil {
		r.warn("dropping status update with unknown status", zap.String("status", string(update.Status)))
		return
	}
	for _, consumer := range r.ticketConsumers() {
		if !consumer.Matches(update.TicketID) {
			continue
		}
		consumer.ApplyStatusPatch(update.Status, update.Event)
		if update.AssignedServiceCenter != nil {
			consumer.ApplyAssignment(*update.AssignedServiceCenter)
		}
	}
}

// DispatchJobRequestSignal broadcasts a request hint to every mounted list.
func (r *Router) DispatchJobRequestSignal(signal JobRequestSignal) {
	if signal.RequestID == "" {
		r.warn("dropping job request signal without request id")
		return
	}
	for _, handler := range r.requestHandlers() {
		handler(signal)
	}
}

// DispatchCenterVerification broadcasts a verification change.
func (r *Router) DispatchCenterVerification(change CenterVerification) {
	if change.CenterID == "" {
		r.warn("dropping verification change without center id")
		return
	}
	for _, handler := range r.centerHandlers() {
		handler(change)
	}
}

// Close tears down every subscription; further dispatch is dropped.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.tickets = make(map[int]TicketConsumer)
	r.requests = make(map[int]func(JobRequestSignal))
	r.centers = make(map[int]func(CenterVerification))
}

func (r *Router) ticketConsumers() []TicketConsumer {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TicketConsumer, 0, len(r.tickets))
	for _, consumer := range r.tickets {
		out = append(out, consumer)
	}
	return out
}

func (r *Router) requestHandlers() []func(JobRequestSignal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]func(JobRequestSignal), 0, len(r.requests))
	for _, handler := range r.requests {
		out = append(out, handler)
	}
	return out
}

func (r *Router) centerHandlers() []func(CenterVerification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]func(CenterVerification), 0, len(r.centers))
	for _, handler := range r.centers {
		out = append(out, handler)
	}
	return out
}

func (r *Router) warn(msg string, fields ...zap.Field) {
	if r.logger != nil {
		r.logger.Warn(msg, fields...)
	}
}
