package push

import (
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/trackify/internal/domain"
)

// recordingConsumer captures dispatched patches for one ticket id.
type recordingConsumer struct {
	ticketID    string
	patches     []domain.TicketStatus
	assignments []domain.ServiceCenterRef
}

func (c *recordingConsumer) Matches(ticketID string) bool { return ticketID == c.ticketID }

func (c *recordingConsumer) ApplyStatusPatch(status domain.TicketStatus, _ domain.TimelineEvent) {
	c.patches = append(c.patches, status)
}

func (c *recordingConsumer) ApplyAssignment(center domain.ServiceCenterRef) {
	c.assignments = append(c.assignments, center)
}

func statusUpdate(ticketID string, status domain.TicketStatus) TicketStatusUpdate {
	return TicketStatusUpdate{
		TicketID: ticketID,
		Status:   status,
		Event:    domain.TimelineEvent{ID: "e1", TicketID: ticketID, Status: status},
	}
}

func TestDispatchTicketStatusByIdentity(t *testing.T) {
	t.Parallel()

	router := NewRouter(zap.NewNop())
	mine := &recordingConsumer{ticketID: "TRK-000001"}
	other := &recordingConsumer{ticketID: "TRK-000002"}
	defer router.SubscribeTicket(mine)()
	defer router.SubscribeTicket(other)()

	router.DispatchTicketStatus(statusUpdate("TRK-000001", domain.StatusPickedUp))

	if len(mine.patches) != 1 || mine.patches[0] != domain.StatusPickedUp {
		t.Fatalf("matching consumer patches = %v", mine.patches)
	}
	if len(other.patches) != 0 {
		t.Fatalf("non-matching consumer received %v", other.patches)
	}
}

func TestDispatchTicketStatusWithAssignment(t *testing.T) {
	t.Parallel()

	router := NewRouter(zap.NewNop())
	consumer := &recordingConsumer{ticketID: "TRK-000001"}
	defer router.SubscribeTicket(consumer)()

	update := statusUpdate("TRK-000001", domain.StatusCreated)
	update.AssignedServiceCenter = &domain.ServiceCenterRef{ID: "sc-1", Name: "FixIt"}
	router.DispatchTicketStatus(update)

	if len(consumer.assignments) != 1 || consumer.assignments[0].ID != "sc-1" {
		t.Fatalf("assignments = %v", consumer.assignments)
	}
}

func TestDispatchDropsMalformedUpdates(t *testing.T) {
	t.Parallel()

	router := NewRouter(zap.NewNop())
	consumer := &recordingConsumer{ticketID: "TRK-000001"}
	defer router.SubscribeTicket(consumer)()

	router.DispatchTicketStatus(statusUpdate("", domain.StatusPickedUp))
	router.DispatchTicketStatus(statusUpdate("TRK-000001", "Exploded"))

	if len(consumer.patches) != 0 {
		t.Fatalf("malformed updates reached the consumer: %v", consumer.patches)
	}
}

func TestDisposerStopsDispatchAndIsIdempotent(t *testing.T) {
	t.Parallel()

	router := NewRouter(zap.NewNop())
	consumer := &recordingConsumer{ticketID: "TRK-000001"}
	dispose := router.SubscribeTicket(consumer)

	dispose()
	dispose() // second call is a no-op

	router.DispatchTicketStatus(statusUpdate("TRK-000001", domain.StatusPickedUp))
	if len(consumer.patches) != 0 {
		t.Fatalf("disposed consumer received %v", consumer.patches)
	}
}

func TestDispatchJobRequestSignal(t *testing.T) {
	t.Parallel()

	router := NewRouter(zap.NewNop())
	var got []JobRequestSignal
	defer router.SubscribeJobRequests(func(signal JobRequestSignal) {
		got = append(got, signal)
	})()

	router.DispatchJobRequestSignal(JobRequestSignal{RequestID: "r1", Status: domain.RequestAccepted})
	router.DispatchJobRequestSignal(JobRequestSignal{}) // no id, dropped

	if len(got) != 1 || got[0].RequestID != "r1" {
		t.Fatalf("signals = %v", got)
	}
}

func TestDispatchCenterVerification(t *testing.T) {
	t.Parallel()

	router := NewRouter(zap.NewNop())
	var got []CenterVerification
	defer router.SubscribeCenterVerification(func(change CenterVerification) {
		got = append(got, change)
	})()

	router.DispatchCenterVerification(CenterVerification{CenterID: "sc-1", Verified: true})
	router.DispatchCenterVerification(CenterVerification{}) // no id, dropped

	if len(got) != 1 || !got[0].Verified {
		t.Fatalf("changes = %v", got)
	}
}

func TestClosedRouterDropsEverything(t *testing.T) {
	t.Parallel()

	router := NewRouter(zap.NewNop())
	consumer := &recordingConsumer{ticketID: "TRK-000001"}
	router.SubscribeTicket(consumer)
	router.Close()

	router.DispatchTicketStatus(statusUpdate("TRK-000001", domain.StatusPickedUp))
	if len(consumer.patches) != 0 {
		t.Fatalf("closed router dispatched %v", consumer.patches)
	}

	// Subscriptions after close are inert.
	dispose := router.SubscribeTicket(consumer)
	dispose()
	router.DispatchTicketStatus(statusUpdate("TRK-000001", domain.StatusPickedUp))
	if len(consumer.patches) != 0 {
		t.Fatalf("post-close subscription received %v", consumer.patches)
	}
}
