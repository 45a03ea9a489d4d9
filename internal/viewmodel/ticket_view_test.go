package viewmodel

import (
	"testing"
	"time"

	"github.com/spec-kit/trackify/internal/domain"
)

func seedTicket() domain.Ticket {
	return domain.Ticket{
		ID:       "id-1",
		TicketID: "TRK-000001",
		Status:   domain.StatusCreated,
	}
}

func patchEvent(id string, status domain.TicketStatus, hour int) domain.TimelineEvent {
	return domain.TimelineEvent{
		ID:        id,
		TicketID:  "TRK-000001",
		Status:    status,
		Timestamp: domain.NewEventTime(time.Date(2026, 8, 29, hour, 0, 0, 0, time.UTC)),
	}
}

func TestApplyStatusPatchConvergesAcrossChannels(t *testing.T) {
	t.Parallel()

	view := NewTicketView(seedTicket(), nil)
	event := patchEvent("e1", domain.StatusPickedUp, 9)

	// Direct-write response first, then the push for the same change.
	view.ApplyStatusPatch(domain.StatusPickedUp, event)
	view.ApplyStatusPatch(domain.StatusPickedUp, event)

	ticket, events := view.Snapshot()
	if ticket.Status != domain.StatusPickedUp {
		t.Errorf("status = %q, want Picked Up", ticket.Status)
	}
	if len(events) != 1 {
		t.Fatalf("event count = %d, want 1 (same event must not appear twice)", len(events))
	}
}

func TestApplyStatusPatchIgnoresOtherTickets(t *testing.T) {
	t.Parallel()

	view := NewTicketView(seedTicket(), nil)
	foreign := patchEvent("e1", domain.StatusPickedUp, 9)
	foreign.TicketID = "TRK-999999"

	view.ApplyStatusPatch(domain.StatusPickedUp, foreign)

	ticket, events := view.Snapshot()
	if ticket.Status != domain.StatusCreated {
		t.Errorf("cross-ticket patch must not change status, got %q", ticket.Status)
	}
	if len(events) != 0 {
		t.Errorf("cross-ticket event must not be merged, got %d events", len(events))
	}
}

func TestApplyStatusPatchWithAssignmentOnlyEvent(t *testing.T) {
	t.Parallel()

	// An acceptance push carries the assignment but no timeline event; the
	// status is restated and the timeline stays untouched.
	view := NewTicketView(seedTicket(), []domain.TimelineEvent{patchEvent("e1", domain.StatusCreated, 8)})
	view.ApplyStatusPatch(domain.StatusCreated, domain.TimelineEvent{})
	view.ApplyAssignment(domain.ServiceCenterRef{ID: "sc-1", Name: "FixIt", City: "Pune"})

	ticket, events := view.Snapshot()
	if len(events) != 1 {
		t.Fatalf("event count = %d, want 1", len(events))
	}
	if ticket.AssignedServiceCenter == nil || ticket.AssignedServiceCenter.ID != "sc-1" {
		t.Fatalf("assignment not recorded: %+v", ticket.AssignedServiceCenter)
	}
}

func TestClosedViewDiscardsEverything(t *testing.T) {
	t.Parallel()

	view := NewTicketView(seedTicket(), nil)
	view.Close()

	// A late response or push landing after teardown must not resurrect
	// state.
	view.ApplyStatusPatch(domain.StatusPickedUp, patchEvent("e1", domain.StatusPickedUp, 9))
	view.ApplyAssignment(domain.ServiceCenterRef{ID: "sc-1"})
	view.Load(seedTicket(), []domain.TimelineEvent{patchEvent("e2", domain.StatusCreated, 8)})

	ticket, events := view.Snapshot()
	if ticket.Status != domain.StatusCreated || ticket.AssignedServiceCenter != nil || len(events) != 0 {
		t.Errorf("closed view mutated: status=%q center=%v events=%d",
			ticket.Status, ticket.AssignedServiceCenter, len(events))
	}
	if view.Matches("TRK-000001") {
		t.Error("closed view must not match push dispatch")
	}
}

func TestLoadRebindsTimeline(t *testing.T) {
	t.Parallel()

	view := NewTicketView(seedTicket(), []domain.TimelineEvent{patchEvent("e1", domain.StatusCreated, 8)})

	other := seedTicket()
	other.TicketID = "TRK-000002"
	fresh := patchEvent("e2", domain.StatusCreated, 9)
	fresh.TicketID = "TRK-000002"
	view.Load(other, []domain.TimelineEvent{fresh})

	if !view.Matches("TRK-000002") || view.Matches("TRK-000001") {
		t.Error("view identity must follow the loaded ticket")
	}
	_, events := view.Snapshot()
	if len(events) != 1 || events[0].ID != "e2" {
		t.Fatalf("timeline not rebound: %+v", events)
	}
}

func TestRemoveEvent(t *testing.T) {
	t.Parallel()

	view := NewTicketView(seedTicket(), []domain.TimelineEvent{
		patchEvent("e1", domain.StatusCreated, 8),
		patchEvent("e2", domain.StatusPickedUp, 9),
	})
	if !view.RemoveEvent("e1") {
		t.Fatal("remove of a present event must report true")
	}
	_, events := view.Snapshot()
	if len(events) != 1 || events[0].ID != "e2" {
		t.Fatalf("events after remove: %+v", events)
	}

	view.Close()
	if view.RemoveEvent("e2") {
		t.Error("closed view must discard removals")
	}
}
