package backend

import (
	"errors"
	"regexp"
	"testing"

	"github.com/spec-kit/trackify/internal/domain"
)

func TestCreateTicketShape(t *testing.T) {
	t.Parallel()

	store := NewStore()
	created, event := store.CreateTicket("vendor-1", "Asha", "9999999999", "Pixel 8", "screen cracked")

	if !regexp.MustCompile(`^TRK-\d{6}$`).MatchString(created.TicketID) {
		t.Errorf("ticket id %q", created.TicketID)
	}
	if !regexp.MustCompile(`^\d{6}$`).MatchString(created.OTP) {
		t.Errorf("otp %q", created.OTP)
	}
	if created.Status != domain.StatusCreated {
		t.Errorf("status = %q", created.Status)
	}
	if event.Status != domain.StatusCreated || event.TicketID != created.TicketID {
		t.Errorf("initial event = %+v", event)
	}

	// The OTP is disclosed once, in the creation response; later reads do
	// not carry it.
	fetched, events, ok := store.Ticket(created.TicketID)
	if !ok {
		t.Fatal("ticket not found after create")
	}
	if fetched.OTP != "" {
		t.Error("fetched ticket leaks the OTP")
	}
	if len(events) != 1 {
		t.Errorf("event count = %d", len(events))
	}
}

func TestAppendStatusOrdersNewestFirst(t *testing.T) {
	t.Parallel()

	store := NewStore()
	created, _ := store.CreateTicket("vendor-1", "Asha", "", "Pixel 8", "")
	store.AppendStatus(created.TicketID, domain.StatusPickedUp, "picked up", "Warehouse", "")
	updated, event, ok := store.AppendStatus(created.TicketID, domain.StatusInRepair, "on the bench", "FixIt", "")
	if !ok {
		t.Fatal("append failed")
	}
	if updated.Status != domain.StatusInRepair {
		t.Errorf("status = %q", updated.Status)
	}

	_, events, _ := store.Ticket(created.TicketID)
	if len(events) != 3 || events[0].ID != event.ID {
		t.Fatalf("events not newest first: %+v", events)
	}
}

func TestRemoveEvent(t *testing.T) {
	t.Parallel()

	store := NewStore()
	created, initial := store.CreateTicket("vendor-1", "Asha", "", "Pixel 8", "")
	if !store.RemoveEvent(created.TicketID, initial.ID) {
		t.Fatal("remove of a present event must report true")
	}
	if store.RemoveEvent(created.TicketID, initial.ID) {
		t.Fatal("second remove must report false")
	}
}

func TestDecideJobRequestConflicts(t *testing.T) {
	t.Parallel()

	store := NewStore()
	vendor := &Account{ID: "vendor-1", Name: "Asha", Role: domain.RoleVendor}
	center := &domain.ServiceCenter{ID: "sc-1", Name: "FixIt", City: "Pune", Verified: true}
	ticket, _ := store.CreateTicket(vendor.ID, "Asha", "", "Pixel 8", "")

	first := store.CreateJobRequest(&ticket, vendor, center, "")
	second := store.CreateJobRequest(&ticket, vendor, center, "")

	decided, err := store.DecideJobRequest(first.ID, domain.RequestAccepted)
	if err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if decided.Status != domain.RequestAccepted {
		t.Errorf("status = %q", decided.Status)
	}

	// Re-deciding the same request and accepting a sibling are both
	// conflicts, not silent wins.
	if _, err := store.DecideJobRequest(first.ID, domain.RequestRejected); !errors.Is(err, errAlreadyDecided) {
		t.Errorf("re-decide err = %v", err)
	}
	if _, err := store.DecideJobRequest(second.ID, domain.RequestAccepted); !errors.Is(err, errAlreadyAssigned) {
		t.Errorf("second accept err = %v", err)
	}

	// Rejecting the sibling is still allowed.
	if _, err := store.DecideJobRequest(second.ID, domain.RequestRejected); err != nil {
		t.Errorf("sibling reject err = %v", err)
	}
}

func TestListTicketsScopedByRole(t *testing.T) {
	t.Parallel()

	store := NewStore()
	mine, _ := store.CreateTicket("vendor-1", "Asha", "", "Pixel 8", "")
	store.CreateTicket("vendor-2", "Ravi", "", "iPhone 15", "")
	store.AssignCenter(mine.TicketID, domain.ServiceCenterRef{ID: "sc-1", Name: "FixIt"})

	vendor := &Account{ID: "vendor-1", Role: domain.RoleVendor}
	if got := store.ListTickets(vendor); len(got) != 1 || got[0].TicketID != mine.TicketID {
		t.Errorf("vendor sees %+v", got)
	}

	center := &Account{ID: "acc-sc", Role: domain.RoleServiceCenter, CenterID: "sc-1"}
	if got := store.ListTickets(center); len(got) != 1 || got[0].TicketID != mine.TicketID {
		t.Errorf("center sees %+v", got)
	}

	admin := &Account{ID: "root", Role: domain.RoleAdmin}
	if got := store.ListTickets(admin); len(got) != 2 {
		t.Errorf("admin sees %d tickets", len(got))
	}
}
