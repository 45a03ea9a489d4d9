package domain

import "testing"

func TestIsValidTransitionForward(t *testing.T) {
	t.Parallel()

	for i, from := range StatusOrder {
		for j, to := range StatusOrder {
			got := IsValidTransition(from, to)
			want := j > i
			if got != want {
				t.Errorf("IsValidTransition(%q, %q) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestIsValidTransitionTerminal(t *testing.T) {
	t.Parallel()

	for _, to := range StatusOrder {
		if IsValidTransition(StatusDelivered, to) {
			t.Errorf("Delivered must be terminal, allowed transition to %q", to)
		}
	}
}

func TestNothingTransitionsIntoCreated(t *testing.T) {
	t.Parallel()

	for _, from := range StatusOrder {
		if IsValidTransition(from, StatusCreated) {
			t.Errorf("no status may transition back into Created, %q did", from)
		}
	}
}

func TestIsValidTransitionUnknownFailsClosed(t *testing.T) {
	t.Parallel()

	if IsValidTransition("Exploded", StatusDelivered) {
		t.Error("unknown current status must fail closed")
	}
	if IsValidTransition(StatusCreated, "Exploded") {
		t.Error("unknown next status must fail closed")
	}
}

func TestParseTicketStatus(t *testing.T) {
	t.Parallel()

	for _, status := range StatusOrder {
		got, err := ParseTicketStatus(string(status))
		if err != nil {
			t.Fatalf("ParseTicketStatus(%q): %v", status, err)
		}
		if got != status {
			t.Errorf("ParseTicketStatus(%q) = %q", status, got)
		}
	}

	if _, err := ParseTicketStatus("picked up"); err == nil {
		t.Error("status vocabulary is case sensitive, lowercase must be rejected")
	}
	if _, err := ParseTicketStatus(""); err == nil {
		t.Error("empty status must be rejected")
	}
}

func TestRoleStatuses(t *testing.T) {
	t.Parallel()

	vendor := RoleStatuses(RoleVendor)
	if len(vendor) != 2 || vendor[0] != StatusPickedUp || vendor[1] != StatusDelivered {
		t.Errorf("vendor statuses = %v, want [Picked Up, Delivered]", vendor)
	}

	center := RoleStatuses(RoleServiceCenter)
	want := []TicketStatus{StatusInRepair, StatusRepaired, StatusDispatched}
	if len(center) != len(want) {
		t.Fatalf("center statuses = %v, want %v", center, want)
	}
	for i := range want {
		if center[i] != want[i] {
			t.Errorf("center statuses[%d] = %q, want %q", i, center[i], want[i])
		}
	}

	if RoleStatuses(RoleAdmin) != nil {
		t.Error("admin has no status menu")
	}
}
