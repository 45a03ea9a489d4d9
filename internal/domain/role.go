package domain

import "fmt"

// Role is the closed set of authenticated principals. Handling is exhaustive
// everywhere a role is branched on; an unknown role string fails at parse
// time instead of silently falling through.
type Role string

const (
	RoleVendor        Role = "vendor"
	RoleServiceCenter Role = "serviceCenter"
	RoleAdmin         Role = "admin"
)

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleVendor, RoleServiceCenter, RoleAdmin:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// RoleStatuses returns the statuses a role's update form may offer. This is
// policy on top of the role-agnostic transition table; the backend
// re-validates every write, so UI restriction is never the only guard.
func RoleStatuses(role Role) []TicketStatus {
	switch role {
	case RoleVendor:
		return []TicketStatus{StatusPickedUp, StatusDelivered}
	case RoleServiceCenter:
		return []TicketStatus{StatusInRepair, StatusRepaired, StatusDispatched}
	case RoleAdmin:
		// Admins observe; they do not drive the lifecycle.
		return nil
	default:
		return nil
	}
}
