package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for repair tickets, in canonical
// forward order from drop-off to hand-back.
type TicketStatus string

const (
	StatusCreated    TicketStatus = "Created"
	StatusPickedUp   TicketStatus = "Picked Up"
	StatusReceived   TicketStatus = "Received"
	StatusInRepair   TicketStatus = "In Repair"
	StatusRepaired   TicketStatus = "Repaired"
	StatusDispatched TicketStatus = "Dispatched"
	StatusDelivered  TicketStatus = "Delivered"
)

// StatusOrder lists every ticket status in canonical forward order.
var StatusOrder = []TicketStatus{
	StatusCreated,
	StatusPickedUp,
	StatusReceived,
	StatusInRepair,
	StatusRepaired,
	StatusDispatched,
	StatusDelivered,
}

// allowedTransitions maps each status to the statuses it may advance to.
// The lifecycle is strictly forward: no status transitions back, and nothing
// transitions into Created.
var allowedTransitions = map[TicketStatus][]TicketStatus{
	StatusCreated:    {StatusPickedUp, StatusReceived, StatusInRepair, StatusRepaired, StatusDispatched, StatusDelivered},
	StatusPickedUp:   {StatusReceived, StatusInRepair, StatusRepaired, StatusDispatched, StatusDelivered},
	StatusReceived:   {StatusInRepair, StatusRepaired, StatusDispatched, StatusDelivered},
	StatusInRepair:   {StatusRepaired, StatusDispatched, StatusDelivered},
	StatusRepaired:   {StatusDispatched, StatusDelivered},
	StatusDispatched: {StatusDelivered},
	StatusDelivered:  {},
}

// IsValidTransition reports whether a ticket may move from current to next.
// Unknown statuses fail closed on either side.
func IsValidTransition(current, next TicketStatus) bool {
	candidates, known := allowedTransitions[current]
	if !known {
		return false
	}
	for _, candidate := range candidates {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseTicketStatus validates a raw status string against the closed
// vocabulary. Unknown strings are an error, never a crash downstream.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	status := TicketStatus(raw)
	if _, known := allowedTransitions[status]; !known {
		return "", fmt.Errorf("unknown ticket status %q", raw)
	}
	return status, nil
}

// Ticket is the aggregate for one tracked repair job.
type Ticket struct {
	ID                    string             `json:"id"`
	TicketID              string             `json:"ticketId"`
	CustomerName          string             `json:"customerName"`
	CustomerPhone         string             `json:"customerPhone"`
	DeviceModel           string             `json:"deviceModel"`
	Issue                 string             `json:"issue"`
	Status                TicketStatus       `json:"status"`
	AssignedServiceCenter *ServiceCenterRef  `json:"assignedServiceCenter,omitempty"`
	VendorID              string             `json:"vendorId,omitempty"`
	// OTP is populated only in the creation response to the owning vendor;
	// every other projection leaves it empty.
	OTP       string    `json:"otp,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
