package push

import (
	"encoding/json"

	"github.com/spec-kit/trackify/internal/domain"
)

// EventType enumerates the push event identifiers on the wire.
type EventType string

const (
	EventTicketStatusUpdated   EventType = "ticketStatusUpdated"
	EventNewJobRequest         EventType = "newJobRequest"
	EventJobRequestUpdated     EventType = "jobRequestUpdated"
	EventServiceCenterVerified EventType = "serviceCenterVerified"
)

// Frame is the wire envelope for one push event.
type Frame struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// TicketStatusUpdate carries a full authoritative patch for one ticket:
// the new status, the timeline event that recorded it, and the assignment
// when an acceptance caused the change.
type TicketStatusUpdate struct {
	TicketID              string                   `json:"ticketId"`
	Status                domain.TicketStatus      `json:"status"`
	Event                 domain.TimelineEvent     `json:"event"`
	AssignedServiceCenter *domain.ServiceCenterRef `json:"assignedServiceCenter,omitempty"`
}

// JobRequestSignal is a hint that a request was created or decided. It is
// intentionally partial: list views re-fetch on receipt instead of merging.
type JobRequestSignal struct {
	RequestID       string                  `json:"requestId"`
	ServiceCenterID string                  `json:"serviceCenterId,omitempty"`
	VendorID        string                  `json:"vendorId,omitempty"`
	Status          domain.JobRequestStatus `json:"status,omitempty"`
}

// CenterVerification signals that a service center's verified flag changed.
type CenterVerification struct {
	CenterID string `json:"centerId"`
	Verified bool   `json:"verified"`
}
