package domain

import "time"

// JobRequestStatus enumerates the request lifecycle. pending is the only
// non-terminal state.
type JobRequestStatus string

const (
	RequestPending  JobRequestStatus = "pending"
	RequestAccepted JobRequestStatus = "accepted"
	RequestRejected JobRequestStatus = "rejected"
)

// ParseJobRequestStatus validates a raw request status string.
func ParseJobRequestStatus(raw string) (JobRequestStatus, bool) {
	switch JobRequestStatus(raw) {
	case RequestPending, RequestAccepted, RequestRejected:
		return JobRequestStatus(raw), true
	default:
		return "", false
	}
}

// CanTransition reports whether a request may move from current to next.
// Once a request leaves pending it is terminal: no return to pending and no
// flip between accepted and rejected.
func CanTransition(current, next JobRequestStatus) bool {
	if current != RequestPending {
		return false
	}
	return next == RequestAccepted || next == RequestRejected
}

// Decided reports whether the request has reached a terminal state.
func (s JobRequestStatus) Decided() bool {
	return s == RequestAccepted || s == RequestRejected
}

// JobRequest is a vendor's proposal that a specific service center take on a
// ticket. The ticket, vendor and center fields are denormalized display data
// for list rendering; push payloads do not carry them in full, which is why
// list views re-fetch on push rather than merge field by field.
type JobRequest struct {
	ID            string           `json:"id"`
	TicketID      string           `json:"ticketId"`
	DeviceModel   string           `json:"deviceModel"`
	VendorID      string           `json:"vendorId"`
	VendorName    string           `json:"vendorName"`
	ServiceCenter ServiceCenterRef `json:"serviceCenter"`
	Notes         string           `json:"notes"`
	Status        JobRequestStatus `json:"status"`
	CreatedAt     time.Time        `json:"createdAt"`
}
