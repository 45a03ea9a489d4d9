package domain

import "time"

// ServiceCenter is a repair shop a vendor can hand jobs to. Only verified
// centers appear in vendor directories and may receive job requests.
type ServiceCenter struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

// ServiceCenterRef is the denormalized display slice of a center carried on
// tickets and job requests.
type ServiceCenterRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

// Ref projects the display fields of a center.
func (c *ServiceCenter) Ref() ServiceCenterRef {
	return ServiceCenterRef{ID: c.ID, Name: c.Name, City: c.City}
}
