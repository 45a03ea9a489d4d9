package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/trackify/internal/domain"
)

var (
	errNotFound        = errors.New("job request not found")
	errAlreadyDecided  = errors.New("request already processed")
	errAlreadyAssigned = errors.New("ticket already has an accepted request")
)

// Account is a login-capable principal. Service-center accounts carry the
// id of the center they operate.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         domain.Role
	CenterID     string
}

// Store is the in-memory state of the reference backend. It is a protocol
// fixture for development and tests; the production storage engine is out of
// scope for this module.
type Store struct {
	mu       sync.Mutex
	accounts map[string]*Account
	byEmail  map[string]string
	centers  map[string]*domain.ServiceCenter
	tickets  map[string]*domain.Ticket
	otps     map[string]string
	events   map[string][]domain.TimelineEvent
	requests map[string]*domain.JobRequest
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*Account),
		byEmail:  make(map[string]string),
		centers:  make(map[string]*domain.ServiceCenter),
		tickets:  make(map[string]*domain.Ticket),
		otps:     make(map[string]string),
		events:   make(map[string][]domain.TimelineEvent),
		requests: make(map[string]*domain.JobRequest),
	}
}

// CreateAccount registers an account, plus its service center when the role
// calls for one. Fails on duplicate email.
func (s *Store) CreateAccount(name, email, passwordHash string, role domain.Role, city, phone string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[email]; exists {
		return nil, fmt.Errorf("email %s already registered", email)
	}
	account := &Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if role == domain.RoleServiceCenter {
		center := &domain.ServiceCenter{
			ID:        uuid.NewString(),
			Name:      name,
			City:      city,
			Phone:     phone,
			Email:     email,
			Verified:  false,
			CreatedAt: time.Now(),
		}
		s.centers[center.ID] = center
		account.CenterID = center.ID
	}
	s.accounts[account.ID] = account
	s.byEmail[email] = account.ID
	return account, nil
}

// AccountByEmail looks an account up for login.
func (s *Store) AccountByEmail(email string) (*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, false
	}
	account := *s.accounts[id]
	return &account, true
}

// AccountByID looks an account up for token validation.
func (s *Store) AccountByID(id string) (*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, false
	}
	copied := *account
	return &copied, true
}

// CreateTicket registers a repair job with a fresh ticket id, OTP and the
// initial Created event.
func (s *Store) CreateTicket(vendorID, customerName, customerPhone, deviceModel, issue string) (domain.Ticket, domain.TimelineEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	ticket := domain.Ticket{
		ID:            uuid.NewString(),
		TicketID:      generateTicketID(),
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		DeviceModel:   deviceModel,
		Issue:         issue,
		Status:        domain.StatusCreated,
		VendorID:      vendorID,
		CreatedAt:     now,
	}
	event := domain.TimelineEvent{
		ID:          uuid.NewString(),
		TicketID:    ticket.TicketID,
		Status:      domain.StatusCreated,
		Description: "Ticket created",
		Location:    "Vendor Location",
		Timestamp:   domain.NewEventTime(now),
	}
	s.tickets[ticket.TicketID] = &ticket
	s.otps[ticket.TicketID] = generateOTP()
	s.events[ticket.TicketID] = []domain.TimelineEvent{event}

	created := ticket
	created.OTP = s.otps[ticket.TicketID]
	return created, event
}

// Ticket returns a ticket (without OTP) and its events, newest first.
func (s *Store) Ticket(ticketID string) (domain.Ticket, []domain.TimelineEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[ticketID]
	if !ok {
		return domain.Ticket{}, nil, false
	}
	return *ticket, s.eventsDescending(ticketID), true
}

// OTP returns the ticket's current OTP.
func (s *Store) OTP(ticketID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	otp, ok := s.otps[ticketID]
	return otp, ok
}

// ListTickets returns tickets visible to the given principal.
func (s *Store) ListTickets(account *Account) []domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Ticket, 0, len(s.tickets))
	for _, ticket := range s.tickets {
		switch account.Role {
		case domain.RoleAdmin:
			out = append(out, *ticket)
		case domain.RoleVendor:
			if ticket.VendorID == account.ID {
				out = append(out, *ticket)
			}
		case domain.RoleServiceCenter:
			if ticket.AssignedServiceCenter != nil && ticket.AssignedServiceCenter.ID == account.CenterID {
				out = append(out, *ticket)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// AppendStatus records a status change and returns the updated ticket with
// its new event.
func (s *Store) AppendStatus(ticketID string, status domain.TicketStatus, description, location, image string) (domain.Ticket, domain.TimelineEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[ticketID]
	if !ok {
		return domain.Ticket{}, domain.TimelineEvent{}, false
	}
	event := domain.TimelineEvent{
		ID:          uuid.NewString(),
		TicketID:    ticketID,
		Status:      status,
		Description: description,
		Location:    location,
		Image:       image,
		Timestamp:   domain.NewEventTime(time.Now()),
	}
	ticket.Status = status
	s.events[ticketID] = append(s.events[ticketID], event)
	return *ticket, event, true
}

// RemoveEvent deletes a timeline entry by id.
func (s *Store) RemoveEvent(ticketID, eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events[ticketID]
	for i, event := range events {
		if event.ID == eventID {
			s.events[ticketID] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

// AssignCenter sets a ticket's accepted service center.
func (s *Store) AssignCenter(ticketID string, ref domain.ServiceCenterRef) (domain.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[ticketID]
	if !ok {
		return domain.Ticket{}, false
	}
	assigned := ref
	ticket.AssignedServiceCenter = &assigned
	return *ticket, true
}

// CreateJobRequest stores a pending request with denormalized display data.
func (s *Store) CreateJobRequest(ticket *domain.Ticket, vendor *Account, center *domain.ServiceCenter, notes string) domain.JobRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	request := domain.JobRequest{
		ID:            uuid.NewString(),
		TicketID:      ticket.TicketID,
		DeviceModel:   ticket.DeviceModel,
		VendorID:      vendor.ID,
		VendorName:    vendor.Name,
		ServiceCenter: center.Ref(),
		Notes:         notes,
		Status:        domain.RequestPending,
		CreatedAt:     time.Now(),
	}
	s.requests[request.ID] = &request
	return request
}

// JobRequest returns one request by id.
func (s *Store) JobRequest(requestID string) (domain.JobRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[requestID]
	if !ok {
		return domain.JobRequest{}, false
	}
	return *request, true
}

// DecideJobRequest moves a pending request to a terminal state. It reports
// a conflict both when the request is already decided and when accepting
// would give the ticket a second accepted request.
func (s *Store) DecideJobRequest(requestID string, status domain.JobRequestStatus) (domain.JobRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[requestID]
	if !ok {
		return domain.JobRequest{}, errNotFound
	}
	if !domain.CanTransition(request.Status, status) {
		return domain.JobRequest{}, errAlreadyDecided
	}
	if status == domain.RequestAccepted {
		for _, other := range s.requests {
			if other.TicketID == request.TicketID && other.Status == domain.RequestAccepted {
				return domain.JobRequest{}, errAlreadyAssigned
			}
		}
	}
	request.Status = status
	return *request, nil
}

// ListJobRequests returns requests for one projection: sent by a vendor or
// addressed to a center.
func (s *Store) ListJobRequests(vendorID, centerID string) []domain.JobRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.JobRequest, 0, len(s.requests))
	for _, request := range s.requests {
		if vendorID != "" && request.VendorID != vendorID {
			continue
		}
		if centerID != "" && request.ServiceCenter.ID != centerID {
			continue
		}
		out = append(out, *request)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Center returns one service center.
func (s *Store) Center(centerID string) (domain.ServiceCenter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	center, ok := s.centers[centerID]
	if !ok {
		return domain.ServiceCenter{}, false
	}
	return *center, true
}

// ListCenters returns the center directory, optionally verified only.
func (s *Store) ListCenters(verifiedOnly bool) []domain.ServiceCenter {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ServiceCenter, 0, len(s.centers))
	for _, center := range s.centers {
		if verifiedOnly && !center.Verified {
			continue
		}
		out = append(out, *center)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// VerifyCenter marks a center verified.
func (s *Store) VerifyCenter(centerID string) (domain.ServiceCenter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	center, ok := s.centers[centerID]
	if !ok {
		return domain.ServiceCenter{}, false
	}
	center.Verified = true
	return *center, true
}

func (s *Store) eventsDescending(ticketID string) []domain.TimelineEvent {
	events := s.events[ticketID]
	out := make([]domain.TimelineEvent, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func generateTicketID() string {
	return fmt.Sprintf("TRK-%06d", uuid.New().ID()%1000000)
}

func generateOTP() string {
	return fmt.Sprintf("%06d", uuid.New().ID()%1000000)
}
