package backend

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/trackify/internal/domain"
	"github.com/spec-kit/trackify/internal/push"
	"github.com/spec-kit/trackify/internal/session"
	apperrors "github.com/spec-kit/trackify/pkg/util"
)

// Handlers implements the REST boundary the client core consumes.
type Handlers struct {
	store      *Store
	tokens     *TokenManager
	hub        *Hub
	bcryptCost int
}

// NewHandlers constructs the handler set.
func NewHandlers(store *Store, tokens *TokenManager, hub *Hub, bcryptCost int) *Handlers {
	return &Handlers{store: store, tokens: tokens, hub: hub, bcryptCost: bcryptCost}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	City     string `json:"city"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register POST /api/auth/register.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return apperrors.NewValidationError("unknown role", nil)
	}
	hash, err := HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		return err
	}
	account, err := h.store.CreateAccount(req.Name, req.Email, hash, role, req.City, req.Phone)
	if err != nil {
		return apperrors.NewConflict("email already registered", nil)
	}
	return h.loginResponse(c, account, http.StatusCreated)
}

// Login POST /api/auth/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, ok := h.store.AccountByEmail(req.Email)
	if !ok {
		return apperrors.NewAuthFailure()
	}
	if err := ComparePassword(account.PasswordHash, req.Password); err != nil {
		return apperrors.NewAuthFailure()
	}
	return h.loginResponse(c, account, http.StatusOK)
}

func (h *Handlers) loginResponse(c *fiber.Ctx, account *Account, status int) error {
	token, err := h.tokens.GenerateToken(account.ID, account.Role)
	if err != nil {
		return err
	}
	principal := session.Principal{
		ID:    account.ID,
		Name:  account.Name,
		Email: account.Email,
		Role:  account.Role,
	}
	if account.Role == domain.RoleServiceCenter {
		if center, ok := h.store.Center(account.CenterID); ok {
			principal.ID = center.ID
			principal.Verified = center.Verified
		}
	}
	return c.Status(status).JSON(fiber.Map{"data": fiber.Map{
		"token":     token,
		"principal": principal,
	}})
}

type createTicketRequest struct {
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	DeviceModel   string `json:"deviceModel"`
	Issue         string `json:"issue"`
}

// CreateTicket POST /api/tickets. Vendor only; the response is the one
// place the OTP is disclosed.
func (h *Handlers) CreateTicket(c *fiber.Ctx) error {
	account, _ := AccountFromContext(c)
	var req createTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CustomerName == "" || req.DeviceModel == "" {
		return apperrors.NewValidationError("customerName and deviceModel required", nil)
	}
	ticket, _ := h.store.CreateTicket(account.ID, req.CustomerName, req.CustomerPhone, req.DeviceModel, strings.TrimSpace(req.Issue))
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticket})
}

// ListTickets GET /api/tickets, scoped by role.
func (h *Handlers) ListTickets(c *fiber.Ctx) error {
	account, _ := AccountFromContext(c)
	return c.JSON(fiber.Map{"data": h.store.ListTickets(account)})
}

// GetTicket GET /api/tickets/:ticketId.
func (h *Handlers) GetTicket(c *fiber.Ctx) error {
	account, _ := AccountFromContext(c)
	ticket, events, ok := h.store.Ticket(c.Params("ticketId"))
	if !ok {
		return apperrors.NewNotFound("ticket", nil)
	}
	if !h.canSeeTicket(account, &ticket) {
		return apperrors.NewAuthFailure()
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ticket": ticket, "events": events}})
}

type statusUpdateRequest struct {
	Status      string `json:"status"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Image       string `json:"image"`
}

// UpdateStatus PATCH /api/tickets/:ticketId/status. Validates the
// role-status policy and the transition table, then broadcasts the
// canonical patch.
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	account, _ := AccountFromContext(c)
	ticketID := c.Params("ticketId")
	var req statusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, err := domain.ParseTicketStatus(req.Status)
	if err != nil {
		return apperrors.NewValidationError("unknown status", nil)
	}
	ticket, _, ok := h.store.Ticket(ticketID)
	if !ok {
		return apperrors.NewNotFound("ticket", nil)
	}
	if err := h.authorizeStatusWrite(account, &ticket, status); err != nil {
		return err
	}
	if !domain.IsValidTransition(ticket.Status, status) {
		return apperrors.NewConflict("illegal status transition", map[string]any{
			"from": string(ticket.Status),
			"to":   string(status),
		})
	}
	updated, event, _ := h.store.AppendStatus(ticketID, status, req.Description, req.Location, req.Image)
	h.hub.Broadcast(push.EventTicketStatusUpdated, push.TicketStatusUpdate{
		TicketID:              updated.TicketID,
		Status:                updated.Status,
		Event:                 event,
		AssignedServiceCenter: updated.AssignedServiceCenter,
	})
	return c.JSON(fiber.Map{"data": fiber.Map{"ticket": updated, "event": event}})
}

// DeleteEvent DELETE /api/tickets/:ticketId/updates/:eventId. Owning vendor
// only.
func (h *Handlers) DeleteEvent(c *fiber.Ctx) error {
	account, _ := AccountFromContext(c)
	ticket, _, ok := h.store.Ticket(c.Params("ticketId"))
	if !ok {
		return apperrors.NewNotFound("ticket", nil)
	}
	if account.Role != domain.RoleVendor || ticket.VendorID != account.ID {
		return apperrors.NewAuthFailure()
	}
	if !h.store.RemoveEvent(ticket.TicketID, c.Params("eventId")) {
		return apperrors.NewNotFound("event", nil)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

type trackRequest struct {
	TicketID string `json:"ticketId"`
	OTP      string `json:"otp"`
}

// Track POST /api/tickets/track. Public; the combined id+OTP check either
// discloses everything or nothing.
func (h *Handlers) Track(c *fiber.Ctx) error {
	var req trackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID == "" || req.OTP == "" {
		return apperrors.NewValidationError("ticketId and otp required", nil)
	}
	otp, ok := h.store.OTP(req.TicketID)
	if !ok || otp != req.OTP {
		// Same rejection for unknown id and wrong OTP.
		return apperrors.NewAuthFailure()
	}
	ticket, events, _ := h.store.Ticket(req.TicketID)
	return c.JSON(fiber.Map{"data": fiber.Map{"ticket": ticket, "events": events}})
}

type resendOTPRequest struct {
	TicketID string `json:"ticketId"`
}

// ResendOTP POST /api/tickets/resend-otp. Public, idempotent.
func (h *Handlers) ResendOTP(c *fiber.Ctx) error {
	var req resendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if _, ok := h.store.OTP(req.TicketID); !ok {
		return apperrors.NewNotFound("ticket", nil)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"message": "OTP sent to the registered contact",
	}})
}

type jobRequestRequest struct {
	TicketID        string `json:"ticketId"`
	ServiceCenterID string `json:"serviceCenterId"`
	Notes           string `json:"notes"`
}

// CreateJobRequest POST /api/job-requests. Vendor only, own ticket, verified
// center.
func (h *Handlers) CreateJobRequest(c *fiber.Ctx) error {
	account, _ := AccountFromContext(c)
	var req jobRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, _, ok := h.store.Ticket(req.TicketID)
	if !ok {
		return apperrors.NewNotFound("ticket", nil)
	}
	if ticket.VendorID != account.ID {
		return apperrors.NewAuthFailure()
	}
	center, ok := h.store.Center(req.ServiceCenterID)
	if !ok {
		return apperrors.NewNotFound("service center", nil)
	}
	if !center.Verified {
		return apperrors.NewValidationError("service center is not verified", nil)
	}
	request := h.store.CreateJobRequest(&ticket, account, &center, strings.TrimSpace(req.Notes))
	h.hub.Broadcast(push.EventNewJobRequest, push.JobRequestSignal{
		RequestID:       request.ID,
		ServiceCenterID: request.ServiceCenter.ID,
		VendorID:        request.VendorID,
		Status:          request.Status,
	})
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": request})
}

// ListVendorRequests GET /api/job-requests/vendor.
func (h *Handlers) ListVendorRequests(c *fiber.Ctx) error {
	account, _ := AccountFromContext(c)
	return c.JSON(fiber.Map{"data": h.store.ListJobRequests(account.ID, "")})
}

// ListCenterRequests GET /api/job-requests/service-center.
func (h *Handlers) ListCenterRequests(c *fiber.Ctx) error {
	account, _ := AccountFromContext(c)
	return c.JSON(fiber.Map{"data": h.store.ListJobRequests("", account.CenterID)})
}

type decideRequest struct {
	Status string `json:"status"`
}

// DecideJobRequest PUT /api/job-requests/:id/status. A request already
// decided by a concurrent actor is a conflict, not a generic failure.
func (h *Handlers) DecideJobRequest(c *fiber.Ctx) error {
	account, _ := AccountFromContext(c)
	var req decideRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, ok := domain.ParseJobRequestStatus(req.Status)
	if !ok || status == domain.RequestPending {
		return apperrors.NewValidationError("status must be accepted or rejected", nil)
	}
	existing, ok := h.store.JobRequest(c.Params("id"))
	if !ok {
		return apperrors.NewNotFound("job request", nil)
	}
	if existing.ServiceCenter.ID != account.CenterID {
		return apperrors.NewAuthFailure()
	}
	request, err := h.store.DecideJobRequest(existing.ID, status)
	if err != nil {
		switch err {
		case errNotFound:
			return apperrors.NewNotFound("job request", nil)
		default:
			return apperrors.NewConflict(err.Error(), nil)
		}
	}

	if status == domain.RequestAccepted {
		if ticket, ok := h.store.AssignCenter(request.TicketID, request.ServiceCenter); ok {
			h.hub.Broadcast(push.EventTicketStatusUpdated, push.TicketStatusUpdate{
				TicketID:              ticket.TicketID,
				Status:                ticket.Status,
				AssignedServiceCenter: ticket.AssignedServiceCenter,
			})
		}
	}
	h.hub.Broadcast(push.EventJobRequestUpdated, push.JobRequestSignal{
		RequestID:       request.ID,
		ServiceCenterID: request.ServiceCenter.ID,
		VendorID:        request.VendorID,
		Status:          request.Status,
	})
	return c.JSON(fiber.Map{"data": request})
}

// ListCenters GET /api/service-centers.
func (h *Handlers) ListCenters(c *fiber.Ctx) error {
	verifiedOnly := c.Query("verified") == "true"
	return c.JSON(fiber.Map{"data": h.store.ListCenters(verifiedOnly)})
}

// VerifyCenter PATCH /api/service-centers/:id/verify. Admin only.
func (h *Handlers) VerifyCenter(c *fiber.Ctx) error {
	center, ok := h.store.VerifyCenter(c.Params("id"))
	if !ok {
		return apperrors.NewNotFound("service center", nil)
	}
	h.hub.Broadcast(push.EventServiceCenterVerified, push.CenterVerification{
		CenterID: center.ID,
		Verified: center.Verified,
	})
	return c.JSON(fiber.Map{"data": center})
}

func (h *Handlers) canSeeTicket(account *Account, ticket *domain.Ticket) bool {
	switch account.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleVendor:
		return ticket.VendorID == account.ID
	case domain.RoleServiceCenter:
		return ticket.AssignedServiceCenter != nil && ticket.AssignedServiceCenter.ID == account.CenterID
	default:
		return false
	}
}

// authorizeStatusWrite enforces the role policy on top of the transition
// table: vendors drive pickup/delivery, centers drive repair statuses while
// holding the accepted request.
func (h *Handlers) authorizeStatusWrite(account *Account, ticket *domain.Ticket, status domain.TicketStatus) error {
	allowed := false
	for _, candidate := range domain.RoleStatuses(account.Role) {
		if candidate == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperrors.NewAuthFailure()
	}
	switch account.Role {
	case domain.RoleVendor:
		if ticket.VendorID != account.ID {
			return apperrors.NewAuthFailure()
		}
	case domain.RoleServiceCenter:
		if ticket.AssignedServiceCenter == nil || ticket.AssignedServiceCenter.ID != account.CenterID {
			return apperrors.NewAuthFailure()
		}
	default:
		return apperrors.NewAuthFailure()
	}
	return nil
}
