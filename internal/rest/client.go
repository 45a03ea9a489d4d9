// Package rest is the request/response half of the backend boundary. It
// owns transport and error mapping only; callers apply returned patches to
// their view models after success, never before.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/trackify/internal/domain"
	"github.com/spec-kit/trackify/internal/session"
	apperrors "github.com/spec-kit/trackify/pkg/util"
)

// Client talks to the backend REST API. The session supplies the bearer
// token; unauthenticated calls (track, resend-otp, login) work without one.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session
	logger  *zap.Logger
}

// New constructs a client. baseURL includes the /api prefix.
func New(baseURL string, timeout time.Duration, sess *session.Session, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		session: sess,
		logger:  logger,
	}
}

// TrackResult is the full disclosure returned after OTP verification.
type TrackResult struct {
	Ticket domain.Ticket          `json:"ticket"`
	Events []domain.TimelineEvent `json:"events"`
}

// StatusPatch is the canonical result of a status write: the updated ticket
// and the timeline event that recorded the change.
type StatusPatch struct {
	Ticket domain.Ticket        `json:"ticket"`
	Event  domain.TimelineEvent `json:"event"`
}

// LoginResult carries the issued token and the authenticated principal.
type LoginResult struct {
	Token     string            `json:"token"`
	Principal session.Principal `json:"principal"`
}

// CreateTicketInput describes a new repair ticket.
type CreateTicketInput struct {
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	DeviceModel   string `json:"deviceModel"`
	Issue         string `json:"issue"`
}

// StatusUpdateInput describes a status write.
type StatusUpdateInput struct {
	Status      domain.TicketStatus `json:"status"`
	Description string              `json:"description"`
	Location    string              `json:"location"`
	Image       string              `json:"image,omitempty"`
}

// JobRequestInput describes a new job request.
type JobRequestInput struct {
	TicketID        string `json:"ticketId"`
	ServiceCenterID string `json:"serviceCenterId"`
	Notes           string `json:"notes"`
}

// RegisterInput describes an account registration.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	City     string `json:"city,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Login authenticates and returns the token plus principal. The caller
// starts the session with the result.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/auth/login", body, &out)
	return out, err
}

// Register creates an account and returns the issued token plus principal.
func (c *Client) Register(ctx context.Context, input RegisterInput) (LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/register", input, &out)
	return out, err
}

// Track performs the combined ticket-id + OTP check. On failure nothing of
// the ticket is disclosed.
func (c *Client) Track(ctx context.Context, ticketID, otp string) (TrackResult, error) {
	var out TrackResult
	body := map[string]string{"ticketId": ticketID, "otp": otp}
	err := c.do(ctx, http.MethodPost, "/tickets/track", body, &out)
	return out, err
}

// ResendOTP asks the backend to re-send the ticket's OTP to the customer.
// Safe to call repeatedly; rate limiting is the backend's concern.
func (c *Client) ResendOTP(ctx context.Context, ticketID string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	body := map[string]string{"ticketId": ticketID}
	err := c.do(ctx, http.MethodPost, "/tickets/resend-otp", body, &out)
	return out.Message, err
}

// CreateTicket registers a new repair job. The response is the only place
// the OTP is ever disclosed to the vendor.
func (c *Client) CreateTicket(ctx context.Context, input CreateTicketInput) (domain.Ticket, error) {
	var out domain.Ticket
	err := c.do(ctx, http.MethodPost, "/tickets", input, &out)
	return out, err
}

// ListTickets returns tickets scoped by the caller's role.
func (c *Client) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := c.do(ctx, http.MethodGet, "/tickets", nil, &out)
	return out, err
}

// GetTicket fetches one ticket with its full event history.
func (c *Client) GetTicket(ctx context.Context, ticketID string) (TrackResult, error) {
	var out TrackResult
	err := c.do(ctx, http.MethodGet, "/tickets/"+url.PathEscape(ticketID), nil, &out)
	return out, err
}

// UpdateStatus writes a status change and returns the canonical patch.
func (c *Client) UpdateStatus(ctx context.Context, ticketID string, input StatusUpdateInput) (StatusPatch, error) {
	var out StatusPatch
	err := c.do(ctx, http.MethodPatch, "/tickets/"+url.PathEscape(ticketID)+"/status", input, &out)
	return out, err
}

// DeleteEvent removes a timeline entry.
func (c *Client) DeleteEvent(ctx context.Context, ticketID, eventID string) error {
	path := "/tickets/" + url.PathEscape(ticketID) + "/updates/" + url.PathEscape(eventID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// CreateJobRequest proposes a ticket to a service center.
func (c *Client) CreateJobRequest(ctx context.Context, input JobRequestInput) (domain.JobRequest, error) {
	var out domain.JobRequest
	err := c.do(ctx, http.MethodPost, "/job-requests", input, &out)
	return out, err
}

// ListJobRequests returns the caller's request projection: requests sent by
// the vendor, or requests addressed to the service center.
func (c *Client) ListJobRequests(ctx context.Context, scope domain.Role) ([]domain.JobRequest, error) {
	var path string
	switch scope {
	case domain.RoleVendor:
		path = "/job-requests/vendor"
	case domain.RoleServiceCenter:
		path = "/job-requests/service-center"
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("role %q has no request list", scope), nil)
	}
	var out []domain.JobRequest
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// DecideJobRequest accepts or rejects a pending request.
func (c *Client) DecideJobRequest(ctx context.Context, requestID string, status domain.JobRequestStatus) (domain.JobRequest, error) {
	var out domain.JobRequest
	body := map[string]string{"status": string(status)}
	err := c.do(ctx, http.MethodPut, "/job-requests/"+url.PathEscape(requestID)+"/status", body, &out)
	return out, err
}

// ListServiceCenters returns the center directory.
func (c *Client) ListServiceCenters(ctx context.Context, verifiedOnly bool) ([]domain.ServiceCenter, error) {
	path := "/service-centers"
	if verifiedOnly {
		path += "?verified=true"
	}
	var out []domain.ServiceCenter
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// VerifyServiceCenter marks a center verified. Admin only.
func (c *Client) VerifyServiceCenter(ctx context.Context, centerID string) error {
	return c.do(ctx, http.MethodPatch, "/service-centers/"+url.PathEscape(centerID)+"/verify", nil, nil)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewValidationError("unencodable request body", nil)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.NewTransient(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token, ok := c.session.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewTransient(err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && resp.StatusCode < 300 {
		return apperrors.NewTransient(err)
	}

	if resp.StatusCode >= 300 {
		return c.mapFailure(resp.StatusCode, env, method, path)
	}
	if out == nil || env.Data == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperrors.NewTransient(err)
	}
	return nil
}

func (c *Client) mapFailure(status int, env envelope, method, path string) error {
	message := ""
	if env.Error != nil {
		message = env.Error.Message
	}
	c.logger.Debug("request failed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
	)
	switch status {
	case http.StatusBadRequest:
		return apperrors.NewValidationError(orDefault(message, "invalid request"), nil)
	case http.StatusUnauthorized, http.StatusForbidden:
		// One generic rejection for both; never reveal which check failed.
		return apperrors.NewAuthFailure()
	case http.StatusNotFound:
		return apperrors.NewDomainError("NOT_FOUND", orDefault(message, "resource not found"), status, nil)
	case http.StatusConflict:
		return apperrors.NewConflict(orDefault(message, "already processed"), nil)
	default:
		return apperrors.NewTransient(fmt.Errorf("%s %s: status %d", method, path, status))
	}
}

func orDefault(val, fallback string) string {
	if val == "" {
		return fallback
	}
	return val
}
