// Package gate controls customer-facing ticket disclosure. A customer holds
// only a ticket id and an OTP; nothing about the ticket is revealed until
// the combined check succeeds.
package gate

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/trackify/internal/push"
	"github.com/spec-kit/trackify/internal/rest"
	"github.com/spec-kit/trackify/internal/viewmodel"
	apperrors "github.com/spec-kit/trackify/pkg/util"
)

// Gate verifies ticket-id + OTP pairs and seeds tracking views.
type Gate struct {
	client *rest.Client
	router *push.Router
	logger *zap.Logger
}

// New constructs a gate.
func New(client *rest.Client, router *push.Router, logger *zap.Logger) *Gate {
	return &Gate{client: client, router: router, logger: logger}
}

// TrackedTicket is a verified customer tracking view: a live view model plus
// its push subscription. Verification is a one-time gate per view lifetime;
// push-delivered updates need no further OTP.
type TrackedTicket struct {
	View    *viewmodel.TicketView
	dispose push.Disposer
}

// Close tears down the subscription and the view model together, on every
// exit path.
func (t *TrackedTicket) Close() {
	t.dispose()
	t.View.Close()
}

// Verify performs the combined check and, on success, returns a tracking
// view already subscribed to status pushes for that ticket. On failure the
// caller receives no ticket or timeline data, and the error never says
// whether the id or the OTP was wrong.
func (g *Gate) Verify(ctx context.Context, ticketID, otp string) (*TrackedTicket, error) {
	ticketID = strings.TrimSpace(ticketID)
	otp = strings.TrimSpace(otp)
	if ticketID == "" || otp == "" {
		return nil, apperrors.NewValidationError("ticket id and OTP are required", nil)
	}

	result, err := g.client.Track(ctx, ticketID, otp)
	if err != nil {
		return nil, err
	}

	view := viewmodel.NewTicketView(result.Ticket, result.Events)
	dispose := g.router.SubscribeTicket(view)
	g.logger.Debug("tracking view opened", zap.String("ticket", result.Ticket.TicketID))
	return &TrackedTicket{View: view, dispose: dispose}, nil
}

// ResendOTP asks the backend to re-issue the ticket's OTP. Idempotent from
// the caller's side; any rate limiting is the backend's.
func (g *Gate) ResendOTP(ctx context.Context, ticketID string) (string, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return "", apperrors.NewValidationError("ticket id is required", nil)
	}
	return g.client.ResendOTP(ctx, ticketID)
}
