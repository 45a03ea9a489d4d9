package gate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/trackify/internal/domain"
	"github.com/spec-kit/trackify/internal/push"
	"github.com/spec-kit/trackify/internal/rest"
	"github.com/spec-kit/trackify/internal/session"
	apperrors "github.com/spec-kit/trackify/pkg/util"
)

func newGate(t *testing.T, handler http.Handler) (*Gate, *push.Router) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	router := push.NewRouter(zap.NewNop())
	t.Cleanup(router.Close)
	client := rest.New(server.URL+"/api", 5*time.Second, session.New(), zap.NewNop())
	return New(client, router, zap.NewNop()), router
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func trackHandler(t *testing.T, otp string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/api/tickets/track" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		if err := decodeJSON(r, &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["otp"] != otp {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": {"code": "AUTH_FAILED", "message": "verification failed"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data": {
			"ticket": {"ticketId": "TRK-000001", "status": "In Repair"},
			"events": [{"id": "e1", "ticketId": "TRK-000001", "status": "In Repair", "timestamp": "2026-08-29T10:00:00Z"}]
		}}`))
	})
}

func TestVerifyRequiresBothHalves(t *testing.T) {
	t.Parallel()

	g, _ := newGate(t, http.NotFoundHandler())
	for _, pair := range [][2]string{{"", "123456"}, {"TRK-000001", ""}, {"  ", "  "}} {
		if _, err := g.Verify(context.Background(), pair[0], pair[1]); !apperrors.IsValidation(err) {
			t.Errorf("Verify(%q, %q) = %v, want validation failure", pair[0], pair[1], err)
		}
	}
}

func TestVerifyFailureDisclosesNothing(t *testing.T) {
	t.Parallel()

	g, _ := newGate(t, trackHandler(t, "123456"))
	tracked, err := g.Verify(context.Background(), "TRK-000001", "999999")
	if !apperrors.IsAuthFailure(err) {
		t.Fatalf("err = %v, want auth failure", err)
	}
	if tracked != nil {
		t.Fatal("failed verification must return no view")
	}
}

func TestVerifySubscribesTheView(t *testing.T) {
	t.Parallel()

	g, router := newGate(t, trackHandler(t, "123456"))
	tracked, err := g.Verify(context.Background(), " TRK-000001 ", " 123456 ")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	defer tracked.Close()

	// A push landing after verification reaches the view without another
	// OTP round trip.
	router.DispatchTicketStatus(push.TicketStatusUpdate{
		TicketID: "TRK-000001",
		Status:   domain.StatusRepaired,
		Event: domain.TimelineEvent{
			ID:        "e2",
			TicketID:  "TRK-000001",
			Status:    domain.StatusRepaired,
			Timestamp: domain.NewEventTime(time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC)),
		},
	})

	ticket, events := tracked.View.Snapshot()
	if ticket.Status != domain.StatusRepaired {
		t.Errorf("status = %q, want Repaired", ticket.Status)
	}
	if len(events) != 2 || events[0].ID != "e2" {
		t.Errorf("events = %+v", events)
	}
}

func TestCloseUnsubscribes(t *testing.T) {
	t.Parallel()

	g, router := newGate(t, trackHandler(t, "123456"))
	tracked, err := g.Verify(context.Background(), "TRK-000001", "123456")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	tracked.Close()
	tracked.Close() // idempotent

	router.DispatchTicketStatus(push.TicketStatusUpdate{
		TicketID: "TRK-000001",
		Status:   domain.StatusRepaired,
		Event:    domain.TimelineEvent{ID: "e2", TicketID: "TRK-000001", Status: domain.StatusRepaired},
	})

	ticket, _ := tracked.View.Snapshot()
	if ticket.Status != domain.StatusInRepair {
		t.Errorf("closed view changed to %q", ticket.Status)
	}
}

func TestResendOTPValidatesInput(t *testing.T) {
	t.Parallel()

	g, _ := newGate(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"message": "OTP sent to the registered contact"}}`))
	}))

	if _, err := g.ResendOTP(context.Background(), "  "); !apperrors.IsValidation(err) {
		t.Fatalf("blank ticket id accepted: %v", err)
	}
	message, err := g.ResendOTP(context.Background(), "TRK-000001")
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if message == "" {
		t.Error("expected a confirmation message")
	}
}
