package viewmodel

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/trackify/internal/domain"
	"github.com/spec-kit/trackify/internal/push"
)

func fixedFetch(requests ...domain.JobRequest) RequestFetchFunc {
	return func(context.Context) ([]domain.JobRequest, error) {
		return requests, nil
	}
}

func TestRefreshReplacesWholesale(t *testing.T) {
	t.Parallel()

	list := NewJobRequestList(fixedFetch(
		domain.JobRequest{ID: "r1", Status: domain.RequestPending},
		domain.JobRequest{ID: "r2", Status: domain.RequestAccepted},
	))
	if err := list.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := len(list.Requests()); got != 2 {
		t.Fatalf("len = %d, want 2", got)
	}

	accepted := list.Accepted()
	if len(accepted) != 1 || accepted[0].ID != "r2" {
		t.Fatalf("accepted = %+v, want [r2]", accepted)
	}
}

func TestRefreshErrorLeavesListUntouched(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	failing := false
	list := NewJobRequestList(func(context.Context) ([]domain.JobRequest, error) {
		if failing {
			return nil, boom
		}
		return []domain.JobRequest{{ID: "r1", Status: domain.RequestPending}}, nil
	})
	if err := list.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	failing = true
	if err := list.Refresh(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("refresh error = %v, want boom", err)
	}
	if got := len(list.Requests()); got != 1 {
		t.Fatalf("failed refresh must not clear the list, len = %d", got)
	}
}

func TestApplyDecisionPatchesInPlace(t *testing.T) {
	t.Parallel()

	list := NewJobRequestList(fixedFetch(
		domain.JobRequest{ID: "r1", Status: domain.RequestPending},
		domain.JobRequest{ID: "r2", Status: domain.RequestPending},
	))
	if err := list.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	list.ApplyDecision("r1", domain.RequestAccepted)
	list.ApplyDecision("missing", domain.RequestRejected)

	requests := list.Requests()
	if requests[0].Status != domain.RequestAccepted {
		t.Errorf("r1 status = %q, want accepted", requests[0].Status)
	}
	if requests[1].Status != domain.RequestPending {
		t.Errorf("r2 status = %q, want pending", requests[1].Status)
	}
}

func TestRefreshOnSignalPicksUpDecision(t *testing.T) {
	t.Parallel()

	// The push payload is a hint, not a record: a subscribed list reacts to
	// a signal by re-fetching wholesale and picks the decision up that way.
	backend := []domain.JobRequest{{ID: "r1", Status: domain.RequestPending}}
	list := NewJobRequestList(func(context.Context) ([]domain.JobRequest, error) {
		return backend, nil
	})
	if err := list.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	router := push.NewRouter(zap.NewNop())
	defer router.Close()
	dispose := router.SubscribeJobRequests(func(push.JobRequestSignal) {
		_ = list.Refresh(context.Background())
	})
	defer dispose()

	backend = []domain.JobRequest{{ID: "r1", Status: domain.RequestAccepted}}
	router.DispatchJobRequestSignal(push.JobRequestSignal{RequestID: "r1", Status: domain.RequestAccepted})

	requests := list.Requests()
	if len(requests) != 1 || requests[0].Status != domain.RequestAccepted {
		t.Fatalf("requests after signal = %+v", requests)
	}
}

func TestClosedListDiscardsLateResponses(t *testing.T) {
	t.Parallel()

	list := NewJobRequestList(fixedFetch(domain.JobRequest{ID: "r1", Status: domain.RequestPending}))
	list.Close()

	// The unmount-before-response race: the fetch completes, the result is
	// dropped.
	if err := list.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh after close: %v", err)
	}
	list.ApplyDecision("r1", domain.RequestAccepted)
	if got := len(list.Requests()); got != 0 {
		t.Fatalf("closed list holds %d requests, want 0", got)
	}
}
