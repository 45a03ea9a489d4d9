package domain

import "testing"

func TestJobRequestCanTransition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to JobRequestStatus
		want     bool
	}{
		{RequestPending, RequestAccepted, true},
		{RequestPending, RequestRejected, true},
		{RequestPending, RequestPending, false},
		{RequestAccepted, RequestRejected, false},
		{RequestAccepted, RequestPending, false},
		{RequestRejected, RequestAccepted, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestJobRequestStatusDecided(t *testing.T) {
	t.Parallel()

	if RequestPending.Decided() {
		t.Error("pending is not decided")
	}
	if !RequestAccepted.Decided() || !RequestRejected.Decided() {
		t.Error("accepted and rejected are terminal")
	}
}

func TestParseJobRequestStatus(t *testing.T) {
	t.Parallel()

	if _, ok := ParseJobRequestStatus("accepted"); !ok {
		t.Error("accepted must parse")
	}
	if _, ok := ParseJobRequestStatus("maybe"); ok {
		t.Error("unknown request status must be rejected")
	}
}
