package domain

import (
	"testing"
)

func history(statuses ...ShipmentStatus) []*ShipmentEvent {
	out := make([]*ShipmentEvent, len(statuses))
	for i, s := range statuses {
		out[i] = &ShipmentEvent{Status: s}
	}
	return out
}

func TestIsValidTransition(t *testing.T) {
	testCases := []struct {
		name      string
		current   ShipmentStatus
		requested ShipmentStatus
		want      bool
	}{
		{"initial to pending", "", ShipmentStatusPending, true},
		{"pending to confirmed", ShipmentStatusPending, ShipmentStatusConfirmed, true},
		{"skip ahead", ShipmentStatusConfirmed, ShipmentStatusArrived, true},
		{"backward", ShipmentStatusConfirmed, ShipmentStatusPending, false},
		{"no-op", ShipmentStatusConfirmed, ShipmentStatusConfirmed, false},
		{"exception from pending", ShipmentStatusPending, ShipmentStatusException, true},
		{"exception from exception", ShipmentStatusException, ShipmentStatusException, true},
		{"exception from received", ShipmentStatusReceived, ShipmentStatusException, true},
		{"unknown label", ShipmentStatusPending, "shipped", false},
		{"empty requested", ShipmentStatusPending, "", false},
		{"nothing after received", ShipmentStatusReceived, ShipmentStatusReceived, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidTransition(tc.current, tc.requested); got != tc.want {
				t.Errorf("IsValidTransition(%q, %q) = %v, want %v", tc.current, tc.requested, got, tc.want)
			}
		})
	}
}

func TestHasStatusBeenUsed(t *testing.T) {
	h := history(ShipmentStatusPending, ShipmentStatusException, ShipmentStatusConfirmed)

	if !HasStatusBeenUsed(ShipmentStatusConfirmed, h) {
		t.Error("confirmed is in history and should be reported as used")
	}
	if HasStatusBeenUsed(ShipmentStatusInTransit, h) {
		t.Error("in_transit is not in history")
	}
	if HasStatusBeenUsed(ShipmentStatusException, h) {
		t.Error("exception may recur and is never used")
	}
	if HasStatusBeenUsed(ShipmentStatusPending, nil) {
		t.Error("empty history uses nothing")
	}
}

func TestCheckTransition(t *testing.T) {
	testCases := []struct {
		name      string
		current   ShipmentStatus
		requested ShipmentStatus
		history   []*ShipmentEvent
		want      TransitionRule
	}{
		{
			name:      "forward",
			current:   ShipmentStatusPending,
			requested: ShipmentStatusConfirmed,
			history:   history(ShipmentStatusPending),
		},
		{
			name:      "backward",
			current:   ShipmentStatusConfirmed,
			requested: ShipmentStatusPending,
			history:   history(ShipmentStatusPending, ShipmentStatusConfirmed),
			want:      RuleBackwardOrRepeat,
		},
		{
			name:      "backward across an exception",
			current:   ShipmentStatusException,
			requested: ShipmentStatusPending,
			history:   history(ShipmentStatusPending, ShipmentStatusConfirmed, ShipmentStatusException),
			want:      RuleBackwardOrRepeat,
		},
		{
			name:      "backward to a status never recorded",
			current:   ShipmentStatusInTransit,
			requested: ShipmentStatusPreparing,
			history:   history(ShipmentStatusPending, ShipmentStatusInTransit),
			want:      RuleBackwardOrRepeat,
		},
		{
			name:      "repeat current",
			current:   ShipmentStatusConfirmed,
			requested: ShipmentStatusConfirmed,
			history:   history(ShipmentStatusPending, ShipmentStatusConfirmed),
			want:      RuleAlreadyRecorded,
		},
		{
			name:      "unknown",
			current:   ShipmentStatusPending,
			requested: "lost",
			history:   history(ShipmentStatusPending),
			want:      RuleUnknownStatus,
		},
		{
			name:      "exception twice",
			current:   ShipmentStatusException,
			requested: ShipmentStatusException,
			history:   history(ShipmentStatusPending, ShipmentStatusException),
		},
		{
			name:      "forward from exception baseline",
			current:   ShipmentStatusException,
			requested: ShipmentStatusArrived,
			history:   history(ShipmentStatusPending, ShipmentStatusInTransit, ShipmentStatusException),
		},
		{
			name:      "backward from exception baseline",
			current:   ShipmentStatusException,
			requested: ShipmentStatusPreparing,
			history:   history(ShipmentStatusPending, ShipmentStatusInTransit, ShipmentStatusException),
			want:      RuleBackwardOrRepeat,
		},
		{
			name:      "baseline itself after exception",
			current:   ShipmentStatusException,
			requested: ShipmentStatusInTransit,
			history:   history(ShipmentStatusPending, ShipmentStatusInTransit, ShipmentStatusException),
			want:      RuleAlreadyRecorded,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CheckTransition(tc.current, tc.requested, tc.history); got != tc.want {
				t.Errorf("CheckTransition(%q, %q) = %q, want %q", tc.current, tc.requested, got, tc.want)
			}
		})
	}
}

func TestBaselineStatus(t *testing.T) {
	if got := BaselineStatus(ShipmentStatusConfirmed, nil); got != ShipmentStatusConfirmed {
		t.Errorf("expected confirmed, got %q", got)
	}
	h := history(ShipmentStatusPending, ShipmentStatusPreparing, ShipmentStatusException, ShipmentStatusException)
	if got := BaselineStatus(ShipmentStatusException, h); got != ShipmentStatusPreparing {
		t.Errorf("expected preparing, got %q", got)
	}
	if got := BaselineStatus(ShipmentStatusException, history(ShipmentStatusException)); got != "" {
		t.Errorf("expected empty baseline, got %q", got)
	}
}

func TestNextStatuses(t *testing.T) {
	h := history(ShipmentStatusPending, ShipmentStatusConfirmed, ShipmentStatusPreparing, ShipmentStatusInTransit, ShipmentStatusArrived)
	got := NextStatuses(ShipmentStatusArrived, h)
	want := []ShipmentStatus{ShipmentStatusReceived, ShipmentStatusException}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

// Walks every accepted sequence of requests and checks the resulting history
// stays monotonic with no repeated non-exception status.
func TestAcceptedHistoriesAreMonotonic(t *testing.T) {
	requests := []ShipmentStatus{
		ShipmentStatusPending, ShipmentStatusException, ShipmentStatusConfirmed, ShipmentStatusConfirmed,
		ShipmentStatusInTransit, ShipmentStatusPreparing, ShipmentStatusException, ShipmentStatusException,
		ShipmentStatusArrived, ShipmentStatusInTransit, ShipmentStatusReceived, ShipmentStatusPending,
	}

	var current ShipmentStatus
	var h []*ShipmentEvent
	for _, r := range requests {
		if CheckTransition(current, r, h) != "" {
			continue
		}
		h = append(h, &ShipmentEvent{Status: r})
		current = r
	}

	last := -1
	seen := map[ShipmentStatus]bool{}
	exceptions := 0
	for _, ev := range h {
		if ev.Status == ShipmentStatusException {
			exceptions++
			continue
		}
		if seen[ev.Status] {
			t.Fatalf("status %q recorded twice", ev.Status)
		}
		seen[ev.Status] = true
		if ev.Status.Position() <= last {
			t.Fatalf("status %q recorded after position %d", ev.Status, last)
		}
		last = ev.Status.Position()
	}
	if exceptions != 3 {
		t.Errorf("expected 3 exception events, got %d", exceptions)
	}
	if current != ShipmentStatusReceived {
		t.Errorf("expected final status received, got %q", current)
	}
}

func TestShippingMethodNormalize(t *testing.T) {
	if ShippingMethodGround.Normalize() != ShippingMethodStandard {
		t.Error("ground should normalize to standard")
	}
	if !ShippingMethodGround.IsValid() || !ShippingMethodAir.IsValid() {
		t.Error("ground and air should be valid")
	}
	if ShippingMethod("rail").IsValid() {
		t.Error("rail is not a supported method")
	}
}
