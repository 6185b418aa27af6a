package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNextOccurrence_WeeklyAddsSevenDays(t *testing.T) {
	at := time.Date(2025, time.July, 21, 10, 0, 0, 0, time.UTC)
	rem := &Reminder{RemindAt: at, IsRecurring: true, Pattern: RecurrenceWeekly}

	next, err := rem.NextOccurrence()
	if err != nil {
		t.Fatalf("next occurrence: %v", err)
	}
	if want := at.AddDate(0, 0, 7); !next.Equal(want) {
		t.Fatalf("next %v, want %v", next, want)
	}
}

func TestNextOccurrence_UnknownPattern(t *testing.T) {
	rem := &Reminder{IsRecurring: true, Pattern: Recurrence("fortnightly")}
	if _, err := rem.NextOccurrence(); !errors.Is(err, ErrUnknownPattern) {
		t.Fatalf("want ErrUnknownPattern, got %v", err)
	}
}

func TestSuccessor_CarriesIdentityNotState(t *testing.T) {
	last := time.Date(2025, time.July, 21, 9, 0, 0, 0, time.UTC)
	fired := &Reminder{
		ID:            42,
		ChatID:        100,
		UserID:        7,
		Message:       "family meeting",
		RemindAt:      time.Date(2025, time.July, 21, 10, 0, 0, 0, time.UTC),
		IsRecurring:   true,
		Pattern:       RecurrenceWeekly,
		Active:        true,
		Attempts:      3,
		LastAttemptAt: &last,
	}

	at := fired.RemindAt.AddDate(0, 0, 7)
	next := fired.Successor(at)

	if next.ChatID != 100 || next.UserID != 7 || next.Message != "family meeting" {
		t.Fatalf("identity lost: %+v", next)
	}
	if !next.RemindAt.Equal(at) {
		t.Fatalf("remind at %v, want %v", next.RemindAt, at)
	}
	if !next.IsRecurring || next.Pattern != RecurrenceWeekly || !next.Active {
		t.Fatalf("recurrence lost: %+v", next)
	}
	// Delivery history belongs to the fired row, not its successor.
	if next.ID != 0 || next.Attempts != 0 || next.LastAttemptAt != nil {
		t.Fatalf("state leaked into successor: %+v", next)
	}
}

func TestBackoff_DoublesAndCaps(t *testing.T) {
	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{10, 600 * time.Second}, // 1024s capped at ten minutes
	}
	for _, tc := range cases {
		if got := Backoff(tc.attempts); got != tc.want {
			t.Fatalf("Backoff(%d) = %v, want %v", tc.attempts, got, tc.want)
		}
	}
}

func TestRetryDue(t *testing.T) {
	last := time.Date(2025, time.July, 21, 10, 0, 0, 0, time.UTC)

	fresh := &Reminder{}
	if !fresh.RetryDue(last) {
		t.Fatal("never-attempted reminder must be due")
	}

	rem := &Reminder{Attempts: 1, LastAttemptAt: &last}
	if rem.RetryDue(last.Add(time.Second)) {
		t.Fatal("retried inside the backoff window")
	}
	// Backoff(1) is two seconds; exactly at the boundary the retry is due.
	if !rem.RetryDue(last.Add(2 * time.Second)) {
		t.Fatal("retry withheld after the backoff elapsed")
	}
}
