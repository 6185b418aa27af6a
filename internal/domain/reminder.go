package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Recurrence tags how a reminder regenerates after firing.
type Recurrence string

const (
	RecurrenceNone   Recurrence = ""
	RecurrenceWeekly Recurrence = "weekly"
)

// ErrUnknownPattern marks a recurring reminder whose pattern the engine
// does not understand. Such reminders are retired instead of retried.
var ErrUnknownPattern = errors.New("unknown recurrence pattern")

// Reminder is a scheduled notification owned by a chat member.
type Reminder struct {
	ID            int64
	ChatID        int64
	UserID        int64
	Message       string
	RemindAt      time.Time // UTC
	IsRecurring   bool
	Pattern       Recurrence
	Active        bool
	Attempts      int        // failed delivery attempts so far
	LastAttemptAt *time.Time // UTC, nullable
	CreatedAt     time.Time  // UTC
}

// NextOccurrence computes when a fired recurring reminder fires again.
func (r *Reminder) NextOccurrence() (time.Time, error) {
	switch r.Pattern {
	case RecurrenceWeekly:
		return r.RemindAt.Add(7 * 24 * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownPattern, string(r.Pattern))
	}
}

// Successor builds the next-occurrence row for a fired recurring reminder.
// The fired row itself is retired by the caller.
func (r *Reminder) Successor(at time.Time) Reminder {
	return Reminder{
		ChatID:      r.ChatID,
		UserID:      r.UserID,
		Message:     r.Message,
		RemindAt:    at,
		IsRecurring: r.IsRecurring,
		Pattern:     r.Pattern,
		Active:      true,
	}
}

// MaxAttempts caps how many times a failing action (reminder delivery,
// member removal) is retried before it is abandoned.
const MaxAttempts = 8

// Backoff returns the wait before the next retry after n failed attempts,
// doubling per attempt and capped at ten minutes.
func Backoff(attempts int) time.Duration {
	secs := math.Min(math.Pow(2, float64(attempts)), 600)
	return time.Duration(secs) * time.Second
}

// RetryDue reports whether a previously failed reminder has waited out its
// backoff window and may be attempted again.
func (r *Reminder) RetryDue(now time.Time) bool {
	if r.Attempts == 0 || r.LastAttemptAt == nil {
		return true
	}
	return now.Sub(*r.LastAttemptAt) >= Backoff(r.Attempts)
}
