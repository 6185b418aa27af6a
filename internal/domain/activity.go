package domain

import "time"

// UserActivity tracks the most recent contribution of a member in a chat.
// Written by the message router, read by the inactivity supervisor.
type UserActivity struct {
	UserID       int64
	ChatID       int64
	LastActivity time.Time // UTC
	MessageCount int64
}

// PendingWarning is the durable marker that a member was warned for
// inactivity and is waiting out the grace period before removal.
type PendingWarning struct {
	ChatID   int64
	UserID   int64
	WarnedAt time.Time // UTC
	Attempts int       // failed removal attempts so far
}

// RemovalDue reports whether the grace period since the warning has elapsed.
func (w *PendingWarning) RemovalDue(now time.Time, grace time.Duration) bool {
	return now.Sub(w.WarnedAt) >= grace
}

// MemberState is a member's position in the inactivity lifecycle.
type MemberState int

const (
	MemberActive MemberState = iota
	MemberWarned
	MemberRemoved
)

func (s MemberState) String() string {
	switch s {
	case MemberActive:
		return "active"
	case MemberWarned:
		return "warned"
	case MemberRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// MemberStatus pairs the lifecycle state with the warning timestamp that
// produced it.
type MemberStatus struct {
	State       MemberState
	WarnedSince time.Time // zero unless State == MemberWarned
}

// MemberStateFor derives the lifecycle state from the stored facts. A
// pending warning means warned regardless of the activity row; an activity
// row alone means active; no trace of either means removed and cleared.
func MemberStateFor(activity *UserActivity, warning *PendingWarning) MemberStatus {
	switch {
	case warning != nil:
		return MemberStatus{State: MemberWarned, WarnedSince: warning.WarnedAt}
	case activity != nil:
		return MemberStatus{State: MemberActive}
	default:
		return MemberStatus{State: MemberRemoved}
	}
}

// Per-chat settings keys for inactivity management.
const (
	SettingInactiveEnabled = "inactive_enabled"
	SettingInactiveDays    = "inactive_days"
	SettingWarningHours    = "inactive_warning_hours"
)

const (
	DefaultInactiveDays = 7
	DefaultWarningHours = 24
)

// InactivityPolicy is a chat's effective inactivity-management settings.
type InactivityPolicy struct {
	Enabled      bool
	InactiveDays int
	WarningHours int
}

// DefaultInactivityPolicy is what a chat gets before any configuration.
func DefaultInactivityPolicy() InactivityPolicy {
	return InactivityPolicy{
		Enabled:      true,
		InactiveDays: DefaultInactiveDays,
		WarningHours: DefaultWarningHours,
	}
}

// Cutoff returns the last-activity threshold below which a member counts as
// inactive at now.
func (p InactivityPolicy) Cutoff(now time.Time) time.Time {
	return now.Add(-time.Duration(p.InactiveDays) * 24 * time.Hour)
}

// Grace returns the warning grace period as a duration.
func (p InactivityPolicy) Grace() time.Duration {
	return time.Duration(p.WarningHours) * time.Hour
}
