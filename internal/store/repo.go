package store

import (
	"context"
	"time"

	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/domain"
)

// ReminderStore persists scheduled reminders.
type ReminderStore interface {
	CreateReminder(ctx context.Context, r *domain.Reminder) (int64, error)
	DueReminders(ctx context.Context, now time.Time) ([]domain.Reminder, error)
	ActiveReminders(ctx context.Context, chatID int64, limit int) ([]domain.Reminder, error)
	DeactivateReminder(ctx context.Context, id int64) (bool, error)
	RecordReminderAttempt(ctx context.Context, id int64, attempts int, at time.Time) error
}

// ActivityStore persists per-member activity facts.
type ActivityStore interface {
	TouchActivity(ctx context.Context, userID, chatID int64, at time.Time) error
	ChatIDs(ctx context.Context) ([]int64, error)
	InactiveUsers(ctx context.Context, chatID int64, cutoff time.Time) ([]domain.UserActivity, error)
	DeleteActivity(ctx context.Context, userID, chatID int64) (bool, error)
}

// SettingsStore is the per-chat key/value configuration table.
type SettingsStore interface {
	Config(ctx context.Context, chatID int64, key, def string) (string, error)
	SetConfig(ctx context.Context, chatID int64, key, value string) error
	DeleteConfig(ctx context.Context, chatID int64, key string) (bool, error)
}

// WarningStore persists pending inactivity warnings.
type WarningStore interface {
	Warning(ctx context.Context, chatID, userID int64) (*domain.PendingWarning, error)
	CreateWarning(ctx context.Context, w *domain.PendingWarning) error
	DeleteWarning(ctx context.Context, chatID, userID int64) (bool, error)
	RecordWarningAttempt(ctx context.Context, chatID, userID int64, attempts int) error
}

// Repo aggregates every storage concern behind one handle.
type Repo interface {
	ReminderStore
	ActivityStore
	SettingsStore
	WarningStore
	Close() error
}
