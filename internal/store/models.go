package store

import (
	"database/sql"
	"time"

	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/domain"
)

func toNullInt64(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UTC().Unix(), Valid: true}
}

func fromNullInt64(ns sql.NullInt64) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := time.Unix(ns.Int64, 0).UTC()
	return &t
}

// boolToInt converts a boolean to 1/0 for SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const reminderColumns = `id, chat_id, user_id, message, remind_time,
	is_recurring, recurrence_pattern, is_active, attempts, last_attempt_at, created_at`

// scanReminder maps one reminders row onto the domain record.
func scanReminder(rs rowScanner) (domain.Reminder, error) {
	var (
		r          domain.Reminder
		remindTime int64
		recurring  int
		pattern    sql.NullString
		active     int
		lastNS     sql.NullInt64
		createdAt  int64
	)
	if err := rs.Scan(
		&r.ID, &r.ChatID, &r.UserID, &r.Message, &remindTime,
		&recurring, &pattern, &active, &r.Attempts, &lastNS, &createdAt,
	); err != nil {
		return domain.Reminder{}, err
	}
	r.RemindAt = time.Unix(remindTime, 0).UTC()
	r.IsRecurring = recurring != 0
	r.Pattern = domain.Recurrence(pattern.String)
	r.Active = active != 0
	r.LastAttemptAt = fromNullInt64(lastNS)
	r.CreatedAt = time.Unix(createdAt, 0).UTC()
	return r, nil
}

// scanActivity maps one user_activity row onto the domain record.
func scanActivity(rs rowScanner) (domain.UserActivity, error) {
	var (
		ua           domain.UserActivity
		lastActivity int64
	)
	if err := rs.Scan(&ua.UserID, &ua.ChatID, &lastActivity, &ua.MessageCount); err != nil {
		return domain.UserActivity{}, err
	}
	ua.LastActivity = time.Unix(lastActivity, 0).UTC()
	return ua, nil
}
