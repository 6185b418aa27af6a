package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/domain"
)

// CreateReminder inserts a new active reminder and returns its id.
func (r *SQLiteRepo) CreateReminder(ctx context.Context, rem *domain.Reminder) (int64, error) {
	if rem == nil {
		return 0, errors.New("nil reminder")
	}

	created := rem.CreatedAt.UTC().Unix()
	if rem.CreatedAt.IsZero() {
		created = time.Now().UTC().Unix()
	}

	var pattern any
	if rem.Pattern != domain.RecurrenceNone {
		pattern = string(rem.Pattern)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (
			chat_id, user_id, message, remind_time,
			is_recurring, recurrence_pattern, is_active,
			attempts, last_attempt_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?, ?)`,
		rem.ChatID, rem.UserID, rem.Message, rem.RemindAt.UTC().Unix(),
		boolToInt(rem.IsRecurring), pattern,
		rem.Attempts, toNullInt64(rem.LastAttemptAt), created,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DueReminders returns every active reminder with remind_time at or before
// now, earliest first. The batch is unbounded; due work is drained per tick.
func (r *SQLiteRepo) DueReminders(ctx context.Context, now time.Time) ([]domain.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE is_active = 1
		  AND remind_time <= ?
		ORDER BY remind_time ASC`,
		now.UTC().Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReminders(rows)
}

// ActiveReminders returns up to limit active reminders for a chat, soonest
// first.
func (r *SQLiteRepo) ActiveReminders(ctx context.Context, chatID int64, limit int) ([]domain.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE chat_id = ?
		  AND is_active = 1
		ORDER BY remind_time ASC
		LIMIT ?`,
		chatID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReminders(rows)
}

// DeactivateReminder retires a reminder. It reports whether this call
// actually flipped an active row.
func (r *SQLiteRepo) DeactivateReminder(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reminders
		SET is_active = 0
		WHERE id = ? AND is_active = 1`,
		id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecordReminderAttempt persists delivery retry bookkeeping for a reminder.
func (r *SQLiteRepo) RecordReminderAttempt(ctx context.Context, id int64, attempts int, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE reminders
		SET attempts = ?, last_attempt_at = ?
		WHERE id = ?`,
		attempts, at.UTC().Unix(), id,
	)
	return err
}

func collectReminders(rows *sql.Rows) ([]domain.Reminder, error) {
	var res []domain.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
