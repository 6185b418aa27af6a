package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/domain"
)

// TouchActivity upserts a member's last-activity timestamp and bumps the
// message counter.
func (r *SQLiteRepo) TouchActivity(ctx context.Context, userID, chatID int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_activity (user_id, chat_id, last_activity, message_count)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(user_id, chat_id) DO UPDATE SET
			last_activity = excluded.last_activity,
			message_count = user_activity.message_count + 1`,
		userID, chatID, at.UTC().Unix(),
	)
	return err
}

// ChatIDs returns every chat with at least one tracked member.
func (r *SQLiteRepo) ChatIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT chat_id FROM user_activity ORDER BY chat_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// InactiveUsers returns members of a chat whose last activity predates the
// cutoff, longest-idle first.
func (r *SQLiteRepo) InactiveUsers(ctx context.Context, chatID int64, cutoff time.Time) ([]domain.UserActivity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, chat_id, last_activity, message_count
		FROM user_activity
		WHERE chat_id = ?
		  AND last_activity < ?
		ORDER BY last_activity ASC`,
		chatID, cutoff.UTC().Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.UserActivity
	for rows.Next() {
		ua, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, ua)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteActivity drops a member's activity row, reporting whether one existed.
func (r *SQLiteRepo) DeleteActivity(ctx context.Context, userID, chatID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM user_activity WHERE user_id = ? AND chat_id = ?`,
		userID, chatID,
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

// Warning returns the pending warning for (chatID, userID), or nil when the
// member has not been warned.
func (r *SQLiteRepo) Warning(ctx context.Context, chatID, userID int64) (*domain.PendingWarning, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT chat_id, user_id, warned_at, attempts
		FROM pending_warnings
		WHERE chat_id = ? AND user_id = ?`,
		chatID, userID,
	)

	var (
		w        domain.PendingWarning
		warnedAt int64
	)
	err := row.Scan(&w.ChatID, &w.UserID, &warnedAt, &w.Attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	w.WarnedAt = time.Unix(warnedAt, 0).UTC()
	return &w, nil
}

// CreateWarning records that a member was warned. A warning already on file
// is kept as is so the grace window never restarts.
func (r *SQLiteRepo) CreateWarning(ctx context.Context, w *domain.PendingWarning) error {
	if w == nil {
		return errors.New("nil warning")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_warnings (chat_id, user_id, warned_at, attempts)
		VALUES (?, ?, ?, 0)
		ON CONFLICT(chat_id, user_id) DO NOTHING`,
		w.ChatID, w.UserID, w.WarnedAt.UTC().Unix(),
	)
	return err
}

// DeleteWarning clears a member's pending warning, reporting whether one
// existed.
func (r *SQLiteRepo) DeleteWarning(ctx context.Context, chatID, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM pending_warnings WHERE chat_id = ? AND user_id = ?`,
		chatID, userID,
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

// RecordWarningAttempt persists removal retry bookkeeping for a warning.
func (r *SQLiteRepo) RecordWarningAttempt(ctx context.Context, chatID, userID int64, attempts int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE pending_warnings
		SET attempts = ?
		WHERE chat_id = ? AND user_id = ?`,
		attempts, chatID, userID,
	)
	return err
}
