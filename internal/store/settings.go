package store

import (
	"context"
	"database/sql"
	"errors"
)

// Config returns the stored value for (chatID, key), or def when unset.
func (r *SQLiteRepo) Config(ctx context.Context, chatID int64, key, def string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `
		SELECT value FROM chat_config WHERE chat_id = ? AND key = ?`,
		chatID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return value, nil
}

// SetConfig stores or replaces one configuration value.
func (r *SQLiteRepo) SetConfig(ctx context.Context, chatID int64, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_config (chat_id, key, value)
		VALUES (?, ?, ?)
		ON CONFLICT(chat_id, key) DO UPDATE SET value = excluded.value`,
		chatID, key, value,
	)
	return err
}

// DeleteConfig removes one configuration value, reporting whether it existed.
func (r *SQLiteRepo) DeleteConfig(ctx context.Context, chatID int64, key string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM chat_config WHERE chat_id = ? AND key = ?`,
		chatID, key,
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
