package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/domain"
)

// checkReminders drains the due-reminder batch for this tick. Each reminder
// is an independent unit of work: a failure is logged and counted against
// that reminder alone, and the rest of the batch still runs.
func (e *Engine) checkReminders(ctx context.Context, now time.Time) error {
	due, err := e.repo.DueReminders(ctx, now)
	if err != nil {
		return fmt.Errorf("load due reminders: %w", err)
	}
	if len(due) == 0 {
		return nil
	}
	e.log.Info("due reminders found", zap.Int("count", len(due)))

	for i := range due {
		if err := ctx.Err(); err != nil {
			return err
		}
		rem := &due[i]

		key := reminderKey{id: rem.ID, remindAt: rem.RemindAt.Unix()}
		if e.processed.Contains(key) {
			continue
		}
		if !rem.RetryDue(now) {
			continue
		}

		if err := e.fireReminder(ctx, rem); err != nil {
			e.log.Error("reminder delivery failed",
				zap.Int64("reminderID", rem.ID),
				zap.Int64("chatID", rem.ChatID),
				zap.Int("attempts", rem.Attempts),
				zap.Error(err))
			e.recordReminderFailure(ctx, rem, now)
			continue
		}

		// Recorded only after the send and all bookkeeping succeed, so a
		// partial failure is retried rather than silently dropped.
		e.processed.Add(key)
	}
	return nil
}

// fireReminder sends the notification and settles the row: a weekly reminder
// gets a successor at +7 days before the fired occurrence is retired, a
// one-shot reminder is simply retired.
func (e *Engine) fireReminder(ctx context.Context, rem *domain.Reminder) error {
	if err := e.notifier.SendMessage(rem.ChatID, reminderText(rem), parseModeHTML); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	if rem.IsRecurring {
		next, err := rem.NextOccurrence()
		if err != nil {
			return e.retireMalformed(ctx, rem, err)
		}
		successor := rem.Successor(next)
		id, err := e.repo.CreateReminder(ctx, &successor)
		if err != nil {
			return fmt.Errorf("create next occurrence: %w", err)
		}
		e.log.Info("recurring reminder rolled forward",
			zap.Int64("reminderID", rem.ID),
			zap.Int64("successorID", id),
			zap.Time("nextAt", next))
	}

	if _, err := e.repo.DeactivateReminder(ctx, rem.ID); err != nil {
		if rem.IsRecurring {
			// The successor already exists; retrying the whole unit would
			// re-send and fork a second successor. Keep the dedup key and
			// let the stale original age out of the due query on restart.
			e.log.Error("deactivate after roll-forward failed",
				zap.Int64("reminderID", rem.ID),
				zap.Error(err))
			return nil
		}
		return fmt.Errorf("deactivate: %w", err)
	}
	return nil
}

// retireMalformed handles a recurring reminder whose pattern the engine does
// not understand. Left alone it would fire on every tick forever, so it is
// deactivated instead of retried.
func (e *Engine) retireMalformed(ctx context.Context, rem *domain.Reminder, cause error) error {
	e.log.Error("retiring reminder with malformed recurrence",
		zap.Int64("reminderID", rem.ID),
		zap.String("pattern", string(rem.Pattern)),
		zap.Error(cause))
	if _, err := e.repo.DeactivateReminder(ctx, rem.ID); err != nil {
		return fmt.Errorf("deactivate malformed reminder: %w", err)
	}
	return nil
}

// recordReminderFailure books a failed attempt. The reminder stays active
// and due, eligible again once its backoff window elapses; after the attempt
// cap it is retired with a terminal error instead of retrying forever.
func (e *Engine) recordReminderFailure(ctx context.Context, rem *domain.Reminder, now time.Time) {
	attempts := rem.Attempts + 1
	if attempts >= domain.MaxAttempts {
		e.log.Error("reminder permanently failed",
			zap.Int64("reminderID", rem.ID),
			zap.Int64("chatID", rem.ChatID),
			zap.Int("attempts", attempts))
		if _, err := e.repo.DeactivateReminder(ctx, rem.ID); err != nil {
			e.log.Error("deactivate failed reminder",
				zap.Int64("reminderID", rem.ID),
				zap.Error(err))
		}
		return
	}

	if err := e.repo.RecordReminderAttempt(ctx, rem.ID, attempts, now); err != nil {
		e.log.Error("record reminder attempt failed",
			zap.Int64("reminderID", rem.ID),
			zap.Error(err))
	}
}
