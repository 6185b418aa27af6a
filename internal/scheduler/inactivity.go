package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/domain"
)

// kickWindow is how long a removed member is banned. Telegram treats a ban
// this short as a plain kick: the member may rejoin afterwards.
const kickWindow = 35 * time.Second

// checkInactiveUsers runs one supervision pass over every chat with tracked
// activity, walking idle members through warn-then-remove. Chats and members
// fail independently of each other.
func (e *Engine) checkInactiveUsers(ctx context.Context, now time.Time) error {
	chatIDs, err := e.repo.ChatIDs(ctx)
	if err != nil {
		return fmt.Errorf("list tracked chats: %w", err)
	}

	for _, chatID := range chatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.superviseChat(ctx, chatID, now); err != nil {
			e.log.Error("inactivity pass failed",
				zap.Int64("chatID", chatID),
				zap.Error(err))
		}
	}
	return nil
}

func (e *Engine) superviseChat(ctx context.Context, chatID int64, now time.Time) error {
	policy, err := e.chatPolicy(ctx, chatID)
	if err != nil {
		return err
	}
	if !policy.Enabled {
		return nil
	}

	idle, err := e.repo.InactiveUsers(ctx, chatID, policy.Cutoff(now))
	if err != nil {
		return fmt.Errorf("load inactive users: %w", err)
	}
	e.pruneWarned(chatID, idle)

	for i := range idle {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.superviseMember(ctx, chatID, &idle[i], policy, now); err != nil {
			e.log.Error("inactive member handling failed",
				zap.Int64("chatID", chatID),
				zap.Int64("userID", idle[i].UserID),
				zap.Error(err))
		}
	}
	return nil
}

// pruneWarned drops warned-set entries for members of this chat who are no
// longer idle. Renewed activity exits the warned state (the router clears
// the durable row), so a later warn cycle must send a fresh notice instead
// of being swallowed by the in-memory set.
func (e *Engine) pruneWarned(chatID int64, idle []domain.UserActivity) {
	idleSet := make(map[int64]struct{}, len(idle))
	for i := range idle {
		idleSet[idle[i].UserID] = struct{}{}
	}
	for key := range e.warned {
		if key.chatID != chatID {
			continue
		}
		if _, ok := idleSet[key.userID]; !ok {
			delete(e.warned, key)
		}
	}
}

// superviseMember advances one idle member through the lifecycle. A member
// warned in this pass is never removed in the same pass; removal is judged
// against the warning recorded on an earlier pass.
func (e *Engine) superviseMember(ctx context.Context, chatID int64, ua *domain.UserActivity, policy domain.InactivityPolicy, now time.Time) error {
	warning, err := e.repo.Warning(ctx, chatID, ua.UserID)
	if err != nil {
		return fmt.Errorf("load warning: %w", err)
	}

	switch status := domain.MemberStateFor(ua, warning); status.State {
	case domain.MemberActive:
		return e.warnMember(ctx, chatID, ua.UserID, policy, now)

	case domain.MemberWarned:
		if !warning.RemovalDue(now, policy.Grace()) {
			return nil
		}
		return e.removeMember(ctx, chatID, warning, now)
	}
	return nil
}

// warnMember sends the inactivity warning and opens the grace window. The
// in-memory warned set keeps a half-finished warning (sent, but the durable
// write failed) from being re-sent while the write is retried.
func (e *Engine) warnMember(ctx context.Context, chatID, userID int64, policy domain.InactivityPolicy, now time.Time) error {
	key := warnKey{chatID: chatID, userID: userID}
	if _, sent := e.warned[key]; !sent {
		text := warningText(userID, policy.InactiveDays, policy.WarningHours)
		if err := e.notifier.SendMessage(chatID, text, parseModeHTML); err != nil {
			return fmt.Errorf("send warning: %w", err)
		}
		e.warned[key] = struct{}{}
	}

	w := domain.PendingWarning{ChatID: chatID, UserID: userID, WarnedAt: now}
	if err := e.repo.CreateWarning(ctx, &w); err != nil {
		return fmt.Errorf("record warning: %w", err)
	}

	e.log.Info("inactivity warning issued",
		zap.Int64("chatID", chatID),
		zap.Int64("userID", userID),
		zap.Int("inactiveDays", policy.InactiveDays),
		zap.Int("graceHours", policy.WarningHours))
	return nil
}

// removeMember kicks a member whose grace period has run out, announces the
// removal, and clears the stored lifecycle facts. A rejected removal is
// surfaced into the chat, counted against the warning, and abandoned after
// the attempt cap.
func (e *Engine) removeMember(ctx context.Context, chatID int64, warning *domain.PendingWarning, now time.Time) error {
	userID := warning.UserID

	if err := e.notifier.RemoveMember(chatID, userID, now.Add(kickWindow)); err != nil {
		if sendErr := e.notifier.SendMessage(chatID, removalFailedText, parseModeHTML); sendErr != nil {
			e.log.Warn("removal failure notice not delivered",
				zap.Int64("chatID", chatID),
				zap.Error(sendErr))
		}

		attempts := warning.Attempts + 1
		if attempts >= domain.MaxAttempts {
			e.log.Error("member removal permanently failed",
				zap.Int64("chatID", chatID),
				zap.Int64("userID", userID),
				zap.Int("attempts", attempts))
			if _, delErr := e.repo.DeleteWarning(ctx, chatID, userID); delErr != nil {
				e.log.Error("clear failed warning",
					zap.Int64("chatID", chatID),
					zap.Int64("userID", userID),
					zap.Error(delErr))
			}
			delete(e.warned, warnKey{chatID: chatID, userID: userID})
			return fmt.Errorf("remove member: %w (gave up after %d attempts)", err, attempts)
		}
		if recErr := e.repo.RecordWarningAttempt(ctx, chatID, userID, attempts); recErr != nil {
			e.log.Error("record removal attempt failed",
				zap.Int64("chatID", chatID),
				zap.Int64("userID", userID),
				zap.Error(recErr))
		}
		return fmt.Errorf("remove member: %w", err)
	}

	if err := e.notifier.SendMessage(chatID, removalText, parseModeHTML); err != nil {
		e.log.Warn("removal announcement not delivered",
			zap.Int64("chatID", chatID),
			zap.Error(err))
	}

	// The member is out; clear the stored facts so the state machine reads
	// removed instead of rediscovering a stale activity row next pass.
	if _, err := e.repo.DeleteWarning(ctx, chatID, userID); err != nil {
		return fmt.Errorf("clear warning: %w", err)
	}
	if _, err := e.repo.DeleteActivity(ctx, userID, chatID); err != nil {
		return fmt.Errorf("clear activity: %w", err)
	}
	delete(e.warned, warnKey{chatID: chatID, userID: userID})

	e.log.Info("inactive member removed",
		zap.Int64("chatID", chatID),
		zap.Int64("userID", userID),
		zap.Time("warnedAt", warning.WarnedAt))
	return nil
}

// chatPolicy reads the chat's inactivity settings, falling back to defaults
// for missing or malformed values.
func (e *Engine) chatPolicy(ctx context.Context, chatID int64) (domain.InactivityPolicy, error) {
	policy := domain.DefaultInactivityPolicy()

	enabled, err := e.repo.Config(ctx, chatID, domain.SettingInactiveEnabled, "true")
	if err != nil {
		return policy, fmt.Errorf("read %s: %w", domain.SettingInactiveEnabled, err)
	}
	policy.Enabled = strings.EqualFold(strings.TrimSpace(enabled), "true")

	policy.InactiveDays = e.intSetting(ctx, chatID, domain.SettingInactiveDays, domain.DefaultInactiveDays)
	policy.WarningHours = e.intSetting(ctx, chatID, domain.SettingWarningHours, domain.DefaultWarningHours)
	return policy, nil
}

func (e *Engine) intSetting(ctx context.Context, chatID int64, key string, def int) int {
	raw, err := e.repo.Config(ctx, chatID, key, strconv.Itoa(def))
	if err != nil {
		e.log.Warn("read setting failed",
			zap.Int64("chatID", chatID),
			zap.String("key", key),
			zap.Error(err))
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		e.log.Warn("malformed setting, using default",
			zap.Int64("chatID", chatID),
			zap.String("key", key),
			zap.String("value", raw),
			zap.Int("default", def))
		return def
	}
	return n
}
