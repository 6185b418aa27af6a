package telegram

import (
	"context"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/domain"
)

// upcomingLimit is how many rows /reminders shows.
const upcomingLimit = 5

// --- /remind ---

// handleRemind schedules a one-shot or weekly reminder:
//
//	/remind today 15:30 pay the crew
//	/remind 25/12 23:59 close the books
//	/remind weekly monday 10:00 family meeting
func (r *Router) handleRemind(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	args := strings.Fields(msg.CommandArguments())
	parsed, err := domain.ParseRemindSpec(args, time.Now().UTC(), time.UTC)
	if err != nil {
		r.sendText(msg.Chat.ID, remindErrorText(err))
		return
	}

	rem := &domain.Reminder{
		ChatID:      msg.Chat.ID,
		UserID:      msg.From.ID,
		Message:     parsed.Message,
		RemindAt:    parsed.RemindAt,
		IsRecurring: parsed.IsRecurring,
		Pattern:     parsed.Pattern,
		Active:      true,
	}
	id, err := r.repo.CreateReminder(ctx, rem)
	if err != nil {
		r.log.Error("create reminder failed",
			zap.Int64("chatID", msg.Chat.ID),
			zap.Error(err))
		r.sendText(msg.Chat.ID, "Could not save the reminder. Try again later.")
		return
	}

	r.log.Info("reminder scheduled",
		zap.Int64("reminderID", id),
		zap.Int64("chatID", msg.Chat.ID),
		zap.Time("remindAt", parsed.RemindAt),
		zap.Bool("recurring", parsed.IsRecurring))
	r.sendText(msg.Chat.ID, remindConfirmText(parsed))
}

// --- /reminders ---

func (r *Router) handleReminders(ctx context.Context, msg *tgbotapi.Message) {
	reminders, err := r.engine.UpcomingReminders(ctx, msg.Chat.ID, upcomingLimit)
	if err != nil {
		r.log.Error("list reminders failed",
			zap.Int64("chatID", msg.Chat.ID),
			zap.Error(err))
		r.sendText(msg.Chat.ID, "Could not load the reminders. Try again later.")
		return
	}
	if len(reminders) == 0 {
		r.sendText(msg.Chat.ID, noRemindersText)
		return
	}
	r.sendText(msg.Chat.ID, remindersListText(reminders))
}

// --- /inactive ---

// handleInactive shows or updates the chat's inactivity policy:
//
//	/inactive            current policy
//	/inactive on|off     toggle the watch for this chat
//	/inactive days 14    days of silence before a warning
//	/inactive grace 48   hours between warning and removal
func (r *Router) handleInactive(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.Chat.IsGroup() && !msg.Chat.IsSuperGroup() {
		r.sendText(msg.Chat.ID, groupOnlyText)
		return
	}
	if msg.From == nil || !r.isAdmin(msg.Chat.ID, msg.From.ID) {
		r.sendText(msg.Chat.ID, adminOnlyText)
		return
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		r.sendInactiveStatus(ctx, msg.Chat.ID)
		return
	}

	switch strings.ToLower(args[0]) {
	case "status":
		r.sendInactiveStatus(ctx, msg.Chat.ID)
	case "on":
		r.saveSetting(ctx, msg.Chat.ID, domain.SettingInactiveEnabled, "true", inactiveOnText)
	case "off":
		r.saveSetting(ctx, msg.Chat.ID, domain.SettingInactiveEnabled, "false", inactiveOffText)
	case "days":
		n, ok := positiveArg(args)
		if !ok {
			r.sendText(msg.Chat.ID, inactiveUsageText)
			return
		}
		r.saveSetting(ctx, msg.Chat.ID, domain.SettingInactiveDays, strconv.Itoa(n), inactiveDaysText(n))
	case "grace":
		n, ok := positiveArg(args)
		if !ok {
			r.sendText(msg.Chat.ID, inactiveUsageText)
			return
		}
		r.saveSetting(ctx, msg.Chat.ID, domain.SettingWarningHours, strconv.Itoa(n), inactiveGraceText(n))
	default:
		r.sendText(msg.Chat.ID, inactiveUsageText)
	}
}

func (r *Router) sendInactiveStatus(ctx context.Context, chatID int64) {
	enabled, err := r.repo.Config(ctx, chatID, domain.SettingInactiveEnabled, "true")
	if err != nil {
		r.reportSettingsError(chatID, err)
		return
	}
	days, err := r.repo.Config(ctx, chatID, domain.SettingInactiveDays, strconv.Itoa(domain.DefaultInactiveDays))
	if err != nil {
		r.reportSettingsError(chatID, err)
		return
	}
	hours, err := r.repo.Config(ctx, chatID, domain.SettingWarningHours, strconv.Itoa(domain.DefaultWarningHours))
	if err != nil {
		r.reportSettingsError(chatID, err)
		return
	}

	on := strings.EqualFold(strings.TrimSpace(enabled), "true")
	r.sendText(chatID, inactiveStatusText(on, days, hours))
}

func (r *Router) saveSetting(ctx context.Context, chatID int64, key, value, confirmation string) {
	if err := r.repo.SetConfig(ctx, chatID, key, value); err != nil {
		r.log.Error("save chat setting failed",
			zap.Int64("chatID", chatID),
			zap.String("key", key),
			zap.Error(err))
		r.sendText(chatID, "Could not save the setting. Try again later.")
		return
	}
	r.sendText(chatID, confirmation)
}

func (r *Router) reportSettingsError(chatID int64, err error) {
	r.log.Error("read inactivity settings failed",
		zap.Int64("chatID", chatID),
		zap.Error(err))
	r.sendText(chatID, "Could not read the settings. Try again later.")
}

// positiveArg extracts args[1] as a positive integer.
func positiveArg(args []string) (int, bool) {
	if len(args) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
