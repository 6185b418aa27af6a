package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/domain"
	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/store"
)

// ReminderLister is the slice of the scheduling engine the router needs for
// /reminders.
type ReminderLister interface {
	UpcomingReminders(ctx context.Context, chatID int64, limit int) ([]domain.Reminder, error)
}

// Router wires Telegram updates to command handlers and records member
// activity for the inactivity supervisor.
type Router struct {
	bot    *tgbotapi.BotAPI
	log    *zap.Logger
	repo   store.Repo
	engine ReminderLister
}

// NewRouter creates the update router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, repo store.Repo, engine ReminderLister) *Router {
	return &Router{
		bot:    bot,
		log:    log,
		repo:   repo,
		engine: engine,
	}
}

// HandleUpdate routes a single update. Commands are dispatched to handlers;
// everything else feeds the activity tracker.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	if len(msg.NewChatMembers) > 0 {
		r.handleNewMembers(ctx, msg)
		return
	}
	if msg.LeftChatMember != nil {
		r.handleLeftMember(ctx, msg)
		return
	}

	if msg.IsCommand() {
		r.handleCommand(ctx, msg)
		return
	}

	r.recordActivity(ctx, msg)
}

func (r *Router) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		r.sendText(msg.Chat.ID, helpText)
	case "remind":
		r.handleRemind(ctx, msg)
	case "reminders":
		r.handleReminders(ctx, msg)
	case "inactive":
		r.handleInactive(ctx, msg)
	default:
		// Unknown command: likely addressed to another bot in the chat.
	}
}

// recordActivity keeps the activity table current. Commands are deliberately
// not counted; only real contributions reset the inactivity clock.
func (r *Router) recordActivity(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.IsBot {
		return
	}
	if !msg.Chat.IsGroup() && !msg.Chat.IsSuperGroup() {
		return
	}

	at := time.Unix(int64(msg.Date), 0).UTC()
	r.markActive(ctx, msg.From.ID, msg.Chat.ID, at)
}

// markActive bumps the member's activity row and clears any pending
// inactivity warning: a member who speaks is active again, whatever state
// the supervisor had them in.
func (r *Router) markActive(ctx context.Context, userID, chatID int64, at time.Time) {
	if err := r.repo.TouchActivity(ctx, userID, chatID, at); err != nil {
		r.log.Error("record activity failed",
			zap.Int64("chatID", chatID),
			zap.Int64("userID", userID),
			zap.Error(err))
		return
	}
	if _, err := r.repo.DeleteWarning(ctx, chatID, userID); err != nil {
		r.log.Error("clear warning after activity failed",
			zap.Int64("chatID", chatID),
			zap.Int64("userID", userID),
			zap.Error(err))
	}
}

// handleNewMembers seeds activity rows for members joining the chat, so the
// inactivity clock starts at the moment they arrive.
func (r *Router) handleNewMembers(ctx context.Context, msg *tgbotapi.Message) {
	now := time.Unix(int64(msg.Date), 0).UTC()
	for i := range msg.NewChatMembers {
		member := &msg.NewChatMembers[i]
		if member.IsBot {
			continue
		}
		r.markActive(ctx, member.ID, msg.Chat.ID, now)
		r.sendText(msg.Chat.ID, welcomeText(member.ID, member.FirstName))
	}
}

// handleLeftMember clears lifecycle state for a member who left by any
// means, so a departed member never re-enters the warn cycle.
func (r *Router) handleLeftMember(ctx context.Context, msg *tgbotapi.Message) {
	left := msg.LeftChatMember
	if left.IsBot {
		return
	}
	if _, err := r.repo.DeleteActivity(ctx, left.ID, msg.Chat.ID); err != nil {
		r.log.Error("clear activity for left member failed",
			zap.Int64("chatID", msg.Chat.ID),
			zap.Int64("userID", left.ID),
			zap.Error(err))
	}
	if _, err := r.repo.DeleteWarning(ctx, msg.Chat.ID, left.ID); err != nil {
		r.log.Error("clear warning for left member failed",
			zap.Int64("chatID", msg.Chat.ID),
			zap.Int64("userID", left.ID),
			zap.Error(err))
	}
}

// sendText sends an HTML-formatted message, logging delivery failures.
func (r *Router) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Int64("chatID", chatID), zap.Error(err))
	}
}

// isAdmin checks whether the user may change chat-level settings.
func (r *Router) isAdmin(chatID, userID int64) bool {
	member, err := r.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		r.log.Warn("admin check failed",
			zap.Int64("chatID", chatID),
			zap.Int64("userID", userID),
			zap.Error(err))
		return false
	}
	return member.IsCreator() || member.IsAdministrator()
}
