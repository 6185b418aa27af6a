package telegram

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier pushes engine notifications into chats and removes members.
// It implements scheduler.Notifier.
type Notifier struct {
	bot *tgbotapi.BotAPI
}

// NewNotifier wraps a bot client in the engine-facing notifier.
func NewNotifier(bot *tgbotapi.BotAPI) *Notifier {
	return &Notifier{bot: bot}
}

// SendMessage sends text to a chat. parseMode is "HTML", a Markdown mode, or
// empty for plain text.
func (n *Notifier) SendMessage(chatID int64, text, parseMode string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode
	_, err := n.bot.Send(msg)
	return err
}

// RemoveMember kicks a member by banning until the given time. A ban shorter
// than Telegram's minimum window acts as a plain kick, so the member can
// rejoin later.
func (n *Notifier) RemoveMember(chatID, userID int64, until time.Time) error {
	_, err := n.bot.Request(tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: userID,
		},
		UntilDate: until.Unix(),
	})
	return err
}
