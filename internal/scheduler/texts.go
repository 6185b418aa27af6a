package scheduler

import (
	"fmt"
	"html"

	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/domain"
)

// parseModeHTML matches Telegram's HTML formatting mode. The engine speaks
// to the platform only through the Notifier, so the mode travels as a plain
// string.
const parseModeHTML = "HTML"

const (
	removalText = "🐟 <b>ANOTHER ONE SLEEPS WITH THE FISHES</b> 🐟\n\n" +
		"A member has been removed from the group for prolonged inactivity.\n\n" +
		"Don Hustle does not carry dead weight."

	removalFailedText = "⚠️ The family tried to remove an inactive member but was refused. " +
		"Make sure the bot has permission to remove members."
)

// mention builds an HTML mention that works without a username.
func mention(userID int64) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">Capo</a>`, userID)
}

func reminderText(rem *domain.Reminder) string {
	return fmt.Sprintf("⏰ <b>FAMILY REMINDER</b> ⏰\n\n%s, %s",
		mention(rem.UserID), html.EscapeString(rem.Message))
}

func warningText(userID int64, inactiveDays, warningHours int) string {
	return fmt.Sprintf("⚠️ <b>INACTIVITY NOTICE</b> ⚠️\n\n"+
		"%s, you have been silent for %d days.\n\n"+
		"The family expects every member to pull their weight. "+
		"Show a sign of life within %d hours or you will be removed from the group.",
		mention(userID), inactiveDays, warningHours)
}
