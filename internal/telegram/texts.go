package telegram

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/domain"
)

// remindTimeLayout renders reminder times; all stored times are UTC.
const remindTimeLayout = "Mon, 02 Jan 2006 15:04 MST"

const (
	helpText = "🎩 <b>DON HUSTLE AT YOUR SERVICE</b>\n\n" +
		"The family keeps its affairs in order. Here is what I handle:\n\n" +
		"/remind today 15:30 pay the crew - one-time reminder\n" +
		"/remind 25/12 23:59 close the books - specific date\n" +
		"/remind weekly monday 10:00 family meeting - every week\n" +
		"/reminders - upcoming reminders for this chat\n" +
		"/inactive - inactivity policy for this chat (admins)\n\n" +
		"Speak up in the chat now and then, so the family knows you are alive."

	remindUsageText = "📋 <b>HOW TO ASK FOR A REMINDER</b>\n\n" +
		"/remind today 15:30 pay the crew\n" +
		"/remind tomorrow 09:00 call the consigliere\n" +
		"/remind 25/12 23:59 close the books\n" +
		"/remind weekly monday 10:00 family meeting"

	noRemindersText = "🗒 The slate is clean. No reminders scheduled for this chat."

	groupOnlyText = "👥 Inactivity rules apply to group chats only."

	adminOnlyText = "🚫 Only the capos give those orders. Ask an admin."

	inactiveUsageText = "⚙️ <b>INACTIVITY WATCH</b>\n\n" +
		"/inactive - current policy\n" +
		"/inactive on - watch this chat\n" +
		"/inactive off - look the other way\n" +
		"/inactive days 14 - days of silence before a warning\n" +
		"/inactive grace 48 - hours to respond before removal"

	inactiveOnText  = "👁 <b>THE WATCH IS ON.</b> Silent members will be warned, then shown the door."
	inactiveOffText = "😴 <b>THE WATCH IS OFF.</b> The family looks the other way for now."
)

func welcomeText(userID int64, firstName string) string {
	return fmt.Sprintf("🤝 <b>WELCOME TO THE FAMILY</b>\n\n"+
		"<a href=\"tg://user?id=%d\">%s</a>, you are one of us now.\n"+
		"Stay active and pull your weight, and the family takes care of you.",
		userID, html.EscapeString(firstName))
}

func remindErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrPastTime):
		return "⏳ That moment is already behind us. Pick a time in the future."
	case errors.Is(err, domain.ErrBadDay), errors.Is(err, domain.ErrBadWeekday):
		return "📅 I did not recognize that day.\n\n" + remindUsageText
	case errors.Is(err, domain.ErrBadClock):
		return "🕰 Time must be HH:MM, like 09:30 or 21:00.\n\n" + remindUsageText
	default:
		return remindUsageText
	}
}

func remindConfirmText(p domain.ParsedReminder) string {
	when := p.RemindAt.Format(remindTimeLayout)
	if p.IsRecurring {
		return fmt.Sprintf("📌 <b>CONSIDER IT DONE.</b>\n\nEvery week, starting %s:\n<i>%s</i>",
			when, html.EscapeString(p.Message))
	}
	return fmt.Sprintf("📌 <b>CONSIDER IT DONE.</b>\n\n%s:\n<i>%s</i>",
		when, html.EscapeString(p.Message))
}

func remindersListText(reminders []domain.Reminder) string {
	var b strings.Builder
	b.WriteString("🗓 <b>UPCOMING FAMILY BUSINESS</b>\n")
	for i := range reminders {
		rem := &reminders[i]
		fmt.Fprintf(&b, "\n%d. %s - %s",
			i+1, rem.RemindAt.Format(remindTimeLayout), html.EscapeString(rem.Message))
		if rem.IsRecurring {
			b.WriteString(" 🔁")
		}
	}
	return b.String()
}

func inactiveStatusText(on bool, days, hours string) string {
	state := "ON"
	if !on {
		state = "OFF"
	}
	return fmt.Sprintf("⚙️ <b>INACTIVITY WATCH: %s</b>\n\n"+
		"• Warning after: %s days of silence\n"+
		"• Removal after: %s more hours\n\n"+
		"Change with /inactive on, /inactive off, /inactive days N, /inactive grace N.",
		state, days, hours)
}

func inactiveDaysText(n int) string {
	return fmt.Sprintf("⏱ Noted. %d days of silence and a member gets a warning.", n)
}

func inactiveGraceText(n int) string {
	return fmt.Sprintf("⏱ Noted. A warned member has %d hours to speak up.", n)
}
