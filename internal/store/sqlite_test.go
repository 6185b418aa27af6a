package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/domain"
)

func openTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	path := filepath.Join(t.TempDir(), "donhustle.db")
	repo, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestOpenSQLite_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "donhustle.db")

	repo, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	at := time.Date(2025, time.July, 21, 10, 0, 0, 0, time.UTC)
	id, err := repo.CreateReminder(ctx, &domain.Reminder{
		ChatID:   100,
		UserID:   7,
		Message:  "survive restart",
		RemindAt: at,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening reruns every migration; they must tolerate existing schema.
	repo, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	due, err := repo.DueReminders(ctx, at)
	if err != nil {
		t.Fatalf("due after reopen: %v", err)
	}
	if len(due) != 1 || due[0].ID != id || due[0].Message != "survive restart" {
		t.Fatalf("row lost across reopen: %+v", due)
	}
}

func TestReminderLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	now := time.Date(2025, time.July, 21, 10, 0, 0, 0, time.UTC)

	id, err := repo.CreateReminder(ctx, &domain.Reminder{
		ChatID:      100,
		UserID:      7,
		Message:     "family meeting",
		RemindAt:    now.Add(-time.Minute),
		IsRecurring: true,
		Pattern:     domain.RecurrenceWeekly,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id <= 0 {
		t.Fatalf("create returned id=%d", id)
	}

	due, err := repo.DueReminders(ctx, now)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("want 1 due reminder, got %d", len(due))
	}
	rem := due[0]
	if rem.ID != id || rem.ChatID != 100 || rem.UserID != 7 || rem.Message != "family meeting" {
		t.Fatalf("row mangled: %+v", rem)
	}
	if !rem.RemindAt.Equal(now.Add(-time.Minute)) {
		t.Fatalf("remind time %v, want %v", rem.RemindAt, now.Add(-time.Minute))
	}
	if !rem.IsRecurring || rem.Pattern != domain.RecurrenceWeekly {
		t.Fatalf("recurrence lost: %+v", rem)
	}
	if !rem.Active || rem.Attempts != 0 || rem.LastAttemptAt != nil {
		t.Fatalf("fresh reminder has stale state: %+v", rem)
	}

	flipped, err := repo.DeactivateReminder(ctx, id)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if !flipped {
		t.Fatal("deactivate reported no change for an active row")
	}

	due, err = repo.DueReminders(ctx, now)
	if err != nil {
		t.Fatalf("due after deactivate: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("inactive reminder still due: %+v", due)
	}

	flipped, err = repo.DeactivateReminder(ctx, id)
	if err != nil {
		t.Fatalf("second deactivate: %v", err)
	}
	if flipped {
		t.Fatal("deactivating an inactive row reported a change")
	}
}

func TestDueReminders_OrderAndBoundary(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	now := time.Date(2025, time.July, 21, 10, 0, 0, 0, time.UTC)

	mustCreate := func(msg string, at time.Time) {
		t.Helper()
		if _, err := repo.CreateReminder(ctx, &domain.Reminder{
			ChatID: 100, UserID: 7, Message: msg, RemindAt: at,
		}); err != nil {
			t.Fatalf("create %s: %v", msg, err)
		}
	}
	mustCreate("second", now)                    // boundary: due exactly now
	mustCreate("first", now.Add(-2*time.Minute)) // earliest
	mustCreate("future", now.Add(time.Minute))   // not yet due

	due, err := repo.DueReminders(ctx, now)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("want 2 due reminders, got %d", len(due))
	}
	if due[0].Message != "first" || due[1].Message != "second" {
		t.Fatalf("wrong order: %q then %q", due[0].Message, due[1].Message)
	}
}

func TestActiveReminders_ChatScopeAndLimit(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	base := time.Date(2025, time.July, 21, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if _, err := repo.CreateReminder(ctx, &domain.Reminder{
			ChatID: 100, UserID: 7, Message: "mine", RemindAt: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := repo.CreateReminder(ctx, &domain.Reminder{
		ChatID: 200, UserID: 7, Message: "other chat", RemindAt: base,
	}); err != nil {
		t.Fatalf("create other: %v", err)
	}

	got, err := repo.ActiveReminders(ctx, 100, 2)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2, got %d", len(got))
	}
	if !got[0].RemindAt.Equal(base) || !got[1].RemindAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("not the soonest rows: %+v", got)
	}
	for _, rem := range got {
		if rem.ChatID != 100 {
			t.Fatalf("leaked chat %d", rem.ChatID)
		}
	}
}

func TestRecordReminderAttempt_Roundtrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	now := time.Date(2025, time.July, 21, 10, 0, 0, 0, time.UTC)

	id, err := repo.CreateReminder(ctx, &domain.Reminder{
		ChatID: 100, UserID: 7, Message: "retry me", RemindAt: now.Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.RecordReminderAttempt(ctx, id, 3, now); err != nil {
		t.Fatalf("record attempt: %v", err)
	}

	due, err := repo.DueReminders(ctx, now)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("want 1 due reminder, got %d", len(due))
	}
	if due[0].Attempts != 3 {
		t.Fatalf("attempts %d, want 3", due[0].Attempts)
	}
	if due[0].LastAttemptAt == nil || !due[0].LastAttemptAt.Equal(now) {
		t.Fatalf("last attempt %v, want %v", due[0].LastAttemptAt, now)
	}
}

func TestTouchActivity_UpsertAndCutoff(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	first := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	if err := repo.TouchActivity(ctx, 7, 100, first); err != nil {
		t.Fatalf("first touch: %v", err)
	}
	if err := repo.TouchActivity(ctx, 7, 100, second); err != nil {
		t.Fatalf("second touch: %v", err)
	}

	// A cutoff in the far future returns the member and reveals the merged
	// row: one row, two counted messages, latest timestamp.
	idle, err := repo.InactiveUsers(ctx, 100, second.Add(time.Hour))
	if err != nil {
		t.Fatalf("inactive: %v", err)
	}
	if len(idle) != 1 {
		t.Fatalf("want 1 row, got %d", len(idle))
	}
	ua := idle[0]
	if ua.UserID != 7 || ua.ChatID != 100 {
		t.Fatalf("wrong identity: %+v", ua)
	}
	if ua.MessageCount != 2 {
		t.Fatalf("message count %d, want 2", ua.MessageCount)
	}
	if !ua.LastActivity.Equal(second) {
		t.Fatalf("last activity %v, want %v", ua.LastActivity, second)
	}

	// The cutoff is strict: a member active exactly at the cutoff is not idle.
	idle, err = repo.InactiveUsers(ctx, 100, second)
	if err != nil {
		t.Fatalf("inactive at boundary: %v", err)
	}
	if len(idle) != 0 {
		t.Fatalf("boundary row counted as idle: %+v", idle)
	}
}

func TestChatIDs_Distinct(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	at := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

	for _, seed := range []struct{ user, chat int64 }{{7, 100}, {8, 100}, {7, 200}} {
		if err := repo.TouchActivity(ctx, seed.user, seed.chat, at); err != nil {
			t.Fatalf("touch: %v", err)
		}
	}

	ids, err := repo.ChatIDs(ctx)
	if err != nil {
		t.Fatalf("chat ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != 100 || ids[1] != 200 {
		t.Fatalf("want [100 200], got %v", ids)
	}
}

func TestDeleteActivity_ReportsExistence(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	at := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

	if err := repo.TouchActivity(ctx, 7, 100, at); err != nil {
		t.Fatalf("touch: %v", err)
	}

	existed, err := repo.DeleteActivity(ctx, 7, 100)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !existed {
		t.Fatal("delete missed an existing row")
	}

	existed, err = repo.DeleteActivity(ctx, 7, 100)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if existed {
		t.Fatal("delete reported a row that was already gone")
	}
}

func TestConfig_RoundtripDefaultsAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	got, err := repo.Config(ctx, 100, domain.SettingInactiveDays, "7")
	if err != nil {
		t.Fatalf("read unset: %v", err)
	}
	if got != "7" {
		t.Fatalf("want default, got %q", got)
	}

	if err := repo.SetConfig(ctx, 100, domain.SettingInactiveDays, "14"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.SetConfig(ctx, 100, domain.SettingInactiveDays, "21"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err = repo.Config(ctx, 100, domain.SettingInactiveDays, "7")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "21" {
		t.Fatalf("want overwritten value, got %q", got)
	}

	// Other chats are not affected.
	got, err = repo.Config(ctx, 200, domain.SettingInactiveDays, "7")
	if err != nil {
		t.Fatalf("read other chat: %v", err)
	}
	if got != "7" {
		t.Fatalf("setting leaked across chats: %q", got)
	}

	existed, err := repo.DeleteConfig(ctx, 100, domain.SettingInactiveDays)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !existed {
		t.Fatal("delete missed an existing setting")
	}
	got, err = repo.Config(ctx, 100, domain.SettingInactiveDays, "7")
	if err != nil {
		t.Fatalf("read after delete: %v", err)
	}
	if got != "7" {
		t.Fatalf("want default after delete, got %q", got)
	}
}

func TestWarningLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	warnedAt := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

	w, err := repo.Warning(ctx, 100, 7)
	if err != nil {
		t.Fatalf("read absent: %v", err)
	}
	if w != nil {
		t.Fatalf("phantom warning: %+v", w)
	}

	if err := repo.CreateWarning(ctx, &domain.PendingWarning{ChatID: 100, UserID: 7, WarnedAt: warnedAt}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// A second create must keep the original timestamp: the grace window
	// never restarts.
	later := warnedAt.Add(5 * time.Hour)
	if err := repo.CreateWarning(ctx, &domain.PendingWarning{ChatID: 100, UserID: 7, WarnedAt: later}); err != nil {
		t.Fatalf("second create: %v", err)
	}

	w, err = repo.Warning(ctx, 100, 7)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if w == nil {
		t.Fatal("warning missing")
	}
	if !w.WarnedAt.Equal(warnedAt) {
		t.Fatalf("grace window restarted: %v, want %v", w.WarnedAt, warnedAt)
	}
	if w.Attempts != 0 {
		t.Fatalf("fresh warning has %d attempts", w.Attempts)
	}

	if err := repo.RecordWarningAttempt(ctx, 100, 7, 2); err != nil {
		t.Fatalf("record attempt: %v", err)
	}
	w, err = repo.Warning(ctx, 100, 7)
	if err != nil {
		t.Fatalf("read after attempt: %v", err)
	}
	if w.Attempts != 2 {
		t.Fatalf("attempts %d, want 2", w.Attempts)
	}

	existed, err := repo.DeleteWarning(ctx, 100, 7)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !existed {
		t.Fatal("delete missed an existing warning")
	}
	w, err = repo.Warning(ctx, 100, 7)
	if err != nil {
		t.Fatalf("read after delete: %v", err)
	}
	if w != nil {
		t.Fatalf("warning survived delete: %+v", w)
	}
}
