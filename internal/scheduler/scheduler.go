package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/domain"
	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/store"
)

// Notifier is the outbound capability the engine needs: push a message into
// a chat and remove a member from it. telegram.Notifier implements it.
type Notifier interface {
	SendMessage(chatID int64, text, parseMode string) error
	RemoveMember(chatID, userID int64, until time.Time) error
}

const (
	// DefaultInterval is the tick cadence when Start is given none.
	DefaultInterval = 60 * time.Second

	// DefaultUpcomingLimit bounds UpcomingReminders when the caller passes
	// no positive limit.
	DefaultUpcomingLimit = 5
)

// Engine owns the background tick loop: due-reminder dispatch every tick and
// the hourly inactivity pass. It is the only scheduling component the rest
// of the application talks to.
type Engine struct {
	repo     store.Repo
	log      *zap.Logger
	notifier Notifier
	now      func() time.Time // injected for tests

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	processed *processedSet
	warned    map[warnKey]struct{}
}

// New builds an Engine. The clock defaults to time.Now.
func New(repo store.Repo, log *zap.Logger, notifier Notifier) *Engine {
	return &Engine{
		repo:      repo,
		log:       log,
		notifier:  notifier,
		now:       time.Now,
		processed: newProcessedSet(processedLimit, processedKeep),
		warned:    make(map[warnKey]struct{}),
	}
}

// Start begins the tick loop. Calling Start on a running engine logs a
// notice and does nothing. A non-positive interval falls back to the default.
func (e *Engine) Start(interval time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		e.log.Warn("scheduler already running")
		return
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	go e.run(ctx, interval, e.done)

	e.log.Info("scheduler started", zap.Duration("interval", interval))
}

// Stop cancels the loop and waits for the in-flight tick to finish its
// current unit of work. Stopping a stopped engine is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	e.log.Info("scheduler stopped")
}

func (e *Engine) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

// tick runs one scheduling cycle. The two checks run sequentially and to
// completion; ticks never overlap because the loop selects again only after
// tick returns.
func (e *Engine) tick(ctx context.Context) {
	now := e.now().UTC()

	if err := e.checkReminders(ctx, now); err != nil {
		e.log.Error("reminder check failed", zap.Error(err))
	}

	// The inactivity pass rides the same ticker but only at the top of the
	// hour, so activity tables are not scanned every tick.
	if now.Minute() == 0 {
		if err := e.checkInactiveUsers(ctx, now); err != nil {
			e.log.Error("inactivity check failed", zap.Error(err))
		}
	}
}

// UpcomingReminders returns a chat's next scheduled reminders, soonest
// first, for display by the command layer.
func (e *Engine) UpcomingReminders(ctx context.Context, chatID int64, limit int) ([]domain.Reminder, error) {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	return e.repo.ActiveReminders(ctx, chatID, limit)
}
