package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/config"
	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/scheduler"
	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/store"
	"github.com/tsuloid08/DonHustle-Bot-for-Telegram/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting donhustle-bot",
		zap.String("bot", a.bot.Self.UserName),
		zap.String("http", a.cfg.HTTPAddr),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open SQLite and run migrations.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	defer func() { _ = repo.Close() }()
	a.log.Info("sqlite ready", zap.String("path", a.cfg.DBPath))

	engine := scheduler.New(repo, a.log, telegram.NewNotifier(a.bot))
	router := telegram.NewRouter(a.bot, a.log, repo, engine)

	engine.Start(a.cfg.TickInterval)
	defer engine.Stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpSrv.Shutdown(shCtx)
	})

	g.Go(func() error {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 30
		updates := a.bot.GetUpdatesChan(u)
		for {
			select {
			case <-ctx.Done():
				a.bot.StopReceivingUpdates()
				return nil
			case upd := <-updates:
				router.HandleUpdate(ctx, upd)
			}
		}
	})

	err = g.Wait()
	a.log.Info("shutdown complete")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
