// Package server wires the deadbox components together and runs them: the
// REST API, the trigger evaluator on its polling interval and the cleanup
// job for unverified accounts. It handles graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mukimuddin/deadbox/internal/logging"
	"github.com/mukimuddin/deadbox/internal/server/config"
	"github.com/mukimuddin/deadbox/internal/server/httpapi"
	"github.com/mukimuddin/deadbox/internal/server/notify"
	"github.com/mukimuddin/deadbox/internal/server/repositories/repomanager"
	"github.com/mukimuddin/deadbox/internal/server/scheduler"
	"github.com/mukimuddin/deadbox/internal/server/services"
	"github.com/mukimuddin/deadbox/internal/server/storage"
	"github.com/mukimuddin/deadbox/internal/server/trigger"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	httpServer    *httpapi.Server
	triggerJob    *scheduler.Scheduler
	cleanupJob    *scheduler.Scheduler
	userService   *services.UserService
	letterService *services.LetterService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := storage.NewS3Storage(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	mailer := notify.NewMailer(newSender(c, logger), c.FrontendURL)

	us := services.NewUserService(db, rm, mailer, c, logger)
	ls := services.NewLetterService(db, rm, store, logger)

	evaluator := trigger.NewEvaluator(rm.Letters(db), rm.Users(db), mailer, c.NotifierTimeout, logger)

	return &App{
		config:        c,
		logger:        logger,
		db:            db,
		httpServer:    httpapi.NewServer(c, logger, us, ls),
		triggerJob:    scheduler.New("trigger", c.TriggerPollInterval, triggerJob(evaluator), logger),
		cleanupJob:    scheduler.New("cleanup", c.CleanupInterval, cleanupJob(us), logger),
		userService:   us,
		letterService: ls,
	}, nil
}

// newSender picks SMTP delivery when a host is configured and log-only
// delivery otherwise. Either way sends go through the circuit breaker.
func newSender(c *config.Config, logger logging.Logger) notify.Sender {
	var sender notify.Sender
	if c.SMTPHost == "" {
		logger.Warn(context.Background(), "SMTP host not configured, emails will only be logged")
		sender = notify.NewLogSender(logger)
	} else {
		sender = notify.NewSMTPSender(c)
	}
	return notify.NewBreakerSender(sender, notify.DefaultBreakerConfig(), logger)
}

func triggerJob(e *trigger.Evaluator) scheduler.Job {
	return func(ctx context.Context, now time.Time) error {
		_, err := e.Evaluate(ctx, now)
		return err
	}
}

func cleanupJob(us *services.UserService) scheduler.Job {
	return func(ctx context.Context, now time.Time) error {
		_, err := us.CleanupUnverified(ctx, now)
		return err
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		cancelFunc()
	}
}

// Run blocks until a shutdown signal arrives or the HTTP server fails, then
// waits for the background jobs to stop and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.triggerJob.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		app.cleanupJob.Run(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
