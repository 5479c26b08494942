package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mukimuddin/deadbox/internal/client/client"
	"github.com/mukimuddin/deadbox/internal/client/config"
	"github.com/mukimuddin/deadbox/internal/client/services"
)

type App struct {
	config        *config.Config
	db            *sql.DB
	authService   services.AuthService
	letterService services.LetterService
	email         string
	reader        *bufio.Reader
	out           io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := client.InitDatabase(ctx, c.SessionDB)
	if err != nil {
		return nil, err
	}

	apiClient := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)

	a := &App{
		config:        c,
		db:            db,
		authService:   services.NewAuthService(apiClient, db),
		letterService: services.NewLetterService(apiClient),
		reader:        bufio.NewReader(os.Stdin),
		out:           os.Stdout,
	}

	email, err := a.authService.Restore(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.email = email

	return a, nil
}

// Run executes the positional command when one was given, otherwise it
// starts the REPL. The returned error is only set for one-shot commands.
func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()

	if len(a.config.Args) > 0 {
		return a.RunCommand(ctx, a.config.Args)
	}

	a.checkServer(ctx)
	runREPL(ctx, a, a.status, a.reader)
	return nil
}

// checkServer warns when the API cannot be reached. Commands still run and
// report their own errors.
func (a *App) checkServer(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.authService.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "Warning: %s is not reachable: %v\n", a.config.ServerURL, err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.email != ""
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return a.email
	}
	return "not logged in"
}
