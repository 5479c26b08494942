// Package httpapi exposes the deadbox REST API over chi.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mukimuddin/deadbox/internal/logging"
	"github.com/mukimuddin/deadbox/internal/server/config"
	"github.com/mukimuddin/deadbox/internal/server/models"
	"github.com/mukimuddin/deadbox/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*services.TokenPair, *models.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	Me(ctx context.Context, userID string) (*models.User, error)
	CheckIn(ctx context.Context, userID string) (time.Time, error)
}

type LetterService interface {
	Create(ctx context.Context, userID string, in services.LetterInput) (*models.Letter, error)
	List(ctx context.Context, userID string) ([]*models.Letter, error)
	Get(ctx context.Context, userID, letterID string) (*models.Letter, error)
	Update(ctx context.Context, userID, letterID string, in services.LetterInput) (*models.Letter, error)
	Delete(ctx context.Context, userID, letterID string) error
	Finalize(ctx context.Context, userID, letterID string) (*models.Letter, error)
	AttachmentUploadURL(ctx context.Context, userID, letterID, contentType string) (string, string, error)
	Unlock(ctx context.Context, letterID, familyKey string) (*services.UnlockedLetter, error)
}

type Server struct {
	address       string
	users         UserService
	letters       LetterService
	logger        logging.Logger
	jwtSecret     []byte
	corsOrigins   []string
	authRateLimit int
	// unlockRateLimit caps family-key guesses per client and letter.
	unlockRateLimit int
	validate        *validator.Validate
}

func NewServer(cfg *config.Config, l logging.Logger, us UserService, ls LetterService) *Server {
	return &Server{
		address:         cfg.HTTPAddr,
		users:           us,
		letters:         ls,
		logger:          l.With("module", "http_server"),
		jwtSecret:       []byte(cfg.SecretKey),
		corsOrigins:     cfg.CORSOrigins,
		authRateLimit:   cfg.AuthRateLimitPerMinute,
		unlockRateLimit: cfg.UnlockRateLimitPerMinute,
		validate:        newValidator(),
	}
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
