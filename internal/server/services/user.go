// Package services contains the deadbox business logic that sits between the
// HTTP handlers and the repositories. This file implements UserService:
// registration and email verification, login with JWT access tokens plus
// server-stored refresh tokens, password reset, activity tracking and the
// cleanup of stale unverified accounts.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mukimuddin/deadbox/internal/common"
	"github.com/mukimuddin/deadbox/internal/cryptox"
	"github.com/mukimuddin/deadbox/internal/dbx"
	"github.com/mukimuddin/deadbox/internal/logging"
	"github.com/mukimuddin/deadbox/internal/server/auth"
	"github.com/mukimuddin/deadbox/internal/server/config"
	"github.com/mukimuddin/deadbox/internal/server/metrics"
	"github.com/mukimuddin/deadbox/internal/server/models"
	"github.com/mukimuddin/deadbox/internal/server/repositories/repomanager"
)

const (
	verificationTokenValidity = 24 * time.Hour
	resetTokenValidity        = time.Hour
	tokenBytes                = 32
)

// AccountMailer sends the account emails a user asks for.
type AccountMailer interface {
	SendVerification(ctx context.Context, user *models.User, token string) error
	SendPasswordReset(ctx context.Context, user *models.User, token string) error
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	FamilyKey   string
	FamilyEmail string
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	mailer      AccountMailer
	logger      logging.Logger

	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	unverifiedMaxAge             time.Duration

	hashParams cryptox.Params
	now        func() time.Time
	// dummyHash keeps unknown-email logins as slow as wrong-password ones.
	dummyHash func() string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, mailer AccountMailer, cfg *config.Config, logger logging.Logger) *UserService {
	s := &UserService{
		db:                           db,
		repomanager:                  m,
		mailer:                       mailer,
		logger:                       logger.With("module", "users"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		unverifiedMaxAge:             cfg.UnverifiedAccountMaxAge,
		hashParams:                   cryptox.DefaultParams,
		now:                          func() time.Time { return time.Now().UTC() },
	}
	s.dummyHash = sync.OnceValue(func() string {
		return cryptox.HashSecret("deadbox-dummy-password", s.hashParams)
	})
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unverified account and emails the verification link.
// The account is not kept if the email cannot be sent.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	token, err := common.MakeRandHexString(tokenBytes)
	if err != nil {
		return nil, common.ErrorInternal
	}
	expires := s.now().Add(verificationTokenValidity)

	user := &models.User{
		Name:                     strings.TrimSpace(in.Name),
		Email:                    normalizeEmail(in.Email),
		PasswordHash:             cryptox.HashSecret(in.Password, s.hashParams),
		FamilyKeyHash:            cryptox.HashSecret(in.FamilyKey, s.hashParams),
		FamilyEmail:              normalizeEmail(in.FamilyEmail),
		EmailVerificationToken:   &token,
		EmailVerificationExpires: &expires,
	}

	var created *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		if err := s.mailer.SendVerification(ctx, u, token); err != nil {
			return fmt.Errorf("send verification email: %w", err)
		}
		created = u
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		s.logger.Error(ctx, "registration failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "user_id", created.ID)
	return created, nil
}

func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return common.ErrorInternal
	}
	if user.EmailVerificationExpires == nil || !user.EmailVerificationExpires.After(s.now()) {
		return common.ErrTokenExpired
	}
	if err := repo.MarkEmailVerified(ctx, user.ID); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// ResendVerification issues a fresh token. Unknown addresses succeed silently.
func (s *UserService) ResendVerification(ctx context.Context, email string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return common.ErrorInternal
	}
	if user.IsEmailVerified {
		return common.ErrEmailAlreadyVerified
	}

	token, err := common.MakeRandHexString(tokenBytes)
	if err != nil {
		return common.ErrorInternal
	}
	if err := repo.SetVerificationToken(ctx, user.ID, token, s.now().Add(verificationTokenValidity)); err != nil {
		return common.ErrorInternal
	}
	if err := s.mailer.SendVerification(ctx, user, token); err != nil {
		s.logger.Error(ctx, "verification email failed", "user_id", user.ID, "error", err)
		return common.ErrorInternal
	}
	return nil
}

// Login checks credentials, records activity and returns a new token pair.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, *models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.VerifySecret(password, s.dummyHash())
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, common.ErrorInternal
	}
	if !cryptox.VerifySecret(password, user.PasswordHash) {
		return nil, nil, common.ErrorUnauthorized
	}
	if !user.IsEmailVerified {
		return nil, nil, common.ErrEmailNotVerified
	}

	now := s.now()
	if err := repo.TouchActivity(ctx, user.ID, now); err != nil {
		return nil, nil, common.ErrorInternal
	}
	user.LastActivityAt = now

	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Refreshing counts as activity.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}
	now := s.now()
	if token.Expired(now) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		if err := s.repomanager.Users(tx).TouchActivity(ctx, token.UserID, now); err != nil {
			return fmt.Errorf("error touching activity: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		s.logger.Error(ctx, "refresh failed", "user_id", token.UserID, "error", err)
		return nil, common.ErrorInternal
	}
	return pair, nil
}

// ForgotPassword emails a one-hour reset link. Unknown addresses succeed
// silently so the endpoint cannot be used to probe for accounts.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return common.ErrorInternal
	}

	token, err := common.MakeRandHexString(tokenBytes)
	if err != nil {
		return common.ErrorInternal
	}
	if err := repo.SetResetToken(ctx, user.ID, token, s.now().Add(resetTokenValidity)); err != nil {
		return common.ErrorInternal
	}
	if err := s.mailer.SendPasswordReset(ctx, user, token); err != nil {
		s.logger.Error(ctx, "password reset email failed", "user_id", user.ID, "error", err)
		return common.ErrorInternal
	}
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return common.ErrorInternal
	}
	if user.ResetPasswordExpires == nil || !user.ResetPasswordExpires.After(s.now()) {
		return common.ErrTokenExpired
	}
	if err := repo.UpdatePassword(ctx, user.ID, cryptox.HashSecret(password, s.hashParams)); err != nil {
		return common.ErrorInternal
	}
	return nil
}

func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// CheckIn records that the user is alive, pushing back inactivity triggers.
func (s *UserService) CheckIn(ctx context.Context, userID string) (time.Time, error) {
	now := s.now()
	if err := s.repomanager.Users(s.db).TouchActivity(ctx, userID, now); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return time.Time{}, common.ErrorNotFound
		}
		return time.Time{}, common.ErrorInternal
	}
	return now, nil
}

// CleanupUnverified deletes accounts still unverified after the configured
// max age (their letters go with them) and purges expired refresh tokens.
func (s *UserService) CleanupUnverified(ctx context.Context, now time.Time) (int64, error) {
	users, err := s.repomanager.Users(s.db).DeleteUnverifiedBefore(ctx, now.Add(-s.unverifiedMaxAge))
	if err != nil {
		return 0, fmt.Errorf("delete unverified users: %w", err)
	}
	metrics.RecordCleanup("users", users)

	tokens, err := s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, now)
	if err != nil {
		return users, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	metrics.RecordCleanup("refresh_tokens", tokens)

	s.logger.Info(ctx, "cleanup finished", "unverified_users", users, "refresh_tokens", tokens)
	return users, nil
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, db dbx.DBTX) (*TokenPair, error) {
	now := s.now()
	access, err := auth.GenerateToken(userID, s.jwtSecret, now, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(tokenBytes)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(db).Create(ctx, userID, refresh, now.Add(s.refreshTokenValidityDuration)); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
