// Package services contains application services for the deadbox CLI.
// This file defines the session service: register, login, logout and
// restoring a saved session from the local database.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mukimuddin/deadbox/internal/client/client"
	"github.com/mukimuddin/deadbox/internal/client/models"
	"github.com/mukimuddin/deadbox/internal/client/repositories/session"
)

// AuthService manages the owner's session.
//
// Restore loads a previously saved session into the API client and returns
// the email it belongs to, or "" when none is stored.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) error
	Login(ctx context.Context, email string, password []byte) error
	Logout(ctx context.Context) error
	Restore(ctx context.Context) (string, error)
	Ping(ctx context.Context) error
}

type authService struct {
	client   client.Client
	sessions session.Repository
}

// NewAuthService binds the service to the API client and the session
// database. Tokens rotated by the client are persisted as they change.
func NewAuthService(c client.Client, db *sql.DB) AuthService {
	a := &authService{client: c, sessions: session.NewSQLiteRepository(db)}
	c.OnTokensRefreshed(func(t models.Tokens) {
		_ = a.sessions.UpdateTokens(context.Background(), t)
	})
	return a
}

func (a *authService) Register(ctx context.Context, req models.RegisterRequest) error {
	return a.client.Register(ctx, req)
}

// Login authenticates against the server and saves the session locally.
func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	tokens, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	if err := a.sessions.Save(ctx, models.Session{Email: email, Tokens: tokens}); err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

// Logout forgets the local session. The server-side refresh token simply
// expires.
func (a *authService) Logout(ctx context.Context) error {
	a.client.SetTokens(models.Tokens{})
	return a.sessions.Clear(ctx)
}

func (a *authService) Restore(ctx context.Context) (string, error) {
	s, err := a.sessions.Load(ctx)
	if err != nil {
		return "", err
	}
	if s == nil || s.Tokens.Empty() {
		return "", nil
	}
	a.client.SetTokens(s.Tokens)
	return s.Email, nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
