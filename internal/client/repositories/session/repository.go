// Package session persists the owner's login session in the CLI's local
// SQLite database.
package session

import (
	"context"

	"github.com/mukimuddin/deadbox/internal/client/models"
)

// Repository returns (nil, nil) from Load when nobody is logged in.
type Repository interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s models.Session) error
	UpdateTokens(ctx context.Context, t models.Tokens) error
	Clear(ctx context.Context) error
}
