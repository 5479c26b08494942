// Package refreshtokens declares the storage contract for issued refresh tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/mukimuddin/deadbox/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID string, token string, expiresAt time.Time) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
