package users

import (
	"context"
	"time"

	"github.com/mukimuddin/deadbox/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*models.User, error)
	GetByResetToken(ctx context.Context, token string) (*models.User, error)

	SetVerificationToken(ctx context.Context, id, token string, expires time.Time) error
	MarkEmailVerified(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// TouchActivity moves last_activity_at forward to at; it never moves it back.
	TouchActivity(ctx context.Context, id string, at time.Time) error
	DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
