// Package letters declares the storage contract for letters, including the
// queries the trigger evaluator depends on.
package letters

import (
	"context"
	"time"

	"github.com/mukimuddin/deadbox/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, letter *models.Letter) (*models.Letter, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Letter, error)
	GetByID(ctx context.Context, id string) (*models.Letter, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*models.Letter, error)

	// Update only writes when the stored status still equals expected.
	// Delete and SetAttachment only touch letters that are not sent yet.
	Update(ctx context.Context, letter *models.Letter, expected models.LetterStatus) error
	Delete(ctx context.Context, id, userID string) error
	SetAttachment(ctx context.Context, id, userID, key, contentType string) error

	Finalize(ctx context.Context, id, userID string) (bool, error)
	MarkUnlocked(ctx context.Context, id string, at time.Time) error

	FindDateTriggerCandidates(ctx context.Context, now time.Time) ([]*models.Letter, error)
	FindInactivityTriggerCandidates(ctx context.Context) ([]*models.Letter, error)
	CompareAndSetSent(ctx context.Context, letterID string, sentAt time.Time) (bool, error)
}
