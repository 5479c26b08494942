// Package trigger decides which pending letters have met their release
// condition and releases each of them exactly once.
//
// A pass reads date candidates (scheduled_at <= now) and inactivity candidates
// (checked against the owner's last activity), notifies the owner's family
// contact and then moves the letter from pending to sent with a
// compare-and-set. A failed notification leaves the letter pending for the
// next pass. A crash between notify and compare-and-set means the family
// contact may be notified twice; the state transition still happens once.
package trigger

import (
	"context"
	"time"

	"github.com/mukimuddin/deadbox/internal/server/models"
)

// LetterStore is the subset of letter storage the evaluator needs.
type LetterStore interface {
	FindDateTriggerCandidates(ctx context.Context, now time.Time) ([]*models.Letter, error)
	FindInactivityTriggerCandidates(ctx context.Context) ([]*models.Letter, error)
	// CompareAndSetSent reports true only if this call moved the letter
	// from pending to sent.
	CompareAndSetSent(ctx context.Context, letterID string, sentAt time.Time) (bool, error)
}

// UserStore returns common.ErrorNotFound for unknown ids.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type Notifier interface {
	SendReleaseNotification(ctx context.Context, to string, owner *models.User, letter *models.Letter) error
}

// Result counts what a pass did. Evaluated includes inactivity candidates
// that turned out not to be due yet.
type Result struct {
	Evaluated int
	Sent      int
	Skipped   int
	Failed    int
}

func (r *Result) add(o outcome) {
	switch o {
	case outcomeSent:
		r.Sent++
	case outcomeSkipped:
		r.Skipped++
	case outcomeFailed:
		r.Failed++
	}
}

type outcome int

const (
	outcomeNotDue outcome = iota
	outcomeSent
	outcomeSkipped
	outcomeFailed
)
