package trigger

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mukimuddin/deadbox/internal/common"
	"github.com/mukimuddin/deadbox/internal/logging"
	"github.com/mukimuddin/deadbox/internal/server/metrics"
	"github.com/mukimuddin/deadbox/internal/server/models"
	"github.com/mukimuddin/deadbox/internal/timex"
)

const DefaultNotifyTimeout = 30 * time.Second

type Evaluator struct {
	letters       LetterStore
	users         UserStore
	notifier      Notifier
	notifyTimeout time.Duration
	logger        logging.Logger

	running atomic.Bool
}

func NewEvaluator(letters LetterStore, users UserStore, notifier Notifier, notifyTimeout time.Duration, logger logging.Logger) *Evaluator {
	if notifyTimeout <= 0 {
		notifyTimeout = DefaultNotifyTimeout
	}
	return &Evaluator{
		letters:       letters,
		users:         users,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
		logger:        logger.With("module", "trigger"),
	}
}

// Evaluate runs one pass at now. Only one pass runs at a time; a concurrent
// call returns common.ErrPassInProgress without touching any letter.
//
// A failing candidate query aborts the pass. Failures of single letters are
// counted in the result and never stop the others. When ctx is cancelled the
// letter in flight is finished and no further letter is started.
func (e *Evaluator) Evaluate(ctx context.Context, now time.Time) (Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		metrics.RecordPass(metrics.PassBusy, 0, 0, 0, 0, 0)
		return Result{}, common.ErrPassInProgress
	}
	defer e.running.Store(false)

	start := time.Now()
	res, err := e.evaluate(ctx, now)

	label := metrics.PassOK
	if err != nil {
		label = metrics.PassError
	}
	metrics.RecordPass(label, time.Since(start), res.Evaluated, res.Sent, res.Skipped, res.Failed)

	attrs := []any{
		"now", now,
		"evaluated", res.Evaluated,
		"sent", res.Sent,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"duration", time.Since(start),
	}
	if err != nil {
		e.logger.Error(ctx, "trigger pass aborted", append(attrs, "error", err)...)
		return res, err
	}
	e.logger.Info(ctx, "trigger pass finished", attrs...)
	return res, nil
}

func (e *Evaluator) evaluate(ctx context.Context, now time.Time) (Result, error) {
	var res Result

	dated, err := e.letters.FindDateTriggerCandidates(ctx, now)
	if err != nil {
		return res, fmt.Errorf("find date trigger candidates: %w", err)
	}
	idle, err := e.letters.FindInactivityTriggerCandidates(ctx)
	if err != nil {
		return res, fmt.Errorf("find inactivity trigger candidates: %w", err)
	}

	// Item work must not be interrupted halfway between notify and
	// compare-and-set, so it runs detached from ctx.
	itemCtx := context.WithoutCancel(ctx)
	owners := make(map[string]*models.User)

	for _, letter := range append(dated, idle...) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Evaluated++
		res.add(e.process(itemCtx, letter, owners, now))
	}

	return res, nil
}

func (e *Evaluator) process(ctx context.Context, letter *models.Letter, owners map[string]*models.User, now time.Time) outcome {
	log := e.logger.With("letter_id", letter.ID, "user_id", letter.UserID, "trigger", string(letter.TriggerType))

	if letter.TriggerType == models.TriggerDate && !letter.DueByDate(now) {
		return outcomeNotDue
	}

	owner, err := e.owner(ctx, owners, letter.UserID)
	if err != nil {
		log.Error(ctx, "owner lookup failed", "error", err)
		return outcomeFailed
	}
	if owner == nil {
		log.Warn(ctx, "letter owner not found, skipping")
		return outcomeSkipped
	}

	if letter.TriggerType == models.TriggerInactivity {
		if !letter.DueByInactivity(owner.LastActivityAt, now) {
			return outcomeNotDue
		}
		log = log.With("inactive_days", timex.WholeDaysBetween(owner.LastActivityAt, now))
	}

	if owner.FamilyEmail == "" {
		log.Warn(ctx, "owner has no family contact, skipping")
		return outcomeSkipped
	}

	nctx, cancel := context.WithTimeout(ctx, e.notifyTimeout)
	err = e.notifier.SendReleaseNotification(nctx, owner.FamilyEmail, owner, letter)
	cancel()
	if err != nil {
		log.Warn(ctx, "release notification failed, letter stays pending", "error", err)
		return outcomeFailed
	}

	ok, err := e.letters.CompareAndSetSent(ctx, letter.ID, now)
	if err != nil {
		log.Error(ctx, "letter notified but not marked sent", "error", err)
		return outcomeFailed
	}
	if !ok {
		log.Info(ctx, "letter already released by another pass")
		return outcomeSkipped
	}

	log.Info(ctx, "letter released")
	return outcomeSent
}

// owner resolves and caches owners for the duration of one pass. A nil user
// with a nil error means the owner does not exist.
func (e *Evaluator) owner(ctx context.Context, owners map[string]*models.User, userID string) (*models.User, error) {
	if u, ok := owners[userID]; ok {
		return u, nil
	}
	u, err := e.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			owners[userID] = nil
			return nil, nil
		}
		return nil, err
	}
	owners[userID] = u
	return u, nil
}
