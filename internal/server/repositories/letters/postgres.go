// Package letters provides the PostgreSQL-backed letter repository.
package letters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mukimuddin/deadbox/internal/common"
	"github.com/mukimuddin/deadbox/internal/dbx"
	"github.com/mukimuddin/deadbox/internal/server/models"
)

const letterColumns = `id, user_id, title, message, video_link, attachment_key, attachment_type,
		trigger_type, scheduled_at, inactivity_days, status, sent_at, is_unlocked, unlocked_at,
		created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLetter(s rowScanner) (*models.Letter, error) {
	l := &models.Letter{}
	err := s.Scan(
		&l.ID, &l.UserID, &l.Title, &l.Message, &l.VideoLink, &l.AttachmentKey, &l.AttachmentType,
		&l.TriggerType, &l.ScheduledAt, &l.InactivityDays, &l.Status, &l.SentAt, &l.IsUnlocked, &l.UnlockedAt,
		&l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, letter *models.Letter) (*models.Letter, error) {
	query := `
		INSERT INTO letters (user_id, title, message, video_link, trigger_type, scheduled_at, inactivity_days, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		letter.UserID, letter.Title, letter.Message, letter.VideoLink,
		letter.TriggerType, letter.ScheduledAt, letter.InactivityDays, letter.Status,
	).Scan(&letter.ID, &letter.CreatedAt, &letter.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return letter, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Letter, error) {
	query := `SELECT ` + letterColumns + ` FROM letters
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Letter, error) {
	query := `SELECT ` + letterColumns + ` FROM letters WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByIDForUser(ctx context.Context, id, userID string) (*models.Letter, error) {
	query := `SELECT ` + letterColumns + ` FROM letters WHERE id = $1 AND user_id = $2`
	return r.getOne(ctx, query, id, userID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Letter, error) {
	l, err := scanLetter(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Letter, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Letter{}
	for rows.Next() {
		l, err := scanLetter(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Update writes content and release condition if the stored status is still
// expected. It returns common.ErrorNotFound when the letter is missing, owned
// by someone else, or its status moved on since it was read.
func (r *PostgresRepository) Update(ctx context.Context, letter *models.Letter, expected models.LetterStatus) error {
	query := `
		UPDATE letters SET title = $3, message = $4, video_link = $5,
			trigger_type = $6, scheduled_at = $7, inactivity_days = $8, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND status = $9
	`
	return r.execOne(ctx, query,
		letter.ID, letter.UserID, letter.Title, letter.Message, letter.VideoLink,
		letter.TriggerType, letter.ScheduledAt, letter.InactivityDays, string(expected),
	)
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	query := `
		DELETE FROM letters
		WHERE id = $1 AND user_id = $2 AND status <> 'sent'
	`
	return r.execOne(ctx, query, id, userID)
}

func (r *PostgresRepository) SetAttachment(ctx context.Context, id, userID, key, contentType string) error {
	query := `
		UPDATE letters SET attachment_key = $3, attachment_type = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND status <> 'sent'
	`
	return r.execOne(ctx, query, id, userID, key, contentType)
}

// Finalize moves a draft to pending. It reports false when the letter was
// not a draft owned by userID.
func (r *PostgresRepository) Finalize(ctx context.Context, id, userID string) (bool, error) {
	query := `
		UPDATE letters SET status = 'pending', updated_at = now()
		WHERE id = $1 AND user_id = $2 AND status = 'draft'
	`
	return r.execCAS(ctx, query, id, userID)
}

// MarkUnlocked keeps the first unlock time.
func (r *PostgresRepository) MarkUnlocked(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE letters SET is_unlocked = true, unlocked_at = COALESCE(unlocked_at, $2)
		WHERE id = $1 AND status = 'sent'
	`
	return r.execOne(ctx, query, id, at)
}

func (r *PostgresRepository) FindDateTriggerCandidates(ctx context.Context, now time.Time) ([]*models.Letter, error) {
	query := `SELECT ` + letterColumns + ` FROM letters
		WHERE trigger_type = 'date' AND status = 'pending' AND scheduled_at <= $1
		ORDER BY scheduled_at
	`
	return r.list(ctx, query, now)
}

func (r *PostgresRepository) FindInactivityTriggerCandidates(ctx context.Context) ([]*models.Letter, error) {
	query := `SELECT ` + letterColumns + ` FROM letters
		WHERE trigger_type = 'inactivity' AND status = 'pending'
		ORDER BY user_id, created_at
	`
	return r.list(ctx, query)
}

// CompareAndSetSent reports true only for the call that moved the letter
// from pending to sent.
func (r *PostgresRepository) CompareAndSetSent(ctx context.Context, letterID string, sentAt time.Time) (bool, error) {
	query := `
		UPDATE letters SET status = 'sent', sent_at = $2, updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`
	return r.execCAS(ctx, query, letterID, sentAt)
}

func (r *PostgresRepository) execCAS(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := dbx.RowsAffected(res)
	if err != nil {
		return false, err
	}
	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	ok, err := r.execCAS(ctx, query, args...)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrorNotFound
	}
	return nil
}
