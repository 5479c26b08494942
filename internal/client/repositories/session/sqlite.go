package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mukimuddin/deadbox/internal/client/models"
	"github.com/mukimuddin/deadbox/internal/dbx"
)

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Load(ctx context.Context) (*models.Session, error) {
	var (
		s       models.Session
		updated int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT email, access_token, refresh_token, updated_at
		FROM session WHERE id = 1
	`).Scan(&s.Email, &s.Tokens.AccessToken, &s.Tokens.RefreshToken, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	s.UpdatedAt = time.UnixMilli(updated)
	return &s, nil
}

// Save replaces the stored session.
func (r *SQLiteRepository) Save(ctx context.Context, s models.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (id, email, access_token, refresh_token, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			updated_at = excluded.updated_at
	`, s.Email, s.Tokens.AccessToken, s.Tokens.RefreshToken, r.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// UpdateTokens stores a rotated token pair. It is a no-op when no session
// exists, so a refresh racing a logout cannot resurrect the session.
func (r *SQLiteRepository) UpdateTokens(ctx context.Context, t models.Tokens) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE session SET access_token = ?, refresh_token = ?, updated_at = ?
		WHERE id = 1
	`, t.AccessToken, t.RefreshToken, r.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("update session tokens: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
