// Package users provides the PostgreSQL-backed account repository.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mukimuddin/deadbox/internal/common"
	"github.com/mukimuddin/deadbox/internal/dbx"
	"github.com/mukimuddin/deadbox/internal/server/models"
)

const uniqueViolation = "23505"

const userColumns = `id, name, email, password_hash, family_key_hash, family_email,
		last_activity_at, is_email_verified, email_verification_token, email_verification_expires,
		reset_password_token, reset_password_expires, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (name, email, password_hash, family_key_hash, family_email,
		 email_verification_token, email_verification_expires)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, last_activity_at, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.FamilyKeyHash, user.FamilyEmail,
		user.EmailVerificationToken, user.EmailVerificationExpires,
	).Scan(&user.ID, &user.LastActivityAt, &user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresRepository) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email_verification_token = $1`, token)
}

func (r *PostgresRepository) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE reset_password_token = $1`, token)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	u := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.FamilyKeyHash, &u.FamilyEmail,
		&u.LastActivityAt, &u.IsEmailVerified, &u.EmailVerificationToken, &u.EmailVerificationExpires,
		&u.ResetPasswordToken, &u.ResetPasswordExpires, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) SetVerificationToken(ctx context.Context, id, token string, expires time.Time) error {
	query :=
		`UPDATE users SET email_verification_token = $2, email_verification_expires = $3
		 WHERE id = $1`
	return r.execOne(ctx, query, id, token, expires)
}

func (r *PostgresRepository) MarkEmailVerified(ctx context.Context, id string) error {
	query :=
		`UPDATE users SET is_email_verified = true,
		 email_verification_token = NULL, email_verification_expires = NULL
		 WHERE id = $1`
	return r.execOne(ctx, query, id)
}

func (r *PostgresRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	query :=
		`UPDATE users SET reset_password_token = $2, reset_password_expires = $3
		 WHERE id = $1`
	return r.execOne(ctx, query, id, token, expires)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query :=
		`UPDATE users SET password_hash = $2,
		 reset_password_token = NULL, reset_password_expires = NULL
		 WHERE id = $1`
	return r.execOne(ctx, query, id, passwordHash)
}

func (r *PostgresRepository) TouchActivity(ctx context.Context, id string, at time.Time) error {
	query :=
		`UPDATE users SET last_activity_at = GREATEST(last_activity_at, $2)
		 WHERE id = $1`
	return r.execOne(ctx, query, id, at)
}

func (r *PostgresRepository) DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query :=
		`DELETE FROM users
		 WHERE is_email_verified = false AND created_at < $1`

	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return dbx.RowsAffected(res)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := dbx.RowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
