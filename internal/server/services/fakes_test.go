package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/mukimuddin/deadbox/internal/common"
	"github.com/mukimuddin/deadbox/internal/cryptox"
	"github.com/mukimuddin/deadbox/internal/dbx"
	"github.com/mukimuddin/deadbox/internal/server/models"
	"github.com/mukimuddin/deadbox/internal/server/repositories/letters"
	"github.com/mukimuddin/deadbox/internal/server/repositories/refreshtokens"
	"github.com/mukimuddin/deadbox/internal/server/repositories/users"
)

var cheapParams = cryptox.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

var errDB = errors.New("db error: connection reset")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// --- users ---

type fakeUsersRepo struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	nextID int

	createErr error
	getErr    error
	touchErr  error
	deleted   int64
	deleteErr error
	cutoff    time.Time
}

func newFakeUsersRepo(users ...*models.User) *fakeUsersRepo {
	r := &fakeUsersRepo{byID: map[string]*models.User{}}
	for _, u := range users {
		r.byID[u.ID] = u
	}
	return r
}

func (r *fakeUsersRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, u := range r.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) update(id string, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(u)
	return nil
}

func (r *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, err := r.find(func(x *models.User) bool { return x.Email == u.Email }); err == nil {
		return nil, common.ErrorAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = "u-" + strconv.Itoa(r.nextID)
	u.CreatedAt = time.Now()
	u.LastActivityAt = u.CreatedAt
	cp := *u
	r.byID[u.ID] = &cp
	return u, nil
}

func (r *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *fakeUsersRepo) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		return u.EmailVerificationToken != nil && *u.EmailVerificationToken == token
	})
}

func (r *fakeUsersRepo) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		return u.ResetPasswordToken != nil && *u.ResetPasswordToken == token
	})
}

func (r *fakeUsersRepo) SetVerificationToken(ctx context.Context, id, token string, expires time.Time) error {
	return r.update(id, func(u *models.User) {
		u.EmailVerificationToken, u.EmailVerificationExpires = &token, &expires
	})
}

func (r *fakeUsersRepo) MarkEmailVerified(ctx context.Context, id string) error {
	return r.update(id, func(u *models.User) {
		u.IsEmailVerified = true
		u.EmailVerificationToken, u.EmailVerificationExpires = nil, nil
	})
}

func (r *fakeUsersRepo) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	return r.update(id, func(u *models.User) {
		u.ResetPasswordToken, u.ResetPasswordExpires = &token, &expires
	})
}

func (r *fakeUsersRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.update(id, func(u *models.User) {
		u.PasswordHash = hash
		u.ResetPasswordToken, u.ResetPasswordExpires = nil, nil
	})
}

func (r *fakeUsersRepo) TouchActivity(ctx context.Context, id string, at time.Time) error {
	if r.touchErr != nil {
		return r.touchErr
	}
	return r.update(id, func(u *models.User) {
		if at.After(u.LastActivityAt) {
			u.LastActivityAt = at
		}
	})
}

func (r *fakeUsersRepo) DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.cutoff = cutoff
	return r.deleted, r.deleteErr
}

func (r *fakeUsersRepo) get(id string) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.byID[id]
}

// --- refresh tokens ---

type fakeRefreshRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken

	createErr  error
	deleteErr  error
	expiredErr error
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (r *fakeRefreshRepo) Create(ctx context.Context, userID, token string, expiresAt time.Time) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, ExpiresAt: expiresAt}
	return nil
}

func (r *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (r *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *fakeRefreshRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if r.expiredErr != nil {
		return 0, r.expiredErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, t := range r.tokens {
		if t.Expired(now) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

// --- letters ---

type fakeLettersRepo struct {
	mu      sync.Mutex
	letters map[string]*models.Letter
	nextID  int

	createErr error
	updateErr error
}

func newFakeLettersRepo(ls ...*models.Letter) *fakeLettersRepo {
	r := &fakeLettersRepo{letters: map[string]*models.Letter{}}
	for _, l := range ls {
		r.letters[l.ID] = l
	}
	return r
}

func (r *fakeLettersRepo) Create(ctx context.Context, l *models.Letter) (*models.Letter, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	l.ID = "l-" + strconv.Itoa(r.nextID)
	cp := *l
	r.letters[l.ID] = &cp
	return l, nil
}

func (r *fakeLettersRepo) ListByUser(ctx context.Context, userID string) ([]*models.Letter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Letter{}
	for _, l := range r.letters {
		if l.UserID == userID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeLettersRepo) GetByID(ctx context.Context, id string) (*models.Letter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.letters[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLettersRepo) GetByIDForUser(ctx context.Context, id, userID string) (*models.Letter, error) {
	l, err := r.GetByID(ctx, id)
	if err != nil || l.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return l, nil
}

func (r *fakeLettersRepo) mutable(id, userID string) (*models.Letter, error) {
	l, ok := r.letters[id]
	if !ok || l.UserID != userID || l.Status == models.StatusSent {
		return nil, common.ErrorNotFound
	}
	return l, nil
}

func (r *fakeLettersRepo) Update(ctx context.Context, in *models.Letter, expected models.LetterStatus) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.letters[in.ID]
	if !ok || l.UserID != in.UserID || l.Status != expected {
		return common.ErrorNotFound
	}
	l.Title, l.Message, l.VideoLink = in.Title, in.Message, in.VideoLink
	l.TriggerType, l.ScheduledAt, l.InactivityDays = in.TriggerType, in.ScheduledAt, in.InactivityDays
	return nil
}

func (r *fakeLettersRepo) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.mutable(id, userID); err != nil {
		return err
	}
	delete(r.letters, id)
	return nil
}

func (r *fakeLettersRepo) SetAttachment(ctx context.Context, id, userID, key, contentType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, err := r.mutable(id, userID)
	if err != nil {
		return err
	}
	l.AttachmentKey, l.AttachmentType = &key, &contentType
	return nil
}

func (r *fakeLettersRepo) Finalize(ctx context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.letters[id]
	if !ok || l.UserID != userID || l.Status != models.StatusDraft {
		return false, nil
	}
	l.Status = models.StatusPending
	return true, nil
}

func (r *fakeLettersRepo) MarkUnlocked(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.letters[id]
	if !ok || l.Status != models.StatusSent {
		return common.ErrorNotFound
	}
	l.IsUnlocked = true
	if l.UnlockedAt == nil {
		l.UnlockedAt = &at
	}
	return nil
}

func (r *fakeLettersRepo) FindDateTriggerCandidates(ctx context.Context, now time.Time) ([]*models.Letter, error) {
	return nil, nil
}

func (r *fakeLettersRepo) FindInactivityTriggerCandidates(ctx context.Context) ([]*models.Letter, error) {
	return nil, nil
}

func (r *fakeLettersRepo) CompareAndSetSent(ctx context.Context, id string, sentAt time.Time) (bool, error) {
	return false, nil
}

func (r *fakeLettersRepo) get(id string) *models.Letter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.letters[id]
}

// --- manager, mailer, storage ---

type fakeRepoManager struct {
	users   *fakeUsersRepo
	refresh *fakeRefreshRepo
	letters *fakeLettersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error       { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository { return m.refresh }
func (m *fakeRepoManager) Letters(db dbx.DBTX) letters.Repository             { return m.letters }

type sentMail struct {
	kind  string
	to    string
	token string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendVerification(ctx context.Context, u *models.User, token string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{kind: "verify", to: u.Email, token: token})
	return nil
}

func (m *fakeMailer) SendPasswordReset(ctx context.Context, u *models.User, token string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{kind: "reset", to: u.Email, token: token})
	return nil
}

type fakeObjectStore struct {
	deleted []string
	put     []string
	putErr  error
	getErr  error
	delErr  error
}

func (s *fakeObjectStore) PresignPut(ctx context.Context, key, contentType string) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	s.put = append(s.put, key)
	return "https://s3.test/" + key + "?put", nil
}

func (s *fakeObjectStore) PresignGet(ctx context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return "https://s3.test/" + key + "?get", nil
}

func (s *fakeObjectStore) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return s.delErr
}

func ptr[T any](v T) *T { return &v }
