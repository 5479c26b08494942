package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mukimuddin/deadbox/internal/client/client"
	"github.com/mukimuddin/deadbox/internal/client/models"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeClient implements client.Client for service tests.
type fakeClient struct {
	tokens    models.Tokens
	onRefresh func(models.Tokens)

	RegisterErr error
	LastRegister models.RegisterRequest

	LoginRet  models.Tokens
	LoginErr  error
	LastEmail string
	LastPass  string

	PingErr error

	MeRet *models.User
	MeErr error

	CheckInRet time.Time
	CheckInErr error

	LettersRet []models.Letter
	LettersErr error

	URLKey          string
	URLRet          string
	URLErr          error
	LastURLLetterID string
	LastURLType     string

	UploadErr      error
	LastUploadURL  string
	LastUploadType string
	LastUploadData []byte
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Ping(ctx context.Context) error { return f.PingErr }

func (f *fakeClient) Register(ctx context.Context, req models.RegisterRequest) error {
	f.LastRegister = req
	return f.RegisterErr
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (models.Tokens, error) {
	f.LastEmail, f.LastPass = email, password
	if f.LoginErr != nil {
		return models.Tokens{}, f.LoginErr
	}
	f.tokens = f.LoginRet
	return f.LoginRet, nil
}

func (f *fakeClient) Me(ctx context.Context) (*models.User, error) { return f.MeRet, f.MeErr }

func (f *fakeClient) CheckIn(ctx context.Context) (time.Time, error) {
	return f.CheckInRet, f.CheckInErr
}

func (f *fakeClient) ListLetters(ctx context.Context) ([]models.Letter, error) {
	return f.LettersRet, f.LettersErr
}

func (f *fakeClient) AttachmentUploadURL(ctx context.Context, letterID, contentType string) (string, string, error) {
	f.LastURLLetterID, f.LastURLType = letterID, contentType
	return f.URLKey, f.URLRet, f.URLErr
}

func (f *fakeClient) Upload(ctx context.Context, url, contentType string, data []byte) error {
	f.LastUploadURL, f.LastUploadType, f.LastUploadData = url, contentType, data
	return f.UploadErr
}

func (f *fakeClient) SetTokens(t models.Tokens)                 { f.tokens = t }
func (f *fakeClient) Tokens() models.Tokens                     { return f.tokens }
func (f *fakeClient) OnTokensRefreshed(fn func(models.Tokens)) { f.onRefresh = fn }
