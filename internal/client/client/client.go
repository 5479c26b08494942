package client

import (
	"context"
	"time"

	"github.com/mukimuddin/deadbox/internal/client/models"
)

type Client interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, req models.RegisterRequest) error
	Login(ctx context.Context, email, password string) (models.Tokens, error)
	Me(ctx context.Context) (*models.User, error)
	CheckIn(ctx context.Context) (time.Time, error)
	ListLetters(ctx context.Context) ([]models.Letter, error)
	AttachmentUploadURL(ctx context.Context, letterID, contentType string) (string, string, error)
	Upload(ctx context.Context, url, contentType string, data []byte) error

	SetTokens(t models.Tokens)
	Tokens() models.Tokens
	// OnTokensRefreshed registers a callback run after a transparent refresh.
	OnTokensRefreshed(fn func(models.Tokens))
}
