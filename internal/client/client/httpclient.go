package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/mukimuddin/deadbox/internal/client/models"
	"github.com/mukimuddin/deadbox/internal/common"
)

const codeTokenExpired = "token_expired"

type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu        sync.Mutex
	tokens    models.Tokens
	onRefresh func(models.Tokens)
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) SetTokens(t models.Tokens) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = t
}

func (c *HTTPClient) Tokens() models.Tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

func (c *HTTPClient) OnTokensRefreshed(fn func(models.Tokens)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRefresh = fn
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, false)
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/api/auth/register", req, nil, false)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (models.Tokens, error) {
	var out models.Tokens
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out, false); err != nil {
		return models.Tokens{}, err
	}
	c.SetTokens(out)
	return out, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CheckIn(ctx context.Context) (time.Time, error) {
	var out struct {
		LastActivityAt time.Time `json:"lastActivityAt"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/users/me/checkin", nil, &out, true); err != nil {
		return time.Time{}, err
	}
	return out.LastActivityAt, nil
}

func (c *HTTPClient) ListLetters(ctx context.Context) ([]models.Letter, error) {
	out := []models.Letter{}
	if err := c.do(ctx, http.MethodGet, "/api/letters", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) AttachmentUploadURL(ctx context.Context, letterID, contentType string) (string, string, error) {
	var out struct {
		Key       string `json:"key"`
		UploadURL string `json:"uploadUrl"`
	}
	body := map[string]string{"contentType": contentType}
	if err := c.do(ctx, http.MethodPost, "/api/letters/"+letterID+"/attachment", body, &out, true); err != nil {
		return "", "", err
	}
	return out.Key, out.UploadURL, nil
}

// Upload PUTs data to a presigned object-storage URL.
func (c *HTTPClient) Upload(ctx context.Context, url, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}

// do sends one API request. For authenticated calls an expired access token
// is refreshed once and the request retried.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	err := c.send(ctx, method, path, body, out, authed)
	if !authed || !isExpired(err) {
		return err
	}
	if rerr := c.refresh(ctx); rerr != nil {
		return rerr
	}
	return c.send(ctx, method, path, body, out, authed)
}

func isExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized && apiErr.Code == codeTokenExpired
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	current := c.Tokens()
	if current.RefreshToken == "" {
		return ErrNotLoggedIn
	}

	var out models.Tokens
	body := map[string]string{"refreshToken": current.RefreshToken}
	if err := c.send(ctx, http.MethodPost, "/api/auth/refresh", body, &out, false); err != nil {
		return err
	}

	c.mu.Lock()
	c.tokens = out
	fn := c.onRefresh
	c.mu.Unlock()
	if fn != nil {
		fn(out)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body, out any, authed bool) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		access := c.Tokens().AccessToken
		if access == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e) == nil {
			apiErr.Code, apiErr.Message = e.Code, e.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
