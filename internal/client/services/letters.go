package services

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mukimuddin/deadbox/internal/client/client"
	"github.com/mukimuddin/deadbox/internal/client/models"
)

// maxAttachmentSize caps files read for upload.
const maxAttachmentSize = 50 << 20

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

// LetterService covers the owner's account and letter operations that the
// CLI exposes.
type LetterService interface {
	CheckIn(ctx context.Context) (time.Time, error)
	Me(ctx context.Context) (*models.User, error)
	List(ctx context.Context) ([]models.Letter, error)
	Attach(ctx context.Context, letterID, path string) (string, error)
}

type letterService struct {
	client client.Client
}

func NewLetterService(c client.Client) LetterService {
	return &letterService{client: c}
}

func (s *letterService) CheckIn(ctx context.Context) (time.Time, error) {
	return s.client.CheckIn(ctx)
}

func (s *letterService) Me(ctx context.Context) (*models.User, error) {
	return s.client.Me(ctx)
}

func (s *letterService) List(ctx context.Context) ([]models.Letter, error) {
	return s.client.ListLetters(ctx)
}

// Attach uploads the file at path as the letter's attachment and returns
// its content type.
func (s *letterService) Attach(ctx context.Context, letterID, path string) (string, error) {
	data, err := readFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("file %s is empty", path)
	}
	if len(data) > maxAttachmentSize {
		return "", fmt.Errorf("file %s exceeds %d MB", path, maxAttachmentSize>>20)
	}

	contentType := detectContentType(path, data)

	_, url, err := s.client.AttachmentUploadURL(ctx, letterID, contentType)
	if err != nil {
		return "", fmt.Errorf("get upload url: %w", err)
	}
	if err := s.client.Upload(ctx, url, contentType, data); err != nil {
		return "", err
	}
	return contentType, nil
}

func detectContentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
