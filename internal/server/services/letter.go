package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mukimuddin/deadbox/internal/common"
	"github.com/mukimuddin/deadbox/internal/cryptox"
	"github.com/mukimuddin/deadbox/internal/logging"
	"github.com/mukimuddin/deadbox/internal/server/models"
	"github.com/mukimuddin/deadbox/internal/server/repositories/repomanager"
	"github.com/mukimuddin/deadbox/internal/server/storage"
)

// ObjectStore issues presigned URLs for attachments and removes them.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// LetterInput is the owner-editable part of a letter.
type LetterInput struct {
	Title          string
	Message        string
	VideoLink      *string
	TriggerType    models.TriggerType
	ScheduledAt    *time.Time
	InactivityDays *int
	// Finalize creates the letter directly in pending state.
	Finalize bool
}

// UnlockedLetter is what the family contact sees after unlocking.
type UnlockedLetter struct {
	Letter        *models.Letter
	OwnerName     string
	AttachmentURL string
}

type LetterService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     ObjectStore
	logger      logging.Logger
	now         func() time.Time
}

func NewLetterService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore, logger logging.Logger) *LetterService {
	return &LetterService{
		db:          db,
		repomanager: m,
		storage:     store,
		logger:      logger.With("module", "letters"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
}

// validateInput checks content and that exactly the field required by the
// trigger type is set. A date must lie strictly after now.
func validateInput(in *LetterInput, now time.Time) error {
	if strings.TrimSpace(in.Title) == "" {
		return validationError("title is required")
	}
	if strings.TrimSpace(in.Message) == "" {
		return validationError("message is required")
	}

	switch in.TriggerType {
	case models.TriggerDate:
		if in.ScheduledAt == nil {
			return validationError("scheduled date is required for date trigger")
		}
		if !in.ScheduledAt.After(now) {
			return validationError("scheduled date must be in the future")
		}
		in.InactivityDays = nil
	case models.TriggerInactivity:
		if in.InactivityDays == nil || *in.InactivityDays < 1 {
			return validationError("inactivity days must be at least 1")
		}
		in.ScheduledAt = nil
	default:
		return validationError("trigger type must be date or inactivity")
	}
	return nil
}

func sameCondition(l *models.Letter, in *LetterInput) bool {
	if l.TriggerType != in.TriggerType {
		return false
	}
	switch l.TriggerType {
	case models.TriggerDate:
		return l.ScheduledAt != nil && in.ScheduledAt != nil && l.ScheduledAt.Equal(*in.ScheduledAt)
	case models.TriggerInactivity:
		return l.InactivityDays != nil && in.InactivityDays != nil && *l.InactivityDays == *in.InactivityDays
	}
	return false
}

func (s *LetterService) Create(ctx context.Context, userID string, in LetterInput) (*models.Letter, error) {
	if err := validateInput(&in, s.now()); err != nil {
		return nil, err
	}

	status := models.StatusDraft
	if in.Finalize {
		status = models.StatusPending
	}

	letter, err := s.repomanager.Letters(s.db).Create(ctx, &models.Letter{
		UserID:         userID,
		Title:          strings.TrimSpace(in.Title),
		Message:        in.Message,
		VideoLink:      in.VideoLink,
		TriggerType:    in.TriggerType,
		ScheduledAt:    in.ScheduledAt,
		InactivityDays: in.InactivityDays,
		Status:         status,
	})
	if err != nil {
		s.logger.Error(ctx, "create letter failed", "user_id", userID, "error", err)
		return nil, common.ErrorInternal
	}
	return letter, nil
}

func (s *LetterService) List(ctx context.Context, userID string) ([]*models.Letter, error) {
	letters, err := s.repomanager.Letters(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return letters, nil
}

func (s *LetterService) Get(ctx context.Context, userID, letterID string) (*models.Letter, error) {
	letter, err := s.repomanager.Letters(s.db).GetByIDForUser(ctx, letterID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return letter, nil
}

// Update edits an unsent letter. The release condition may only change
// while the letter is a draft.
func (s *LetterService) Update(ctx context.Context, userID, letterID string, in LetterInput) (*models.Letter, error) {
	letter, err := s.Get(ctx, userID, letterID)
	if err != nil {
		return nil, err
	}
	if !letter.Editable() {
		return nil, common.ErrLetterLocked
	}

	read := letter.Status
	if read == models.StatusPending {
		if !sameCondition(letter, &in) {
			return nil, validationError("release condition cannot change once the letter is finalized")
		}
		if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Message) == "" {
			return nil, validationError("title and message are required")
		}
	} else if err := validateInput(&in, s.now()); err != nil {
		return nil, err
	}

	letter.Title = strings.TrimSpace(in.Title)
	letter.Message = in.Message
	letter.VideoLink = in.VideoLink
	letter.TriggerType = in.TriggerType
	letter.ScheduledAt = in.ScheduledAt
	letter.InactivityDays = in.InactivityDays

	if err := s.repomanager.Letters(s.db).Update(ctx, letter, read); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, s.updateConflict(ctx, userID, letterID, read)
		}
		return nil, common.ErrorInternal
	}
	return s.Get(ctx, userID, letterID)
}

// updateConflict explains why an update matched no row: the letter was
// deleted, finalized, or released after it was read.
func (s *LetterService) updateConflict(ctx context.Context, userID, letterID string, read models.LetterStatus) error {
	current, err := s.Get(ctx, userID, letterID)
	if err != nil {
		return err
	}
	if read == models.StatusDraft && current.Status == models.StatusPending {
		s.logger.Info(ctx, "letter finalized during update", "letter_id", letterID)
		return validationError("release condition cannot change once the letter is finalized")
	}
	return common.ErrLetterLocked
}

func (s *LetterService) Delete(ctx context.Context, userID, letterID string) error {
	letter, err := s.Get(ctx, userID, letterID)
	if err != nil {
		return err
	}
	if !letter.Editable() {
		return common.ErrLetterLocked
	}

	if err := s.repomanager.Letters(s.db).Delete(ctx, letterID, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrLetterLocked
		}
		return common.ErrorInternal
	}

	if letter.AttachmentKey != nil {
		s.deleteObject(ctx, *letter.AttachmentKey)
	}
	return nil
}

// Finalize moves a draft to pending, making its release condition binding.
// Finalizing a pending letter is a no-op.
func (s *LetterService) Finalize(ctx context.Context, userID, letterID string) (*models.Letter, error) {
	letter, err := s.Get(ctx, userID, letterID)
	if err != nil {
		return nil, err
	}
	switch letter.Status {
	case models.StatusPending:
		return letter, nil
	case models.StatusSent:
		return nil, common.ErrLetterLocked
	}

	if letter.TriggerType == models.TriggerDate && (letter.ScheduledAt == nil || !letter.ScheduledAt.After(s.now())) {
		return nil, validationError("scheduled date must be in the future")
	}

	ok, err := s.repomanager.Letters(s.db).Finalize(ctx, letterID, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrLetterLocked
	}
	return s.Get(ctx, userID, letterID)
}

// AttachmentUploadURL records a new object key on the letter and returns a
// presigned PUT URL the client uploads to. A previous attachment is removed.
func (s *LetterService) AttachmentUploadURL(ctx context.Context, userID, letterID, contentType string) (string, string, error) {
	letter, err := s.Get(ctx, userID, letterID)
	if err != nil {
		return "", "", err
	}
	if !letter.Editable() {
		return "", "", common.ErrLetterLocked
	}

	key := storage.NewObjectKey(userID, letterID)
	url, err := s.storage.PresignPut(ctx, key, contentType)
	if err != nil {
		s.logger.Error(ctx, "presign upload failed", "letter_id", letterID, "error", err)
		return "", "", common.ErrorInternal
	}

	if err := s.repomanager.Letters(s.db).SetAttachment(ctx, letterID, userID, key, contentType); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", "", common.ErrLetterLocked
		}
		return "", "", common.ErrorInternal
	}

	if letter.AttachmentKey != nil {
		s.deleteObject(ctx, *letter.AttachmentKey)
	}
	return key, url, nil
}

// Unlock opens a released letter for the family contact holding the owner's
// family key.
func (s *LetterService) Unlock(ctx context.Context, letterID, familyKey string) (*UnlockedLetter, error) {
	letters := s.repomanager.Letters(s.db)

	letter, err := letters.GetByID(ctx, letterID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	if letter.Status != models.StatusSent {
		return nil, common.ErrLetterNotSent
	}

	owner, err := s.repomanager.Users(s.db).GetByID(ctx, letter.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	if !cryptox.VerifySecret(familyKey, owner.FamilyKeyHash) {
		s.logger.Warn(ctx, "family key mismatch", "letter_id", letterID)
		return nil, common.ErrInvalidFamilyKey
	}

	if !letter.IsUnlocked {
		now := s.now()
		if err := letters.MarkUnlocked(ctx, letterID, now); err != nil {
			return nil, common.ErrorInternal
		}
		letter.IsUnlocked = true
		letter.UnlockedAt = &now
	}

	out := &UnlockedLetter{Letter: letter, OwnerName: owner.Name}
	if letter.AttachmentKey != nil {
		url, err := s.storage.PresignGet(ctx, *letter.AttachmentKey)
		if err != nil {
			s.logger.Error(ctx, "presign download failed", "letter_id", letterID, "error", err)
			return nil, common.ErrorInternal
		}
		out.AttachmentURL = url
	}
	return out, nil
}

func (s *LetterService) deleteObject(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn(ctx, "attachment not removed from storage", "key", key, "error", err)
	}
}
