package httpapi

import (
	"time"

	"github.com/mukimuddin/deadbox/internal/server/models"
	"github.com/mukimuddin/deadbox/internal/server/services"
)

type registerRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=6,max=128"`
	FamilyKey   string `json:"familyKey" validate:"required,min=6,max=128"`
	FamilyEmail string `json:"familyEmail" validate:"required,email,max=254"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required,max=1024"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type letterRequest struct {
	Title          string     `json:"title" validate:"required,max=100"`
	Message        string     `json:"message" validate:"required,max=10000"`
	VideoLink      *string    `json:"videoLink" validate:"omitempty,url,max=2048"`
	TriggerType    string     `json:"triggerType" validate:"required,oneof=date inactivity"`
	ScheduledDate  *time.Time `json:"scheduledDate" validate:"required_if=TriggerType date"`
	InactivityDays *int       `json:"inactivityDays" validate:"required_if=TriggerType inactivity,omitempty,min=1,max=365"`
	Finalize       bool       `json:"finalize"`
}

func (r *letterRequest) input() services.LetterInput {
	in := services.LetterInput{
		Title:          r.Title,
		Message:        r.Message,
		VideoLink:      r.VideoLink,
		TriggerType:    models.TriggerType(r.TriggerType),
		ScheduledAt:    r.ScheduledDate,
		InactivityDays: r.InactivityDays,
		Finalize:       r.Finalize,
	}
	if in.VideoLink != nil && *in.VideoLink == "" {
		in.VideoLink = nil
	}
	if in.ScheduledAt != nil {
		t := in.ScheduledAt.UTC()
		in.ScheduledAt = &t
	}
	return in
}

type attachmentRequest struct {
	ContentType string `json:"contentType" validate:"required,max=255"`
}

type unlockRequest struct {
	FamilyKey string `json:"familyKey" validate:"required,max=128"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	FamilyEmail     string    `json:"familyEmail"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	LastActivityAt  time.Time `json:"lastActivityAt"`
	CreatedAt       time.Time `json:"createdAt"`
}

func newUserResponse(u *models.User) *userResponse {
	return &userResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		FamilyEmail:     u.FamilyEmail,
		IsEmailVerified: u.IsEmailVerified,
		LastActivityAt:  u.LastActivityAt,
		CreatedAt:       u.CreatedAt,
	}
}

type tokenResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	User         *userResponse `json:"user,omitempty"`
}

type checkInResponse struct {
	LastActivityAt time.Time `json:"lastActivityAt"`
}

type letterResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	VideoLink      *string    `json:"videoLink,omitempty"`
	HasAttachment  bool       `json:"hasAttachment"`
	AttachmentType *string    `json:"attachmentType,omitempty"`
	TriggerType    string     `json:"triggerType"`
	ScheduledDate  *time.Time `json:"scheduledDate,omitempty"`
	InactivityDays *int       `json:"inactivityDays,omitempty"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
	IsUnlocked     bool       `json:"isUnlocked"`
	UnlockedAt     *time.Time `json:"unlockedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func newLetterResponse(l *models.Letter) letterResponse {
	return letterResponse{
		ID:             l.ID,
		Title:          l.Title,
		Message:        l.Message,
		VideoLink:      l.VideoLink,
		HasAttachment:  l.AttachmentKey != nil,
		AttachmentType: l.AttachmentType,
		TriggerType:    string(l.TriggerType),
		ScheduledDate:  l.ScheduledAt,
		InactivityDays: l.InactivityDays,
		Status:         string(l.Status),
		SentAt:         l.SentAt,
		IsUnlocked:     l.IsUnlocked,
		UnlockedAt:     l.UnlockedAt,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

type attachmentResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
}

type unlockResponse struct {
	Letter        letterResponse `json:"letter"`
	OwnerName     string         `json:"ownerName"`
	AttachmentURL string         `json:"attachmentUrl,omitempty"`
}
