// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/mukimuddin/deadbox/internal/timex"
)

// TriggerType selects which release condition applies to a letter.
type TriggerType string

const (
	TriggerDate       TriggerType = "date"
	TriggerInactivity TriggerType = "inactivity"
)

func (t TriggerType) Valid() bool {
	return t == TriggerDate || t == TriggerInactivity
}

// LetterStatus is the delivery lifecycle: draft -> pending -> sent.
// Sent is terminal.
type LetterStatus string

const (
	StatusDraft   LetterStatus = "draft"
	StatusPending LetterStatus = "pending"
	StatusSent    LetterStatus = "sent"
)

// Letter is a message addressed to the owner's family contact, released
// when its trigger condition is met.
type Letter struct {
	ID     string
	UserID string

	Title          string
	Message        string
	VideoLink      *string
	AttachmentKey  *string
	AttachmentType *string

	TriggerType    TriggerType
	ScheduledAt    *time.Time
	InactivityDays *int

	// SentAt is set exactly when Status becomes StatusSent.
	Status LetterStatus
	SentAt *time.Time

	// Family-facing unlock state, independent of Status.
	IsUnlocked bool
	UnlockedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Editable reports whether the owner may still change the letter.
func (l *Letter) Editable() bool {
	return l.Status != StatusSent
}

// DueByDate reports whether a date-triggered letter has reached its
// scheduled time. The boundary is inclusive.
func (l *Letter) DueByDate(now time.Time) bool {
	return l.TriggerType == TriggerDate && l.ScheduledAt != nil && !now.Before(*l.ScheduledAt)
}

// DueByInactivity reports whether whole days elapsed since lastActivity
// reach the letter's threshold.
func (l *Letter) DueByInactivity(lastActivity, now time.Time) bool {
	if l.TriggerType != TriggerInactivity || l.InactivityDays == nil {
		return false
	}
	return timex.WholeDaysBetween(lastActivity, now) >= *l.InactivityDays
}
