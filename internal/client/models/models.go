// Package models defines the client-side views of deadbox API resources.
package models

import (
	"strconv"
	"time"
)

// Tokens is the access/refresh pair issued on login and refresh.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Empty reports whether no session is held.
func (t Tokens) Empty() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}

// Session is the locally saved login.
type Session struct {
	Email     string
	Tokens    Tokens
	UpdatedAt time.Time
}

type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	FamilyEmail     string    `json:"familyEmail"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	LastActivityAt  time.Time `json:"lastActivityAt"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Letter is the owner's view of a letter as returned by the API.
type Letter struct {
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
	CreatedAt      time.Time  `json:"createdAt"`
}

// Condition renders the release condition for listings.
func (l Letter) Condition() string {
	switch {
	case l.TriggerType == "date" && l.ScheduledDate != nil:
		return "on " + l.ScheduledDate.Local().Format("2006-01-02 15:04")
	case l.TriggerType == "inactivity" && l.InactivityDays != nil:
		if *l.InactivityDays == 1 {
			return "after 1 day of inactivity"
		}
		return "after " + strconv.Itoa(*l.InactivityDays) + " days of inactivity"
	}
	return l.TriggerType
}

// RegisterRequest is the account signup payload.
type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FamilyKey   string `json:"familyKey"`
	FamilyEmail string `json:"familyEmail"`
}
