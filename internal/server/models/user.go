package models

import "time"

type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	FamilyKeyHash  string
	FamilyEmail    string
	LastActivityAt time.Time
	CreatedAt      time.Time

	IsEmailVerified          bool
	EmailVerificationToken   *string
	EmailVerificationExpires *time.Time
	ResetPasswordToken       *string
	ResetPasswordExpires     *time.Time
}
