package httpapi

import (
	"context"
	"time"

	"github.com/mukimuddin/deadbox/internal/server/models"
	"github.com/mukimuddin/deadbox/internal/server/services"
)

// ---- fakes ----

type fakeUsers struct {
	regIn   services.RegisterInput
	regResp *models.User
	regErr  error

	verifyToken string
	verifyErr   error

	resendErr error

	loginResp *services.TokenPair
	loginUser *models.User
	loginErr  error

	refreshResp *services.TokenPair
	refreshErr  error

	forgotEmail string
	forgotErr   error

	resetToken    string
	resetPassword string
	resetErr      error

	meID   string
	meResp *models.User
	meErr  error

	checkInAt  time.Time
	checkInErr error
}

func (f *fakeUsers) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	f.regIn = in
	return f.regResp, f.regErr
}
func (f *fakeUsers) VerifyEmail(ctx context.Context, token string) error {
	f.verifyToken = token
	return f.verifyErr
}
func (f *fakeUsers) ResendVerification(ctx context.Context, email string) error { return f.resendErr }
func (f *fakeUsers) Login(ctx context.Context, email, password string) (*services.TokenPair, *models.User, error) {
	return f.loginResp, f.loginUser, f.loginErr
}
func (f *fakeUsers) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	return f.refreshResp, f.refreshErr
}
func (f *fakeUsers) ForgotPassword(ctx context.Context, email string) error {
	f.forgotEmail = email
	return f.forgotErr
}
func (f *fakeUsers) ResetPassword(ctx context.Context, token, password string) error {
	f.resetToken, f.resetPassword = token, password
	return f.resetErr
}
func (f *fakeUsers) Me(ctx context.Context, userID string) (*models.User, error) {
	f.meID = userID
	return f.meResp, f.meErr
}
func (f *fakeUsers) CheckIn(ctx context.Context, userID string) (time.Time, error) {
	return f.checkInAt, f.checkInErr
}

type fakeLetters struct {
	userID   string
	letterID string
	input    services.LetterInput

	listResp []*models.Letter
	letter   *models.Letter
	err      error

	uploadKey string
	uploadURL string

	familyKey string
	unlocked  *services.UnlockedLetter
}

func (f *fakeLetters) Create(ctx context.Context, userID string, in services.LetterInput) (*models.Letter, error) {
	f.userID, f.input = userID, in
	return f.letter, f.err
}
func (f *fakeLetters) List(ctx context.Context, userID string) ([]*models.Letter, error) {
	f.userID = userID
	return f.listResp, f.err
}
func (f *fakeLetters) Get(ctx context.Context, userID, letterID string) (*models.Letter, error) {
	f.userID, f.letterID = userID, letterID
	return f.letter, f.err
}
func (f *fakeLetters) Update(ctx context.Context, userID, letterID string, in services.LetterInput) (*models.Letter, error) {
	f.userID, f.letterID, f.input = userID, letterID, in
	return f.letter, f.err
}
func (f *fakeLetters) Delete(ctx context.Context, userID, letterID string) error {
	f.userID, f.letterID = userID, letterID
	return f.err
}
func (f *fakeLetters) Finalize(ctx context.Context, userID, letterID string) (*models.Letter, error) {
	f.userID, f.letterID = userID, letterID
	return f.letter, f.err
}
func (f *fakeLetters) AttachmentUploadURL(ctx context.Context, userID, letterID, contentType string) (string, string, error) {
	f.userID, f.letterID = userID, letterID
	return f.uploadKey, f.uploadURL, f.err
}
func (f *fakeLetters) Unlock(ctx context.Context, letterID, familyKey string) (*services.UnlockedLetter, error) {
	f.letterID, f.familyKey = letterID, familyKey
	return f.unlocked, f.err
}
