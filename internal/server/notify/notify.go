// Package notify renders and delivers the emails deadbox sends: release
// notifications to family contacts, and account verification and password
// reset messages to users.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/mukimuddin/deadbox/internal/server/models"
)

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a rendered message. Implementations must honour ctx
// cancellation and deadlines.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

const (
	subjectInactivityRelease = "A Letter Has Been Released"
	subjectDateRelease       = "A Scheduled Letter Has Been Released"
	subjectVerify            = "Verify Your Deadbox Account"
	subjectReset             = "Reset Your Deadbox Password"
)

var (
	inactivityReleaseTmpl = template.Must(template.New("inactivity").Parse(
		`<h1>A Letter Has Been Released</h1>
<p>Due to {{.Owner}}'s inactivity for {{.Days}} days, a letter has been released.</p>
<p>To read the letter, please visit the following link:</p>
<a href="{{.Link}}">Read Letter</a>
`))

	dateReleaseTmpl = template.Must(template.New("date").Parse(
		`<h1>A Scheduled Letter Has Been Released</h1>
<p>A letter from {{.Owner}} has been released as scheduled.</p>
<p>To read the letter, please visit the following link:</p>
<a href="{{.Link}}">Read Letter</a>
`))

	verifyTmpl = template.Must(template.New("verify").Parse(
		`<h1>Welcome to Deadbox, {{.Name}}!</h1>
<p>Please click the link below to verify your email address:</p>
<a href="{{.Link}}">{{.Link}}</a>
<p>This link will expire in 24 hours. Accounts that stay unverified are deleted automatically.</p>
<p>If you didn't create an account, you can safely ignore this email.</p>
`))

	resetTmpl = template.Must(template.New("reset").Parse(
		`<h1>Password Reset Request</h1>
<p>You requested to reset your password. Click the link below to proceed:</p>
<a href="{{.Link}}">{{.Link}}</a>
<p>This link will expire in 1 hour.</p>
<p>If you didn't request this, please ignore this email and ensure your account is secure.</p>
`))
)

// Mailer builds deadbox emails and hands them to a Sender.
type Mailer struct {
	sender      Sender
	frontendURL string
}

func NewMailer(sender Sender, frontendURL string) *Mailer {
	return &Mailer{sender: sender, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// UnlockLink is the family-facing page for a released letter.
func (m *Mailer) UnlockLink(letterID string) string {
	return fmt.Sprintf("%s/letters/%s/unlock", m.frontendURL, letterID)
}

// SendReleaseNotification tells the family contact that letter has been
// released and where to unlock it.
func (m *Mailer) SendReleaseNotification(ctx context.Context, to string, owner *models.User, letter *models.Letter) error {
	data := struct {
		Owner string
		Days  int
		Link  string
	}{Owner: owner.Name, Link: m.UnlockLink(letter.ID)}

	tmpl, subject := dateReleaseTmpl, subjectDateRelease
	if letter.TriggerType == models.TriggerInactivity {
		tmpl, subject = inactivityReleaseTmpl, subjectInactivityRelease
		if letter.InactivityDays != nil {
			data.Days = *letter.InactivityDays
		}
	}

	return m.render(ctx, to, subject, tmpl, data)
}

func (m *Mailer) SendVerification(ctx context.Context, user *models.User, token string) error {
	return m.render(ctx, user.Email, subjectVerify, verifyTmpl, struct {
		Name string
		Link string
	}{Name: user.Name, Link: m.frontendURL + "/verify-email/" + token})
}

func (m *Mailer) SendPasswordReset(ctx context.Context, user *models.User, token string) error {
	return m.render(ctx, user.Email, subjectReset, resetTmpl, struct {
		Link string
	}{Link: m.frontendURL + "/reset-password/" + token})
}

func (m *Mailer) render(ctx context.Context, to, subject string, tmpl *template.Template, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return m.sender.Send(ctx, Message{To: to, Subject: subject, HTML: buf.String()})
}
