package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/mukimuddin/deadbox/internal/client/client"
	"github.com/mukimuddin/deadbox/internal/client/models"
	"github.com/mukimuddin/deadbox/internal/common"
)

// Indirections over the interactive input helpers, swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getSecret     = GetSecret
)

var errLoginRequired = errors.New("please login first")

// Register prompts for the account and family details and creates the
// account. The server emails a verification link before login is allowed.
func (a *App) Register(ctx context.Context) error {
	var req models.RegisterRequest
	var err error

	if req.Name, err = getSimpleText(a.reader, "Enter your name", a.out); err != nil {
		return err
	}
	if req.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	familyKey, err := getSecret("Enter family key (shared with your family, used to unlock letters)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(familyKey)

	if req.FamilyEmail, err = getSimpleText(a.reader, "Enter family email", a.out); err != nil {
		return err
	}

	req.Password = string(password)
	req.FamilyKey = string(familyKey)

	if err := a.authService.Register(ctx, req); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Registered. Check your inbox to verify the email address, then login.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, email, password); err != nil {
		return err
	}

	a.email = email
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.email = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	u, err := a.letterService.Me(ctx)
	if err != nil {
		return a.sessionError(ctx, err)
	}

	fmt.Fprintf(a.out, "Name:          %s\n", u.Name)
	fmt.Fprintf(a.out, "Email:         %s\n", u.Email)
	fmt.Fprintf(a.out, "Family email:  %s\n", u.FamilyEmail)
	fmt.Fprintf(a.out, "Last activity: %s\n", u.LastActivityAt.Local().Format(time.RFC1123))
	return nil
}

func (a *App) CheckIn(ctx context.Context) error {
	at, err := a.letterService.CheckIn(ctx)
	if err != nil {
		return a.sessionError(ctx, err)
	}
	fmt.Fprintf(a.out, "Checked in at %s\n", at.Local().Format(time.RFC1123))
	return nil
}

func (a *App) List(ctx context.Context) error {
	letters, err := a.letterService.List(ctx)
	if err != nil {
		return a.sessionError(ctx, err)
	}
	if len(letters) == 0 {
		fmt.Fprintln(a.out, "No letters yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tRELEASE\tATTACHMENT")
	for _, l := range letters {
		att := "-"
		if l.HasAttachment && l.AttachmentType != nil {
			att = *l.AttachmentType
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.ID, l.Title, l.Status, l.Condition(), att)
	}
	return tw.Flush()
}

func (a *App) Attach(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: attach <letter-id> <file>")
	}

	ct, err := a.letterService.Attach(ctx, args[0], args[1])
	if err != nil {
		return a.sessionError(ctx, err)
	}
	fmt.Fprintf(a.out, "Uploaded %s (%s)\n", args[1], ct)
	return nil
}

// sessionError turns a rejected or missing session into a login prompt and
// drops the stale local session.
func (a *App) sessionError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, client.ErrNotLoggedIn):
		return errLoginRequired
	case errors.Is(err, client.ErrUnauthorized):
		_ = a.authService.Logout(ctx)
		a.email = ""
		return fmt.Errorf("session expired: %w", errLoginRequired)
	}
	return err
}
