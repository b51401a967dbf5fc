package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/camkeeper/internal/common"
	"github.com/dmitrijs2005/camkeeper/internal/jwtx"
)

// getSimpleText and getPassword are test seams over the interactive input
// helpers.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) Login(ctx context.Context) error {
	a.flow.SetMode(ModeSignIn)
	return a.drive(ctx)
}

func (a *App) Register(ctx context.Context) error {
	a.flow.SetMode(ModeSignUp)
	return a.drive(ctx)
}

func (a *App) Confirm(ctx context.Context) error {
	a.flow.SetMode(ModeConfirmSignUp)
	return a.drive(ctx)
}

func (a *App) Forgot(ctx context.Context) error {
	a.flow.SetMode(ModeForgotPassword)
	return a.drive(ctx)
}

func (a *App) Reset(ctx context.Context) error {
	a.flow.SetMode(ModeConfirmForgotPassword)
	return a.drive(ctx)
}

func (a *App) Resend(ctx context.Context) error {
	email, err := a.askEmail()
	if err != nil {
		return err
	}
	out := a.flow.Resend(ctx, email)
	printlnFn(out.Message)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.auth.SignOut(ctx)
	a.flow.SetMode(ModeSignIn)
	printlnFn("Signed out.")
	return nil
}

func (a *App) WhoAmI(context.Context) error {
	u := a.auth.CurrentUser()
	if u == nil {
		printlnFn("Not signed in.")
		return nil
	}
	verified := "unverified"
	if u.EmailVerified {
		verified = "verified"
	}
	printlnFn(fmt.Sprintf("%s (%s), id %s", u.Email, verified, u.ID))
	if exp := jwtx.ExpiresAt(jwtx.DecodeClaims(a.auth.AccessToken())); !exp.IsZero() {
		printlnFn("Access token expires", exp.UTC().Format(time.RFC3339))
	}
	return nil
}

// drive prompts for the current flow step and submits it, following the
// steps a successful submit leads to until the flow is done or fails.
func (a *App) drive(ctx context.Context) error {
	for {
		from := a.flow.Mode()
		form, err := a.promptForm(from)
		if err != nil {
			return err
		}
		out := a.flow.Submit(ctx, form)
		printlnFn(out.Message)
		if out.Authenticated {
			a.rememberEmail(ctx, a.flow.Email())
		}

		if out.Failed || out.Authenticated || !followUp(from, out.Mode) {
			return nil
		}
	}
}

// restoreLastEmail offers the email of the last successful sign-in at the
// first prompt.
func (a *App) restoreLastEmail(ctx context.Context) {
	if a.prefs == nil || a.flow.Email() != "" {
		return
	}
	v, err := a.prefs.Get(ctx, common.LastEmailKey)
	if err != nil {
		a.logger.Warn(ctx, "last email not restored", "error", err)
		return
	}
	a.flow.SetEmail(string(v))
}

func (a *App) rememberEmail(ctx context.Context, email string) {
	if a.prefs == nil || email == "" {
		return
	}
	if err := a.prefs.Set(ctx, common.LastEmailKey, []byte(email)); err != nil {
		a.logger.Warn(ctx, "last email not saved", "error", err)
	}
}

func followUp(from, to FlowMode) bool {
	switch to {
	case ModeConfirmSignUp, ModeConfirmForgotPassword, ModeChangePassword:
		return to != from
	}
	return false
}

func (a *App) askEmail() (string, error) {
	prompt := "Enter email"
	if e := a.flow.Email(); e != "" {
		prompt = fmt.Sprintf("Enter email [%s]", e)
	}
	return getSimpleText(a.reader, prompt, a.out)
}

// promptForm collects the fields the mode needs. The email of an ongoing
// flow is kept when the user just presses Enter; the change-password step
// never asks for it.
func (a *App) promptForm(mode FlowMode) (form Form, err error) {
	defer func() {
		if err != nil {
			common.WipeAll(form.Password, form.ConfirmPassword)
		}
	}()

	if mode != ModeChangePassword {
		if form.Email, err = a.askEmail(); err != nil {
			return form, err
		}
	}

	switch mode {
	case ModeSignIn:
		form.Password, err = getPassword(a.out, "Password")
	case ModeSignUp:
		if form.Password, err = getPassword(a.out, "Password"); err == nil {
			form.ConfirmPassword, err = getPassword(a.out, "Confirm password")
		}
	case ModeConfirmSignUp:
		form.Code, err = getSimpleText(a.reader, "Confirmation code", a.out)
	case ModeConfirmForgotPassword:
		if form.Code, err = getSimpleText(a.reader, "Reset code", a.out); err != nil {
			return form, err
		}
		fallthrough
	case ModeChangePassword:
		if form.Password, err = getPassword(a.out, "New password"); err == nil {
			form.ConfirmPassword, err = getPassword(a.out, "Confirm new password")
		}
	}
	return form, err
}
