package cli

import (
	"bytes"
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dmitrijs2005/camkeeper/internal/client/client"
	"github.com/dmitrijs2005/camkeeper/internal/client/services"
	"github.com/dmitrijs2005/camkeeper/internal/common"
)

// FlowMode is the step the authentication flow is waiting on.
type FlowMode string

const (
	ModeSignIn                FlowMode = "sign-in"
	ModeSignUp                FlowMode = "sign-up"
	ModeConfirmSignUp         FlowMode = "confirm-sign-up"
	ModeForgotPassword        FlowMode = "forgot-password"
	ModeConfirmForgotPassword FlowMode = "confirm-forgot-password"
	ModeChangePassword        FlowMode = "change-password"
)

const minPasswordLength = 8

// Form is what the user typed for the current mode. Password holds the new
// password in the reset and change modes. Submit wipes both password slices.
type Form struct {
	Email           string `json:"email"`
	Code            string `json:"code"`
	Password        []byte `json:"password"`
	ConfirmPassword []byte `json:"confirm_password"`
}

// Outcome reports what Submit did. Failed outcomes leave the mode unchanged.
type Outcome struct {
	Mode          FlowMode
	Authenticated bool
	Failed        bool
	Message       string
}

// Flow turns form submissions into session calls and follows the challenges
// they return. The email survives every mode change.
type Flow struct {
	auth  services.AuthService
	mode  FlowMode
	email string
}

func NewFlow(auth services.AuthService) *Flow {
	return &Flow{auth: auth, mode: ModeSignIn}
}

func (f *Flow) Mode() FlowMode { return f.mode }

func (f *Flow) Email() string { return f.email }

// SetEmail pre-fills the email offered by the next prompt.
func (f *Flow) SetEmail(email string) { f.email = email }

// SetMode switches mode on user request.
func (f *Flow) SetMode(m FlowMode) { f.mode = m }

// Submit validates form for the current mode and, if valid, performs it.
// Validation failures never reach the session service.
func (f *Flow) Submit(ctx context.Context, form Form) Outcome {
	defer common.WipeAll(form.Password, form.ConfirmPassword)

	if form.Email == "" {
		form.Email = f.email
	}
	if err := validateForm(f.mode, &form); err != nil {
		return f.fail(formMessage(err))
	}
	f.email = form.Email

	switch f.mode {
	case ModeSignIn:
		return f.signIn(ctx, string(form.Password))

	case ModeSignUp:
		if r := f.auth.SignUp(ctx, f.email, string(form.Password)); !r.Success {
			return f.fail(r.Error)
		}
		return f.moveTo(ModeConfirmSignUp, "Account created. Enter the confirmation code sent to "+f.email+".")

	case ModeConfirmSignUp:
		if r := f.auth.ConfirmSignUp(ctx, f.email, form.Code); !r.Success {
			return f.fail(r.Error)
		}
		return f.moveTo(ModeSignIn, "Account confirmed. You can sign in now.")

	case ModeForgotPassword:
		if r := f.auth.ForgotPassword(ctx, f.email); !r.Success {
			return f.fail(r.Error)
		}
		return f.moveTo(ModeConfirmForgotPassword, "A reset code was sent to "+f.email+".")

	case ModeConfirmForgotPassword:
		pw := string(form.Password)
		if r := f.auth.ConfirmForgotPassword(ctx, f.email, form.Code, pw); !r.Success {
			return f.fail(r.Error)
		}
		f.mode = ModeSignIn
		return f.signIn(ctx, pw)

	case ModeChangePassword:
		pw := string(form.Password)
		if r := f.auth.ChangePassword(ctx, f.email, pw); !r.Success {
			return f.fail(r.Error)
		}
		f.mode = ModeSignIn
		return f.signIn(ctx, pw)
	}
	return f.fail("Unknown step " + string(f.mode))
}

// Resend asks for a new sign-up confirmation code.
func (f *Flow) Resend(ctx context.Context, email string) Outcome {
	if email == "" {
		email = f.email
	}
	if err := validation.Validate(email, emailRules()...); err != nil {
		return f.fail(err.Error())
	}
	f.email = email
	if r := f.auth.ResendConfirmationCode(ctx, email); !r.Success {
		return f.fail(r.Error)
	}
	return f.moveTo(ModeConfirmSignUp, "A new confirmation code was sent to "+email+".")
}

func (f *Flow) signIn(ctx context.Context, password string) Outcome {
	r := f.auth.SignIn(ctx, f.email, password)
	switch {
	case r.Success:
		f.mode = ModeSignIn
		return Outcome{Mode: f.mode, Authenticated: true, Message: "Signed in as " + f.email + "."}
	case r.ChallengeName == client.ChallengeNewPasswordRequired:
		return f.moveTo(ModeChangePassword, orDefault(r.Error, "A new password is required."))
	case r.ChallengeName == client.ChallengePasswordResetRequired:
		return f.moveTo(ModeConfirmForgotPassword, orDefault(r.Error, "A password reset is required. Enter the code sent to "+f.email+"."))
	}
	return f.fail(r.Error)
}

func (f *Flow) moveTo(m FlowMode, msg string) Outcome {
	f.mode = m
	return Outcome{Mode: m, Message: msg}
}

func (f *Flow) fail(msg string) Outcome {
	return Outcome{Mode: f.mode, Failed: true, Message: orDefault(msg, "Something went wrong, try again.")}
}

func emailRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("Email is required"),
		is.Email.Error("Enter a valid email address"),
	}
}

func newPasswordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("Password is required"),
		validation.Length(minPasswordLength, 0).Error("Password must be at least 8 characters"),
	}
}

// matchRule checks that a byte slice equals want. It follows the shape of
// the built-in ozzo rules so the message is set with Error.
type matchRule struct {
	want    []byte
	message string
}

func sameAs(want []byte) matchRule {
	return matchRule{want: want, message: "must match"}
}

func (r matchRule) Validate(value interface{}) error {
	got, _ := value.([]byte)
	if !bytes.Equal(got, r.want) {
		return errors.New(r.message)
	}
	return nil
}

// Error sets the error message for the rule.
func (r matchRule) Error(message string) matchRule {
	r.message = message
	return r
}

func validateForm(mode FlowMode, form *Form) error {
	email := validation.Field(&form.Email, emailRules()...)
	code := validation.Field(&form.Code, validation.Required.Error("Code is required"), is.Digit.Error("Code must be digits"))
	confirm := validation.Field(&form.ConfirmPassword, sameAs(form.Password).Error("Passwords do not match"))

	switch mode {
	case ModeSignIn:
		return validation.ValidateStruct(form, email,
			validation.Field(&form.Password, validation.Required.Error("Password is required")))
	case ModeSignUp:
		return validation.ValidateStruct(form, email,
			validation.Field(&form.Password, newPasswordRules()...), confirm)
	case ModeConfirmSignUp:
		return validation.ValidateStruct(form, email, code)
	case ModeForgotPassword:
		return validation.ValidateStruct(form, email)
	case ModeConfirmForgotPassword:
		return validation.ValidateStruct(form, email, code,
			validation.Field(&form.Password, newPasswordRules()...), confirm)
	case ModeChangePassword:
		return validation.ValidateStruct(form, email,
			validation.Field(&form.Password, newPasswordRules()...), confirm)
	}
	return nil
}

var fieldOrder = []string{"email", "code", "password", "confirm_password"}

// formMessage picks the first failing field in prompt order.
func formMessage(err error) string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	for _, name := range fieldOrder {
		if e, ok := errs[name]; ok && e != nil {
			return e.Error()
		}
	}
	return err.Error()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
