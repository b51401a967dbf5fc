package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/camkeeper/internal/client/models"
	"github.com/dmitrijs2005/camkeeper/internal/client/services"
)

// fakeAuth implements services.AuthService with canned results.
type fakeAuth struct {
	state services.State
	user  *models.User

	SignInResults []services.Result // consumed in order, then SignInResult
	SignInResult  services.Result
	SignUpResult  services.Result
	ConfirmResult services.Result
	ResendResult  services.Result
	ForgotResult  services.Result
	ResetResult   services.Result
	ChangeResult  services.Result

	Token string // returned by AccessToken when signed in, "AT" if empty

	calls        []string
	LastEmail    string
	LastPassword string
	LastCode     string

	listeners []services.Listener
}

func newFakeAuth() *fakeAuth {
	ok := services.Result{Success: true}
	return &fakeAuth{
		state:         services.StateUnauthenticated,
		SignInResult:  ok,
		SignUpResult:  ok,
		ConfirmResult: ok,
		ResendResult:  ok,
		ForgotResult:  ok,
		ResetResult:   ok,
		ChangeResult:  ok,
	}
}

func (f *fakeAuth) record(call, email string) {
	f.calls = append(f.calls, call)
	f.LastEmail = email
}

func (f *fakeAuth) Start(context.Context) services.State { return f.state }

func (f *fakeAuth) SignIn(_ context.Context, email, password string) services.Result {
	f.record("SignIn", email)
	f.LastPassword = password
	r := f.SignInResult
	if len(f.SignInResults) > 0 {
		r, f.SignInResults = f.SignInResults[0], f.SignInResults[1:]
	}
	if r.Success {
		f.setUser(&models.User{ID: "u1", Email: email})
	}
	return r
}

func (f *fakeAuth) SignOut(context.Context) services.Result {
	f.record("SignOut", "")
	f.setUser(nil)
	return services.Result{Success: true}
}

func (f *fakeAuth) SignUp(_ context.Context, email, password string) services.Result {
	f.record("SignUp", email)
	f.LastPassword = password
	return f.SignUpResult
}

func (f *fakeAuth) ConfirmSignUp(_ context.Context, email, code string) services.Result {
	f.record("ConfirmSignUp", email)
	f.LastCode = code
	return f.ConfirmResult
}

func (f *fakeAuth) ResendConfirmationCode(_ context.Context, email string) services.Result {
	f.record("ResendConfirmationCode", email)
	return f.ResendResult
}

func (f *fakeAuth) ForgotPassword(_ context.Context, email string) services.Result {
	f.record("ForgotPassword", email)
	return f.ForgotResult
}

func (f *fakeAuth) ConfirmForgotPassword(_ context.Context, email, code, newPassword string) services.Result {
	f.record("ConfirmForgotPassword", email)
	f.LastCode, f.LastPassword = code, newPassword
	return f.ResetResult
}

func (f *fakeAuth) ChangePassword(_ context.Context, email, newPassword string) services.Result {
	f.record("ChangePassword", email)
	f.LastPassword = newPassword
	return f.ChangeResult
}

func (f *fakeAuth) HandleUnauthorized(context.Context) { f.setUser(nil) }

func (f *fakeAuth) State() services.State { return f.state }

func (f *fakeAuth) CurrentUser() *models.User { return f.user }

func (f *fakeAuth) AccessToken() string {
	if f.user == nil {
		return ""
	}
	if f.Token != "" {
		return f.Token
	}
	return "AT"
}

func (f *fakeAuth) Subscribe(fn services.Listener) func() {
	f.listeners = append(f.listeners, fn)
	return func() {}
}

func (f *fakeAuth) setUser(u *models.User) {
	f.user = u
	f.state = services.StateUnauthenticated
	if u != nil {
		f.state = services.StateAuthenticated
	}
	for _, l := range f.listeners {
		l(f.state, u)
	}
}

// ---- input stubs ----

func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, sprint(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

// stubInputs feeds text answers and passwords in order.
func stubInputs(t *testing.T, texts []string, passwords []string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		v := passwords[0]
		passwords = passwords[1:]
		return []byte(v), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

func sprint(a ...any) string {
	return strings.TrimSuffix(fmt.Sprintln(a...), "\n")
}
