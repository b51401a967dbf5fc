// Package services contains application services for the camkeeper client.
// This file defines the session service: the single owner of the signed-in
// session and its state machine.
package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/camkeeper/internal/client/client"
	"github.com/dmitrijs2005/camkeeper/internal/client/models"
	"github.com/dmitrijs2005/camkeeper/internal/client/tokenstore"
	"github.com/dmitrijs2005/camkeeper/internal/jwtx"
	"github.com/dmitrijs2005/camkeeper/internal/logging"
)

// State is the authentication state of the client.
//
//	initializing -> unauthenticated | authenticated
//	authenticated -> unauthenticated   (sign-out, rejected token)
//	unauthenticated -> authenticated   (sign-in)
type State string

const (
	StateInitializing    State = "initializing"
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
)

// Result is what every session operation returns. Failures never surface
// as Go errors: Error carries the user-facing message and ChallengeName is
// set when sign-in needs another step.
type Result struct {
	Success       bool
	ChallengeName client.ChallengeName
	Error         string
}

func failed(err error) Result {
	return Result{Error: client.Message(err)}
}

func result(err error) Result {
	if err != nil {
		return failed(err)
	}
	return Result{Success: true}
}

// Listener is notified after every state or user change. user is nil
// unless state is StateAuthenticated.
type Listener func(state State, user *models.User)

// AuthService is the contract the CLI depends on.
type AuthService interface {
	Start(ctx context.Context) State
	SignIn(ctx context.Context, email, password string) Result
	SignOut(ctx context.Context) Result
	SignUp(ctx context.Context, email, password string) Result
	ConfirmSignUp(ctx context.Context, email, code string) Result
	ResendConfirmationCode(ctx context.Context, email string) Result
	ForgotPassword(ctx context.Context, email string) Result
	ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) Result
	ChangePassword(ctx context.Context, email, newPassword string) Result
	HandleUnauthorized(ctx context.Context)
	State() State
	CurrentUser() *models.User
	AccessToken() string
	Subscribe(fn Listener) (cancel func())
}

type pendingChallenge struct {
	email     string
	challenge client.Challenge
}

// SessionService implements AuthService over an AuthGateway and a token
// store. It is safe for concurrent use; the gateway is called without
// holding the lock.
type SessionService struct {
	gateway client.AuthGateway
	store   tokenstore.Store
	logger  logging.Logger

	mu        sync.RWMutex
	state     State
	session   *models.Session
	pending   *pendingChallenge
	listeners map[int]Listener
	nextID    int
}

var _ AuthService = (*SessionService)(nil)

// NewSessionService constructs the service in StateInitializing. Call Start
// before showing anything that needs a session.
func NewSessionService(gateway client.AuthGateway, store tokenstore.Store, logger logging.Logger) *SessionService {
	return &SessionService{
		gateway:   gateway,
		store:     store,
		logger:    logger.With("component", "session"),
		state:     StateInitializing,
		listeners: make(map[int]Listener),
	}
}

// Start restores the stored session if the identity provider still accepts
// its access token. Anything else ends in StateUnauthenticated with the
// store cleared.
func (s *SessionService) Start(ctx context.Context) State {
	bundle, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn(ctx, "stored session unreadable", "error", err)
		return s.discard(ctx)
	}
	if bundle.Empty() {
		return s.setSession(nil)
	}
	if !bundle.Complete() {
		s.logger.Warn(ctx, "discarding partial stored session")
		return s.discard(ctx)
	}

	ok, err := s.gateway.ValidateSession(ctx, bundle.AccessToken)
	if err != nil {
		s.logger.Warn(ctx, "stored session validation failed", "error", err)
		return s.discard(ctx)
	}
	if !ok {
		s.logger.Info(ctx, "stored session no longer valid")
		return s.discard(ctx)
	}

	sess, err := bundle.Session()
	if err != nil {
		s.logger.Warn(ctx, "stored session undecodable", "error", err)
		return s.discard(ctx)
	}

	s.logger.Info(ctx, "session restored", "user", sess.User.Email)
	return s.setSession(sess)
}

func (s *SessionService) discard(ctx context.Context) State {
	s.store.Clear(ctx)
	return s.setSession(nil)
}

// SignIn authenticates and, on success, persists the new session.
// A challenge leaves the state unauthenticated and persists nothing.
func (s *SessionService) SignIn(ctx context.Context, email, password string) Result {
	res, err := s.gateway.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Info(ctx, "sign-in failed", "user", email, "error", client.Message(err))
		return failed(err)
	}

	if ch := res.Challenge; ch != nil {
		s.mu.Lock()
		s.pending = &pendingChallenge{email: email, challenge: *ch}
		s.mu.Unlock()

		s.logger.Info(ctx, "sign-in challenged", "user", email, "challenge", ch.Name)
		return Result{ChallengeName: ch.Name, Error: ch.Reason}
	}

	if res.Tokens == nil {
		return Result{Error: "Sign-in returned no session."}
	}

	user := jwtx.UserFromClaims(jwtx.DecodeClaims(res.Tokens.IDToken))
	if user.Email == "" {
		user.Email = email
	}
	sess := &models.Session{
		User:         user,
		AccessToken:  res.Tokens.AccessToken,
		IDToken:      res.Tokens.IDToken,
		RefreshToken: res.Tokens.RefreshToken,
	}

	if bundle, err := sess.Bundle(); err != nil {
		s.logger.Error(ctx, "session not persisted", "error", err)
	} else {
		s.store.Save(ctx, bundle)
	}

	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()

	s.logger.Info(ctx, "signed in", "user", user.Email)
	s.setSession(sess)
	return Result{Success: true}
}

// SignOut always ends unauthenticated with an empty store. The remote
// global sign-out is best effort.
func (s *SessionService) SignOut(ctx context.Context) Result {
	token := s.AccessToken()
	if token != "" {
		if err := s.gateway.InvalidateSession(ctx, token); err != nil {
			s.logger.Warn(ctx, "remote sign-out failed", "error", client.Message(err))
		}
	}

	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()

	s.discard(ctx)
	s.logger.Info(ctx, "signed out")
	return Result{Success: true}
}

// HandleUnauthorized drops the session after a data API rejected its token.
func (s *SessionService) HandleUnauthorized(ctx context.Context) {
	if s.State() != StateAuthenticated {
		return
	}
	s.logger.Info(ctx, "access token rejected, session dropped")
	s.discard(ctx)
}

func (s *SessionService) SignUp(ctx context.Context, email, password string) Result {
	return result(s.gateway.Register(ctx, email, password))
}

func (s *SessionService) ConfirmSignUp(ctx context.Context, email, code string) Result {
	return result(s.gateway.ConfirmRegistration(ctx, email, code))
}

func (s *SessionService) ResendConfirmationCode(ctx context.Context, email string) Result {
	return result(s.gateway.ResendConfirmationCode(ctx, email))
}

func (s *SessionService) ForgotPassword(ctx context.Context, email string) Result {
	return result(s.gateway.RequestPasswordReset(ctx, email))
}

// ConfirmForgotPassword sets the new password. The caller signs in afterwards.
func (s *SessionService) ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) Result {
	err := s.gateway.ConfirmPasswordReset(ctx, email, code, newPassword)
	if err == nil {
		s.clearPending(email)
	}
	return result(err)
}

// ChangePassword answers the pending NEW_PASSWORD_REQUIRED challenge of
// email. The caller signs in afterwards.
func (s *SessionService) ChangePassword(ctx context.Context, email, newPassword string) Result {
	var session string
	s.mu.RLock()
	if p := s.pending; p != nil && p.email == email && p.challenge.Name == client.ChallengeNewPasswordRequired {
		session = p.challenge.Session
	}
	s.mu.RUnlock()

	err := s.gateway.ChangePassword(ctx, email, newPassword, session)
	if err == nil {
		s.clearPending(email)
	}
	return result(err)
}

func (s *SessionService) clearPending(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil && s.pending.email == email {
		s.pending = nil
	}
}

func (s *SessionService) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *SessionService) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	u := s.session.User
	return &u
}

// AccessToken returns the bearer token for data API calls, or "".
func (s *SessionService) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.AccessToken
}

// Subscribe registers fn for state changes until cancel is called.
func (s *SessionService) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// setSession moves to authenticated (sess != nil) or unauthenticated and
// notifies listeners outside the lock when something changed.
func (s *SessionService) setSession(sess *models.Session) State {
	next := StateUnauthenticated
	if sess != nil {
		next = StateAuthenticated
	}

	s.mu.Lock()
	changed := s.state != next || s.session != sess
	s.state = next
	s.session = sess

	var listeners []Listener
	if changed {
		listeners = make([]Listener, 0, len(s.listeners))
		for _, l := range s.listeners {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	var user *models.User
	if sess != nil {
		u := sess.User
		user = &u
	}
	for _, l := range listeners {
		l(next, user)
	}
	return next
}
