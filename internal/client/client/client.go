package client

import (
	"context"
)

// ChallengeName identifies an extra step the identity provider demands
// before it issues tokens.
type ChallengeName string

const (
	ChallengeNewPasswordRequired   ChallengeName = "NEW_PASSWORD_REQUIRED"
	ChallengePasswordResetRequired ChallengeName = "PASSWORD_RESET_REQUIRED"
)

// Tokens is the token triple issued on successful authentication.
type Tokens struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
}

// Challenge is returned instead of Tokens when sign-in needs another step.
// Session is the provider's opaque handle for answering the challenge.
type Challenge struct {
	Name    ChallengeName
	Reason  string
	Session string
}

// AuthResult carries exactly one of Tokens or Challenge.
type AuthResult struct {
	Tokens    *Tokens
	Challenge *Challenge
}

// AuthGateway is the identity provider contract used by the session service.
//
// Every method returns either nil or an *AuthError. ValidateSession reports
// (false, nil) for a token the provider no longer accepts.
type AuthGateway interface {
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, email, password string) error
	ConfirmRegistration(ctx context.Context, email, code string) error
	ResendConfirmationCode(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error
	ChangePassword(ctx context.Context, email, newPassword, challengeSession string) error
	ValidateSession(ctx context.Context, accessToken string) (bool, error)
	InvalidateSession(ctx context.Context, accessToken string) error
}
