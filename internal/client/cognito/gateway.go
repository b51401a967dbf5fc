package cognito

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/dmitrijs2005/camkeeper/internal/client/client"
	"github.com/dmitrijs2005/camkeeper/internal/logging"
)

const defaultTimeout = 15 * time.Second

// Config selects the user pool app client to talk to.
type Config struct {
	Region       string
	ClientID     string
	ClientSecret string
	// Endpoint overrides the regional endpoint, e.g. for cognito-local.
	Endpoint string
	// AccessKeyID/SecretAccessKey are only needed by emulators that insist
	// on signed requests; the real user pool APIs are anonymous.
	AccessKeyID     string
	SecretAccessKey string
	Timeout         time.Duration
}

// api is the subset of *cip.Client used by Gateway.
type api interface {
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	RespondToAuthChallenge(ctx context.Context, in *cip.RespondToAuthChallengeInput, optFns ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error)
	SignUp(ctx context.Context, in *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, in *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	ResendConfirmationCode(ctx context.Context, in *cip.ResendConfirmationCodeInput, optFns ...func(*cip.Options)) (*cip.ResendConfirmationCodeOutput, error)
	ForgotPassword(ctx context.Context, in *cip.ForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, in *cip.ConfirmForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
	GetUser(ctx context.Context, in *cip.GetUserInput, optFns ...func(*cip.Options)) (*cip.GetUserOutput, error)
	GlobalSignOut(ctx context.Context, in *cip.GlobalSignOutInput, optFns ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error)
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newCognitoClient = func(cfg aws.Config, optFns ...func(*cip.Options)) api {
		return cip.NewFromConfig(cfg, optFns...)
	}
)

// Gateway talks to one Cognito app client. It is safe for concurrent use.
type Gateway struct {
	api          api
	clientID     string
	clientSecret string
	timeout      time.Duration
	logger       logging.Logger
}

var _ client.AuthGateway = (*Gateway)(nil)

// New builds a Gateway from cfg. It is meant to be called once at startup.
func New(ctx context.Context, cfg Config, logger logging.Logger) (*Gateway, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("cognito: app client id is required")
	}

	var creds aws.CredentialsProvider = aws.AnonymousCredentials{}
	if cfg.AccessKeyID != "" {
		creds = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("cognito: load aws config: %w", err)
	}

	c := newCognitoClient(awsCfg, func(o *cip.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newGateway(c, cfg, logger), nil
}

func newGateway(c api, cfg Config, logger logging.Logger) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Gateway{
		api:          c,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		timeout:      timeout,
		logger:       logger.With("component", "cognito"),
	}
}

// secretHash returns the SECRET_HASH for username, or nil when the app
// client has no secret.
func (g *Gateway) secretHash(username string) *string {
	if g.clientSecret == "" {
		return nil
	}
	mac := hmac.New(sha256.New, []byte(g.clientSecret))
	mac.Write([]byte(username + g.clientID))
	return aws.String(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

func (g *Gateway) withSecret(username string, params map[string]string) map[string]string {
	if h := g.secretHash(username); h != nil {
		params["SECRET_HASH"] = *h
	}
	return params
}

func (g *Gateway) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.timeout)
}

func (g *Gateway) Authenticate(ctx context.Context, email, password string) (*client.AuthResult, error) {
	ctx, cancel := g.call(ctx)
	defer cancel()

	out, err := g.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(g.clientID),
		AuthParameters: g.withSecret(email, map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		}),
	})
	if err != nil {
		var reset *types.PasswordResetRequiredException
		if errors.As(err, &reset) {
			return &client.AuthResult{Challenge: &client.Challenge{
				Name:   client.ChallengePasswordResetRequired,
				Reason: messageOr(reset.ErrorMessage(), "Password reset required for this account."),
			}}, nil
		}
		return nil, g.mapError(ctx, "InitiateAuth", err)
	}

	if r := out.AuthenticationResult; r != nil {
		tokens := &client.Tokens{
			AccessToken:  aws.ToString(r.AccessToken),
			IDToken:      aws.ToString(r.IdToken),
			RefreshToken: aws.ToString(r.RefreshToken),
		}
		if tokens.AccessToken == "" || tokens.IDToken == "" || tokens.RefreshToken == "" {
			return nil, &client.AuthError{Message: "Identity provider returned an incomplete token set."}
		}
		return &client.AuthResult{Tokens: tokens}, nil
	}

	switch out.ChallengeName {
	case types.ChallengeNameTypeNewPasswordRequired:
		return &client.AuthResult{Challenge: &client.Challenge{
			Name:    client.ChallengeNewPasswordRequired,
			Reason:  "A new password is required.",
			Session: aws.ToString(out.Session),
		}}, nil
	case "":
		return nil, &client.AuthError{Message: "Identity provider returned an empty response."}
	default:
		return nil, &client.AuthError{
			Code:    string(out.ChallengeName),
			Message: fmt.Sprintf("Sign-in challenge %s is not supported.", out.ChallengeName),
		}
	}
}

func (g *Gateway) Register(ctx context.Context, email, password string) error {
	ctx, cancel := g.call(ctx)
	defer cancel()

	_, err := g.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:   aws.String(g.clientID),
		Username:   aws.String(email),
		Password:   aws.String(password),
		SecretHash: g.secretHash(email),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	})
	return g.mapError(ctx, "SignUp", err)
}

func (g *Gateway) ConfirmRegistration(ctx context.Context, email, code string) error {
	ctx, cancel := g.call(ctx)
	defer cancel()

	_, err := g.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(g.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
		SecretHash:       g.secretHash(email),
	})
	return g.mapError(ctx, "ConfirmSignUp", err)
}

func (g *Gateway) ResendConfirmationCode(ctx context.Context, email string) error {
	ctx, cancel := g.call(ctx)
	defer cancel()

	_, err := g.api.ResendConfirmationCode(ctx, &cip.ResendConfirmationCodeInput{
		ClientId:   aws.String(g.clientID),
		Username:   aws.String(email),
		SecretHash: g.secretHash(email),
	})
	return g.mapError(ctx, "ResendConfirmationCode", err)
}

func (g *Gateway) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, cancel := g.call(ctx)
	defer cancel()

	_, err := g.api.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId:   aws.String(g.clientID),
		Username:   aws.String(email),
		SecretHash: g.secretHash(email),
	})
	return g.mapError(ctx, "ForgotPassword", err)
}

func (g *Gateway) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	ctx, cancel := g.call(ctx)
	defer cancel()

	_, err := g.api.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(g.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
		SecretHash:       g.secretHash(email),
	})
	return g.mapError(ctx, "ConfirmForgotPassword", err)
}

// ChangePassword answers a NEW_PASSWORD_REQUIRED challenge. The tokens the
// provider issues in response are discarded; callers sign in again.
func (g *Gateway) ChangePassword(ctx context.Context, email, newPassword, challengeSession string) error {
	if challengeSession == "" {
		return &client.AuthError{
			Message: "No password change is pending, sign in again.",
			Err:     client.ErrNoPendingChallenge,
		}
	}

	ctx, cancel := g.call(ctx)
	defer cancel()

	_, err := g.api.RespondToAuthChallenge(ctx, &cip.RespondToAuthChallengeInput{
		ClientId:      aws.String(g.clientID),
		ChallengeName: types.ChallengeNameTypeNewPasswordRequired,
		Session:       aws.String(challengeSession),
		ChallengeResponses: g.withSecret(email, map[string]string{
			"USERNAME":     email,
			"NEW_PASSWORD": newPassword,
		}),
	})
	return g.mapError(ctx, "RespondToAuthChallenge", err)
}

func (g *Gateway) ValidateSession(ctx context.Context, accessToken string) (bool, error) {
	ctx, cancel := g.call(ctx)
	defer cancel()

	_, err := g.api.GetUser(ctx, &cip.GetUserInput{AccessToken: aws.String(accessToken)})
	if err == nil {
		return true, nil
	}

	var na *types.NotAuthorizedException
	if errors.As(err, &na) {
		return false, nil
	}
	return false, g.mapError(ctx, "GetUser", err)
}

func (g *Gateway) InvalidateSession(ctx context.Context, accessToken string) error {
	ctx, cancel := g.call(ctx)
	defer cancel()

	_, err := g.api.GlobalSignOut(ctx, &cip.GlobalSignOutInput{AccessToken: aws.String(accessToken)})
	return g.mapError(ctx, "GlobalSignOut", err)
}
