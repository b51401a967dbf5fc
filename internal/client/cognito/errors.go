package cognito

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"github.com/dmitrijs2005/camkeeper/internal/client/client"
)

// fallbackMessages is used when the provider sends an error without text.
var fallbackMessages = map[string]string{
	"NotAuthorizedException":         "Incorrect username or password.",
	"UserNotFoundException":          "Incorrect username or password.",
	"UserNotConfirmedException":      "Account is not confirmed yet.",
	"UsernameExistsException":        "An account with this email already exists.",
	"CodeMismatchException":          "Invalid verification code.",
	"ExpiredCodeException":           "Verification code has expired, request a new one.",
	"InvalidPasswordException":       "Password does not meet the policy requirements.",
	"InvalidParameterException":      "Invalid request parameters.",
	"LimitExceededException":         "Attempt limit exceeded, try again later.",
	"TooManyRequestsException":       "Too many requests, try again later.",
	"TooManyFailedAttemptsException": "Too many failed attempts, try again later.",
}

// sentinelFor maps provider error codes onto client sentinels.
func sentinelFor(code string) error {
	switch code {
	case "NotAuthorizedException", "UserNotFoundException":
		return client.ErrUnauthorized
	case "TooManyRequestsException", "LimitExceededException", "InternalErrorException":
		return client.ErrUnavailable
	default:
		return nil
	}
}

// mapError normalizes any SDK error into *client.AuthError.
func (g *Gateway) mapError(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		g.logger.Debug(ctx, "identity provider rejected call", "op", op, "code", code)

		wrapped := err
		if s := sentinelFor(code); s != nil {
			wrapped = fmt.Errorf("%w: %w", s, err)
		}
		return &client.AuthError{
			Code:    code,
			Message: messageOr(apiErr.ErrorMessage(), fallbackMessages[code], "Request failed: "+code),
			Err:     wrapped,
		}
	}

	g.logger.Warn(ctx, "identity provider unreachable", "op", op, "error", err)
	return &client.AuthError{
		Message: "Identity provider is unavailable, try again later.",
		Err:     fmt.Errorf("%w: %w", client.ErrUnavailable, err),
	}
}

func messageOr(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
