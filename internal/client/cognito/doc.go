// Package cognito implements client.AuthGateway on top of an AWS Cognito
// user pool app client using the public (unauthenticated) user pool APIs:
// InitiateAuth with USER_PASSWORD_AUTH, SignUp, ConfirmSignUp,
// ResendConfirmationCode, ForgotPassword, ConfirmForgotPassword,
// RespondToAuthChallenge, GetUser and GlobalSignOut.
//
// When the app client has a secret, every call carries SECRET_HASH.
// Each call runs under its own timeout; the SDK's standard retryer is the
// only retry layer.
package cognito
