// Package cli provides the interactive camkeeper command-line client.
//
// App wires the local database, the Cognito gateway, the session service
// and the data API clients, then serves a REPL. Authentication commands run
// through a Flow, which validates each form before any network call and
// follows the challenges sign-in can return: a forced password change
// moves to the change-password step, a forced reset to the reset step, and
// both sign in again with the new password once it is accepted.
package cli
