// Package models defines client-side data models used by the camkeeper CLI.
package models

import (
	"encoding/json"
	"fmt"
)

// User is the display view of the signed-in principal, derived from the
// unverified ID token claims. It is never used for authorization.
type User struct {
	ID            string            `json:"id"`
	Email         string            `json:"email"`
	EmailVerified bool              `json:"email_verified"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}

// Session is one authenticated principal together with its token triple.
// A Session is either fully populated or absent.
type Session struct {
	User         User
	AccessToken  string
	IDToken      string
	RefreshToken string
}

// Bundle returns the persisted four-slot form of s.
func (s *Session) Bundle() (TokenBundle, error) {
	user, err := json.Marshal(s.User)
	if err != nil {
		return TokenBundle{}, fmt.Errorf("encode user: %w", err)
	}
	return TokenBundle{
		AccessToken:  s.AccessToken,
		IDToken:      s.IDToken,
		RefreshToken: s.RefreshToken,
		User:         user,
	}, nil
}

// TokenBundle is the persisted representation of a Session. Slots may be
// missing independently at the storage layer; only a Complete bundle may be
// turned back into a Session.
type TokenBundle struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	User         []byte
}

// Complete reports whether all four slots are populated.
func (b TokenBundle) Complete() bool {
	return b.AccessToken != "" && b.IDToken != "" && b.RefreshToken != "" && len(b.User) > 0
}

// Empty reports whether no slot is populated.
func (b TokenBundle) Empty() bool {
	return b.AccessToken == "" && b.IDToken == "" && b.RefreshToken == "" && len(b.User) == 0
}

// Session rebuilds the Session stored in b. Incomplete bundles and
// undecodable user records are rejected.
func (b TokenBundle) Session() (*Session, error) {
	if !b.Complete() {
		return nil, ErrIncompleteBundle
	}
	var u User
	if err := json.Unmarshal(b.User, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &Session{
		User:         u,
		AccessToken:  b.AccessToken,
		IDToken:      b.IDToken,
		RefreshToken: b.RefreshToken,
	}, nil
}
