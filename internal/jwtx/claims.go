// Package jwtx reads ID token claims for display.
//
// Nothing here verifies signatures or expiry. Decoded claims are hints for
// the UI; whether a session is live is decided by the identity provider.
package jwtx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/camkeeper/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeClaims returns the payload of a compact token as a claims map, or
// nil when the token is malformed in any way.
func DecodeClaims(token string) jwt.MapClaims {
	parts := strings.Split(token, ".")
	if len(parts) < 2 || parts[1] == "" {
		return nil
	}

	payload, err := segmentParser.DecodeSegment(toURLAlphabet(parts[1]))
	if err != nil || !utf8.Valid(payload) {
		return nil
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil
	}
	return claims
}

// toURLAlphabet accepts payloads encoded with either base64 alphabet.
func toURLAlphabet(seg string) string {
	return strings.NewReplacer("+", "-", "/", "_").Replace(seg)
}

// UserFromClaims builds the display user from ID token claims. Missing or
// oddly typed claims are left empty.
func UserFromClaims(claims jwt.MapClaims) models.User {
	u := models.User{Attributes: map[string]string{}}
	if claims == nil {
		return u
	}

	u.ID, _ = claims["sub"].(string)
	u.Email, _ = claims["email"].(string)

	switch v := claims["email_verified"].(type) {
	case bool:
		u.EmailVerified = v
	case string:
		u.EmailVerified = v == "true"
	}

	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := claims[k].(type) {
		case string:
			u.Attributes[k] = v
		case bool, float64:
			u.Attributes[k] = fmt.Sprint(v)
		}
	}
	return u
}

// ExpiresAt returns the "exp" claim, or the zero time when absent.
func ExpiresAt(claims jwt.MapClaims) time.Time {
	if claims == nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
