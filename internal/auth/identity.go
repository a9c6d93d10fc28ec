// Package auth holds the signed-in user's identity.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotLoggedIn is returned when a command needs an identity and none is stored.
var ErrNotLoggedIn = errors.New("not logged in, run `studyfocus login` first")

// Identity is the authenticated user returned by the backend on login.
type Identity struct {
	UserID   string
	UserName string
	Token    string
}

// LoggedIn reports whether the identity carries a user and a token.
func (i Identity) LoggedIn() bool {
	return i.UserID != "" && i.Token != ""
}

// ExpiresAt reads the exp claim of the access token. The token is not
// verified, the backend does that on every request.
func (i Identity) ExpiresAt() (time.Time, bool) {
	if i.Token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(i.Token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the token's exp claim lies at or before now.
// Tokens without a readable exp never expire client side.
func (i Identity) Expired(now time.Time) bool {
	exp, ok := i.ExpiresAt()
	if !ok {
		return false
	}
	return !now.Before(exp)
}

// Require returns ErrNotLoggedIn unless the identity is usable at now.
func (i Identity) Require(now time.Time) error {
	if !i.LoggedIn() {
		return ErrNotLoggedIn
	}
	if i.Expired(now) {
		return errors.New("session expired, run `studyfocus login` again")
	}
	return nil
}
