// Package jwtx decodes access-token claims on the client side.
//
// The tracker API issues signed JWTs, but signature trust is delegated
// entirely to the server: the client never holds verification keys and only
// parses the claim payload to drive UI gating. Decoding failures degrade to
// "no claims" rather than propagating, so a malformed token behaves like a
// missing one.
package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed reports a token that could not be parsed at all.
	ErrMalformed = errors.New("jwtx: malformed token")

	// ErrNoUserInfo reports a structurally valid token missing the UserInfo
	// claim block the tracker API always embeds.
	ErrNoUserInfo = errors.New("jwtx: missing UserInfo claim")
)

// UserInfo is the claim block the tracker API embeds in every access token.
type UserInfo struct {
	UserID   int64    `json:"userId"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// Claims are the access-token claims the client cares about. Registered
// claims (exp, iat, ...) ride along for display and debugging; expiry is
// enforced by the server, not here.
type Claims struct {
	jwt.RegisteredClaims

	UserInfo UserInfo `json:"UserInfo"`
}

// Decode parses the claim payload of token without verifying its signature.
// It returns ErrMalformed for anything that is not a three-segment JWT and
// ErrNoUserInfo when the tracker claim block is absent.
func Decode(token string) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Claims{}, ErrMalformed
	}

	if claims.UserInfo.Username == "" && len(claims.UserInfo.Roles) == 0 {
		return Claims{}, ErrNoUserInfo
	}

	return claims, nil
}
