package session

import (
	"github.com/redhill/reqtrack/internal/tracker/domain"
	"github.com/redhill/reqtrack/pkg/jwtx"
)

// Derive computes the Identity for a token. It is a pure function of its
// input and is recomputed on every read rather than memoized, so the result
// can never go stale relative to the credential store after a refresh or
// logout. A missing or undecodable token degrades to the empty identity; no
// error is ever surfaced to the caller.
func Derive(token string) domain.Identity {
	if token == "" {
		return domain.EmptyIdentity()
	}

	claims, err := jwtx.Decode(token)
	if err != nil {
		return domain.EmptyIdentity()
	}

	return domain.NewIdentity(
		claims.UserInfo.UserID,
		claims.UserInfo.Username,
		domain.ParseRoles(claims.UserInfo.Roles),
	)
}
