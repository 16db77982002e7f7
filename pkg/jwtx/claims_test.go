package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/redhill/reqtrack/pkg/jwtx"
)

// mintToken signs a token the way the tracker API does. The signing key is
// irrelevant to the client, which never verifies signatures.
func mintToken(t *testing.T, info jwtx.UserInfo) string {
	t.Helper()

	claims := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserInfo: info,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("server-side-secret"))
	require.NoError(t, err)
	return token
}

func TestDecode(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		token := mintToken(t, jwtx.UserInfo{
			UserID:   42,
			Username: "dana",
			Roles:    []string{"Engineer", "Admin"},
		})

		claims, err := jwtx.Decode(token)
		require.NoError(t, err)
		require.Equal(t, int64(42), claims.UserInfo.UserID)
		require.Equal(t, "dana", claims.UserInfo.Username)
		require.Equal(t, []string{"Engineer", "Admin"}, claims.UserInfo.Roles)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := jwtx.Decode("not-a-jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := jwtx.Decode("")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("token without UserInfo", func(t *testing.T) {
		bare, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject: "someone-else's token",
		}).SignedString([]byte("server-side-secret"))
		require.NoError(t, err)

		_, err = jwtx.Decode(bare)
		require.ErrorIs(t, err, jwtx.ErrNoUserInfo)
	})

	t.Run("signature is not checked", func(t *testing.T) {
		token := mintToken(t, jwtx.UserInfo{Username: "dana", Roles: []string{"Sales"}})

		// Corrupt the signature segment; the decode must still succeed.
		tampered := token[:len(token)-4] + "AAAA"
		claims, err := jwtx.Decode(tampered)
		require.NoError(t, err)
		require.Equal(t, "dana", claims.UserInfo.Username)
	})
}
