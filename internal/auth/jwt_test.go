package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_IssueParse(t *testing.T) {
	j := NewJWT("s3cret", time.Hour)
	tok, err := j.Issue("acct-1", "admin")
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", c.AccountID)
	assert.Equal(t, "admin", c.Role)
}

func TestJWT_WrongSecret(t *testing.T) {
	tok, err := NewJWT("a", time.Hour).Issue("acct-1", "user")
	require.NoError(t, err)

	_, err = NewJWT("b", time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_Expired(t *testing.T) {
	j := NewJWT("s3cret", time.Minute)
	j.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := j.Issue("acct-1", "user")
	require.NoError(t, err)

	j.now = time.Now
	_, err = j.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{AccountID: "acct-1", Role: "admin"}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWT("s3cret", time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
