package api

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	t.Parallel()

	handler := &Handler{sessionKey: []byte("0123456789abcdef0123456789abcdef")}
	token, err := handler.buildSessionToken("session-1", time.Now())
	require.NoError(t, err)

	sessionID, err := handler.parseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", sessionID)
}

func TestSessionTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	t.Parallel()

	handler := &Handler{sessionKey: []byte("0123456789abcdef0123456789abcdef")}

	expired, err := handler.buildSessionToken("session-1", time.Now().Add(-2*sessionTokenTTL))
	require.NoError(t, err)
	_, err = handler.parseSessionToken(expired)
	assert.ErrorIs(t, err, errInvalidSessionToken)

	foreign := &Handler{sessionKey: []byte("fedcba9876543210fedcba9876543210")}
	token, err := foreign.buildSessionToken("session-1", time.Now())
	require.NoError(t, err)
	_, err = handler.parseSessionToken(token)
	assert.ErrorIs(t, err, errInvalidSessionToken)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, sessionClaims{SessionID: "session-1"})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = handler.parseSessionToken(raw)
	assert.ErrorIs(t, err, errInvalidSessionToken)
}
