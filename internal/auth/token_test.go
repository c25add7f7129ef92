package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, expiresAt, err := tm.IssueSessionToken("conv-1", "+5491122334455")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "conv-1", claims.ConversationID)
	assert.Equal(t, "+5491122334455", claims.CustomerPhone)
}

func TestSessionTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", time.Hour).IssueSessionToken("conv-1", "")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Hour).ParseSessionToken(token)
	assert.Error(t, err)
}

func TestSessionTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Nanosecond)
	token, _, err := tm.IssueSessionToken("conv-1", "")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = tm.ParseSessionToken(token)
	assert.Error(t, err)
}
