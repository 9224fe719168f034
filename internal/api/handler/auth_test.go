package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	h := NewHandler(nil, nil, nil, "test-secret")

	token, err := h.generateJWT("anon-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	anonID, err := h.validateAndGetAnonID(token)
	require.NoError(t, err)
	assert.Equal(t, "anon-123", anonID)
}

func TestJWTWrongSecretRejected(t *testing.T) {
	h := NewHandler(nil, nil, nil, "test-secret")
	other := NewHandler(nil, nil, nil, "other-secret")

	token, err := h.generateJWT("anon-123")
	require.NoError(t, err)

	_, err = other.validateAndGetAnonID(token)
	assert.Error(t, err)
}

func TestJWTGarbageRejected(t *testing.T) {
	h := NewHandler(nil, nil, nil, "test-secret")

	_, err := h.validateAndGetAnonID("not-a-token")
	assert.Error(t, err)
}
