package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openengine/openengine/internal/auth"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := auth.HashPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, auth.VerifyPassword(hash, "hunter2"))
	assert.ErrorIs(t, auth.VerifyPassword(hash, "hunter3"), auth.ErrInvalidCredentials)
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	first, err := auth.HashPassword("same password")
	require.NoError(t, err)
	second, err := auth.HashPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each hash must carry a fresh salt")
	require.NoError(t, auth.VerifyPassword(first, "same password"))
	require.NoError(t, auth.VerifyPassword(second, "same password"))
}

func TestVerifyPassword_MalformedHashes(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{name: "empty", hash: ""},
		{name: "not a phc string", hash: "plaintext"},
		{name: "wrong algorithm", hash: "$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"},
		{name: "wrong version", hash: "$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA"},
		{name: "bad parameters", hash: "$argon2id$v=19$m=abc$c2FsdA$aGFzaA"},
		{name: "bad salt encoding", hash: "$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA"},
		{name: "bad key encoding", hash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, auth.VerifyPassword(tt.hash, "pw"), auth.ErrMalformedHash)
		})
	}
}
