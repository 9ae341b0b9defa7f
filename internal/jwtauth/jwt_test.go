package jwtauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "amlcase/pkg/domain-errors"
)

func TestService_RoundTrip(t *testing.T) {
	svc := NewService("test-signing-key", "amlcase", "amlcase-api")

	token, err := svc.GenerateToken("officer.khan", time.Hour)
	require.NoError(t, err)

	subject, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "officer.khan", subject)
}

func TestService_RejectsExpired(t *testing.T) {
	svc := NewService("test-signing-key", "amlcase", "amlcase-api")

	token, err := svc.GenerateToken("officer.khan", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestService_RejectsWrongKey(t *testing.T) {
	minter := NewService("key-one", "amlcase", "amlcase-api")
	verifier := NewService("key-two", "amlcase", "amlcase-api")

	token, err := minter.GenerateToken("officer.khan", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestService_RejectsWrongAudience(t *testing.T) {
	minter := NewService("shared-key", "amlcase", "other-api")
	verifier := NewService("shared-key", "amlcase", "amlcase-api")

	token, err := minter.GenerateToken("officer.khan", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
}
