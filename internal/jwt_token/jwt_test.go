package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/trackback-blockchain/plug-blockchain/pkg/domain-errors"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
	"github.com/trackback-blockchain/plug-blockchain/pkg/requestcontext"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)
var expiresIn = time.Hour

func Test_GenerateToken_Account(t *testing.T) {
	token, err := jwtService.GenerateToken(requestcontext.AccountPrincipal(42), expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.False(t, principal.Root)
	assert.Equal(t, domain.AccountID(42), principal.Account)
}

func Test_GenerateToken_Root(t *testing.T) {
	token, err := jwtService.GenerateToken(requestcontext.RootPrincipal(), expiresIn)
	require.NoError(t, err)

	principal, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, principal.Root)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateToken(requestcontext.AccountPrincipal(42), -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewJWTService("different-key", "test-issuer", "test-audience")
	token, err := other.GenerateToken(requestcontext.AccountPrincipal(42), expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
