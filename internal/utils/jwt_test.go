package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medichain-server/internal/config"
	"medichain-server/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                 "access-secret",
		JWTRefreshSecret:          "refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 168,
	}
}

func TestGenerateAndValidateTokens(t *testing.T) {
	cfg := testConfig()
	user := &models.User{
		Role: models.RoleDoctor,
		DID:  "did:hedera:testnet:0.0.5002",
	}
	user.ID = "user-1"

	access, refresh, err := GenerateTokens(user, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claims, err := ValidateToken(access, cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleDoctor, claims.Role)
	assert.Equal(t, user.DID, claims.DID)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	cfg := testConfig()
	user := &models.User{Role: models.RolePatient}
	user.ID = "user-1"

	access, _, err := GenerateTokens(user, cfg)
	require.NoError(t, err)

	_, err = ValidateToken(access, "some-other-secret")
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token", "access-secret")
	assert.Error(t, err)
}

func TestContentHashIsStable(t *testing.T) {
	a := ContentHash([]byte("record body"))
	b := ContentHash([]byte("record body"))
	c := ContentHash([]byte("record body."))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
