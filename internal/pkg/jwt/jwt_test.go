package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tms-server/internal/pkg/config"
)

func TestGenerateAndValidateToken(t *testing.T) {
	config.GlobalConfig = &config.Config{}
	Init("test-secret")

	token, err := GenerateToken(1, "admin@example.com", "管理员", "ADMIN", "ACTIVE")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "ACTIVE", claims.Status)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	config.GlobalConfig = &config.Config{}

	Init("secret-a")
	token, err := GenerateToken(1, "a@example.com", "a", "USER", "ACTIVE")
	require.NoError(t, err)

	Init("secret-b")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	config.GlobalConfig = &config.Config{}
	Init("test-secret")

	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}
