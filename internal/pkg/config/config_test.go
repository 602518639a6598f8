package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSecretExplicit(t *testing.T) {
	cfg := &Config{}
	cfg.Auth.JWT.Secret = "  configured-secret  "

	secret, err := cfg.ResolveSecret()
	require.NoError(t, err)
	assert.Equal(t, "configured-secret", secret)
}

func TestResolveSecretReleaseRequiresConfig(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Mode = "release"

	_, err := cfg.ResolveSecret()
	assert.Error(t, err)
}

func TestResolveSecretDevGeneratesAndCaches(t *testing.T) {
	cacheFile := filepath.Join(t.TempDir(), ".jwt-secret")

	cfg := &Config{}
	cfg.Server.Mode = "debug"
	cfg.Auth.JWT.SecretFile = cacheFile

	first, err := cfg.ResolveSecret()
	require.NoError(t, err)
	assert.Len(t, first, 64) // 32字节hex

	// 第二次读取缓存，保持稳定
	second, err := cfg.ResolveSecret()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
