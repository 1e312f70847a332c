package utils

import (
	"crypto/tls"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	for _, k := range []string{"PG_HOST", "PG_PORT", "PG_USER", "PG_PASSWORD", "PG_DB", "PG_SSLMODE"} {
		t.Setenv(k, "")
	}
	assert.Equal(t, "postgres://postgres@localhost:5432/territory?sslmode=disable", BuildPostgresDSNFromEnv())

	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_USER", "sf")
	t.Setenv("PG_PASSWORD", "pw")
	t.Setenv("PG_DB", "catalogs")
	assert.Equal(t, "postgres://sf:pw@db:5432/catalogs?sslmode=disable", BuildPostgresDSNFromEnv())
}

func TestOpenRedis(t *testing.T) {
	assert.Nil(t, OpenRedis("", ""))
	t.Setenv("REDIS_ENABLE", "false")
	assert.Nil(t, OpenRedisFromEnv())

	t.Setenv("REDIS_ENABLE", "")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")
	c := OpenRedisFromEnv()
	require.NotNil(t, c)
	defer c.Close()
	assert.Equal(t, "cache:6380", c.Options().Addr)
	assert.Equal(t, 2, c.Options().DB)
}

func TestEnsureSelfSignedCert(t *testing.T) {
	dir := t.TempDir()
	cert, key := filepath.Join(dir, "tls", "cert.pem"), filepath.Join(dir, "tls", "key.pem")
	require.NoError(t, EnsureSelfSignedCert(cert, key, "territory.local"))
	_, err := tls.LoadX509KeyPair(cert, key)
	require.NoError(t, err)
	// 已存在时不重写
	require.NoError(t, EnsureSelfSignedCert(cert, key, "other"))
}
