package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("requires database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("JWT_SECRET_KEY", "secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_URL")
	})

	t.Run("requires jwt secret", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/citadel")
		t.Setenv("JWT_SECRET_KEY", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
	})

	t.Run("defaults port to 8080", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/citadel")
		t.Setenv("JWT_SECRET_KEY", "secret")
		t.Setenv("SERVER_PORT", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.ServerPort)
	})

	t.Run("rejects invalid port", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/citadel")
		t.Setenv("JWT_SECRET_KEY", "secret")
		t.Setenv("SERVER_PORT", "70000")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("reads storage settings", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/citadel")
		t.Setenv("JWT_SECRET_KEY", "secret")
		t.Setenv("R2_BUCKET_NAME", "citadel-assets")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "citadel-assets", cfg.R2BucketName)
	})
}
