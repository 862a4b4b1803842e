package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfig_MissingSecretIsFatal(t *testing.T) {
	t.Setenv("WECARE_JWT_SECRET", "")

	_, err := LoadConfig(zap.NewNop())
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("WECARE_JWT_SECRET", "s3cret")

	cfg, err := LoadConfig(zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, "s3cret", cfg.JWTConfig.Secret)
	require.Equal(t, 12*time.Hour, cfg.JWTConfig.SessionTTL)
	require.Equal(t, "8080", cfg.AppConfig.Port)
	require.Equal(t, "lax", cfg.CookieConfig.SameSite)
	require.False(t, cfg.AppConfig.IsProduction())
}

func TestLoadConfig_BadDurationRejected(t *testing.T) {
	t.Setenv("WECARE_JWT_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "twelve hours")

	_, err := LoadConfig(zap.NewNop())
	require.Error(t, err)
}
