package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "user-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 5, cfg.Auth.MaxFailedLogins)
	assert.Equal(t, 60, cfg.Auth.AccessTokenTTLMinutes)
	assert.Equal(t, "user-events", cfg.Events.UserEventsStream)
	assert.Equal(t, "notifications", cfg.Events.NotificationsStream)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_MAX_FAILED_LOGINS", "3")
	t.Setenv("EVENTS_USER_STREAM", "accounts")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 3, cfg.Auth.MaxFailedLogins)
	assert.Equal(t, "accounts", cfg.Events.UserEventsStream)
}
