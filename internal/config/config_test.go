package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TICKET_CLOSED_STATE_NAMES", "")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "")
	t.Setenv("TICKET_TIME_ZONE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Auth.AccessTokenTTLMinutes)
	assert.Equal(t, 720, cfg.Auth.RefreshTokenTTLHours)
	assert.Equal(t, []string{"cerrado", "closed", "finalizado"}, cfg.Tickets.ClosedStateNames)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TICKET_CLOSED_STATE_NAMES", " Resuelto , done ,,")
	t.Setenv("ROLE_ADMIN_NAMES", "root")
	t.Setenv("AUTH_BCRYPT_COST", "not-a-number")
	t.Setenv("TICKET_TIME_ZONE", "America/Mexico_City")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Resuelto", "done"}, cfg.Tickets.ClosedStateNames)
	assert.Equal(t, []string{"root"}, cfg.Roles.AdminNames)
	assert.Equal(t, 12, cfg.Auth.BcryptCost, "unparsable ints fall back to defaults")

	loc, err := cfg.Tickets.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Mexico_City", loc.String())
}

func TestLoadRejectsUnknownTimeZone(t *testing.T) {
	t.Setenv("TICKET_TIME_ZONE", "Mars/Olympus_Mons")

	_, err := Load()
	assert.Error(t, err)
}

func TestRedisEnabled(t *testing.T) {
	assert.False(t, RedisConfig{}.Enabled())
	assert.True(t, RedisConfig{Addr: "127.0.0.1:6379"}.Enabled())
}
