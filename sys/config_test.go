package sys

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("OWNER_IDS", " 111, 222 ,")
	t.Setenv("DATA_DIR", "var")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"111", "222"}, cfg.OwnerIDs)
	assert.Equal(t, filepath.Join("var", "alerts.json"), cfg.AlertsFile)
	assert.Equal(t, filepath.Join("var", "jagerbot.db"), cfg.DatabasePath)
	assert.Equal(t, 30*time.Second, cfg.TickInterval)
	assert.Equal(t, 3, cfg.DeliveryAttempts)
	assert.Equal(t, 5.0, cfg.SendRate)
	assert.True(t, cfg.StatusRotation)
	assert.Equal(t, DefaultAlertLimits(), cfg.Limits)
	assert.Same(t, cfg, GlobalConfig)

	assert.True(t, cfg.IsOwner("222"))
	assert.False(t, cfg.IsOwner("333"))
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("ALERT_TICK_INTERVAL", "5s")
	t.Setenv("ALERT_MAX_PER_OWNER", "3")
	t.Setenv("ALERT_SNOOZE", "1h")
	t.Setenv("ALERT_DELIVERY_ATTEMPTS", "1")
	t.Setenv("STATUS_ROTATION", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.TickInterval)
	assert.Equal(t, 3, cfg.Limits.MaxPerOwner)
	assert.Equal(t, time.Hour, cfg.Limits.SnoozeStep)
	assert.Equal(t, 1, cfg.DeliveryAttempts)
	assert.False(t, cfg.StatusRotation)
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing token", map[string]string{"DISCORD_TOKEN": ""}},
		{"short guild", map[string]string{"GUILD_ID": "123"}},
		{"bad interval", map[string]string{"ALERT_TICK_INTERVAL": "soon"}},
		{"zero attempts", map[string]string{"ALERT_DELIVERY_ATTEMPTS": "0"}},
		{"zero cap", map[string]string{"ALERT_MAX_PER_OWNER": "0"}},
		{"negative rate", map[string]string{"ALERT_SEND_RATE": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DISCORD_TOKEN", "token")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
