package sys

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Token        string
	GuildID      string
	OwnerIDs     []string
	DataDir      string
	AlertsFile   string
	DatabasePath string
	StreamingURL string
	MetricsAddr  string
	Silent       bool

	StatusRotation   bool
	TickInterval     time.Duration
	DeliveryAttempts int
	SendRate         float64
	Limits           AlertLimits
}

var GlobalConfig *Config

// LoadConfig initializes the configuration from environment variables.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	dataDir := envOr("DATA_DIR", "data")

	cfg := &Config{
		Token:          os.Getenv("DISCORD_TOKEN"),
		GuildID:        os.Getenv("GUILD_ID"),
		OwnerIDs:       splitList(os.Getenv("OWNER_IDS")),
		DataDir:        dataDir,
		AlertsFile:     envOr("ALERTS_FILE", filepath.Join(dataDir, "alerts.json")),
		DatabasePath:   envOr("DATABASE_PATH", filepath.Join(dataDir, GetProjectName()+".db")),
		StreamingURL:   envOr("STREAMING_URL", "https://www.twitch.tv/ubisoft"),
		MetricsAddr:    os.Getenv("METRICS_ADDR"),
		StatusRotation: true,
		Limits:         DefaultAlertLimits(),
	}

	cfg.Silent, _ = strconv.ParseBool(os.Getenv("SILENT"))
	if v, err := strconv.ParseBool(envOr("STATUS_ROTATION", "true")); err == nil {
		cfg.StatusRotation = v
	}

	var err error
	if cfg.TickInterval, err = envDuration("ALERT_TICK_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Limits.MinRecurrence, err = envDuration("ALERT_MIN_RECURRENCE", cfg.Limits.MinRecurrence); err != nil {
		return nil, err
	}
	if cfg.Limits.SnoozeStep, err = envDuration("ALERT_SNOOZE", cfg.Limits.SnoozeStep); err != nil {
		return nil, err
	}
	if cfg.Limits.MaxPerOwner, err = envInt("ALERT_MAX_PER_OWNER", cfg.Limits.MaxPerOwner); err != nil {
		return nil, err
	}
	if cfg.DeliveryAttempts, err = envInt("ALERT_DELIVERY_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	rate, err := strconv.ParseFloat(envOr("ALERT_SEND_RATE", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ALERT_SEND_RATE: %w", err)
	}
	cfg.SendRate = rate

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Silent {
		SetSilentMode(true)
	}

	GlobalConfig = cfg
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf(MsgConfigMissingToken)
	}
	if c.GuildID != "" && (len(c.GuildID) < 17 || len(c.GuildID) > 20) {
		return fmt.Errorf("invalid GUILD_ID: must be a valid Snowflake")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("ALERT_TICK_INTERVAL must be positive")
	}
	if c.DeliveryAttempts < 1 {
		return fmt.Errorf("ALERT_DELIVERY_ATTEMPTS must be at least 1")
	}
	if c.SendRate <= 0 {
		return fmt.Errorf("ALERT_SEND_RATE must be positive")
	}
	return c.Limits.Validate()
}

// IsOwner reports whether userID is listed in OWNER_IDS.
func (c *Config) IsOwner(userID string) bool {
	for _, id := range c.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func GetProjectName() string {
	exePath, err := os.Executable()
	projectName := "jagerbot"
	if err == nil {
		projectName = strings.TrimSuffix(filepath.Base(exePath), ".exe")
		if projectName == "main" || strings.HasPrefix(projectName, "go_build_") || strings.HasSuffix(projectName, ".test") {
			projectName = "jagerbot"
		}
	}
	return projectName
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
