package sys

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB holds bot state that is not part of the alert file: command sync
// bookkeeping and per-user settings.
var DB *sql.DB

func InitDatabase(ctx context.Context, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	var err error
	DB, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	DB.SetMaxOpenConns(5)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, p := range pragmas {
		if _, err := DB.ExecContext(initCtx, p); err != nil {
			return fmt.Errorf(MsgDatabasePragmaError, p, err)
		}
	}

	tx, err := DB.BeginTx(initCtx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tableQueries := []string{
		`CREATE TABLE IF NOT EXISTS bot_config (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS user_settings (
			user_id TEXT PRIMARY KEY,
			timezone TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, q := range tableQueries {
		if _, err := tx.ExecContext(initCtx, q); err != nil {
			return fmt.Errorf(MsgDatabaseTableError, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	LogDatabase(MsgDatabaseInitSuccess)
	return nil
}

func CloseDatabase() {
	if DB != nil {
		DB.Close()
	}
}

// --- Bot Config ---

func GetBotConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := DB.QueryRowContext(ctx, "SELECT value FROM bot_config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func SetBotConfig(ctx context.Context, key, value string) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO bot_config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// --- User Settings ---

// GetUserTimezone returns the stored IANA zone name, or "" if unset.
func GetUserTimezone(ctx context.Context, userID string) (string, error) {
	var tz string
	err := DB.QueryRowContext(ctx, "SELECT timezone FROM user_settings WHERE user_id = ?", userID).Scan(&tz)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return tz, err
}

func SetUserTimezone(ctx context.Context, userID, tz string) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, timezone) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET timezone = excluded.timezone, updated_at = CURRENT_TIMESTAMP
	`, userID, tz)
	return err
}

// UserLocation resolves the user's saved timezone, falling back to UTC.
func UserLocation(ctx context.Context, userID string) *time.Location {
	if DB == nil {
		return time.UTC
	}
	tz, err := GetUserTimezone(ctx, userID)
	if err != nil || tz == "" {
		return time.UTC
	}
	loc, _, err := ResolveTimezone(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}
