package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string
	DBPath     string
	BackupPath string
	LogLevel   string
	LogFormat  string
	LogFile    string
	TestMode   bool
	// FixedNow pins the clock used for status and MarkDone. Only honoured in
	// test mode.
	FixedNow *time.Time
}

// Load reads configuration from the environment. A .env file in the working
// directory, when present, fills in variables that are not already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		DBPath:     getEnv("DB_PATH", "/data/homeclean.db"),
		BackupPath: getEnv("BACKUP_PATH", "/data/backups"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "json"),
		LogFile:    getEnv("LOG_FILE", ""),
		TestMode:   os.Getenv("HOMECLEAN_TEST_MODE") == "1",
	}

	if cfg.TestMode {
		if raw := os.Getenv("HOMECLEAN_NOW"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse HOMECLEAN_NOW: %w", err)
			}
			t = t.UTC()
			cfg.FixedNow = &t
		}
	}
	return cfg, nil
}

// Clock returns the time source the application should use.
func (c *Config) Clock() func() time.Time {
	if c.FixedNow != nil {
		t := *c.FixedNow
		return func() time.Time { return t }
	}
	return time.Now
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
