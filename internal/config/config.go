package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	HTTPListenAddr string
	LogLevel       string
	ServiceName    string
	// BaseDir is the root of the managed deployment: it contains
	// docker-compose.yml and one directory per environment with
	// filestore/ and addons/ subdirectories.
	BaseDir string
	// DataDir holds the catalog database, backup artifacts, the audit
	// log and the repo registry.
	DataDir string
	// CopyTimeout bounds each subprocess invocation (pg_dump, psql,
	// tar, rsync) in minutes.
	SubprocessTimeoutMin int
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPListenAddr:       getEnv("HTTP_LISTEN_ADDR", ":9998"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		ServiceName:          getEnv("SERVICE_NAME", "dashboard-api"),
		BaseDir:              getEnv("BASE_DIR", "/srv/odoo"),
		DataDir:              getEnv("DATA_DIR", ""),
		SubprocessTimeoutMin: getEnvInt("SUBPROCESS_TIMEOUT_MIN", 30),
	}

	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(cfg.BaseDir, "backups")
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var missing []string
	if c.BaseDir == "" {
		missing = append(missing, "BASE_DIR")
	}
	if c.DataDir == "" {
		missing = append(missing, "DATA_DIR")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if c.SubprocessTimeoutMin <= 0 {
		return fmt.Errorf("SUBPROCESS_TIMEOUT_MIN must be positive")
	}
	return nil
}

// ComposeFile returns the path of the docker-compose.yml that defines
// the managed environments.
func (c *Config) ComposeFile() string {
	return filepath.Join(c.BaseDir, "docker-compose.yml")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return fallback
	}
	return n
}
