// Package config provides application configuration loaded from
// environment variables.
package config

import (
	"os"
	"strconv"

	"github.com/facturo/facturo/internal/paginate"
)

// Config holds all application configuration.
type Config struct {
	// RemoteDSN is the Postgres connection string for the durable remote
	// store. Empty means no remote is configured: the session runs on the
	// local store only and never attempts a connection.
	RemoteDSN string

	// LocalPath is the SQLite file backing the on-device store.
	LocalPath string

	// MaxPayloadBytes caps a single image payload per remote write.
	MaxPayloadBytes int

	// MaxBatchRecords caps the rows written per atomic remote batch.
	MaxBatchRecords int

	// RemoteTimeoutSeconds bounds every remote operation.
	RemoteTimeoutSeconds int

	// Layout holds the pagination height model. The constants are tuned
	// for the stock print template; override them when the template
	// changes.
	Layout paginate.Layout
}

// Load reads configuration from environment variables with sensible
// defaults for local use.
func Load() *Config {
	layout := paginate.DefaultLayout()
	layout.PageHeight = getEnvInt("PAGE_HEIGHT", layout.PageHeight)
	layout.HeaderHeight = getEnvInt("PAGE_HEADER_HEIGHT", layout.HeaderHeight)
	layout.TopMargin = getEnvInt("PAGE_TOP_MARGIN", layout.TopMargin)
	layout.FooterHeight = getEnvInt("PAGE_FOOTER_HEIGHT", layout.FooterHeight)
	layout.BaseItemHeight = getEnvInt("PAGE_ITEM_HEIGHT", layout.BaseItemHeight)
	layout.ImageRowHeight = getEnvInt("PAGE_IMAGE_ROW_HEIGHT", layout.ImageRowHeight)
	layout.ImagesPerRow = getEnvInt("PAGE_IMAGES_PER_ROW", layout.ImagesPerRow)

	return &Config{
		RemoteDSN:            getEnv("REMOTE_DSN", ""),
		LocalPath:            getEnv("LOCAL_DB_PATH", "facturo.db"),
		MaxPayloadBytes:      getEnvInt("MAX_IMAGE_BYTES", 1<<20),
		MaxBatchRecords:      getEnvInt("MAX_BATCH_RECORDS", 500),
		RemoteTimeoutSeconds: getEnvInt("REMOTE_TIMEOUT", 15),
		Layout:               layout,
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
