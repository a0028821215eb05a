package common

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all application configuration
type Config struct {
	Workspace WorkspaceConfig
	Database  DatabaseConfig
	Labels    LabelConfig
}

// WorkspaceConfig holds filesystem layout configuration
type WorkspaceConfig struct {
	Root string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path        string
	BusyTimeout time.Duration
}

// LabelConfig holds label/QR derivation configuration
type LabelConfig struct {
	// QRTarget selects which URL the QR code encodes: "purchase" or "airtable".
	QRTarget string
	// AirtableItemURLTemplate supports {part_key}, {vendor} and {sku} tokens,
	// e.g. "https://airtable.com/appXXXX/tblYYYY/{part_key}".
	AirtableItemURLTemplate string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	root := getEnv("STUDIO_INV_HOME", "")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		root = filepath.Join(home, "StudioInventory")
	}
	return &Config{
		Workspace: WorkspaceConfig{
			Root: root,
		},
		Database: DatabaseConfig{
			Path:        getEnv("STUDIO_INV_DB", filepath.Join(root, "studio_inventory.sqlite")),
			BusyTimeout: getEnvAsDuration("STUDIO_INV_DB_BUSY_TIMEOUT", 5*time.Second),
		},
		Labels: LabelConfig{
			QRTarget:                getEnv("QR_TARGET", "purchase"),
			AirtableItemURLTemplate: getEnv("AIRTABLE_ITEM_URL_TEMPLATE", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Workspace.Root == "" {
		return NewAppError("CONFIG_ERROR", "workspace root is required", ErrInvalidInput)
	}
	if c.Database.Path == "" {
		return NewAppError("CONFIG_ERROR", "database path is required", ErrInvalidInput)
	}
	if t := c.Labels.QRTarget; t != "purchase" && t != "airtable" {
		return NewAppError("CONFIG_ERROR", "QR_TARGET must be 'purchase' or 'airtable'", ErrInvalidInput)
	}
	return nil
}
