package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Storage drivers for catch sessions and harvest records.
const (
	StorageMongoDB = "mongodb"
	StorageMemory  = "memory"
)

// Reference data sources for flocks, daily records, curves and crates.
const (
	ReferenceSheets = "sheets"
	ReferenceMemory = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	MongoDB   MongoDBConfig
	Catching  CatchingConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// StorageConfig selects the persistence and reference data backends.
type StorageConfig struct {
	Driver          string
	ReferenceSource string
	// ReferenceDataPath is the JSON seed read when ReferenceSource is memory.
	ReferenceDataPath string
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API. Leaving
// the token empty disables outbound notifications.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	ManagerID     string
}

// Enabled reports whether outbound WhatsApp messages can be sent.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != ""
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// CatchingConfig holds catch planning parameters.
type CatchingConfig struct {
	ShrinkageFraction float64
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	shrinkage, err := strconv.ParseFloat(getenvWithDefault("SHRINKAGE_FRACTION", "0.055"), 64)
	if err != nil {
		return nil, fmt.Errorf("SHRINKAGE_FRACTION must be a number: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Driver:            getenvWithDefault("STORAGE_DRIVER", StorageMongoDB),
			ReferenceSource:   getenvWithDefault("REFERENCE_SOURCE", ReferenceSheets),
			ReferenceDataPath: os.Getenv("REFERENCE_DATA_PATH"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ManagerID:     os.Getenv("WHATSAPP_MANAGER_ID"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("DIGEST_CRON_SCHEDULE", "0 6 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Africa/Conakry"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "broiler"),
		},
		Catching: CatchingConfig{
			ShrinkageFraction: shrinkage,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageMongoDB, StorageMemory, c.Storage.Driver)
	}

	switch c.Storage.ReferenceSource {
	case ReferenceMemory:
		if c.Storage.ReferenceDataPath == "" {
			return errors.New("REFERENCE_DATA_PATH must be provided when REFERENCE_SOURCE is memory")
		}
	case ReferenceSheets:
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
		}
	default:
		return fmt.Errorf("REFERENCE_SOURCE must be %q or %q, got %q", ReferenceSheets, ReferenceMemory, c.Storage.ReferenceSource)
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		case c.WhatsApp.ManagerID == "":
			return errors.New("WHATSAPP_MANAGER_ID must be provided")
		}
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("DIGEST_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.Catching.ShrinkageFraction < 0 || c.Catching.ShrinkageFraction >= 1 {
		return fmt.Errorf("SHRINKAGE_FRACTION must be in [0, 1), got %v", c.Catching.ShrinkageFraction)
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
