package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Registry RegistryConfig
	Server   ServerConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Batch    BatchConfig
}

// RegistryConfig describes where the forms registry rows come from.
type RegistryConfig struct {
	// Driver is one of "xlsx", "postgres", "sqlite" or "" (no registry).
	Driver           string
	Source           string // workbook path or DSN
	Sheet            string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr       string
	MaxDocumentMB  int
	RequestTimeout time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Enabled     bool
	Pdftoppm    string
	TessdataDir string
	Language    string
	DPI         int
	MaxPages    int
}

// LLMConfig holds configuration for the special-provisions classifier.
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// BatchConfig holds batch runner configuration.
type BatchConfig struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Registry: RegistryConfig{
			Driver:           strings.ToLower(getEnv("REGISTRY_DRIVER", "")),
			Source:           getEnv("REGISTRY_SOURCE", ""),
			Sheet:            getEnv("REGISTRY_SHEET", "Forms"),
			MaxConns:         getEnvAsInt32("REGISTRY_MAX_CONNS", 4),
			MinConns:         getEnvAsInt32("REGISTRY_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("REGISTRY_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("REGISTRY_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("REGISTRY_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("REGISTRY_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr:       getEnv("GRPC_ADDR", ":8080"),
			MaxDocumentMB:  getEnvAsInt("MAX_DOCUMENT_MB", 25),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 2*time.Minute),
		},
		OCR: OCRConfig{
			Enabled:     getEnvAsBool("OCR_ENABLED", true),
			Pdftoppm:    getEnv("PDFTOPPM", "pdftoppm"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			Language:    getEnv("OCR_LANG", "eng"),
			DPI:         getEnvAsInt("OCR_DPI", 300),
			MaxPages:    getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		Batch: BatchConfig{
			Workers:        getEnvAsInt("BATCH_WORKERS", 4),
			QueueSize:      getEnvAsInt("BATCH_QUEUE_SIZE", 64),
			ProcessTimeout: getEnvAsDuration("BATCH_PROCESS_TIMEOUT", 3*time.Minute),
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

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Registry.Driver {
	case "":
	case "xlsx", "postgres", "sqlite":
		if c.Registry.Source == "" {
			return NewAppError(CodeConfig, "REGISTRY_SOURCE is required when REGISTRY_DRIVER is set", ErrConfiguration)
		}
	default:
		return NewAppError(CodeConfig, "REGISTRY_DRIVER must be one of xlsx, postgres, sqlite", ErrConfiguration)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError(CodeConfig, "GRPC_ADDR is required", ErrConfiguration)
	}
	if c.Batch.Workers <= 0 {
		return NewAppError(CodeConfig, "BATCH_WORKERS must be positive", ErrConfiguration)
	}
	return nil
}
