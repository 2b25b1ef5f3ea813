package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Ledger backends
const (
	LedgerBackendCSV      = "csv"
	LedgerBackendSQLite   = "sqlite"
	LedgerBackendPostgres = "postgres"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Input
	DataDir        string // per-instrument bar files (.csv / .parquet)
	NameListFile   string // "code name" lines, any of utf-8 / gbk / utf-16
	RestrictToList bool   // only scan codes present in the name list

	// Strategy rule table (YAML). Empty means built-in defaults.
	StrategyFile string

	// Output
	OutputDir  string
	ArchiveDir string

	// Processing
	Workers int

	// Ledger persistence
	Ledger LedgerConfig

	// Database (only used by the postgres ledger backend)
	Database DatabaseConfig

	// API
	Port         string
	APIRateLimit float64 // requests per second
	APIBurst     int

	// Scheduler (cron expressions with seconds)
	ScanSchedule        string
	PerformanceSchedule string
	JobMaxRetries       int
	JobRetryDelay       time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// LedgerConfig selects where the position ledger lives
type LedgerConfig struct {
	Backend    string // csv | sqlite | postgres
	File       string // csv backend
	SQLitePath string // sqlite backend
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL    string
	Schema string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	outputDir := getEnv("OUTPUT_DIR", "output")

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		DataDir:        getEnv("DATA_DIR", "fund_data"),
		NameListFile:   getEnv("NAME_LIST_FILE", "ETF列表.txt"),
		RestrictToList: getEnvAsBool("RESTRICT_TO_LIST", false),

		StrategyFile: getEnv("STRATEGY_FILE", ""),

		OutputDir:  outputDir,
		ArchiveDir: getEnv("ARCHIVE_DIR", filepath.Join(outputDir, "archive")),

		Workers: getEnvAsInt("WORKERS", runtime.NumCPU()),

		Ledger: LedgerConfig{
			Backend:    getEnv("LEDGER_BACKEND", LedgerBackendCSV),
			File:       getEnv("LEDGER_FILE", filepath.Join(outputDir, "positions.csv")),
			SQLitePath: getEnv("LEDGER_SQLITE_PATH", filepath.Join(outputDir, "dipscan.db")),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Schema:          getEnv("DB_SCHEMA", "dipscan"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 5),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Port:         getEnv("PORT", "8089"),
		APIRateLimit: getEnvAsFloat("API_RATE_LIMIT", 5),
		APIBurst:     getEnvAsInt("API_BURST", 10),

		// 평일 오후 4시 (장 마감 후)
		ScanSchedule:        getEnv("SCAN_SCHEDULE", "0 0 16 * * 1-5"),
		PerformanceSchedule: getEnv("PERFORMANCE_SCHEDULE", "0 30 16 * * 1-5"),
		JobMaxRetries:       getEnvAsInt("JOB_MAX_RETRIES", 3),
		JobRetryDelay:       getEnvAsDuration("JOB_RETRY_DELAY", "1m"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}

	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be >= 1, got %d", c.Workers)
	}

	switch c.Ledger.Backend {
	case LedgerBackendCSV:
		if c.Ledger.File == "" {
			return fmt.Errorf("LEDGER_FILE is required for the csv ledger backend")
		}
	case LedgerBackendSQLite:
		if c.Ledger.SQLitePath == "" {
			return fmt.Errorf("LEDGER_SQLITE_PATH is required for the sqlite ledger backend")
		}
	case LedgerBackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres ledger backend")
		}
	default:
		return fmt.Errorf("LEDGER_BACKEND must be one of: csv, sqlite, postgres")
	}

	if c.JobMaxRetries < 0 {
		return fmt.Errorf("JOB_MAX_RETRIES must be >= 0, got %d", c.JobMaxRetries)
	}

	if c.APIRateLimit <= 0 {
		return fmt.Errorf("API_RATE_LIMIT must be > 0")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
