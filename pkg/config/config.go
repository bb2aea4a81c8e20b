// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Source and sink kinds
const (
	KindCSV       = "csv"
	KindXLSX      = "xlsx"
	KindSnowflake = "snowflake"
	KindPostgres  = "postgres"
)

// Default file locations, relative to the data root
const (
	DefaultInputPath  = "data/raw/Movie_Data_1920_to_2025.csv"
	DefaultOutputPath = "data/processed/Movie_Data_1920_to_2025_cleaned.csv"
)

var (
	// ErrMissingSetting is returned when a required setting is empty
	ErrMissingSetting = errors.New("required setting missing")
	// ErrInvalidSetting is returned when a setting has an unusable value
	ErrInvalidSetting = errors.New("invalid setting")
)

// Config represents the application configuration
type Config struct {
	// Where rows come from and go to
	InputPath    string `yaml:"input_path"`
	OutputPath   string `yaml:"output_path"`
	SourceKind   string `yaml:"source_kind"`
	SinkKind     string `yaml:"sink_kind"`
	SourceQuery  string `yaml:"source_query"`
	SourceTable  string `yaml:"source_table"`
	TargetSchema string `yaml:"target_schema"`
	TargetTable  string `yaml:"target_table"`

	// Cleaning settings
	MinReleaseYear   int  `yaml:"min_release_year"`
	MaxReleaseYear   int  `yaml:"max_release_year"`
	WorkerPoolSize   int  `yaml:"worker_pool_size"`
	ChunkSize        int  `yaml:"chunk_size"`
	RecordOperations bool `yaml:"record_operations"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Database connections, only loaded when a source or sink needs them
	Snowflake *SnowflakeConfig `yaml:"-"`
	Postgres  *PostgresConfig  `yaml:"-"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		InputPath:      DefaultInputPath,
		OutputPath:     DefaultOutputPath,
		SourceTable:    "movies",
		TargetSchema:   "public",
		TargetTable:    "movies_cleaned",
		MinReleaseYear: 1990,
		MaxReleaseYear: 2025,
		WorkerPoolSize: 0, // 0 means use runtime.NumCPU()
		ChunkSize:      5000,
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// an optional .env file and the environment, in increasing precedence.
func LoadConfig(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}
	cfg.overlayEnv()

	if cfg.needsSnowflake() {
		snowConfig, err := LoadSnowflakeConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load Snowflake configuration: %w", err)
		}
		cfg.Snowflake = snowConfig
	}

	if cfg.needsPostgres() {
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load PostgreSQL configuration: %w", err)
		}
		cfg.Postgres = pgConfig
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDotEnv reads a .env file when present. Variables already set win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return nil
}

func (c *Config) overlayEnv() {
	c.InputPath = getEnv("INPUT_PATH", c.InputPath)
	c.OutputPath = getEnv("OUTPUT_PATH", c.OutputPath)
	c.SourceKind = strings.ToLower(getEnv("SOURCE_KIND", c.SourceKind))
	c.SinkKind = strings.ToLower(getEnv("SINK_KIND", c.SinkKind))
	c.SourceQuery = getEnv("SOURCE_QUERY", c.SourceQuery)
	c.SourceTable = getEnv("SOURCE_TABLE", c.SourceTable)
	c.TargetSchema = getEnv("TARGET_SCHEMA", c.TargetSchema)
	c.TargetTable = getEnv("TARGET_TABLE", c.TargetTable)

	c.MinReleaseYear = getEnvAsInt("MIN_RELEASE_YEAR", c.MinReleaseYear)
	c.MaxReleaseYear = getEnvAsInt("MAX_RELEASE_YEAR", c.MaxReleaseYear)
	c.WorkerPoolSize = getEnvAsInt("WORKER_POOL_SIZE", c.WorkerPoolSize)
	c.ChunkSize = getEnvAsInt("CHUNK_SIZE", c.ChunkSize)
	c.RecordOperations = getEnvAsBool("RECORD_OPERATIONS", c.RecordOperations)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
}

func (c *Config) needsSnowflake() bool {
	return c.SourceKind == KindSnowflake
}

func (c *Config) needsPostgres() bool {
	return c.SinkKind == KindPostgres || c.RecordOperations
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.SourceKind {
	case "", KindCSV, KindXLSX:
		if c.InputPath == "" {
			return fmt.Errorf("%w: INPUT_PATH", ErrMissingSetting)
		}
	case KindSnowflake:
		if c.Snowflake == nil {
			return fmt.Errorf("%w: snowflake configuration", ErrMissingSetting)
		}
		if c.SourceQuery == "" {
			return fmt.Errorf("%w: SOURCE_QUERY", ErrMissingSetting)
		}
	default:
		return fmt.Errorf("%w: SOURCE_KIND %q", ErrInvalidSetting, c.SourceKind)
	}

	switch c.SinkKind {
	case "", KindCSV, KindXLSX:
		if c.OutputPath == "" {
			return fmt.Errorf("%w: OUTPUT_PATH", ErrMissingSetting)
		}
	case KindPostgres:
		if c.TargetTable == "" {
			return fmt.Errorf("%w: TARGET_TABLE", ErrMissingSetting)
		}
	default:
		return fmt.Errorf("%w: SINK_KIND %q", ErrInvalidSetting, c.SinkKind)
	}

	if c.needsPostgres() && c.Postgres == nil {
		return fmt.Errorf("%w: postgreSQL configuration", ErrMissingSetting)
	}

	if c.MinReleaseYear > c.MaxReleaseYear {
		return fmt.Errorf("%w: release year range %d..%d is empty", ErrInvalidSetting, c.MinReleaseYear, c.MaxReleaseYear)
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidSetting)
	}

	if c.WorkerPoolSize < 0 {
		return fmt.Errorf("%w: worker pool size cannot be negative", ErrInvalidSetting)
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
