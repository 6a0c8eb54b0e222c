// Package config manages configuration for the usagemig CLI.
// It uses Viper for unified configuration management from environment
// variables; nothing below the command layer reads the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/snikjou/usagemig/internal/constants"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config carries everything a migration run needs. It is loaded once by the
// command layer and passed into the migrator at construction.
type Config struct {
	// Document store
	Table           string `mapstructure:"table" validate:"required"`
	Index           string `mapstructure:"index" validate:"required"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`

	// Migration identity and predicate
	RunID   string `mapstructure:"run_id"`
	DocType string `mapstructure:"doc_type" validate:"required"`
	DocRole string `mapstructure:"doc_role" validate:"required"`

	// Batch and pagination knobs
	BatchSize     int  `mapstructure:"batch_size" validate:"gt=0"`
	Concurrency   int  `mapstructure:"concurrency" validate:"gt=0"`
	PageSize      int  `mapstructure:"page_size" validate:"gt=0"`
	MinPageSize   int  `mapstructure:"min_page_size" validate:"gt=0"`
	SpotCheckSize int  `mapstructure:"spot_check_size" validate:"gte=0"`
	SkipOversized bool `mapstructure:"skip_oversized"`

	// Ambient
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

var validate = validator.New()

// Load loads the configuration from environment variables with the
// USAGEMIG_ prefix and validates it.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("USAGEMIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Manually bind all env vars for better control
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.MinPageSize > cfg.PageSize {
		return nil, fmt.Errorf("min_page_size (%d) cannot exceed page_size (%d)", cfg.MinPageSize, cfg.PageSize)
	}

	return &cfg, nil
}

// RequireRunID verifies a run identifier is configured. Forward and revert
// runs refuse to start without one: it is the provenance marker that scopes
// what a later revert is allowed to touch.
func (c *Config) RequireRunID() error {
	if strings.TrimSpace(c.RunID) == "" {
		return fmt.Errorf("USAGEMIG_RUN_ID is empty - set it to this migration's run identifier")
	}
	return nil
}

// GetLogLevel returns the slog.Level from the string configuration.
// Defaults to INFO if the level string is invalid.
func (c *Config) GetLogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Environment maps the env string onto a logger environment.
func (c *Config) Environment() constants.Environment {
	if strings.EqualFold(c.Env, string(constants.Production)) {
		return constants.Production
	}
	return constants.CLI
}

// Helper functions

func setDefaults(v *viper.Viper) {
	v.SetDefault("index", constants.DefaultIndexName)
	v.SetDefault("doc_type", constants.DefaultDocType)
	v.SetDefault("doc_role", constants.DefaultDocRole)
	v.SetDefault("batch_size", constants.DefaultBatchSize)
	v.SetDefault("concurrency", constants.DefaultConcurrency)
	v.SetDefault("page_size", constants.DefaultPageSize)
	v.SetDefault("min_page_size", constants.MinPageSize)
	v.SetDefault("spot_check_size", constants.DefaultSpotCheckSize)
	v.SetDefault("skip_oversized", false)
	v.SetDefault("env", string(constants.CLI))
	v.SetDefault("log_level", "INFO")
}

func bindEnvVars(v *viper.Viper) {
	// Bind all environment variables explicitly
	envVars := []string{
		"ACCESS_KEY_ID",
		"BATCH_SIZE",
		"CONCURRENCY",
		"DOC_ROLE",
		"DOC_TYPE",
		"ENDPOINT",
		"ENV",
		"INDEX",
		"LOG_LEVEL",
		"MIN_PAGE_SIZE",
		"PAGE_SIZE",
		"REGION",
		"RUN_ID",
		"SECRET_ACCESS_KEY",
		"SKIP_OVERSIZED",
		"SPOT_CHECK_SIZE",
		"TABLE",
	}

	for _, envVar := range envVars {
		configKey := strings.ToLower(envVar)
		_ = v.BindEnv(configKey, "USAGEMIG_"+envVar)
	}
}
