// Package config loads and validates the application configuration: a YAML
// file merged with APPLYPILOT_* environment overrides via viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/applypilot/internal/profile"
)

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for the Chrome session.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	Args              []string      `mapstructure:"args" yaml:"args"`
	WaitTimeout       time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	StepDelay         time.Duration `mapstructure:"step_delay" yaml:"step_delay"`
}

// SearchConfig tunes the job search loop.
type SearchConfig struct {
	JobTitles        []string      `mapstructure:"job_titles" yaml:"job_titles"`
	Locations        []string      `mapstructure:"locations" yaml:"locations"`
	MaxApplications  int           `mapstructure:"max_applications" yaml:"max_applications"`
	EasyApplyOnly    bool          `mapstructure:"easy_apply_only" yaml:"easy_apply_only"`
	DatePosted       string        `mapstructure:"date_posted" yaml:"date_posted"`
	ExperienceLevels []string      `mapstructure:"experience_levels" yaml:"experience_levels"`
	ApplyInterval    time.Duration `mapstructure:"apply_interval" yaml:"apply_interval"`
}

// CredentialsConfig holds the LinkedIn login. Prefer the environment
// variables APPLYPILOT_LINKEDIN_EMAIL / APPLYPILOT_LINKEDIN_PASSWORD over
// the file.
type CredentialsConfig struct {
	Email    string `mapstructure:"email" yaml:"email"`
	Password string `mapstructure:"password" yaml:"password"`
}

// DocumentsConfig points at the files offered to upload fields.
type DocumentsConfig struct {
	CVPath          string `mapstructure:"cv_path" yaml:"cv_path"`
	CoverLetterPath string `mapstructure:"cover_letter_path" yaml:"cover_letter_path"`
}

// LedgerConfig selects the outcome store.
type LedgerConfig struct {
	Backend     string `mapstructure:"backend" yaml:"backend"`
	CSVPath     string `mapstructure:"csv_path" yaml:"csv_path"`
	DatabaseURL string `mapstructure:"database_url" yaml:"database_url"`
}

// AssistantConfig enables the optional Gemini composer for free-text
// questions the profile cannot answer.
type AssistantConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	Model   string `mapstructure:"model" yaml:"model"`
}

// Config is the full application configuration. The profile fact tables and
// rule lists live at the top level of the file, matching the layout users
// already have.
type Config struct {
	Logger    LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	Browser   BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	Search    SearchConfig      `mapstructure:"search" yaml:"search"`
	LinkedIn  CredentialsConfig `mapstructure:"linkedin" yaml:"linkedin"`
	Documents DocumentsConfig   `mapstructure:"documents" yaml:"documents"`
	Ledger    LedgerConfig      `mapstructure:"ledger" yaml:"ledger"`
	Assistant AssistantConfig   `mapstructure:"assistant" yaml:"assistant"`

	Profile profile.Profile `mapstructure:",squash" yaml:",inline"`
}

// SetDefaults registers every default on v. Called before reading the file
// so partial configurations stay valid.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "applypilot")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)

	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.wait_timeout", 10*time.Second)
	v.SetDefault("browser.navigation_timeout", 90*time.Second)
	v.SetDefault("browser.step_delay", time.Second)

	v.SetDefault("search.locations", []string{"Bangalore"})
	v.SetDefault("search.max_applications", 50)
	v.SetDefault("search.easy_apply_only", true)
	v.SetDefault("search.date_posted", "past_month")
	v.SetDefault("search.apply_interval", 30*time.Second)

	v.SetDefault("ledger.backend", "csv")
	v.SetDefault("ledger.csv_path", "Applications.csv")

	v.SetDefault("assistant.model", "gemini-2.0-flash")

	// Work-authorization default: authorized unless the profile says
	// otherwise.
	v.SetDefault("eligibility.legally_authorized", true)
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Profile.Normalize()
	return &cfg, nil
}

// Validate rejects configurations the run loop cannot act on.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Ledger.Backend) {
	case "csv":
		if c.Ledger.CSVPath == "" {
			return fmt.Errorf("ledger.csv_path is required for the csv backend")
		}
	case "postgres":
		if c.Ledger.DatabaseURL == "" {
			return fmt.Errorf("ledger.database_url is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown ledger backend %q (want csv or postgres)", c.Ledger.Backend)
	}

	if c.Search.MaxApplications < 0 {
		return fmt.Errorf("search.max_applications cannot be negative")
	}
	if c.Assistant.Enabled && c.Assistant.APIKey == "" {
		return fmt.Errorf("assistant.api_key is required when the assistant is enabled")
	}
	return nil
}

// PlaceholderCredentials reports whether the login looks like the template
// file was copied without being filled in.
func (c *Config) PlaceholderCredentials() bool {
	return c.LinkedIn.Email == "" || strings.HasPrefix(c.LinkedIn.Email, "your_")
}
