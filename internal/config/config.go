package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fluxbase-eu/bundlescore/internal/scoring"
)

// EnvPrefix is the prefix of environment variables overriding config keys
const EnvPrefix = "BUNDLESCORE"

// Config represents the analyzer configuration
type Config struct {
	// BaseDir anchors relative paths; empty means the working directory
	BaseDir  string        `mapstructure:"base_dir" yaml:"base_dir,omitempty" json:"base_dir,omitempty"`
	BuildDir string        `mapstructure:"build_dir" yaml:"build_dir" json:"build_dir"`
	Artifact string        `mapstructure:"artifact" yaml:"artifact" json:"artifact"`
	Target   float64       `mapstructure:"target" yaml:"target" json:"target"`
	Report   ReportConfig  `mapstructure:"report" yaml:"report" json:"report"`
	Scoring  scoring.Rules `mapstructure:"scoring" yaml:"scoring" json:"scoring"`
	Metrics  MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
	Tracing  TracingConfig `mapstructure:"tracing" yaml:"tracing" json:"tracing"`
	Logging  LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
	Debug    bool          `mapstructure:"debug" yaml:"debug" json:"debug"`
}

// ReportConfig controls the text report
type ReportConfig struct {
	Top     int  `mapstructure:"top" yaml:"top" json:"top"`             // 0 lists every file
	Compare bool `mapstructure:"compare" yaml:"compare" json:"compare"` // diff against the previous artifact
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	File string `mapstructure:"file" yaml:"file" json:"file"` // empty disables the export
}

// TracingConfig contains OpenTelemetry settings
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Endpoint    string  `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`
	ServiceName string  `mapstructure:"service_name" yaml:"service_name" json:"service_name"`
	Environment string  `mapstructure:"environment" yaml:"environment" json:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" yaml:"sample_rate" json:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure" yaml:"insecure" json:"insecure"`
}

// LoggingConfig contains console logging settings
type LoggingConfig struct {
	ConsoleLevel  string `mapstructure:"console_level" yaml:"console_level" json:"console_level"`
	ConsoleFormat string `mapstructure:"console_format" yaml:"console_format" json:"console_format"` // console or json
}

// Load loads configuration from file and environment variables.
// An empty cfgFile searches ./bundlescore.yaml and ./config/bundlescore.yaml.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("bundlescore")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	// Enable environment variable support with underscore replacer
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("No config file found, using environment variables and defaults")
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("Config file loaded")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	config.applyScoringDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads environment variables from .env file
func loadEnvFile() error {
	locations := []string{
		".env",
		".env.local",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			if err := godotenv.Load(location); err != nil {
				return fmt.Errorf("error loading .env file from %s: %w", location, err)
			}
			log.Debug().Str("file", location).Msg(".env file loaded")
			return nil
		}
	}

	return fmt.Errorf("no .env file found")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	rules := scoring.DefaultRules()

	v.SetDefault("base_dir", "")
	v.SetDefault("build_dir", "dist")
	v.SetDefault("artifact", "bundle-analysis.json")
	v.SetDefault("target", scoring.DefaultTarget)

	// Report defaults
	v.SetDefault("report.top", 0)
	v.SetDefault("report.compare", false)

	// Scoring bounds; brackets are filled by applyScoringDefaults
	v.SetDefault("scoring.base", rules.Base)
	v.SetDefault("scoring.min", rules.Min)
	v.SetDefault("scoring.max", rules.Max)

	v.SetDefault("metrics.file", "")

	// Tracing defaults
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.service_name", "bundlescore")
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("tracing.sample_rate", 1.0)
	v.SetDefault("tracing.insecure", true)

	// Logging defaults
	v.SetDefault("logging.console_level", "info")
	v.SetDefault("logging.console_format", "console")

	v.SetDefault("debug", false)
}

// applyScoringDefaults fills every bracket list the config left unset
func (c *Config) applyScoringDefaults() {
	rules := scoring.DefaultRules()
	if c.Scoring.TotalSizeMB == nil {
		c.Scoring.TotalSizeMB = rules.TotalSizeMB
	}
	if c.Scoring.JSSizeMB == nil {
		c.Scoring.JSSizeMB = rules.JSSizeMB
	}
	if c.Scoring.Chunks == nil {
		c.Scoring.Chunks = rules.Chunks
	}
	if c.Scoring.CSSSizeKB == nil {
		c.Scoring.CSSSizeKB = rules.CSSSizeKB
	}
}

// Default returns the configuration Load produces without file or environment
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	// Decoding plain defaults cannot fail
	_ = v.Unmarshal(&config)
	config.applyScoringDefaults()
	return &config
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BuildDir == "" {
		return fmt.Errorf("build_dir cannot be empty")
	}

	if c.Artifact == "" {
		return fmt.Errorf("artifact cannot be empty")
	}

	if err := c.Scoring.Validate(); err != nil {
		return err
	}

	if c.Target < c.Scoring.Min || c.Target > c.Scoring.Max {
		return fmt.Errorf("target must be between %g and %g", c.Scoring.Min, c.Scoring.Max)
	}

	if c.Report.Top < 0 {
		return fmt.Errorf("report.top cannot be negative")
	}

	if err := c.Tracing.Validate(); err != nil {
		return fmt.Errorf("tracing configuration error: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging configuration error: %w", err)
	}

	return nil
}

// Validate validates tracing configuration
func (tc *TracingConfig) Validate() error {
	if !tc.Enabled {
		return nil
	}

	if tc.Endpoint == "" {
		return fmt.Errorf("tracing endpoint is required when tracing is enabled")
	}

	if tc.SampleRate < 0 || tc.SampleRate > 1 {
		return fmt.Errorf("sample_rate must be between 0.0 and 1.0, got: %f", tc.SampleRate)
	}

	return nil
}

// Validate validates logging configuration
func (lc *LoggingConfig) Validate() error {
	if lc.ConsoleLevel != "" {
		if _, err := zerolog.ParseLevel(lc.ConsoleLevel); err != nil {
			return fmt.Errorf("invalid console_level: %s", lc.ConsoleLevel)
		}
	}

	switch lc.ConsoleFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid console_format: %s (valid: console, json)", lc.ConsoleFormat)
	}

	return nil
}

// BuildPath returns the build directory resolved against BaseDir
func (c *Config) BuildPath() string {
	return c.resolve(c.BuildDir)
}

// ArtifactPath returns the artifact path resolved against BaseDir
func (c *Config) ArtifactPath() string {
	return c.resolve(c.Artifact)
}

// MetricsPath returns the metrics textfile path resolved against BaseDir, or ""
func (c *Config) MetricsPath() string {
	if c.Metrics.File == "" {
		return ""
	}
	return c.resolve(c.Metrics.File)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) || c.BaseDir == "" {
		return path
	}
	return filepath.Join(c.BaseDir, path)
}

// Save writes the configuration as YAML to path
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
