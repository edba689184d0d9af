package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxbase-eu/bundlescore/internal/scoring"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundlescore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "dist", cfg.BuildDir)
	assert.Equal(t, "bundle-analysis.json", cfg.Artifact)
	assert.Equal(t, 8.5, cfg.Target)
	assert.Equal(t, 0, cfg.Report.Top)
	assert.False(t, cfg.Report.Compare)
	assert.Equal(t, scoring.DefaultRules(), cfg.Scoring)
	assert.Equal(t, "info", cfg.Logging.ConsoleLevel)
	assert.Equal(t, "console", cfg.Logging.ConsoleFormat)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "bundlescore", cfg.Tracing.ServiceName)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
build_dir: build/out
artifact: reports/bundle.json
target: 7
report:
  top: 5
  compare: true
scoring:
  chunks:
    - op: ">"
      limit: 20
      adjust: -1
metrics:
  file: metrics/bundle.prom
`)

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "build/out", cfg.BuildDir)
	assert.Equal(t, "reports/bundle.json", cfg.Artifact)
	assert.Equal(t, 7.0, cfg.Target)
	assert.Equal(t, 5, cfg.Report.Top)
	assert.True(t, cfg.Report.Compare)
	assert.Equal(t, "metrics/bundle.prom", cfg.Metrics.File)

	require.Len(t, cfg.Scoring.Chunks, 1)
	assert.Equal(t, scoring.Bracket{Op: scoring.OpGreater, Limit: 20, Adjust: -1}, cfg.Scoring.Chunks[0])

	// Dimensions the file leaves out keep their defaults
	assert.Equal(t, scoring.DefaultRules().TotalSizeMB, cfg.Scoring.TotalSizeMB)
	assert.Equal(t, scoring.DefaultRules().CSSSizeKB, cfg.Scoring.CSSSizeKB)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("BUNDLESCORE_TARGET", "9")
	t.Setenv("BUNDLESCORE_BUILD_DIR", "public")
	t.Setenv("BUNDLESCORE_REPORT_TOP", "3")

	cfg, err := Load(viper.New(), writeConfig(t, "target: 6\n"))
	require.NoError(t, err)

	assert.Equal(t, 9.0, cfg.Target)
	assert.Equal(t, "public", cfg.BuildDir)
	assert.Equal(t, 3, cfg.Report.Top)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing explicit config file", func(t *testing.T) {
		_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(viper.New(), writeConfig(t, "target: [1, 2\n"))
		require.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(viper.New(), writeConfig(t, "target: 42\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "target must be between 0 and 10")
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "dist", cfg.BuildDir)
	assert.Equal(t, scoring.DefaultRules(), cfg.Scoring)
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bundlescore.yaml")

	original := Default()
	original.Target = 7.5
	original.Report.Top = 12
	require.NoError(t, original.Save(path))

	loaded, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, original.Target, loaded.Target)
	assert.Equal(t, original.Report, loaded.Report)
	assert.Equal(t, original.Scoring, loaded.Scoring)
	assert.Equal(t, original.Tracing, loaded.Tracing)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty build dir",
			modify:  func(c *Config) { c.BuildDir = "" },
			wantErr: true,
			errMsg:  "build_dir cannot be empty",
		},
		{
			name:    "empty artifact",
			modify:  func(c *Config) { c.Artifact = "" },
			wantErr: true,
			errMsg:  "artifact cannot be empty",
		},
		{
			name:    "negative target",
			modify:  func(c *Config) { c.Target = -1 },
			wantErr: true,
			errMsg:  "target must be between",
		},
		{
			name:    "negative top",
			modify:  func(c *Config) { c.Report.Top = -1 },
			wantErr: true,
			errMsg:  "report.top cannot be negative",
		},
		{
			name:    "invalid scoring op",
			modify:  func(c *Config) { c.Scoring.JSSizeMB = []scoring.Bracket{{Op: "=~"}} },
			wantErr: true,
			errMsg:  "invalid op",
		},
		{
			name:    "invalid logging level",
			modify:  func(c *Config) { c.Logging.ConsoleLevel = "verbose" },
			wantErr: true,
			errMsg:  "invalid console_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoggingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  LoggingConfig
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			config: LoggingConfig{
				ConsoleLevel:  "info",
				ConsoleFormat: "console",
			},
			wantErr: false,
		},
		{
			name:    "empty config",
			config:  LoggingConfig{},
			wantErr: false,
		},
		{
			name: "json format",
			config: LoggingConfig{
				ConsoleLevel:  "debug",
				ConsoleFormat: "json",
			},
			wantErr: false,
		},
		{
			name: "invalid console level",
			config: LoggingConfig{
				ConsoleLevel: "verbose",
			},
			wantErr: true,
			errMsg:  "invalid console_level",
		},
		{
			name: "invalid console format",
			config: LoggingConfig{
				ConsoleFormat: "xml",
			},
			wantErr: true,
			errMsg:  "invalid console_format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTracingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  TracingConfig
		wantErr bool
		errMsg  string
	}{
		{
			name: "disabled tracing doesn't validate",
			config: TracingConfig{
				Enabled: false,
			},
			wantErr: false,
		},
		{
			name: "valid enabled config",
			config: TracingConfig{
				Enabled:    true,
				Endpoint:   "localhost:4317",
				SampleRate: 0.5,
			},
			wantErr: false,
		},
		{
			name: "enabled without endpoint",
			config: TracingConfig{
				Enabled:  true,
				Endpoint: "",
			},
			wantErr: true,
			errMsg:  "tracing endpoint is required",
		},
		{
			name: "sample rate too high",
			config: TracingConfig{
				Enabled:    true,
				Endpoint:   "localhost:4317",
				SampleRate: 1.5,
			},
			wantErr: true,
			errMsg:  "sample_rate must be between 0.0 and 1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfig_Paths(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "dist", cfg.BuildPath())
	assert.Equal(t, "bundle-analysis.json", cfg.ArtifactPath())
	assert.Equal(t, "", cfg.MetricsPath())

	cfg.BaseDir = "/srv/app"
	cfg.Metrics.File = "bundle.prom"
	cfg.Artifact = "/tmp/out.json"
	assert.Equal(t, filepath.Join("/srv/app", "dist"), cfg.BuildPath())
	assert.Equal(t, "/tmp/out.json", cfg.ArtifactPath())
	assert.Equal(t, filepath.Join("/srv/app", "bundle.prom"), cfg.MetricsPath())
}
