package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source" mapstructure:"source"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// SourceConfig describes the leaderboard endpoint and the page to fetch.
type SourceConfig struct {
	URL         string  `yaml:"url" mapstructure:"url"`
	Skip        int     `yaml:"skip" mapstructure:"skip"`
	Limit       int     `yaml:"limit" mapstructure:"limit"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// Timeout returns the request timeout as a duration.
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// OutputConfig configures the written file.
type OutputConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Format string `yaml:"format" mapstructure:"format"`
	Layout string `yaml:"layout" mapstructure:"layout"`
	// Shape forces a response parser ("flat" or "participants"); "auto" detects it.
	Shape string `yaml:"shape" mapstructure:"shape"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MetricsConfig configures run metrics. Metrics are written only when
// Textfile is set.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

var (
	validFormats = []string{"json", "yaml", "csv", "xlsx"}
	validLayouts = []string{"auto", "list", "map"}
	validShapes  = []string{"auto", "flat", "participants"}
)

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADERBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.url", "")
	v.SetDefault("source.skip", 0)
	v.SetDefault("source.limit", 2000)
	v.SetDefault("source.timeout_secs", 30)
	v.SetDefault("source.user_agent", "leaderboard-cli/1.0")
	v.SetDefault("source.rate_limit", 1.0)
	v.SetDefault("output.path", "leaderboard_data.json")
	v.SetDefault("output.format", "json")
	v.SetDefault("output.layout", "auto")
	v.SetDefault("output.shape", "auto")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("metrics.textfile", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the fields required by the given mode are usable.
// Modes: "fetch", "distribute".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "fetch":
		if c.Source.URL == "" {
			errs = append(errs, "source.url is required")
		}
		if c.Source.Skip < 0 {
			errs = append(errs, "source.skip must be >= 0")
		}
		if c.Source.Limit <= 0 {
			errs = append(errs, "source.limit must be > 0")
		}
		if c.Source.TimeoutSecs <= 0 {
			errs = append(errs, "source.timeout_secs must be > 0")
		}
		if c.Source.RateLimit < 0 {
			errs = append(errs, "source.rate_limit must be >= 0")
		}
		if !slices.Contains(validLayouts, c.Output.Layout) {
			errs = append(errs, fmt.Sprintf("output.layout must be one of %s", strings.Join(validLayouts, ", ")))
		}
		if !slices.Contains(validShapes, c.Output.Shape) {
			errs = append(errs, fmt.Sprintf("output.shape must be one of %s", strings.Join(validShapes, ", ")))
		}
		if !slices.Contains(validFormats, c.Output.Format) {
			errs = append(errs, fmt.Sprintf("output.format must be one of %s", strings.Join(validFormats, ", ")))
		}
		if c.Output.Path == "" {
			errs = append(errs, "output.path is required")
		}
	case "distribute":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
