package config

import (
	"fmt"

	"github.com/HerbHall/pollnow/internal/version"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig is the logging section of the configuration.
type LogConfig struct {
	Level  string   `mapstructure:"level"`  // debug, info, warn, error
	Format string   `mapstructure:"format"` // json or console
	Output []string `mapstructure:"output"` // zap sink URLs or paths; stderr when empty
}

// LogConfigFrom reads the logging keys from v. Keys are read one by one so
// PN_LOGGING_* environment overrides apply.
func LogConfigFrom(v *viper.Viper) LogConfig {
	return LogConfig{
		Level:  v.GetString("logging.level"),
		Format: v.GetString("logging.format"),
		Output: v.GetStringSlice("logging.output"),
	}
}

// NewLogger creates a configured Zap logger from Viper settings.
func NewLogger(v *viper.Viper) (*zap.Logger, error) {
	return BuildLogger(LogConfigFrom(v))
}

// BuildLogger creates a Zap logger. Every entry carries the service name and
// the running version so logs from mixed deployments can be told apart.
func BuildLogger(lc LogConfig) (*zap.Logger, error) {
	if lc.Level == "" {
		lc.Level = "info"
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", lc.Level, err)
	}

	var cfg zap.Config
	switch lc.Format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "json", "":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q: must be \"json\" or \"console\"", lc.Format)
	}

	cfg.Level = zap.NewAtomicLevelAt(level)
	if len(lc.Output) > 0 {
		cfg.OutputPaths = lc.Output
	}
	cfg.InitialFields = map[string]any{
		"service": "pollnow",
		"version": version.Short(),
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
