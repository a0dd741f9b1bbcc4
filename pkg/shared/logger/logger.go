package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/magelint/pkg/shared/config"
)

// NewLogger builds the named hclog logger used across the tool.
// Logs go to stderr so rendered reports on stdout stay machine readable.
func NewLogger(cfg *config.Config, name string) hclog.Logger {
	return newLogger(cfg, name, os.Stderr)
}

func newLogger(cfg *config.Config, name string, output io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:            name,
		DisableTime:     config.GetBoolValue(cfg, "Logger.DisableTime", true),
		JSONFormat:      config.GetBoolValue(cfg, "Logger.JSONFormat", false),
		IncludeLocation: config.GetBoolValue(cfg, "Logger.IncludeLocation", false),
		Output:          output,
		Level:           determineLogLevel(cfg),
	})
}

// determineLogLevel prefers the configured level, then MAGELINT_LOG_LEVEL, then INFO.
func determineLogLevel(cfg *config.Config) hclog.Level {
	if cfg != nil && cfg.Logger.Level != "" {
		return getLogLevel(strings.ToUpper(cfg.Logger.Level))
	}
	// env variables has the second priority
	return getLogLevel(strings.ToUpper(os.Getenv("MAGELINT_LOG_LEVEL")))
}

func getLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	case "OFF":
		return hclog.Off
	default:
		return hclog.Info
	}
}
