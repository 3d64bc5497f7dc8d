// Package logging wires zap loggers for library components and the CLI.
//
// Library code never builds its own sinks: components default to a child of the
// global zap logger (a no-op until the host calls zap.ReplaceGlobals) and accept
// an explicit logger through their WithLogger options.
package logging

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// EnvLogLevel overrides the CLI log level (debug, info, warn, error, off).
	EnvLogLevel = "ZNE_LOG_LEVEL"
	// EnvLogJSON switches the CLI to JSON output when true.
	EnvLogJSON = "ZNE_LOG_JSON"

	rootName = "zne"
)

// Default returns the library logger: the global zap logger named "zne".
func Default() *zap.Logger {
	return zap.L().Named(rootName)
}

// Named returns Default().Named(name).
func Named(name string) *zap.Logger {
	return Default().Named(name)
}

// OrDefault returns logger, or a named default logger when it is nil.
func OrDefault(logger *zap.Logger, name string) *zap.Logger {
	if logger == nil {
		return Named(name)
	}

	return logger
}

// Profile selects a base configuration for NewCLI.
type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileVerbose
)

// NewCLI builds the logger used by cmd/zne. Environment variables override
// the profile defaults.
func NewCLI(profile Profile) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if profile == ProfileVerbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		if lvl == zapcore.InvalidLevel {
			return zap.NewNop(), nil
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	if v, ok := parseBool(os.Getenv(EnvLogJSON)); ok && v {
		cfg.Encoding = "json"
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.Named(rootName), nil
}

// parseLevel maps a level name to a zap level. "off" maps to InvalidLevel.
func parseLevel(raw string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zapcore.WarnLevel, false
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	case "off", "none", "disabled":
		return zapcore.InvalidLevel, true
	default:
		return zapcore.WarnLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}

	return v, true
}
