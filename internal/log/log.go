// Package log builds the zap loggers used across crysknife.
//
// Loggers are always passed explicitly; nothing in this package is global.
package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Env selects a logging configuration.
type Env string

func (e Env) String() string { return string(e) }

const (
	EnvDev  Env = "dev"
	EnvProd Env = "prod"
)

// New returns a logger for env. "prod" logs JSON at info level; anything
// else uses the development console encoder at info level. verbose lowers
// either to debug. Output goes to stderr so reports on stdout stay clean.
func New(env string, verbose bool) (*zap.Logger, error) {
	var cfg zap.Config
	switch Env(strings.ToLower(env)) {
	case EnvProd:
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		cfg.DisableStacktrace = true
	}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building %s logger: %w", env, err)
	}
	return logger, nil
}

// Quiet returns a logger that only reports errors, for interactive modes
// where log lines would corrupt the screen.
func Quiet() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
