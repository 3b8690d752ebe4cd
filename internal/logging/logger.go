// Package logging builds the zap loggers used across robonav.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level    string   `yaml:"level"`
	Encoding string   `yaml:"encoding"`
	Output   []string `yaml:"output"`
}

func DefaultConfig() Config {
	return Config{
		Level:    "info",
		Encoding: "console",
		Output:   []string{"stderr"},
	}
}

var (
	global     = zap.NewNop()
	globalMu   sync.RWMutex
	globalOnce sync.Once
)

// New builds a logger from cfg. The first logger built also becomes the
// process-wide default returned by L.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "console"
	}
	output := cfg.Output
	if len(output) == 0 {
		output = []string{"stderr"}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if encoding == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	zcfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      output,
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}

	globalOnce.Do(func() { SetDefault(logger) })
	return logger, nil
}

// L returns the process-wide logger. It is a no-op logger until New or
// SetDefault runs.
func L() *zap.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

func SetDefault(l *zap.Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = l
}

// Tee returns a logger writing to base and to every extra core. A nil base
// writes to the extra cores only.
func Tee(base *zap.Logger, cores ...zapcore.Core) *zap.Logger {
	all := make([]zapcore.Core, 0, len(cores)+1)
	if base != nil {
		all = append(all, base.Core())
	}
	all = append(all, cores...)
	return zap.New(zapcore.NewTee(all...))
}
