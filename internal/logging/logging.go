// Package logging builds the structured logger written to the rotating log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"deepcut/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a JSON logger writing to cfg.Path through lumberjack. When
// console is non-nil, a human-readable copy is written there as well.
// If the log directory cannot be created the file sink is skipped.
func New(cfg config.LogConfig, console io.Writer) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var cores []zapcore.Core
	closers := []func(){}

	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: cannot create log directory %s: %v\n", filepath.Dir(cfg.Path), err)
		} else {
			file := &lumberjack.Logger{
				Filename:   cfg.Path,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				Compress:   true,
			}
			closers = append(closers, func() { file.Close() })

			encCfg := zap.NewProductionEncoderConfig()
			encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
			cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), level))
		}
	}

	if console != nil {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(console), level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), func() {}, nil
	}

	logger := zap.New(zapcore.NewTee(cores...)).With(zap.Int("pid", os.Getpid()))
	return logger, func() {
		_ = logger.Sync()
		for _, c := range closers {
			c()
		}
	}, nil
}
