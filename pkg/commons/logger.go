// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package commons

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging surface every component receives through its
// constructor. It mirrors zap's sugared logger.
type Logger interface {
	Level() zapcore.Level
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	DPanic(args ...interface{})
	DPanicf(template string, args ...interface{})
	Panic(args ...interface{})
	Panicf(template string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(template string, args ...interface{})
	Benchmark(functionName string, duration time.Duration)
	Tracef(ctx context.Context, format string, args ...interface{})
	Sync() error
}

type loggerOptions struct {
	name       string
	path       string
	level      string
	maxSizeMB  int
	maxBackups int
	maxAgeDays int
	console    bool
}

type Option func(*loggerOptions)

// Name sets the log file name (without extension) and the logger name.
func Name(name string) Option {
	return func(o *loggerOptions) { o.name = name }
}

// Path sets the directory for the rotated log file.
func Path(path string) Option {
	return func(o *loggerOptions) { o.path = path }
}

// Level accepts debug, info, warn, error; anything else falls back to info.
func Level(level string) Option {
	return func(o *loggerOptions) { o.level = level }
}

func MaxSize(megabytes int) Option {
	return func(o *loggerOptions) { o.maxSizeMB = megabytes }
}

// Console toggles the stdout core. Enabled by default.
func Console(enabled bool) Option {
	return func(o *loggerOptions) { o.console = enabled }
}

type applicationLogger struct {
	*zap.SugaredLogger
	level zap.AtomicLevel
}

// NewApplicationLogger builds a zap logger writing JSON to a lumberjack
// rotated file and, unless disabled, human readable lines to stdout.
func NewApplicationLogger(opts ...Option) (Logger, error) {
	o := &loggerOptions{
		name:       "capture-api",
		path:       filepath.Join(os.TempDir(), "rapida"),
		level:      "info",
		maxSizeMB:  50,
		maxBackups: 5,
		maxAgeDays: 14,
		console:    true,
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := os.MkdirAll(o.path, 0o755); err != nil {
		return nil, err
	}

	level := zap.NewAtomicLevelAt(parseLevel(o.level))
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(o.path, o.name+".log"),
		MaxSize:    o.maxSizeMB,
		MaxBackups: o.maxBackups,
		MaxAge:     o.maxAgeDays,
		Compress:   true,
	})

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level),
	}
	if o.console {
		consoleConfig := encoderConfig
		consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.Lock(os.Stdout), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)).Named(o.name)
	return &applicationLogger{SugaredLogger: logger.Sugar(), level: level}, nil
}

func (l *applicationLogger) Level() zapcore.Level {
	return l.level.Level()
}

func (l *applicationLogger) Benchmark(functionName string, duration time.Duration) {
	l.SugaredLogger.Debugw("benchmark", "function", functionName, "duration", duration.String())
}

func (l *applicationLogger) Tracef(ctx context.Context, format string, args ...interface{}) {
	if ctx != nil && ctx.Err() != nil {
		args = append(args, ctx.Err())
		format += " (context: %v)"
	}
	l.SugaredLogger.Debugf(format, args...)
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
