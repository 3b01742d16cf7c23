package logger

import (
	"bytes"
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerKey struct{}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*zap.Logger)
	if !ok {
		return zap.NewNop()
	}
	return logger
}

// LevelForVerbosity maps a -v count onto a log level.
func LevelForVerbosity(verbosity int) zapcore.Level {
	switch {
	case verbosity >= 3:
		return zapcore.DebugLevel
	case verbosity == 2:
		return zapcore.InfoLevel
	default:
		return zapcore.ErrorLevel
	}
}

// ParseLevel parses a level name. The names accepted by the automation
// runtime (CRITICAL, FATAL, WARNING, NOTSET...) are folded onto zap levels.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToUpper(name) {
	case "CRITICAL", "FATAL":
		return zapcore.FatalLevel, nil
	case "WARNING", "WARN":
		return zapcore.WarnLevel, nil
	case "NOTSET":
		return zapcore.DebugLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return zapcore.InfoLevel, err
	}
	return lvl, nil
}

// Invocation is the logging context of a single command invocation. Records
// are kept in memory so they can be returned with the command result.
type Invocation struct {
	ID     string
	Logger *zap.Logger

	stdout bytes.Buffer
	stderr bytes.Buffer
}

// NewInvocation builds a logger writing at level into the invocation buffers.
// Records at error level or above are also copied to the error buffer.
func NewInvocation(level zapcore.Level) *Invocation {
	inv := &Invocation{ID: uuid.NewString()}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	enc := zapcore.NewJSONEncoder(encCfg)

	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(&inv.stdout)), level),
		zapcore.NewCore(enc.Clone(), zapcore.Lock(zapcore.AddSync(&inv.stderr)), zapcore.ErrorLevel),
	)
	inv.Logger = zap.New(core).With(zap.String("invocation_id", inv.ID))
	return inv
}

// Context returns ctx carrying the invocation logger.
func (inv *Invocation) Context(ctx context.Context) context.Context {
	return WithLogger(ctx, inv.Logger)
}

// Flush syncs the logger and returns everything logged so far. It must not
// race with calls still logging through the invocation.
func (inv *Invocation) Flush() (stdout, stderr string) {
	_ = inv.Logger.Sync()
	return inv.stdout.String(), inv.stderr.String()
}
