package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type ctxKey struct{}

type Logger struct {
	l *zap.Logger
}

func New(ctx context.Context) (context.Context, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("error creating new logger: %w", err)
	}
	return WithLogger(ctx, logger), nil
}

func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, &Logger{l})
}

// GetLogger never returns nil; contexts without a logger get a no-op one.
func GetLogger(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{zap.NewNop()}
}

func (logger *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{logger.l.With(fields...)}
}

func (logger *Logger) Zap() *zap.Logger {
	return logger.l
}

func (logger *Logger) Debug(msg string, fields ...zap.Field) {
	logger.l.Debug(msg, fields...)
}

func (logger *Logger) Info(msg string, fields ...zap.Field) {
	logger.l.Info(msg, fields...)
}

func (logger *Logger) Warn(msg string, fields ...zap.Field) {
	logger.l.Warn(msg, fields...)
}

func (logger *Logger) Error(msg string, fields ...zap.Field) {
	logger.l.Error(msg, fields...)
}

func (logger *Logger) Fatal(msg string, fields ...zap.Field) {
	logger.l.Fatal(msg, fields...)
}

func (logger *Logger) Sync() error {
	return logger.l.Sync()
}
