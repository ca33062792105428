package logger

import (
	"context"
	"log/slog"
)

type contextKey string

// Context keys for request-scoped log attributes.
const (
	UserIDKey    contextKey = "user_id"
	RequestIDKey contextKey = "request_id"
	ProviderKey  contextKey = "hub.provider"
	UploadKeyKey contextKey = "hub.upload.key"
)

// GlobalContext is the process-wide context logger set by Init.
var GlobalContext *ContextLogger

// ContextLogger enriches log records with attributes carried in the request
// context. Session keys are capabilities and are never logged.
type ContextLogger struct {
	logger *slog.Logger
}

func NewContextLogger(logger *slog.Logger) *ContextLogger {
	return &ContextLogger{logger: logger}
}

// WithContext returns a logger carrying every known attribute present in ctx.
func (cl *ContextLogger) WithContext(ctx context.Context) *slog.Logger {
	logger := cl.logger
	for _, key := range []contextKey{UserIDKey, RequestIDKey, ProviderKey, UploadKeyKey} {
		if value, ok := ctx.Value(key).(string); ok && value != "" {
			logger = logger.With(string(key), value)
		}
	}
	return logger
}

// LogDuration records a completed operation with its elapsed milliseconds.
func (cl *ContextLogger) LogDuration(ctx context.Context, operation string, durationMs int64) {
	cl.WithContext(ctx).InfoContext(ctx, "operation completed",
		"operation", operation,
		"duration_ms", durationMs)
}

// LogError records a failed operation.
func (cl *ContextLogger) LogError(ctx context.Context, operation string, err error) {
	cl.WithContext(ctx).ErrorContext(ctx, "operation failed",
		"operation", operation,
		"error", err.Error())
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, ProviderKey, provider)
}

func WithUploadKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, UploadKeyKey, key)
}
