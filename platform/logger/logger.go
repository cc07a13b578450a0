// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// StoreIDKey is the context key for the tenant store ID
	StoreIDKey contextKey = "store_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with request_id and store_id extracted from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = &Logger{Logger: newLogger.With(slog.String("request_id", requestID))}
	}

	if storeID, ok := ctx.Value(StoreIDKey).(string); ok && storeID != "" {
		newLogger = newLogger.WithStoreID(storeID)
	}

	return newLogger
}

// WithStoreID returns a logger scoped to a tenant store.
func (l *Logger) WithStoreID(storeID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("store_id", storeID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// WebhookReceived logs an inbound commerce webhook.
func (l *Logger) WebhookReceived(topic, shopDomain string) {
	l.Info("webhook_received",
		slog.String("topic", topic),
		slog.String("shop_domain", shopDomain),
	)
}

// DispatchAttempt logs the outcome of one template dispatch attempt.
func (l *Logger) DispatchAttempt(workflowTitle, phone string, success bool, reason string) {
	if success {
		l.Info("dispatch_attempt",
			slog.String("workflow", workflowTitle),
			slog.String("phone", phone),
			slog.Bool("success", success),
		)
	} else {
		l.Warn("dispatch_attempt",
			slog.String("workflow", workflowTitle),
			slog.String("phone", phone),
			slog.Bool("success", success),
			slog.String("reason", reason),
		)
	}
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
