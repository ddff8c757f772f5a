package tiercache

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with cache-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithTier adds a tier field to the logger.
func (l *Logger) WithTier(tier string) *Logger {
	return &Logger{
		Logger: l.Logger.With("tier", tier),
	}
}

// WithKey adds a key field to the logger.
func (l *Logger) WithKey(key string) *Logger {
	return &Logger{
		Logger: l.Logger.With("key", key),
	}
}

// LogTierError logs a recovered tier-level storage failure.
func (l *Logger) LogTierError(ctx context.Context, err *StorageOpError) {
	l.WarnContext(ctx, "tier operation failed",
		"tier", err.Tier,
		"op", err.Op,
		"key", err.Key,
		"error", err.Err,
	)
}

// LogSet logs a completed multi-tier write.
func (l *Logger) LogSet(ctx context.Context, key string, tiers []string, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "set completed with tier failures",
			"key", key,
			"tiers", tiers,
			"failed", failed,
		)
	} else {
		l.DebugContext(ctx, "set completed",
			"key", key,
			"tiers", tiers,
		)
	}
}

// LogInvalidate logs an invalidation pass.
func (l *Logger) LogInvalidate(ctx context.Context, removed int, cascaded bool) {
	l.DebugContext(ctx, "invalidation completed",
		"removed", removed,
		"cascaded", cascaded,
	)
}

// LogPrefetch logs a prefetch batch.
func (l *Logger) LogPrefetch(ctx context.Context, total, loaded, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "prefetch completed with failures",
			"total", total,
			"loaded", loaded,
			"failed", failed,
		)
	} else {
		l.InfoContext(ctx, "prefetch completed",
			"total", total,
			"loaded", loaded,
		)
	}
}

// LogOptimize logs an optimization pass.
func (l *Logger) LogOptimize(ctx context.Context, expired, evicted, promoted int) {
	l.DebugContext(ctx, "optimize completed",
		"expired", expired,
		"evicted", evicted,
		"promoted", promoted,
	)
}

// LogQuotaCleanup logs an emergency cleanup triggered by a quota failure.
func (l *Logger) LogQuotaCleanup(ctx context.Context, tier string, removed int, retryOK bool) {
	if retryOK {
		l.InfoContext(ctx, "quota cleanup recovered write",
			"tier", tier,
			"removed", removed,
		)
	} else {
		l.WarnContext(ctx, "quota cleanup could not recover write",
			"tier", tier,
			"removed", removed,
		)
	}
}
