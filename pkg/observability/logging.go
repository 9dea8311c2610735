package observability

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// LogLevel represents logging levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var (
	defaultLogger *slog.Logger
)

func init() {
	// Initialize with JSON handler by default
	defaultLogger = NewLogger(LogLevelInfo, true)
}

// NewLogger creates a new structured logger
func NewLogger(level LogLevel, jsonFormat bool) *slog.Logger {
	var slogLevel slog.Level

	switch level {
	case LogLevelDebug:
		slogLevel = slog.LevelDebug
	case LogLevelInfo:
		slogLevel = slog.LevelInfo
	case LogLevelWarn:
		slogLevel = slog.LevelWarn
	case LogLevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Shorten source file paths
			if a.Key == slog.SourceKey {
				if source, ok := a.Value.Any().(*slog.Source); ok {
					// Get relative path
					source.File = shortFile(source.File)
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if jsonFormat {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}

// GetDefaultLogger returns the default logger
func GetDefaultLogger() *slog.Logger {
	return defaultLogger
}

func shortFile(file string) string {
	// Keep only the last 2 path components
	short := file
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			short = file[i+1:]
			for j := i - 1; j > 0; j-- {
				if file[j] == '/' {
					short = file[j+1:]
					break
				}
			}
			break
		}
	}
	return short
}

// LoggerContext adds logger to context
func LoggerContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

type loggerKey struct{}

// LoggerFromContext retrieves logger from context
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return defaultLogger
}

// LoggingMiddleware wraps a func() so that each call logs its duration at Info
func LoggingMiddleware(logger *slog.Logger) func(next func()) func() {
	return func(next func()) func() {
		return func() {
			start := time.Now()

			// Call next handler
			next()

			duration := time.Since(start)

			logger.Info("request completed",
				"duration_ms", duration.Milliseconds(),
			)
		}
	}
}

// LogStartup logs application startup information
func LogStartup(logger *slog.Logger, version, storageRoot string, config map[string]interface{}) {
	logger.Info("starting chunkstore",
		"version", version,
		"storage_root", storageRoot,
		"go_version", runtime.Version(),
		"num_cpu", runtime.NumCPU(),
	)

	for k, v := range config {
		logger.Info("configuration", k, v)
	}
}

// LogShutdown logs application shutdown
func LogShutdown(logger *slog.Logger, reason string) {
	logger.Info("shutting down chunkstore", "reason", reason)
}

// LogPanic logs panic information and stack trace
func LogPanic(logger *slog.Logger, recovered interface{}) {
	stackBuf := make([]byte, 4096)
	n := runtime.Stack(stackBuf, false)
	stack := string(stackBuf[:n])

	logger.Error("panic recovered",
		"panic", recovered,
		"stack", stack,
	)
}

// LogError logs an error with context
func LogError(logger *slog.Logger, operation string, err error, attrs ...any) {
	args := []any{"operation", operation, "error", err}
	args = append(args, attrs...)
	logger.Error("operation failed", args...)
}

// LogAdmit logs a successful sample admission into a tensor's active chunk.
func LogAdmit(logger *slog.Logger, tensor string, nbytes int, duration time.Duration) {
	logger.Debug("sample admitted",
		"tensor", tensor,
		"nbytes", nbytes,
		"duration_us", duration.Microseconds(),
	)
}

// LogChunkRotated logs the active chunk filling up and a fresh one opening
// in its place.
func LogChunkRotated(logger *slog.Logger, tensor string, oldChunkID, newChunkID uint32) {
	logger.Info("chunk rotated",
		"tensor", tensor,
		"old_chunk_id", oldChunkID,
		"new_chunk_id", newChunkID,
	)
}

// LogChunkPersisted logs a chunk being written out through a storage
// Provider.
func LogChunkPersisted(logger *slog.Logger, tensor string, chunkID uint32, nbytes int, duration time.Duration) {
	logger.Info("chunk persisted",
		"tensor", tensor,
		"chunk_id", chunkID,
		"nbytes", nbytes,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogRead logs a sample read by chunk id and within-chunk index.
func LogRead(logger *slog.Logger, tensor string, chunkID uint32, sampleIndex int64, duration time.Duration) {
	logger.Debug("sample read",
		"tensor", tensor,
		"chunk_id", chunkID,
		"sample_index", sampleIndex,
		"duration_us", duration.Microseconds(),
	)
}

// LogCompression logs the raw/compressed size a codec produced for a
// sample or chunk.
func LogCompression(logger *slog.Logger, codec string, rawBytes, compressedBytes int) {
	ratio := 0.0
	if compressedBytes > 0 {
		ratio = float64(rawBytes) / float64(compressedBytes)
	}
	logger.Debug("compressed",
		"codec", codec,
		"raw_bytes", rawBytes,
		"compressed_bytes", compressedBytes,
		"ratio", ratio,
	)
}
