// api/logging/logger.go

package logging

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log *zap.Logger

// InitLogger builds the process-wide logger. Output goes to stdout/stderr
// and to files under logDirPath; file names and the default level come from
// configuration, LOG_LEVEL overrides the level.
func InitLogger(logDirPath string) {
	config := zap.NewProductionConfig()

	if level, err := zapcore.ParseLevel(logLevel()); err == nil {
		config.Level.SetLevel(level)
	}

	appLog := ensureLogFile(filepath.Join(logDirPath, logFileName("logging.appFile", "api.log")))
	errorLog := ensureLogFile(filepath.Join(logDirPath, logFileName("logging.errorFile", "api_error.log")))

	config.OutputPaths = []string{"stdout", appLog}
	config.ErrorOutputPaths = []string{"stderr", errorLog}

	// Add caller and stack trace to log output
	config.EncoderConfig.CallerKey = "caller"
	config.EncoderConfig.StacktraceKey = "stacktrace"

	// Customize time format
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	Log, err = config.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}

	zap.ReplaceGlobals(Log) // Replace global logger
}

func logLevel() string {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return level
	}
	if level := viper.GetString("logging.level"); level != "" {
		return level
	}
	return "info"
}

func logFileName(key, fallback string) string {
	if name := viper.GetString(key); name != "" {
		return name
	}
	return fallback
}

// ensureLogFile creates the file when missing so zap can open it for append.
func ensureLogFile(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		file, err := os.Create(path)
		if err != nil {
			panic(err)
		}
		file.Close()
	}
	return path
}

// Log methods for different levels
func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Log.Fatal(msg, fields...)
}

// WithContext adds context fields to the logger
func WithContext(fields ...zap.Field) *zap.Logger {
	return Log.With(fields...)
}

func Sync() error {
	return Log.Sync()
}
