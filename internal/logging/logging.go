// Package logging provides the structured logger of the gomassing tools
package logging

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with massing-model events
type Logger struct {
	*zap.Logger
}

// Config holds logging configuration
type Config struct {
	Level       string `yaml:"level" json:"level"`
	Format      string `yaml:"format" json:"format"` // "json" or "console"
	OutputPath  string `yaml:"output_path" json:"output_path"`
	Development bool   `yaml:"development" json:"development"`
}

// New creates a logger from config. Logs go to stderr unless OutputPath
// names a file, so report output on stdout stays clean.
func New(config Config) (*Logger, error) {
	var zapConfig zap.Config
	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(config.Level)
	if err != nil {
		if config.Level != "" {
			return nil, fmt.Errorf("invalid log level %q: %w", config.Level, err)
		}
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	switch config.Format {
	case "", "console":
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	case "json":
		zapConfig.Encoding = "json"
	default:
		return nil, fmt.Errorf("invalid log format %q", config.Format)
	}
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapConfig.OutputPaths = []string{"stderr"}
	if config.OutputPath != "" {
		zapConfig.OutputPaths = []string{config.OutputPath}
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: logger}, nil
}

// Default creates a console logger at info level
func Default() *Logger {
	logger, err := New(Config{Level: "info", Format: "console"})
	if err != nil {
		return &Logger{Logger: zap.NewExample()}
	}
	return logger
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// NewWriter logs JSON to w at the given level, for tests and embedding
func NewWriter(w io.Writer, level zapcore.Level) *Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(w),
		level,
	)
	return &Logger{Logger: zap.New(core)}
}

// FromZap wraps an existing zap logger
func FromZap(l *zap.Logger) *Logger {
	return &Logger{Logger: l}
}

// WithDocument adds the document name to every entry
func (l *Logger) WithDocument(source string) *Logger {
	return &Logger{Logger: l.Logger.With(zap.String("document", source))}
}

// DataQuality logs a data quality issue found in a document
func (l *Logger) DataQuality(entity, issue, severity string, fields ...zap.Field) {
	l.Warn("Data quality issue", append([]zap.Field{
		zap.String("entity", entity),
		zap.String("issue", issue),
		zap.String("severity", severity),
		zap.String("type", "data_quality"),
	}, fields...)...)
}

// Stage logs the duration of a pipeline stage at debug level
func (l *Logger) Stage(stage string, elapsed time.Duration, fields ...zap.Field) {
	l.Debug("Stage finished", append([]zap.Field{
		zap.String("stage", stage),
		zap.Duration("elapsed", elapsed),
		zap.String("type", "performance"),
	}, fields...)...)
}
