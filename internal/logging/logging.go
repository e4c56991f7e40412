// Package logging builds the receiver's zap loggers.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// New returns a console logger on stderr for headless operation.
func New(level string) *zap.SugaredLogger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.Lock(os.Stderr),
		parseLevel(level),
	)
	return zap.New(core).Sugar()
}

// NewPane returns a logger whose rendered lines are handed to sink, one
// call per line, for display in the dashboard's message pane. The
// terminal is in raw mode while the dashboard runs, so nothing may write
// to stderr directly.
func NewPane(level string, sink func(line string)) *zap.SugaredLogger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.AddSync(lineWriter(sink)),
		parseLevel(level),
	)
	return zap.New(core).Sugar()
}

// lineWriter adapts a line callback to the io.Writer zap expects.
type lineWriter func(line string)

func (w lineWriter) Write(p []byte) (int, error) {
	w(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
