package logging

import (
	"io"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Appender is an output for log entries. Every appender sees every entry the
// owning logger decides to emit; level filtering happens in the logger.
type Appender = zapcore.Core

// FileOptions controls rotation of a file appender.
type FileOptions struct {
	// MaxSizeMB is the size a log file may reach before it is rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept around.
	MaxBackups int
	Compress   bool
}

// DefaultFileOptions are the rotation settings used by the CLI.
var DefaultFileOptions = FileOptions{
	MaxSizeMB:  10,
	MaxBackups: 3,
	Compress:   true,
}

// NewWriterAppender returns an appender that writes console formatted lines to w.
func NewWriterAppender(w io.Writer, cfg zapcore.EncoderConfig) Appender {
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
}

// NewFileAppender returns an appender writing to a size rotated file at path.
// The returned closer releases the file and must be called once logging is done.
func NewFileAppender(path string, opts FileOptions) (Appender, io.Closer) {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		Compress:   opts.Compress,
	}

	cfg := NewLoggerConfig()
	// no terminal on the other end
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return NewWriterAppender(rotator, cfg), rotator
}
