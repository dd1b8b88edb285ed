package logging

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultTimeFormatStr is the default time format string for log appenders.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries. This is a subset of the `zapcore.Core` interface.
type Appender interface {
	// Write submits a structured log entry to the appender for logging.
	Write(zapcore.Entry, []zapcore.Field) error
	// Sync is for signaling that any buffered logs to `Write` should be flushed. E.g: at shutdown.
	Sync() error
}

// ConsoleAppender will create human readable logs and output them to the wrapped writer.
type ConsoleAppender struct {
	io.Writer
}

// NewWriterAppender creates a new appender that outputs to the input writer.
func NewWriterAppender(writer io.Writer) ConsoleAppender {
	return ConsoleAppender{writer}
}

// FileAppenderConfig controls log rotation for a file appender.
type FileAppenderConfig struct {
	Filename   string `json:"filename"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
	Compress   bool   `json:"compress,omitempty"`
}

// NewFileAppender creates an appender that writes human readable logs to a size rotated file.
// The returned closer releases the file.
func NewFileAppender(conf FileAppenderConfig) (ConsoleAppender, io.Closer) {
	maxSize := conf.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	writer := &lumberjack.Logger{
		Filename:   conf.Filename,
		MaxSize:    maxSize,
		MaxBackups: conf.MaxBackups,
		MaxAge:     conf.MaxAgeDays,
		Compress:   conf.Compress,
	}
	return ConsoleAppender{writer}, writer
}

// ZapcoreFieldsToJSON will serialize the Field objects into a JSON map of key/value pairs.
func ZapcoreFieldsToJSON(fields []zapcore.Field) (string, error) {
	// Use zap's json encoder which will encode our slice of fields in-order. As opposed to the
	// random iteration order of a map. Call it with an empty Entry object such that only the fields
	// become "map-ified".
	jsonEncoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
	buf, err := jsonEncoder.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return "", err
	}
	return string(buf.Bytes()), nil
}

func callerToString(caller *zapcore.EntryCaller) string {
	if !caller.Defined {
		return "unknown_file.go:0"
	}
	return caller.TrimmedPath()
}

// formatEntry renders an entry as a single tab separated line.
func formatEntry(entry zapcore.Entry, fields []zapcore.Field) (string, error) {
	const maxLength = 10
	toPrint := make([]string, 0, maxLength)
	toPrint = append(toPrint,
		entry.Time.Format(DefaultTimeFormatStr),
		strings.ToUpper(entry.Level.String()),
	)
	if entry.LoggerName != "" {
		toPrint = append(toPrint, entry.LoggerName)
	}
	toPrint = append(toPrint, callerToString(&entry.Caller), entry.Message)
	if len(fields) > 0 {
		fieldsJSON, err := ZapcoreFieldsToJSON(fields)
		if err != nil {
			return "", err
		}
		toPrint = append(toPrint, fieldsJSON)
	}
	return strings.Join(toPrint, "\t"), nil
}

// Write outputs the log entry to the underlying stream.
func (appender ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line, err := formatEntry(entry, fields)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(appender.Writer, line)
	return err
}

// Sync is a no-op.
func (appender ConsoleAppender) Sync() error {
	return nil
}
