package logging

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type impl struct {
	name  string
	level AtomicLevel
	inUTC bool

	appenders []Appender
}

func (imp *impl) NewLogEntry() *LogEntry {
	ret := &LogEntry{}
	ret.Time = time.Now()
	if imp.inUTC {
		ret.Time = ret.Time.UTC()
	}
	ret.LoggerName = imp.name
	ret.Caller = getCaller()
	return ret
}

// LogEntry embeds a zapcore Entry and slice of Fields.
type LogEntry struct {
	zapcore.Entry
	// Fields are the key-value fields attached to the log line.
	Fields []zapcore.Field
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}

	return &impl{
		newName,
		NewAtomicLevelAt(imp.level.Get()),
		imp.inUTC,
		imp.appenders,
	}
}

func (imp *impl) AsZap() *zap.SugaredLogger {
	// When downconverting to a SugaredLogger, copy those that implement the `zapcore.Core`
	// interface. This includes the observed logs for tests.
	var copiedCores []zapcore.Core

	// When we find a `ConsoleAppender`, we'll use zap's console encoder instead so colored levels
	// and the sugared logger's own caller frames are preserved.
	var sawConsole bool
	for _, appender := range imp.appenders {
		if core, ok := appender.(zapcore.Core); ok {
			copiedCores = append(copiedCores, core)
			continue
		}
		sawConsole = true
	}

	config := NewZapLoggerConfig()
	// Use the global zap `AtomicLevel` such that the constructed zap logger can observe changes to
	// the debug flag.
	if imp.level.Get() == DEBUG {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config.Level = GlobalLogLevel
	}
	var cores []zapcore.Core
	if sawConsole {
		base := zap.Must(config.Build())
		cores = append(cores, base.Core())
	}
	cores = append(cores, copiedCores...)
	return zap.New(zapcore.NewTee(cores...)).Sugar().Named(imp.name)
}

func (imp *impl) Sync() error {
	var errs error
	for _, appender := range imp.appenders {
		errs = multierr.Combine(errs, appender.Sync())
	}
	return errs
}

func (imp *impl) shouldLog(logLevel Level) bool {
	return logLevel >= imp.level.Get() || GlobalLogLevel.Enabled(zapcore.DebugLevel)
}

func (imp *impl) Write(entry *LogEntry) {
	for _, appender := range imp.appenders {
		err := appender.Write(entry.Entry, entry.Fields)
		if err != nil {
			fmt.Fprint(os.Stderr, err)
		}
	}
}

// Constructs the log message by forwarding to `fmt.Sprint`.
func (imp *impl) format(logLevel Level, args ...interface{}) *LogEntry {
	logEntry := imp.NewLogEntry()
	logEntry.Level = logLevel.AsZap()
	logEntry.Message = fmt.Sprint(args...)

	return logEntry
}

// Constructs the log message by forwarding to `fmt.Sprintf`.
func (imp *impl) formatf(logLevel Level, template string, args ...interface{}) *LogEntry {
	logEntry := imp.NewLogEntry()
	logEntry.Level = logLevel.AsZap()
	logEntry.Message = fmt.Sprintf(template, args...)

	return logEntry
}

// Turns `keysAndValues` into a map where the odd elements are the keys and their following even
// counterpart is the value. The keys are expected to be strings. The values are json
// serialized. Only public fields are included in the serialization.
func (imp *impl) formatw(logLevel Level, msg string, keysAndValues ...interface{}) *LogEntry {
	logEntry := imp.NewLogEntry()
	logEntry.Level = logLevel.AsZap()
	logEntry.Message = msg

	logEntry.Fields = make([]zapcore.Field, 0, len(keysAndValues)/2)
	for keyIdx := 0; keyIdx < len(keysAndValues); keyIdx += 2 {
		keyObj := keysAndValues[keyIdx]
		var keyStr string
		if str, ok := keyObj.(string); ok {
			keyStr = str
		} else {
			keyStr = fmt.Sprintf("%v", keyObj)
		}

		// A key without a value is logged with an "undefined" value.
		if keyIdx+1 < len(keysAndValues) {
			logEntry.Fields = append(logEntry.Fields, zap.Any(keyStr, keysAndValues[keyIdx+1]))
		} else {
			logEntry.Fields = append(logEntry.Fields, zap.String(keyStr, "undefined"))
		}
	}

	return logEntry
}

func (imp *impl) Debug(args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.Write(imp.format(DEBUG, args...))
	}
}

func (imp *impl) CDebug(ctx context.Context, args ...interface{}) {
	dbgName := GetName(ctx)
	if dbgName == "" {
		imp.Debug(args...)
		return
	}

	logEntry := imp.format(DEBUG, args...)
	logEntry.Fields = append(logEntry.Fields, zap.String("log_ts", dbgName))
	imp.Write(logEntry)
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.Write(imp.formatf(DEBUG, template, args...))
	}
}

func (imp *impl) CDebugf(ctx context.Context, template string, args ...interface{}) {
	dbgName := GetName(ctx)
	if dbgName == "" {
		imp.Debugf(template, args...)
		return
	}

	logEntry := imp.formatf(DEBUG, template, args...)
	logEntry.Fields = append(logEntry.Fields, zap.String("log_ts", dbgName))
	imp.Write(logEntry)
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.Write(imp.formatw(DEBUG, msg, keysAndValues...))
	}
}

func (imp *impl) CDebugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	dbgName := GetName(ctx)
	if dbgName == "" {
		imp.Debugw(msg, keysAndValues...)
		return
	}

	imp.Write(imp.formatw(DEBUG, msg, append(keysAndValues, "log_ts", dbgName)...))
}

func (imp *impl) Info(args ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.Write(imp.format(INFO, args...))
	}
}

func (imp *impl) Infof(template string, args ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.Write(imp.formatf(INFO, template, args...))
	}
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.Write(imp.formatw(INFO, msg, keysAndValues...))
	}
}

func (imp *impl) Warn(args ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.Write(imp.format(WARN, args...))
	}
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.Write(imp.formatf(WARN, template, args...))
	}
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.Write(imp.formatw(WARN, msg, keysAndValues...))
	}
}

func (imp *impl) Error(args ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.Write(imp.format(ERROR, args...))
	}
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.Write(imp.formatf(ERROR, template, args...))
	}
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.Write(imp.formatw(ERROR, msg, keysAndValues...))
	}
}

// cLog writes an entry built for a context aware method. Entries for debug contexts are tagged
// with the context's debug name.
func (imp *impl) cLog(ctx context.Context, logLevel Level, logEntry *LogEntry) {
	if dbgName := GetName(ctx); dbgName != "" {
		logEntry.Fields = append(logEntry.Fields, zap.String("log_ts", dbgName))
	} else if !imp.shouldLog(logLevel) {
		return
	}
	imp.Write(logEntry)
}

func (imp *impl) CInfo(ctx context.Context, args ...interface{}) {
	imp.cLog(ctx, INFO, imp.format(INFO, args...))
}

func (imp *impl) CInfof(ctx context.Context, template string, args ...interface{}) {
	imp.cLog(ctx, INFO, imp.formatf(INFO, template, args...))
}

func (imp *impl) CInfow(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.cLog(ctx, INFO, imp.formatw(INFO, msg, keysAndValues...))
}

func (imp *impl) CWarn(ctx context.Context, args ...interface{}) {
	imp.cLog(ctx, WARN, imp.format(WARN, args...))
}

func (imp *impl) CWarnf(ctx context.Context, template string, args ...interface{}) {
	imp.cLog(ctx, WARN, imp.formatf(WARN, template, args...))
}

func (imp *impl) CWarnw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.cLog(ctx, WARN, imp.formatw(WARN, msg, keysAndValues...))
}

func (imp *impl) CError(ctx context.Context, args ...interface{}) {
	imp.cLog(ctx, ERROR, imp.format(ERROR, args...))
}

func (imp *impl) CErrorf(ctx context.Context, template string, args ...interface{}) {
	imp.cLog(ctx, ERROR, imp.formatf(ERROR, template, args...))
}

func (imp *impl) CErrorw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.cLog(ctx, ERROR, imp.formatw(ERROR, msg, keysAndValues...))
}

// These Fatal* methods log as errors then exit the process.
func (imp *impl) Fatal(args ...interface{}) {
	imp.Write(imp.format(ERROR, args...))
	os.Exit(1)
}

func (imp *impl) Fatalf(template string, args ...interface{}) {
	imp.Write(imp.formatf(ERROR, template, args...))
	os.Exit(1)
}

func (imp *impl) Fatalw(msg string, keysAndValues ...interface{}) {
	imp.Write(imp.formatw(ERROR, msg, keysAndValues...))
	os.Exit(1)
}

// getCaller returns the first frame outside of the logger implementation, i.e. the line that
// called a logger method.
func getCaller() zapcore.EntryCaller {
	var entryCaller zapcore.EntryCaller
	const maxDepth = 16
	pcs := make([]uintptr, maxDepth)
	// Skip runtime.Callers and getCaller itself.
	numFrames := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:numFrames])
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.Function, "/logging.(*impl).") {
			entryCaller.Defined = frame.PC != 0
			entryCaller.PC = frame.PC
			entryCaller.File = frame.File
			entryCaller.Line = frame.Line
			entryCaller.Function = frame.Function
			return entryCaller
		}
		if !more {
			return entryCaller
		}
	}
}
