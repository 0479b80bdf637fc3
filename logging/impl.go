package logging

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type impl struct {
	name string

	mu        sync.RWMutex
	level     Level
	appenders []Appender
	sugar     *zap.SugaredLogger
}

func newImpl(name string, level Level, appenders ...Appender) *impl {
	imp := &impl{name: name, level: level, appenders: appenders}
	imp.rebuild()
	return imp
}

// rebuild must be called with mu held for writing, or before imp is shared.
func (imp *impl) rebuild() {
	// Skip the impl frame so callers show up as the source of the entry.
	ret := zap.New(zapcore.NewTee(imp.appenders...), zap.AddCaller(), zap.AddCallerSkip(1))
	if imp.name != "" {
		ret = ret.Named(imp.name)
	}
	imp.sugar = ret.Sugar()
}

func (imp *impl) AddAppender(appender Appender) {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	imp.appenders = append(imp.appenders, appender)
	imp.rebuild()
}

func (imp *impl) SetLevel(level Level) {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	imp.level = level
}

func (imp *impl) GetLevel() Level {
	imp.mu.RLock()
	defer imp.mu.RUnlock()
	return imp.level
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}

	imp.mu.RLock()
	defer imp.mu.RUnlock()
	appenders := make([]Appender, len(imp.appenders))
	copy(appenders, imp.appenders)
	return newImpl(newName, imp.level, appenders...)
}

func (imp *impl) AsZap() *zap.SugaredLogger {
	imp.mu.RLock()
	defer imp.mu.RUnlock()
	return imp.sugar
}

func (imp *impl) Sync() error {
	imp.mu.RLock()
	defer imp.mu.RUnlock()
	var errs []error
	for _, appender := range imp.appenders {
		if err := appender.Sync(); err != nil {
			errs = append(errs, err)
		}
	}

	return multierr.Combine(errs...)
}

func (imp *impl) shouldLog(logLevel Level) bool {
	return logLevel >= imp.GetLevel()
}

func (imp *impl) Debug(args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.AsZap().Debug(args...)
	}
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.AsZap().Debugf(template, args...)
	}
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.AsZap().Debugw(msg, keysAndValues...)
	}
}

func (imp *impl) Info(args ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.AsZap().Info(args...)
	}
}

func (imp *impl) Infof(template string, args ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.AsZap().Infof(template, args...)
	}
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.AsZap().Infow(msg, keysAndValues...)
	}
}

func (imp *impl) Warn(args ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.AsZap().Warn(args...)
	}
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.AsZap().Warnf(template, args...)
	}
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.AsZap().Warnw(msg, keysAndValues...)
	}
}

func (imp *impl) Error(args ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.AsZap().Error(args...)
	}
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.AsZap().Errorf(template, args...)
	}
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.AsZap().Errorw(msg, keysAndValues...)
	}
}
