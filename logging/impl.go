package logging

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	// Logger is the structured logger handed to every component.
	Logger interface {
		Debug(args ...interface{})
		Debugf(template string, args ...interface{})
		Debugw(msg string, keysAndValues ...interface{})
		Info(args ...interface{})
		Infof(template string, args ...interface{})
		Infow(msg string, keysAndValues ...interface{})
		Warn(args ...interface{})
		Warnf(template string, args ...interface{})
		Warnw(msg string, keysAndValues ...interface{})
		Error(args ...interface{})
		Errorf(template string, args ...interface{})
		Errorw(msg string, keysAndValues ...interface{})

		// Sublogger returns a child logger whose name is appended to this logger's name.
		Sublogger(subname string) Logger
		SetLevel(level Level)
		GetLevel() Level
		AsZap() *zap.SugaredLogger
		Sync() error
	}

	// Appender is an output for log entries.
	Appender interface {
		zapcore.Core
	}

	impl struct {
		name      string
		level     AtomicLevel
		appenders []Appender

		*zap.SugaredLogger
	}
)

func newImpl(name string, level AtomicLevel, appenders []Appender) *impl {
	cores := make([]zapcore.Core, 0, len(appenders))
	for _, appender := range appenders {
		cores = append(cores, appender)
	}
	opts := []zap.Option{zap.AddCaller()}
	if len(cores) > 0 {
		opts = append(opts, zap.IncreaseLevel(level.zap))
	}
	sugar := zap.New(zapcore.NewTee(cores...), opts...).Sugar()
	if name != "" {
		sugar = sugar.Named(name)
	}
	return &impl{name: name, level: level, appenders: appenders, SugaredLogger: sugar}
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = imp.name + "." + subname
	}
	return newImpl(newName, NewAtomicLevelAt(imp.level.Get()), imp.appenders)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) AsZap() *zap.SugaredLogger {
	return imp.SugaredLogger
}

func (imp *impl) Sync() error {
	var errs error
	for _, appender := range imp.appenders {
		errs = multierr.Combine(errs, appender.Sync())
	}
	return errs
}
