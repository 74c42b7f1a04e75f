package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger adapts a zap logger to the Logger interface.
type zapLogger struct {
	sugar  *zap.SugaredLogger
	prefix string
}

// NewZapLogger wraps z so components can keep logging through Logger.
// The prefix is attached as the "component" field rather than inlined.
func NewZapLogger(z *zap.Logger, prefix string) Logger {
	s := z.Sugar()
	if prefix != "" {
		s = s.With("component", prefix)
	}
	return &zapLogger{sugar: s, prefix: prefix}
}

func (l *zapLogger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *zapLogger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *zapLogger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *zapLogger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// NewFileZap builds a JSON zap logger appending to path.
// Debug level is enabled when debug is true.
func NewFileZap(path string, debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
