package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapConfig controls the zap-backed logger construction
type ZapConfig struct {
	Level string // "debug", "info", "warn", "error"
}

// zapLogger adapts a zap sugared logger to the Logger interface,
// hiding zap types from callers
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger creates a console zap logger writing to standard output.
// Progress lines of the wait session are operator-facing, so they go to
// stdout rather than stderr. The returned sync function flushes any
// buffered entries and should be deferred by the caller.
func NewZapLogger(config ZapConfig) (Logger, func(), error) {
	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stdout),
		level,
	)
	logger := zap.New(core)

	sync := func() {
		_ = logger.Sync()
	}

	return &zapLogger{sugar: logger.Sugar()}, sync, nil
}

func (z *zapLogger) Debugf(format string, args ...interface{}) {
	z.sugar.Debugf(format, args...)
}

func (z *zapLogger) Infof(format string, args ...interface{}) {
	z.sugar.Infof(format, args...)
}

func (z *zapLogger) Warnf(format string, args ...interface{}) {
	z.sugar.Warnf(format, args...)
}

func (z *zapLogger) Errorf(format string, args ...interface{}) {
	z.sugar.Errorf(format, args...)
}
