package log

import (
	"os"
	"strconv"
	"sync"

	"github.com/capstack/goregistrar/env"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once      sync.Once
	appLogger *zap.SugaredLogger
)

// logger builds the process-wide zap logger on first use. Level is
// INFO unless DEBUG is set truthy in the environment.
func logger() *zap.SugaredLogger {
	once.Do(func() {
		atom := zap.NewAtomicLevel()
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.StacktraceKey = "stack"
		encoderCfg.TimeKey = "timestamp"
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

		if debug, _ := strconv.ParseBool(env.GetVar("DEBUG")); debug {
			atom.SetLevel(zap.DebugLevel)
		} else {
			atom.SetLevel(zap.InfoLevel)
		}

		zl := zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.Lock(os.Stdout),
			atom,
		),
			zap.AddStacktrace(zapcore.ErrorLevel),
			zap.AddCaller(),
			zap.AddCallerSkip(1),
		)

		appLogger = zl.Sugar()
	})
	return appLogger
}

func Debug(msg string, keysAndValues ...interface{}) {
	logger().Debugw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...interface{}) {
	logger().Infow(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...interface{}) {
	logger().Warnw(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...interface{}) {
	logger().Errorw(msg, keysAndValues...)
}

func Panic(msg string, keysAndValues ...interface{}) {
	logger().Panicw(msg, keysAndValues...)
}

func Fatal(msg string, keysAndValues ...interface{}) {
	logger().Fatalw(msg, keysAndValues...)
}
