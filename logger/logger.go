package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Log is a no-op logger until InitLogger runs, so packages can log unconditionally.
	Log       = zap.NewNop().Sugar()
	ZapLogger = zap.NewNop() // Expose the raw zap Logger
)

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "T", // Keep time key brief
		LevelKey:         "L",
		NameKey:          "N",
		CallerKey:        "",
		FunctionKey:      zapcore.OmitKey,
		MessageKey:       "M",
		StacktraceKey:    "S",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration:   zapcore.SecondsDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: "  ",
	}
}

// InitLogger writes logs at level and above to logPath. With verbose set,
// debug output is mirrored to stderr.
func InitLogger(logPath, level string, verbose bool) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("can't open log file: %w", err)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(logFile), lvl),
	}
	if verbose {
		stderrCfg := encoderConfig()
		stderrCfg.TimeKey = ""
		stderrCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(stderrCfg), zapcore.Lock(os.Stderr), zap.DebugLevel))
	}

	ZapLogger = zap.New(zapcore.NewTee(cores...))
	Log = ZapLogger.Sugar()
	Log.Infof("Logger initialized, logging to %s", logPath)
	return nil
}

func Sync() {
	if ZapLogger != nil {
		_ = ZapLogger.Sync() // flushes buffer, if any
	}
}
