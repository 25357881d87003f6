package logger

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 接口定义了带 context 的日志方法，context 中的请求字段会自动附加
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, msg string, fields ...interface{})
	Error(ctx context.Context, msg string, fields ...interface{})
	Fatal(ctx context.Context, msg string, fields ...interface{})

	// With 返回带有预设字段的新logger
	With(fields ...interface{}) Logger
	// Sync 刷新缓冲区，进程退出前调用
	Sync() error
}

type zapLogger struct {
	z *zap.SugaredLogger
}

var _ Logger = (*zapLogger)(nil)

// New 创建并返回一个Logger实例，支持函数式选项配置
func New(opts ...Option) (Logger, error) {
	options := DefaultOptions()
	for _, o := range opts {
		o(&options)
	}
	return NewFromOptions(options)
}

// NewFromOptions 直接使用配置文件中的 Options 构建 logger
func NewFromOptions(options Options) (Logger, error) {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "level",
		TimeKey:       "ts",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if options.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	var zapOptions []zap.Option
	if options.EnableCaller {
		// 跳过 zapLogger 这一层包装
		zapOptions = append(zapOptions, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	if options.EnableStacktrace {
		stacktraceLevel := zapcore.PanicLevel
		if l := levelFromString(options.StacktraceLevel); l != zapcore.InvalidLevel {
			stacktraceLevel = l
		}
		zapOptions = append(zapOptions, zap.AddStacktrace(stacktraceLevel))
	}

	cores := make([]zapcore.Core, 0, 2)

	if len(options.OutputPaths) > 0 {
		ws, err := buildWriteSyncer(options.OutputPaths, options.Rotation)
		if err != nil {
			return nil, err
		}
		level := zap.NewAtomicLevelAt(levelFromString(options.Level))
		cores = append(cores, zapcore.NewCore(encoder, ws, level))
	}

	if len(options.ErrorPaths) > 0 {
		ws, err := buildWriteSyncer(options.ErrorPaths, options.Rotation)
		if err != nil {
			return nil, err
		}
		// 错误输出只接收 error 及以上级别
		cores = append(cores, zapcore.NewCore(encoder, ws, zap.NewAtomicLevelAt(zapcore.ErrorLevel)))
	}

	z := zap.New(zapcore.NewTee(cores...), zapOptions...)
	return &zapLogger{z: z.Sugar()}, nil
}

// NewNop 返回一个丢弃所有日志的 Logger，测试中使用
func NewNop() Logger {
	return &zapLogger{z: zap.NewNop().Sugar()}
}

// buildWriteSyncer 根据输出路径构建 WriteSyncer，文件路径在启用轮转时交给 lumberjack
func buildWriteSyncer(paths []string, rotation RotationOptions) (zapcore.WriteSyncer, error) {
	if !rotation.Enabled {
		ws, _, err := zap.Open(paths...)
		return ws, err
	}

	writers := make([]zapcore.WriteSyncer, 0, len(paths))
	for _, path := range paths {
		switch path {
		case "stdout":
			writers = append(writers, zapcore.AddSync(os.Stdout))
			continue
		case "stderr":
			writers = append(writers, zapcore.AddSync(os.Stderr))
			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		writers = append(writers, zapcore.AddSync(newRotatingWriter(path, rotation)))
	}
	return zapcore.NewMultiWriteSyncer(writers...), nil
}

func newRotatingWriter(path string, rotation RotationOptions) *lumberjack.Logger {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxBackups: rotation.MaxBackups,
		Compress:   rotation.Compress,
	}
	switch rotation.Policy {
	case "size":
		w.MaxSize = rotation.MaxSize
	case "size_and_time":
		w.MaxSize = rotation.MaxSize
		w.MaxAge = maxAgeDays(rotation.TimeInterval, rotation.MaxAge)
	default:
		w.MaxAge = maxAgeDays(rotation.TimeInterval, rotation.MaxAge)
	}
	return w
}

// maxAgeDays lumberjack 的 MaxAge 以天为单位
func maxAgeDays(interval string, maxAge int) int {
	switch interval {
	case "hour":
		return maxAge / 24
	case "minute":
		return 0
	default:
		return maxAge
	}
}

func (l *zapLogger) With(fields ...interface{}) Logger {
	return &zapLogger{z: l.z.With(fields...)}
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	l.z.Debugw(msg, withContext(ctx, fields)...)
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	l.z.Infow(msg, withContext(ctx, fields)...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...interface{}) {
	l.z.Warnw(msg, withContext(ctx, fields)...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, fields ...interface{}) {
	l.z.Errorw(msg, withContext(ctx, fields)...)
}

func (l *zapLogger) Fatal(ctx context.Context, msg string, fields ...interface{}) {
	l.z.Fatalw(msg, withContext(ctx, fields)...)
}

func (l *zapLogger) Sync() error {
	return l.z.Sync()
}

func withContext(ctx context.Context, fields []interface{}) []interface{} {
	return append(FromContext(ctx), fields...)
}

// levelFromString 将字符串级别转换为zapcore.Level，无法识别时返回 info
func levelFromString(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}
