package log

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Fields map[string]any

type Logger struct {
	zl *zap.Logger
}

// EncodeType 日志输出类型，支持控制台和json格式
type EncodeType int

const (
	// EncodeTypeConsole 控制台输出
	EncodeTypeConsole EncodeType = iota
	// EncodeTypeJson json输出
	EncodeTypeJson
)

// ParseEncodeType 配置文件中的 "json" 对应json输出，其余一律控制台输出
func ParseEncodeType(s string) EncodeType {
	if s == "json" {
		return EncodeTypeJson
	}
	return EncodeTypeConsole
}

type Option struct {
	Output      io.Writer // 为空时输出到 stdout
	Mode        string
	ServiceName string
	EncodeType  EncodeType
}

func NewLogger(opt *Option) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "time",
		LevelKey:      "level",
		NameKey:       "service",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeTime: func(t time.Time, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendString(t.Format("2006-01-02 15:04:05"))
		},
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	var encoder zapcore.Encoder
	if opt.EncodeType == EncodeTypeConsole {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	var out io.Writer = os.Stdout
	if opt.Output != nil {
		out = opt.Output
	}
	writeSyncer := zapcore.AddSync(out)

	// 封装了一层，调用方需要向上跳一级
	zopts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1)}

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if opt.Mode == "debug" || opt.Mode == "test" {
		level.SetLevel(zap.DebugLevel)
		zopts = append(zopts, zap.Development())
	}

	core := zapcore.NewCore(encoder, writeSyncer, level)
	return &Logger{zl: zap.New(core, zopts...).Named(opt.ServiceName)}
}

// Nop 丢弃所有输出，测试使用
func Nop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

// Zap 返回底层 zap.Logger，供需要原生字段的中间件使用
func (l *Logger) Zap() *zap.Logger {
	return l.zl.WithOptions(zap.AddCallerSkip(-1))
}

func (l *Logger) WithFields(f Fields) *Logger {
	zf := make([]zap.Field, 0, len(f))
	for k, v := range f {
		zf = append(zf, zap.Any(k, v))
	}
	return &Logger{zl: l.zl.With(zf...)}
}

func (l *Logger) Sync() error {
	return l.zl.Sync()
}

func (l *Logger) Debug(msg string) { l.zl.Debug(msg) }

func (l *Logger) Debugf(format string, v ...any) { l.zl.Debug(fmt.Sprintf(format, v...)) }

func (l *Logger) Info(msg string) { l.zl.Info(msg) }

func (l *Logger) Infof(format string, v ...any) { l.zl.Info(fmt.Sprintf(format, v...)) }

func (l *Logger) Warn(msg string) { l.zl.Warn(msg) }

func (l *Logger) Warnf(format string, v ...any) { l.zl.Warn(fmt.Sprintf(format, v...)) }

func (l *Logger) Error(msg string) { l.zl.Error(msg) }

func (l *Logger) Errorf(format string, v ...any) { l.zl.Error(fmt.Sprintf(format, v...)) }

func (l *Logger) Fatal(msg string) { l.zl.Fatal(msg) }

func (l *Logger) Fatalf(format string, v ...any) { l.zl.Fatal(fmt.Sprintf(format, v...)) }
