package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultDir        = "logs"
	defaultFilename   = "pressdesk.log"
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 7
	defaultMaxAgeDays = 30
)

// Options 日志输出配置
// Level 为空时 debug 模式取 debug，其余取 info；Console 在非 debug 模式下额外输出到 stdout。
type Options struct {
	Level      string
	Console    bool
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

var (
	current  atomic.Pointer[zap.Logger]
	fallback = zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.AddSync(os.Stdout),
		zap.InfoLevel,
	), zap.AddCaller(), zap.AddCallerSkip(1))
)

// Init 创建日志实例并设为进程全局
func Init(mode string, options Options) *zap.Logger {
	l := New(mode, options)
	current.Store(l)
	zap.ReplaceGlobals(l)
	return l
}

// New 创建日志实例
// debug 模式输出彩色控制台格式，其余模式以 JSON 写入滚动文件。
func New(mode string, options Options) *zap.Logger {
	debug := strings.EqualFold(strings.TrimSpace(mode), "debug")
	level := resolveLevel(options.Level, debug)
	cfg := encoderConfig()

	if debug {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return build(zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(os.Stdout), level))
	}

	json := zapcore.NewJSONEncoder(cfg)
	sink, err := rollingFile(options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v, writing to stdout\n", err)
		return build(zapcore.NewCore(json, zapcore.AddSync(os.Stdout), level))
	}
	core := zapcore.NewCore(json, zapcore.AddSync(sink), level)
	if options.Console {
		core = zapcore.NewTee(core, zapcore.NewCore(json, zapcore.AddSync(os.Stdout), level))
	}
	return build(core)
}

// Z 当前结构化日志实例，未初始化时返回控制台兜底实例
func Z() *zap.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return fallback
}

// S 当前 SugaredLogger
func S() *zap.SugaredLogger {
	return Z().Sugar()
}

// SW 带固定字段的 SugaredLogger
func SW(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return S()
	}
	return S().With(kv...)
}

// Named 带模块名的 SugaredLogger，空名返回根实例
func Named(name string) *zap.SugaredLogger {
	if name = strings.TrimSpace(name); name == "" {
		return S()
	}
	return S().Named(name)
}

// StdLogger 标准库 log 适配，启动阶段的 Fatalf 走这里
func StdLogger() *log.Logger {
	return zap.NewStdLog(Z())
}

func Debugw(msg string, kv ...interface{}) { S().Debugw(msg, kv...) }
func Infow(msg string, kv ...interface{})  { S().Infow(msg, kv...) }
func Warnw(msg string, kv ...interface{})  { S().Warnw(msg, kv...) }
func Errorw(msg string, kv ...interface{}) { S().Errorw(msg, kv...) }

func resolveLevel(raw string, debug bool) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err == nil && strings.TrimSpace(raw) != "" {
		return level
	}
	if debug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

func build(core zapcore.Core) *zap.Logger {
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

func rollingFile(options Options) (io.Writer, error) {
	path, err := logFilePath(options)
	if err != nil {
		return nil, err
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    orDefault(options.MaxSizeMB, defaultMaxSizeMB),
		MaxBackups: orDefault(options.MaxBackups, defaultMaxBackups),
		MaxAge:     orDefault(options.MaxAgeDays, defaultMaxAgeDays),
		Compress:   options.Compress,
	}, nil
}

// logFilePath 解析并预先创建日志文件，权限问题在启动时暴露
func logFilePath(options Options) (string, error) {
	dir := strings.TrimSpace(options.Dir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve workdir: %w", err)
		}
		dir = filepath.Join(wd, defaultDir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}
	name := strings.TrimSpace(options.Filename)
	if name == "" {
		name = defaultFilename
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open log file: %w", err)
	}
	return path, f.Close()
}

func orDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
