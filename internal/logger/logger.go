package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultDir        = "logs"
	defaultFilename   = "stockdesk.log"
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 7
	defaultMaxAgeDays = 30
)

// Options 文件日志与滚动参数，零值字段使用默认值
type Options struct {
	Level      string
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// L 全局日志，Init 之前为 nil
var L *zap.Logger

var console = newConsole(zapcore.InfoLevel)

// Init 初始化全局日志并替换 zap 全局实例
func Init(mode string, opts Options) *zap.Logger {
	L = New(mode, opts)
	zap.ReplaceGlobals(L)
	return L
}

// New debug 模式只输出到控制台；其余模式写 JSON 滚动文件，error 及以上同时打到 stderr
func New(mode string, opts Options) *zap.Logger {
	if strings.EqualFold(strings.TrimSpace(mode), "debug") {
		return newConsole(zapcore.DebugLevel)
	}
	level := parseLevel(opts.Level)
	rotating, err := openRotating(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v, writing to stdout\n", err)
		return zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.Lock(os.Stdout), level), zap.AddCaller(), zap.AddCallerSkip(1))
	}
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), rotating, level),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stderr), zapcore.ErrorLevel),
	)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

func newConsole(level zapcore.Level) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stdout), level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

func parseLevel(raw string) zapcore.Level {
	level, err := zapcore.ParseLevel(strings.TrimSpace(raw))
	if err != nil || raw == "" {
		return zapcore.InfoLevel
	}
	return level
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "event"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}

func openRotating(opts Options) (zapcore.WriteSyncer, error) {
	path, err := logFilePath(opts)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    orDefault(opts.MaxSizeMB, defaultMaxSizeMB),
		MaxBackups: orDefault(opts.MaxBackups, defaultMaxBackups),
		MaxAge:     orDefault(opts.MaxAgeDays, defaultMaxAgeDays),
		Compress:   opts.Compress,
	}), nil
}

// logFilePath 目录为空时使用工作目录下的 logs/，并确认文件可写
func logFilePath(opts Options) (string, error) {
	dir := strings.TrimSpace(opts.Dir)
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
	name := strings.TrimSpace(opts.Filename)
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

func orDefault(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// Z 全局日志，未初始化时退回控制台
func Z() *zap.Logger {
	if L != nil {
		return L
	}
	return console
}

// S 全局 SugaredLogger
func S() *zap.SugaredLogger { return Z().Sugar() }

// SW 附带固定字段
func SW(kv ...interface{}) *zap.SugaredLogger { return S().With(kv...) }

// StdLogger 给只接受标准库 *log.Logger 的调用方
func StdLogger() *log.Logger { return zap.NewStdLog(Z()) }

func Debugw(event string, kv ...interface{}) { S().Debugw(event, kv...) }
func Infow(event string, kv ...interface{})  { S().Infow(event, kv...) }
func Warnw(event string, kv ...interface{})  { S().Warnw(event, kv...) }
func Errorw(event string, kv ...interface{}) { S().Errorw(event, kv...) }

// Sync 进程退出前刷盘
func Sync() { _ = Z().Sync() }
