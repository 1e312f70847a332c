// 包 logger：统一初始化与获取日志器；通过环境变量控制日志级别与输出格式
package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.Mutex
	defaultLogger *slog.Logger
)

// Setup：初始化默认日志器
// 背景：服务与导入工具共用同一套日志配置（LOG_LEVEL / LOG_FORMAT）
// 约束：输出目标固定为标准错误
func Setup() *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	var h slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	} else {
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	}
	l := slog.New(h)
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	return l
}

// L：获取默认日志器，未初始化时回退到 Setup
func L() *slog.Logger {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()
	if l == nil {
		return Setup()
	}
	return l
}

// Component：带 component 字段的子日志器
func Component(name string) *slog.Logger { return L().With("component", name) }
