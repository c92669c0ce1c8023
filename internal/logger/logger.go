package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
)

const maxLogSize = 10 * 1024 * 1024

var (
	debugLog *os.File
	logPath  string
)

// Init 初始化调试日志，写入 ~/.avalon/engine.log
// 未初始化时所有日志静默丢弃，引擎包本身不依赖日志
func Init() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	logDir := filepath.Join(homeDir, ".avalon")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath = filepath.Join(logDir, "engine.log")
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		// 超过上限时轮转旧文件
		backup := fmt.Sprintf("%s.%d", logPath, time.Now().Unix())
		_ = os.Rename(logPath, backup)
	}

	debugLog, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	log.SetOutput(debugLog)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)

	Info("logger initialized, log file: %s", logPath)
	return nil
}

// Close 关闭日志文件
func Close() {
	if debugLog != nil {
		_ = debugLog.Close()
		log.SetOutput(io.Discard)
	}
}

// Info 记录一条普通日志
func Info(format string, args ...any) {
	if debugLog == nil {
		return
	}
	log.Printf("[INFO] "+format, args...)
}

// Error 记录一条错误日志
func Error(format string, args ...any) {
	if debugLog == nil {
		return
	}
	log.Printf("[ERROR] "+format, args...)
}

// Panic 记录 panic 与调用栈
func Panic(r any) {
	if debugLog == nil {
		return
	}
	log.Printf("[PANIC] %v\n%s", r, debug.Stack())
}

// Path 返回当前日志文件路径
func Path() string {
	return logPath
}
