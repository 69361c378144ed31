package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Logger 全局日志实例
	Logger zerolog.Logger
)

func init() {
	// 从环境变量读取日志配置
	levelStr := os.Getenv("SHUFFLEBUDDY_LOG_LEVEL")
	if levelStr == "" {
		levelStr = "warn" // 默认 WARNING 级别
	}
	zerolog.SetGlobalLevel(parseLevel(levelStr))
	SetOutputFile(os.Getenv("SHUFFLEBUDDY_LOG_FILE"))
}

// SetOutputFile 设置日志文件（带轮转）；path 为空时输出到 stderr。
// stdout 留给命令行的抽取结果。
func SetOutputFile(path string) {
	if path == "" {
		SetOutput(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02 15:04:05.000",
		})
		return
	}
	SetOutput(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    100, // MB
		MaxBackups: 7,   // 保留7个备份
		MaxAge:     30,  // 天
		Compress:   true,
	})
}

// SetOutput 替换全局 logger 的输出
func SetOutput(w io.Writer) {
	Logger = zerolog.New(w).With().Timestamp().Logger()
	log.Logger = Logger
}

// parseLevel 解析日志级别字符串
func parseLevel(levelStr string) zerolog.Level {
	levelStr = strings.ToUpper(strings.TrimSpace(levelStr))
	switch levelStr {
	case "DEBUG", "DBG":
		return zerolog.DebugLevel
	case "INFO", "INF":
		return zerolog.InfoLevel
	case "WARNING", "WARN":
		return zerolog.WarnLevel
	case "ERROR", "ERR":
		return zerolog.ErrorLevel
	case "FATAL":
		return zerolog.FatalLevel
	case "PANIC":
		return zerolog.PanicLevel
	case "TRACE":
		return zerolog.TraceLevel
	default:
		return zerolog.WarnLevel // 默认 WARNING
	}
}

// SetLevel 设置日志级别
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	Logger = Logger.Level(level)
	log.Logger = Logger
}

// SetLevelFromString 从字符串设置日志级别
func SetLevelFromString(levelStr string) {
	SetLevel(parseLevel(levelStr))
}

// GetLevelString 获取当前日志级别的字符串表示
func GetLevelString() string {
	return zerolog.GlobalLevel().String()
}
