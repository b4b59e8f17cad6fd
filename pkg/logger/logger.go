package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type LogLevel int

const (
	ERROR LogLevel = iota
	WARN
	INFO
	DEBUG
)

var currentLevel = getLogLevel()

const (
	APP        = "APP"
	CONFIG     = "CONFIG"
	ERGAST     = "ERGAST"
	HANDLER    = "HANDLER"
	MCP        = "MCP"
	MIDDLEWARE = "MIDDLEWARE"
	OAUTH      = "OAUTH"
	REDIS      = "REDIS"
	SERVICE    = "SERVICE"
	STREAM     = "STREAM"
	TOOLS      = "TOOLS"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(currentLevel.zerologLevel())
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func getLogLevel() LogLevel {
	return ParseLevel(os.Getenv("LOG_LEVEL"))
}

// ParseLevel maps a level name to a LogLevel, defaulting to INFO.
func ParseLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

func (l LogLevel) zerologLevel() zerolog.Level {
	switch l {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Init sets the process-wide level and output for both the namespaced helpers
// and the zerolog global logger. Output must not be stdout when the MCP stdio
// transport is running.
func Init(level string, out io.Writer) {
	currentLevel = ParseLevel(level)
	zerolog.SetGlobalLevel(currentLevel.zerologLevel())
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// Level returns the active level.
func Level() LogLevel {
	return currentLevel
}

func formatMessage(format string, v ...interface{}) string {
	if len(v) == 0 {
		return format
	}
	return fmt.Sprintf(format, v...)
}

func Debug(namespace, format string, v ...interface{}) {
	log.Debug().Str("namespace", namespace).Msg(formatMessage(format, v...))
}

func Info(namespace, format string, v ...interface{}) {
	log.Info().Str("namespace", namespace).Msg(formatMessage(format, v...))
}

func Warn(namespace, format string, v ...interface{}) {
	log.Warn().Str("namespace", namespace).Msg(formatMessage(format, v...))
}

func Error(namespace, format string, v ...interface{}) {
	log.Error().Str("namespace", namespace).Msg(formatMessage(format, v...))
}

// Fatal logs at fatal level without exiting; callers decide how to stop.
func Fatal(namespace, format string, v ...interface{}) {
	log.WithLevel(zerolog.FatalLevel).Str("namespace", namespace).Msg(formatMessage(format, v...))
}
