package common

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Log Levels
// --------------------------------------------------------------------------

// LogLevel controls which messages a logger emits.
type LogLevel uint8

const (
	CRITICAL LogLevel = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

// --------------------------------------------------------------------------
// Logger Interface
// --------------------------------------------------------------------------

// ILogger is the leveled logger used across the rpc and cmd packages.
type ILogger interface {
	SetLevel(level LogLevel)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Panicf(format string, args ...interface{})
}

// tychoLogger implements the ILogger interface with custom formatting
type tychoLogger struct {
	name   string
	level  LogLevel
	logger *log.Logger
}

func (l *tychoLogger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *tychoLogger) Debugf(format string, args ...interface{}) {
	if l.level >= DEBUG {
		l.log("DEBUG", format, args...)
	}
}

func (l *tychoLogger) Infof(format string, args ...interface{}) {
	if l.level >= INFO {
		l.log("INFO", format, args...)
	}
}

func (l *tychoLogger) Warningf(format string, args ...interface{}) {
	if l.level >= WARNING {
		l.log("WARN", format, args...)
	}
}

func (l *tychoLogger) Errorf(format string, args ...interface{}) {
	if l.level >= ERROR {
		l.log("ERROR", format, args...)
	}
}

func (l *tychoLogger) Panicf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

// log formats and writes a log message. this internal helper is used by the public methods
func (l *tychoLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-15s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Logger Registry
// --------------------------------------------------------------------------

var loggers = xsync.NewMapOf[string, ILogger]()

// GetLogger returns the named logger, creating it at INFO on first use.
// Loggers for the same name are shared, so a level set in one place is
// visible everywhere.
func GetLogger(pkgName string) ILogger {
	l, _ := loggers.LoadOrCompute(pkgName, func() ILogger {
		stdLogger := log.New(os.Stdout, "", log.Ldate|log.Ltime)
		return &tychoLogger{
			name:   pkgName,
			level:  INFO,
			logger: stdLogger,
		}
	})
	return l
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to a LogLevel
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warning", "warn":
		return WARNING
	case "error":
		return ERROR
	default:
		panic(fmt.Sprintf("invalid log level: %s. must be one of debug, info, warn, error", level))
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers sets the configured level on every logger the server uses
func InitLoggers(config ServerConfig) {
	level := ParseLogLevel(config.LogLevel)

	GetLogger("state").SetLevel(level)
	GetLogger("storage").SetLevel(level)
	GetLogger("transport/rpc").SetLevel(level)
	GetLogger("rpc").SetLevel(level)
}
