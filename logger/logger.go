package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"deckcounter/config"
	"deckcounter/utils"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(s) {
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

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	SetLevel(level LogLevel)
	GetLevel() LogLevel
}

type logger struct {
	level  LogLevel
	json   bool
	output io.Writer
	std    *log.Logger
}

// New opens the configured log file. In development the output is also
// mirrored to stdout.
func New(cfg *config.LoggingConfig, environment string) (Logger, error) {
	logFile := cfg.File
	if logFile == "" {
		logFile = config.DEFAULT_LOG_FILE
	}
	logFile = utils.ResolvePath(logFile)

	if err := utils.MkdirIfNotExists(logFile); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	var output io.Writer
	if environment == "development" {
		output = io.MultiWriter(os.Stdout, file)
	} else {
		output = file
	}

	return NewWithWriter(output, cfg.Level, cfg.Format), nil
}

func NewWithWriter(output io.Writer, level, format string) Logger {
	return &logger{
		level:  ParseLogLevel(level),
		json:   strings.EqualFold(format, "json"),
		output: output,
		std:    log.New(output, "", 0),
	}
}

type jsonLine struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"msg"`
}

func (l *logger) formatMessage(level LogLevel, format string, args ...any) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	message := fmt.Sprintf(format, args...)

	if l.json {
		data, err := json.Marshal(jsonLine{Time: timestamp, Level: level.String(), Message: message})
		if err == nil {
			return string(data)
		}
	}

	return fmt.Sprintf("[%s] %s: %s", level.String(), timestamp, message)
}

func (l *logger) log(level LogLevel, format string, args ...any) {
	if level < l.level {
		return
	}
	message := l.formatMessage(level, format, args...)
	l.std.Println(message)
}

func (l *logger) Debug(format string, args ...any) {
	l.log(DEBUG, format, args...)
}

func (l *logger) Info(format string, args ...any) {
	l.log(INFO, format, args...)
}

func (l *logger) Warn(format string, args ...any) {
	l.log(WARN, format, args...)
}

func (l *logger) Error(format string, args ...any) {
	l.log(ERROR, format, args...)
}

func (l *logger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *logger) GetLevel() LogLevel {
	return l.level
}
