package utils

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type LogConfig struct {
	Level  string
	Format string
	Output string
}

type LogFields map[string]interface{}

// Logger is the structured logging surface used across the service.
type Logger interface {
	Debug(msg string, fields ...LogFields)
	Info(msg string, fields ...LogFields)
	Warn(msg string, fields ...LogFields)
	Error(msg string, fields ...LogFields)
	Fatal(msg string, fields ...LogFields)
	WithFields(fields LogFields) Logger
	WithContext(ctx context.Context) Logger
}

type logrusLogger struct {
	entry *logrus.Entry
}

var defaultLogger Logger

func InitLogger(cfg LogConfig) Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	var output io.Writer
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}
	log.SetOutput(output)

	defaultLogger = &logrusLogger{entry: logrus.NewEntry(log)}
	return defaultLogger
}

func GetLogger() Logger {
	if defaultLogger == nil {
		defaultLogger = InitLogger(LogConfig{Level: "info", Format: "json", Output: "stdout"})
	}
	return defaultLogger
}

func (l *logrusLogger) log(level logrus.Level, msg string, fields ...LogFields) {
	entry := l.entry
	for _, f := range fields {
		entry = entry.WithFields(logrus.Fields(f))
	}
	entry.Log(level, msg)
}

func (l *logrusLogger) Debug(msg string, fields ...LogFields) { l.log(logrus.DebugLevel, msg, fields...) }
func (l *logrusLogger) Info(msg string, fields ...LogFields)  { l.log(logrus.InfoLevel, msg, fields...) }
func (l *logrusLogger) Warn(msg string, fields ...LogFields)  { l.log(logrus.WarnLevel, msg, fields...) }
func (l *logrusLogger) Error(msg string, fields ...LogFields) { l.log(logrus.ErrorLevel, msg, fields...) }

func (l *logrusLogger) Fatal(msg string, fields ...LogFields) {
	l.log(logrus.FatalLevel, msg, fields...)
	os.Exit(1)
}

func (l *logrusLogger) WithFields(fields LogFields) Logger {
	return &logrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	companyIDKey contextKey = "company_id"
	userIDKey    contextKey = "user_id"
)

func (l *logrusLogger) WithContext(ctx context.Context) Logger {
	entry := l.entry
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		entry = entry.WithField("request_id", requestID)
	}
	if companyID, ok := ctx.Value(companyIDKey).(uint); ok {
		entry = entry.WithField("company_id", companyID)
	}
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		entry = entry.WithField("user_id", userID)
	}
	return &logrusLogger{entry: entry}
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func ContextWithCompanyID(ctx context.Context, companyID uint) context.Context {
	return context.WithValue(ctx, companyIDKey, companyID)
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
