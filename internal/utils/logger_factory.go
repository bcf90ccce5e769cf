package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant              = "debug"
	logLevelInfoStringConstant               = "info"
	logLevelWarnStringConstant               = "warn"
	logLevelErrorStringConstant              = "error"
	logFormatStructuredStringConstant        = "structured"
	logFormatConsoleStringConstant           = "console"
	unsupportedLogLevelMessageTemplateConst  = "unsupported log level %q"
	unsupportedLogFormatMessageTemplateConst = "unsupported log format %q"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

// Supported logging levels.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logging output formats.
type LogFormat string

// Supported logging formats.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

// LoggerOutputs bundles the loggers produced by the factory. The diagnostic
// logger carries machine-oriented events; the console logger only emits when
// the console format is selected.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	ConsoleLogger    *zap.Logger
}

// LoggerFactory constructs zap loggers for validated level and format values.
type LoggerFactory struct{}

// NewLoggerFactory constructs a LoggerFactory instance.
func NewLoggerFactory() LoggerFactory {
	return LoggerFactory{}
}

// CreateLoggerOutputs builds logger outputs for the requested level and format.
func (factory LoggerFactory) CreateLoggerOutputs(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (LoggerOutputs, error) {
	zapLevel, levelError := resolveZapLevel(requestedLogLevel)
	if levelError != nil {
		return LoggerOutputs{}, levelError
	}

	loggerConfiguration := zap.NewProductionConfig()
	loggerConfiguration.Level = zap.NewAtomicLevelAt(zapLevel)
	loggerConfiguration.OutputPaths = []string{"stderr"}
	loggerConfiguration.ErrorOutputPaths = []string{"stderr"}

	consoleLogger := zap.NewNop()
	switch requestedLogFormat {
	case LogFormatStructured:
		loggerConfiguration.Encoding = "json"
	case LogFormatConsole:
		loggerConfiguration.Encoding = "console"
		loggerConfiguration.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		loggerConfiguration.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return LoggerOutputs{}, fmt.Errorf(unsupportedLogFormatMessageTemplateConst, requestedLogFormat)
	}

	diagnosticLogger, buildError := loggerConfiguration.Build()
	if buildError != nil {
		return LoggerOutputs{}, buildError
	}

	if requestedLogFormat == LogFormatConsole {
		consoleLogger = diagnosticLogger
	}

	return LoggerOutputs{DiagnosticLogger: diagnosticLogger, ConsoleLogger: consoleLogger}, nil
}

func resolveZapLevel(requestedLogLevel LogLevel) (zapcore.Level, error) {
	switch requestedLogLevel {
	case LogLevelDebug:
		return zapcore.DebugLevel, nil
	case LogLevelInfo:
		return zapcore.InfoLevel, nil
	case LogLevelWarn:
		return zapcore.WarnLevel, nil
	case LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf(unsupportedLogLevelMessageTemplateConst, requestedLogLevel)
	}
}
