package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kdar/factorlog"
)

// define all available log level.
const (
	// LogVerbosityNone disables logging.
	LogVerbosityNone = 0

	// LogVerbosityDefault sets the default log level.
	LogVerbosityDefault = 1

	// LogVerbosityDebug sets the debug log level.
	LogVerbosityDebug = 2

	// LogVerbosityTrace sets trace log level.
	LogVerbosityTrace = 3
)

var (
	DateTimeLogFormat = `[%{Date} %{Time "15:04:05.000"}]`
	LogFormat         = `[%{Severity}][pid:%{Pid}][%{ShortFile}:%{Line}] %{Message}`
)

// Log is the diagnostic logger. It writes to stderr only, stdout is reserved
// for the plugin status line.
var Log = newLogger(os.Stderr)

func newLogger(writer io.Writer) *factorlog.FactorLog {
	log := factorlog.New(writer, BuildFormatter(DateTimeLogFormat+LogFormat))
	SetLevel(log, "off")

	return log
}

// Setup configures the logger from the common plugin flags.
// Each -v raises the level (debug, trace), an explicit level wins.
func Setup(verbose int, level string) {
	switch {
	case level != "":
		SetLevel(Log, level)
	case verbose >= 2:
		SetLevel(Log, "trace")
	case verbose == 1:
		SetLevel(Log, "debug")
	default:
		SetLevel(Log, "off")
	}
}

// SetOutput redirects log output.
func SetOutput(writer io.Writer) {
	Log.SetOutput(writer)
}

// SetLevel sets one of off, error, info, debug or trace.
func SetLevel(log *factorlog.FactorLog, level string) {
	switch strings.ToLower(level) {
	case "off":
		log.SetMinMaxSeverity(factorlog.StringToSeverity("PANIC"), factorlog.StringToSeverity("PANIC"))
		log.SetVerbosity(LogVerbosityNone)
	case "error", "info":
		log.SetMinMaxSeverity(factorlog.StringToSeverity(strings.ToUpper(level)), factorlog.StringToSeverity("PANIC"))
		log.SetVerbosity(LogVerbosityDefault)
	case "debug":
		log.SetMinMaxSeverity(factorlog.StringToSeverity(strings.ToUpper(level)), factorlog.StringToSeverity("PANIC"))
		log.SetVerbosity(LogVerbosityDebug)
	case "trace":
		log.SetMinMaxSeverity(factorlog.StringToSeverity(strings.ToUpper(level)), factorlog.StringToSeverity("PANIC"))
		log.SetVerbosity(LogVerbosityTrace)
	default:
		log.Errorf("unknown log level: %s", level)
	}
}

// ValidLevel returns an error for unknown level names.
func ValidLevel(level string) error {
	switch strings.ToLower(level) {
	case "", "off", "error", "info", "debug", "trace":
		return nil
	}

	return fmt.Errorf("unknown log level: %s", level)
}

func BuildFormatter(format string) *factorlog.StdFormatter {
	format = strings.ReplaceAll(format, "%{Pid}", fmt.Sprintf("%d", os.Getpid()))

	return (factorlog.NewStdFormatter(format))
}
