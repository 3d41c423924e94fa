package plugin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/consol-monitoring/checkplugins/pkg/logger"
	"github.com/consol-monitoring/checkplugins/pkg/threshold"
	"github.com/jessevdk/go-flags"
	"github.com/mackerelio/checkers"
)

// Version is the version of all plugins.
const Version = "0.3.0"

// DefaultTimeout is used when no timeout flag is given.
const DefaultTimeout = 5 * time.Second

// CommonOpts are available in every plugin.
type CommonOpts struct {
	Verbose  []bool `short:"v" long:"verbose" description:"increase log level, -v means debug, -vv means trace (logs go to stderr)"`
	LogLevel string `long:"loglevel" description:"set log level to one of: off, error, info, debug, trace"`
	Perfdata bool   `long:"perfdata" description:"append performance data to the status line"`
	Version  bool   `short:"V" long:"version" description:"print version and exit"`
}

// Common returns the common options, it makes every options struct embedding CommonOpts a partial Check.
func (o *CommonOpts) Common() *CommonOpts {
	return o
}

// Collector fetches the raw metrics of one check family from a target.
type Collector interface {
	Collect(ctx context.Context) ([]threshold.Metric, error)
}

// Check is implemented by the options struct of each plugin.
type Check interface {
	Collector

	Common() *CommonOpts

	// Validate checks parsed arguments before any network I/O happens.
	Validate() error

	// Evaluate applies the thresholds to the collected metrics.
	Evaluate(metrics []threshold.Metric) (*CheckResult, error)
}

// Run parses args into chk, runs it and writes the status line to output.
// It returns the exit code.
func Run(ctx context.Context, output io.Writer, name string, args []string, chk Check) int {
	if wantsVersion(args) {
		fmt.Fprintf(output, "%s v%s\n", name, Version)

		return ExitCodeUnknown
	}

	psr := flags.NewParser(chk, flags.HelpFlag|flags.PassDoubleDash) // default flags without flags.PrintErrors
	psr.Name = name
	rest, err := psr.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(output, strings.TrimSpace(flagsErr.Message))

			return ExitCodeUnknown
		}

		return usageError(output, err)
	}
	if len(rest) > 0 {
		return usageError(output, fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " ")))
	}

	common := chk.Common()
	if err = logger.ValidLevel(common.LogLevel); err != nil {
		return usageError(output, err)
	}
	logger.Setup(len(common.Verbose), common.LogLevel)

	if err = chk.Validate(); err != nil {
		return usageError(output, err)
	}

	logger.Log.Debugf("%s: running with args: %s", name, strings.Join(args, " "))
	res, err := collectAndEvaluate(ctx, chk)
	if err != nil {
		var configErr *ConfigError
		if errors.As(err, &configErr) {
			return usageError(output, err)
		}
		logger.Log.Debugf("%s: %s", name, err.Error())
		res = ResultFromError(err)
	}

	fmt.Fprintln(output, res.BuildPluginOutput(common.Perfdata))
	logger.Log.Debugf("%s: exit code %d", name, res.ExitCode())

	return res.ExitCode()
}

func collectAndEvaluate(ctx context.Context, chk Check) (*CheckResult, error) {
	metrics, err := chk.Collect(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range metrics {
		logger.Log.Tracef("metric %s: %g%s %s", m.Name, m.Value, m.Unit, m.Text)
	}

	return chk.Evaluate(metrics)
}

func usageError(output io.Writer, err error) int {
	res := NewResult(checkers.UNKNOWN, "%s", err.Error())
	fmt.Fprintln(output, res.BuildPluginOutput(false))

	return ExitCodeUsage
}

func wantsVersion(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--":
			return false
		case "-V", "--version":
			return true
		}
	}

	return false
}

// Timeout converts a timeout flag given in seconds into a duration.
func Timeout(seconds float64) time.Duration {
	if seconds <= 0 {
		return DefaultTimeout
	}

	return time.Duration(seconds * float64(time.Second))
}
