package plugin

import (
	"fmt"
	"strings"

	"github.com/consol-monitoring/checkplugins/pkg/threshold"
	"github.com/mackerelio/checkers"
)

const (
	// ExitCodeOK is used for normal exits.
	ExitCodeOK = int(checkers.OK)

	// ExitCodeWarning is used for warnings.
	ExitCodeWarning = int(checkers.WARNING)

	// ExitCodeCritical is used for critical errors.
	ExitCodeCritical = int(checkers.CRITICAL)

	// ExitCodeUnknown is used for when the check runs into a problem itself.
	ExitCodeUnknown = int(checkers.UNKNOWN)

	// ExitCodeUsage is used for invalid command line arguments (sysexits EX_USAGE).
	ExitCodeUsage = 64
)

// CheckResult is the result of a single check run.
type CheckResult struct {
	State   checkers.Status
	Output  string
	Metrics []*CheckMetric
}

// NewResult creates a result with a formatted output.
func NewResult(state checkers.Status, format string, args ...interface{}) *CheckResult {
	return &CheckResult{
		State:  state,
		Output: fmt.Sprintf(format, args...),
	}
}

func (cr *CheckResult) StateString() string {
	return cr.State.String()
}

// ExitCode returns the process exit code, which always equals the state.
func (cr *CheckResult) ExitCode() int {
	return int(cr.State)
}

// AddMetrics appends performance data for evaluated checks.
func (cr *CheckResult) AddMetrics(checks ...threshold.Check) {
	for _, chk := range checks {
		cr.Metrics = append(cr.Metrics, NewCheckMetric(chk))
	}
}

// BuildPluginOutput returns the single status line, ex.: "OK: load is 0.1, 0.2, 0.3".
// Performance data is appended after a pipe if requested.
func (cr *CheckResult) BuildPluginOutput(perfdata bool) string {
	output := cr.StateString() + ": " + singleLine(cr.Output)
	if perfdata && len(cr.Metrics) > 0 {
		perf := make([]string, 0, len(cr.Metrics))
		for _, m := range cr.Metrics {
			perf = append(perf, m.String())
		}
		output += " |" + strings.Join(perf, " ")
	}

	return output
}

// status line must not wrap, remote banners and error texts may contain newlines
func singleLine(str string) string {
	str = strings.TrimSpace(str)
	str = strings.ReplaceAll(str, "\r\n", " ")
	str = strings.ReplaceAll(str, "\n", " ")
	str = strings.ReplaceAll(str, "\r", " ")

	return str
}
