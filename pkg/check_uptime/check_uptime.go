// nolint:ALL
package check_uptime

import (
	"context"
	"io"
	"time"

	"github.com/consol-monitoring/checkplugins/pkg/plugin"
	"github.com/consol-monitoring/checkplugins/pkg/snmp"
	"github.com/consol-monitoring/checkplugins/pkg/threshold"
	"github.com/consol-monitoring/checkplugins/pkg/utils"
)

// HOST-RESOURCES-MIB::hrSystemUptime.0
const uptimeOID = "1.3.6.1.2.1.25.1.1.0"

func Check(ctx context.Context, output io.Writer, args []string) int {
	return plugin.Run(ctx, output, "check_uptime", args, newUptimeOpts(snmp.Connect))
}

// -t selects the time unit here, the timeout is only available as --timeout.
type uptimeOpts struct {
	plugin.CommonOpts
	snmp.Opts
	Warning  float64 `short:"w" long:"warn" required:"true" description:"length of uptime to generate a warning"`
	Critical float64 `short:"c" long:"critical" required:"true" description:"length of uptime to generate a critical alert"`
	Operator string  `short:"o" long:"operator" required:"true" choice:"gt" choice:"lt" description:"operator to use with warning and critical values, greater than (gt) or less than (lt)"`
	TimeUnit string  `short:"t" long:"timetype" required:"true" choice:"sec" choice:"min" choice:"hr" choice:"day" description:"unit of warning and critical values"`
	Timeout  float64 `long:"timeout" default:"5" description:"timeout in seconds"`

	dial snmp.Dialer
}

func newUptimeOpts(dial snmp.Dialer) *uptimeOpts {
	return &uptimeOpts{dial: dial}
}

// thresholds returns the policy and both boundaries converted to seconds.
func (opts *uptimeOpts) thresholds() (threshold.Policy, threshold.Pair, error) {
	policy, err := threshold.ParseOperator(opts.Operator)
	if err != nil {
		return policy, threshold.Pair{}, err
	}
	warn, err := utils.ToSeconds(opts.Warning, opts.TimeUnit)
	if err != nil {
		return policy, threshold.Pair{}, err
	}
	crit, err := utils.ToSeconds(opts.Critical, opts.TimeUnit)
	if err != nil {
		return policy, threshold.Pair{}, err
	}

	return policy, threshold.Pair{Warning: warn, Critical: crit}, nil
}

func (opts *uptimeOpts) Validate() error {
	policy, pair, err := opts.thresholds()
	if err != nil {
		return err
	}

	return policy.Validate(pair)
}

func (opts *uptimeOpts) Collect(ctx context.Context) ([]threshold.Metric, error) {
	pdus, err := snmp.Fetch(ctx, opts.dial, &opts.Opts, plugin.Timeout(opts.Timeout), uptimeOID)
	if err != nil {
		return nil, err
	}
	uptime, err := snmp.Timeticks(pdus[0])
	if err != nil {
		return nil, err
	}
	uptime = uptime.Truncate(time.Second)

	return []threshold.Metric{{
		Name:  "uptime",
		Unit:  "s",
		Value: uptime.Seconds(),
		Text:  utils.DurationString(uptime),
	}}, nil
}

func (opts *uptimeOpts) Evaluate(metrics []threshold.Metric) (*plugin.CheckResult, error) {
	policy, pair, err := opts.thresholds()
	if err != nil {
		return nil, &plugin.ConfigError{Err: err}
	}
	chk := threshold.Check{Metric: metrics[0], Threshold: pair, Policy: policy}
	state, err := threshold.Evaluate([]threshold.Check{chk})
	if err != nil {
		return nil, &plugin.ConfigError{Err: err}
	}
	res := plugin.NewResult(state, "server uptime is %s", chk.Metric.Text)
	res.AddMetrics(chk)

	return res, nil
}
