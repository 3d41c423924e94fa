// nolint:ALL
package check_users

import (
	"context"
	"io"

	"github.com/consol-monitoring/checkplugins/pkg/plugin"
	"github.com/consol-monitoring/checkplugins/pkg/snmp"
	"github.com/consol-monitoring/checkplugins/pkg/threshold"
)

// HOST-RESOURCES-MIB::hrSystemNumUsers.0
const usersOID = "1.3.6.1.2.1.25.1.5.0"

func Check(ctx context.Context, output io.Writer, args []string) int {
	return plugin.Run(ctx, output, "check_users", args, newUsersOpts(snmp.Connect))
}

type usersOpts struct {
	plugin.CommonOpts
	snmp.Opts
	Warning  float64 `short:"w" long:"warn" required:"true" description:"number of logged in users to generate a warning"`
	Critical float64 `short:"c" long:"critical" required:"true" description:"number of logged in users to generate a critical alert"`
	Timeout  float64 `short:"t" long:"timeout" default:"5" description:"timeout in seconds"`

	dial snmp.Dialer
}

func newUsersOpts(dial snmp.Dialer) *usersOpts {
	return &usersOpts{dial: dial}
}

func (opts *usersOpts) threshold() threshold.Pair {
	return threshold.Pair{Warning: opts.Warning, Critical: opts.Critical}
}

func (opts *usersOpts) Validate() error {
	return threshold.Ascending.Validate(opts.threshold())
}

func (opts *usersOpts) Collect(ctx context.Context) ([]threshold.Metric, error) {
	pdus, err := snmp.Fetch(ctx, opts.dial, &opts.Opts, plugin.Timeout(opts.Timeout), usersOID)
	if err != nil {
		return nil, err
	}
	users, err := snmp.Float64(pdus[0])
	if err != nil {
		return nil, err
	}

	return []threshold.Metric{{Name: "users", Value: users}}, nil
}

func (opts *usersOpts) Evaluate(metrics []threshold.Metric) (*plugin.CheckResult, error) {
	chk := threshold.Check{Metric: metrics[0], Threshold: opts.threshold(), Policy: threshold.Ascending}
	state, err := threshold.Evaluate([]threshold.Check{chk})
	if err != nil {
		return nil, &plugin.ConfigError{Err: err}
	}
	res := plugin.NewResult(state, "%d logged in users", int64(chk.Metric.Value))
	res.AddMetrics(chk)

	return res, nil
}
