// nolint:ALL
package check_load

import (
	"context"
	"io"
	"strings"

	"github.com/consol-monitoring/checkplugins/pkg/plugin"
	"github.com/consol-monitoring/checkplugins/pkg/snmp"
	"github.com/consol-monitoring/checkplugins/pkg/threshold"
)

// UCD-SNMP-MIB::laLoad.{1,2,3}
var loadOIDs = []string{
	".1.3.6.1.4.1.2021.10.1.3.1",
	".1.3.6.1.4.1.2021.10.1.3.2",
	".1.3.6.1.4.1.2021.10.1.3.3",
}

var loadNames = []string{"load1", "load5", "load15"}

func Check(ctx context.Context, output io.Writer, args []string) int {
	return plugin.Run(ctx, output, "check_load", args, newLoadOpts(snmp.Connect))
}

type loadOpts struct {
	plugin.CommonOpts
	snmp.Opts
	Warning  threshold.List `short:"w" long:"warn" required:"true" description:"comma separated 1, 5 and 15 minute load to trigger a warning, ex.: 1,3,5"`
	Critical threshold.List `short:"c" long:"critical" required:"true" description:"comma separated 1, 5 and 15 minute load to trigger a critical alert, ex.: 5,7,9"`
	Timeout  float64        `short:"t" long:"timeout" default:"5" description:"timeout in seconds"`

	dial snmp.Dialer
}

func newLoadOpts(dial snmp.Dialer) *loadOpts {
	return &loadOpts{dial: dial}
}

func (opts *loadOpts) Validate() error {
	if err := opts.Warning.Expect(len(loadOIDs), "warning"); err != nil {
		return err
	}
	if err := opts.Critical.Expect(len(loadOIDs), "critical"); err != nil {
		return err
	}
	_, err := threshold.NewPairs(threshold.Ascending, opts.Warning, opts.Critical)

	return err
}

func (opts *loadOpts) Collect(ctx context.Context) ([]threshold.Metric, error) {
	pdus, err := snmp.Fetch(ctx, opts.dial, &opts.Opts, plugin.Timeout(opts.Timeout), loadOIDs...)
	if err != nil {
		return nil, err
	}

	metrics := make([]threshold.Metric, 0, len(pdus))
	for i, pdu := range pdus {
		val, err := snmp.Float64(pdu)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, threshold.Metric{
			Name:  loadNames[i],
			Value: val,
			Text:  strings.TrimSpace(snmp.String(pdu)),
		})
	}

	return metrics, nil
}

func (opts *loadOpts) Evaluate(metrics []threshold.Metric) (*plugin.CheckResult, error) {
	pairs, err := threshold.NewPairs(threshold.Ascending, opts.Warning, opts.Critical)
	if err != nil {
		return nil, &plugin.ConfigError{Err: err}
	}
	checks := make([]threshold.Check, 0, len(metrics))
	loads := make([]string, 0, len(metrics))
	for i, metric := range metrics {
		checks = append(checks, threshold.Check{Metric: metric, Threshold: pairs[i], Policy: threshold.Ascending})
		loads = append(loads, metric.Text)
	}

	state, err := threshold.Evaluate(checks)
	if err != nil {
		return nil, &plugin.ConfigError{Err: err}
	}
	res := plugin.NewResult(state, "load is %s", strings.Join(loads, ", "))
	res.AddMetrics(checks...)

	return res, nil
}
