// nolint:ALL
package check_time

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/beevik/ntp"
	"github.com/consol-monitoring/checkplugins/pkg/convert"
	"github.com/consol-monitoring/checkplugins/pkg/logger"
	"github.com/consol-monitoring/checkplugins/pkg/plugin"
	"github.com/consol-monitoring/checkplugins/pkg/snmp"
	"github.com/consol-monitoring/checkplugins/pkg/threshold"
	"github.com/consol-monitoring/checkplugins/pkg/utils"
)

// HOST-RESOURCES-MIB::hrSystemDate.0
const dateOID = "1.3.6.1.2.1.25.1.2.0"

func Check(ctx context.Context, output io.Writer, args []string) int {
	return plugin.Run(ctx, output, "check_time", args, newTimeOpts(snmp.Connect, ntpClock))
}

// Clock returns the reference time the host time is compared against.
type Clock func(ctx context.Context, server string, timeout time.Duration) (time.Time, error)

type timeOpts struct {
	plugin.CommonOpts
	snmp.Opts
	Warning   float64 `short:"w" long:"warn" required:"true" description:"drift in minutes to generate a warning"`
	Critical  float64 `short:"c" long:"critical" required:"true" description:"drift in minutes to generate a critical alert"`
	NTPServer string  `long:"ntp-server" description:"compare against this NTP server instead of the local clock"`
	Timeout   float64 `short:"t" long:"timeout" default:"5" description:"timeout in seconds"`

	dial  snmp.Dialer
	clock Clock
}

func newTimeOpts(dial snmp.Dialer, clock Clock) *timeOpts {
	return &timeOpts{dial: dial, clock: clock}
}

// ntpClock uses the local clock unless a server is given.
func ntpClock(_ context.Context, server string, timeout time.Duration) (time.Time, error) {
	if server == "" {
		return time.Now().UTC(), nil
	}
	response, err := ntp.QueryWithOptions(server, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return time.Time{}, fmt.Errorf("ntp query %s failed: %s", server, err.Error())
	}
	logger.Log.Debugf("ntp: offset %s from %s (stratum %d)", response.ClockOffset, server, response.Stratum)

	return time.Now().Add(response.ClockOffset).UTC(), nil
}

func (opts *timeOpts) threshold() threshold.Pair {
	return threshold.Pair{Warning: opts.Warning, Critical: opts.Critical}
}

func (opts *timeOpts) Validate() error {
	return threshold.Ascending.Validate(opts.threshold())
}

func (opts *timeOpts) Collect(ctx context.Context) ([]threshold.Metric, error) {
	timeout := plugin.Timeout(opts.Timeout)
	pdus, err := snmp.Fetch(ctx, opts.dial, &opts.Opts, timeout, dateOID)
	if err != nil {
		return nil, err
	}
	hostTime, err := snmp.DateAndTime(pdus[0])
	if err != nil {
		return nil, err
	}

	now, err := opts.clock(ctx, opts.NTPServer, timeout)
	if err != nil {
		return nil, plugin.ProtocolError(err)
	}
	logger.Log.Debugf("host time %s, reference time %s", hostTime, now)

	// drift counts whole seconds only
	drift := utils.ToPrecision(math.Abs(now.Sub(hostTime).Truncate(time.Second).Minutes()), 3)

	return []threshold.Metric{{
		Name:  "drift",
		Value: drift,
		Text:  dateTimeString(hostTime),
	}}, nil
}

func (opts *timeOpts) Evaluate(metrics []threshold.Metric) (*plugin.CheckResult, error) {
	chk := threshold.Check{Metric: metrics[0], Threshold: opts.threshold(), Policy: threshold.Ascending}
	state, err := threshold.Evaluate([]threshold.Check{chk})
	if err != nil {
		return nil, &plugin.ConfigError{Err: err}
	}
	res := plugin.NewResult(state, "drift is %s, time is %s UTC", convert.FloatString(chk.Metric.Value), chk.Metric.Text)
	res.AddMetrics(chk)

	return res, nil
}

// dateTimeString renders a timestamp as "2024-03-15 10:30:05", fractions are
// added as microseconds, ex.: "2024-03-15 10:30:05.300000"
func dateTimeString(date time.Time) string {
	if date.Nanosecond()/int(time.Microsecond) == 0 {
		return date.Format(time.DateTime)
	}

	return date.Format("2006-01-02 15:04:05.000000")
}
