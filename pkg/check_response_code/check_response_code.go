// nolint:ALL
package check_response_code

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/consol-monitoring/checkplugins/pkg/logger"
	"github.com/consol-monitoring/checkplugins/pkg/plugin"
	"github.com/consol-monitoring/checkplugins/pkg/threshold"
	"github.com/mackerelio/checkers"
)

var reCode = regexp.MustCompile(`^[0-9]{3}$`)

func Check(ctx context.Context, output io.Writer, args []string) int {
	return plugin.Run(ctx, output, "check_response_code", args, &responseCodeOpts{})
}

type responseCodeOpts struct {
	plugin.CommonOpts
	URL      string  `short:"u" long:"url" required:"true" description:"URL to check, ex.: http://www.example.com"`
	Expected string  `short:"r" long:"responsecode" required:"true" description:"expected response code returned by given URL"`
	Timeout  float64 `short:"t" long:"timeout" default:"5" description:"timeout in seconds"`
}

func (opts *responseCodeOpts) Validate() error {
	target, err := url.Parse(opts.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %s", opts.URL, err.Error())
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return fmt.Errorf("invalid url %q: scheme must be http or https", opts.URL)
	}

	return nil
}

// Collect fetches the url and returns the response code. A malformed
// expected code is reported without sending a request.
func (opts *responseCodeOpts) Collect(ctx context.Context) ([]threshold.Metric, error) {
	if !reCode.MatchString(opts.Expected) {
		return nil, &plugin.FormatError{
			State: checkers.WARNING,
			Err:   fmt.Errorf("invalid code: expected %s", opts.Expected),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, plugin.Timeout(opts.Timeout))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, http.NoBody)
	if err != nil {
		return nil, &plugin.ConfigError{Err: fmt.Errorf("invalid url %q: %s", opts.URL, err.Error())}
	}
	req.Header.Set("User-Agent", "check_response_code/"+plugin.Version)

	logger.Log.Debugf("http: GET %s", opts.URL)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, plugin.Unreachable(err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	logger.Log.Debugf("http: %s", res.Status)

	return []threshold.Metric{threshold.TextMetric("code", strconv.Itoa(res.StatusCode))}, nil
}

func (opts *responseCodeOpts) Evaluate(metrics []threshold.Metric) (*plugin.CheckResult, error) {
	actual := metrics[0].Text
	if !reCode.MatchString(actual) {
		return nil, &plugin.FormatError{
			State: checkers.WARNING,
			Err:   fmt.Errorf("invalid code: expected %s, got %s", opts.Expected, actual),
		}
	}

	state := checkers.OK
	if actual != opts.Expected {
		state = checkers.CRITICAL
	}

	return plugin.NewResult(state, "expected %s, got %s", opts.Expected, actual), nil
}
