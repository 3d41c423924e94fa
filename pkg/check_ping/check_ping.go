// nolint:ALL
package check_ping

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/consol-monitoring/checkplugins/pkg/convert"
	"github.com/consol-monitoring/checkplugins/pkg/logger"
	"github.com/consol-monitoring/checkplugins/pkg/plugin"
	"github.com/consol-monitoring/checkplugins/pkg/threshold"
	"github.com/sni/shelltoken"
)

// NastyHostCharacters must not be part of the host name, it ends up as ping argument.
const NastyHostCharacters = "$|`&><'\"\\{}"

// DefaultPingCommand is used unless --ping-command is set.
const DefaultPingCommand = "ping -q -W $TIMEOUT$ -c $PACKETS$ $HOST$"

func Check(ctx context.Context, output io.Writer, args []string) int {
	return plugin.Run(ctx, output, "check_ping", args, newPingOpts(execRunner))
}

// Runner executes argv and returns its stdout and stderr.
// A non-zero exit code is returned as error along with the output.
type Runner func(ctx context.Context, argv []string) (stdout, stderr string, err error)

type pingOpts struct {
	plugin.CommonOpts
	Host        string         `short:"H" long:"host" required:"true" description:"host to check, ex.: 127.0.0.1"`
	Warning     threshold.List `short:"w" long:"warn" required:"true" description:"comma separated packet loss (%) and round trip average (ms) to trigger a warning, ex.: 10,100"`
	Critical    threshold.List `short:"c" long:"critical" required:"true" description:"comma separated packet loss (%) and round trip average (ms) to trigger a critical alert, ex.: 20,200"`
	Timeout     float64        `short:"t" long:"timeout" default:"5" description:"time to wait for a response in seconds"`
	Packets     int            `short:"p" long:"packets" default:"5" description:"number of packets to transmit"`
	PingCommand string         `long:"ping-command" default:"ping -q -W $TIMEOUT$ -c $PACKETS$ $HOST$" description:"ping command line, supports $HOST$, $PACKETS$ and $TIMEOUT$ macros"`

	run Runner
}

func newPingOpts(run Runner) *pingOpts {
	return &pingOpts{run: run}
}

func (opts *pingOpts) Validate() error {
	if strings.ContainsAny(opts.Host, NastyHostCharacters) || strings.HasPrefix(opts.Host, "-") {
		return fmt.Errorf("host name must not contain nasty characters")
	}
	if opts.Packets <= 0 {
		return fmt.Errorf("number of packets must be positive, got %d", opts.Packets)
	}
	if err := opts.Warning.Expect(2, "warning"); err != nil {
		return err
	}
	if err := opts.Critical.Expect(2, "critical"); err != nil {
		return err
	}
	if _, err := opts.command(); err != nil {
		return err
	}
	_, err := threshold.NewPairs(threshold.Ascending, opts.Warning, opts.Critical)

	return err
}

// macros supported in --ping-command
var pingMacros = []string{"HOST", "PACKETS", "TIMEOUT"}

// command tokenizes the ping command line before macros are replaced, so a
// macro always expands into a single argument. Macros are swapped with plain
// placeholders first, the tokenizer rejects $ as shell code.
func (opts *pingOpts) command() ([]string, error) {
	cmdLine := opts.PingCommand
	for _, name := range pingMacros {
		cmdLine = strings.ReplaceAll(cmdLine, "$"+name+"$", "__"+name+"__")
	}
	env, argv, err := shelltoken.SplitLinux(cmdLine)
	if err != nil {
		return nil, fmt.Errorf("cannot parse ping command %q: %s", opts.PingCommand, err.Error())
	}
	if len(env) > 0 {
		return nil, fmt.Errorf("ping command must not set environment variables: %s", strings.Join(env, " "))
	}
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("ping command is empty")
	}

	macros := strings.NewReplacer(
		"__HOST__", opts.Host,
		"__PACKETS__", strconv.Itoa(opts.Packets),
		"__TIMEOUT__", convert.Num2String(plugin.Timeout(opts.Timeout).Seconds()),
	)
	for i := range argv {
		argv[i] = macros.Replace(argv[i])
	}

	return argv, nil
}

func (opts *pingOpts) Collect(ctx context.Context) ([]threshold.Metric, error) {
	argv, err := opts.command()
	if err != nil {
		return nil, &plugin.ConfigError{Err: err}
	}

	// each packet may take up to timeout seconds plus one extra for startup
	timeout := plugin.Timeout(opts.Timeout) * time.Duration(opts.Packets+1)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Log.Debugf("ping: running %s", strings.Join(argv, " "))
	stdout, stderr, runErr := opts.run(ctx, argv)
	logger.Log.Tracef("ping: stdout: %s", stdout)
	if stderr != "" {
		logger.Log.Debugf("ping: stderr: %s", stderr)
	}

	// ping exits non-zero on packet loss, the output is still usable
	stats, err := ParseOutput(stdout)
	if err != nil {
		switch {
		case runErr != nil && errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, plugin.ProtocolError(fmt.Errorf("ping timed out after %s", timeout))
		case runErr != nil:
			return nil, plugin.ProtocolError(fmt.Errorf("ping failed: %s %s", runErr.Error(), strings.TrimSpace(stderr)))
		}

		return nil, err
	}

	return stats.Metrics(), nil
}

func (opts *pingOpts) Evaluate(metrics []threshold.Metric) (*plugin.CheckResult, error) {
	pairs, err := threshold.NewPairs(threshold.Ascending, opts.Warning, opts.Critical)
	if err != nil {
		return nil, &plugin.ConfigError{Err: err}
	}

	loss, _ := threshold.Find(metrics, "pl")
	checks := []threshold.Check{{Metric: loss, Threshold: pairs[0], Policy: threshold.Ascending}}
	rttText := "n/a"
	if rtt, ok := threshold.Find(metrics, "rta"); ok {
		checks = append(checks, threshold.Check{Metric: rtt, Threshold: pairs[1], Policy: threshold.Ascending})
		rttText = convert.FloatString(rtt.Value)
	}

	state, err := threshold.Evaluate(checks)
	if err != nil {
		return nil, &plugin.ConfigError{Err: err}
	}
	res := plugin.NewResult(state, "packet loss %s%%, rtt avg %s ms", convert.FloatString(loss.Value), rttText)
	res.AddMetrics(checks...)
	for _, m := range res.Metrics {
		if m.Name == "pl" {
			zero, hundred := 0.0, 100.0
			m.Min, m.Max = &zero, &hundred
		}
	}

	return res, nil
}

func execRunner(ctx context.Context, argv []string) (stdout, stderr string, err error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), "LC_ALL=C", "LANG=C")
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()

	return outBuf.String(), errBuf.String(), err
}
