// nolint:ALL
package check_ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/consol-monitoring/checkplugins/pkg/logger"
	"github.com/consol-monitoring/checkplugins/pkg/plugin"
	"github.com/consol-monitoring/checkplugins/pkg/threshold"
	"github.com/mackerelio/checkers"
)

// maximum banner size read from the server
const bannerSize = 4096

func Check(ctx context.Context, output io.Writer, args []string) int {
	return plugin.Run(ctx, output, "check_ssh", args, &sshOpts{})
}

type sshOpts struct {
	plugin.CommonOpts
	Host    string  `short:"H" long:"host" required:"true" description:"host to check, ex.: 127.0.0.1"`
	Port    int     `short:"p" long:"port" required:"true" description:"ssh port, ex.: 22"`
	Timeout float64 `short:"t" long:"timeout" default:"5" description:"timeout in seconds"`
}

func (opts *sshOpts) Validate() error {
	if opts.Port < 1 || opts.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", opts.Port)
	}

	return nil
}

// Collect reads the first chunk the server sends after connecting.
func (opts *sshOpts) Collect(ctx context.Context) ([]threshold.Metric, error) {
	timeout := plugin.Timeout(opts.Timeout)
	addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
	dialer := &net.Dialer{Timeout: timeout}

	logger.Log.Debugf("ssh: connecting to %s", addr)
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, plugin.Unreachable(err)
	}
	defer conn.Close()

	if err = conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, plugin.Unreachable(err)
	}
	buf := make([]byte, bannerSize)
	size, err := conn.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, plugin.Unreachable(fmt.Errorf("cannot read banner from %s: %s", addr, err.Error()))
	}
	banner := strings.TrimSpace(string(buf[:size]))
	logger.Log.Debugf("ssh: banner: %s", banner)

	return []threshold.Metric{threshold.TextMetric("banner", banner)}, nil
}

func (opts *sshOpts) Evaluate(metrics []threshold.Metric) (*plugin.CheckResult, error) {
	banner := metrics[0].Text
	if !strings.Contains(banner, "SSH") {
		return plugin.NewResult(checkers.CRITICAL, "unexpected data %s", banner), nil
	}

	return plugin.NewResult(checkers.OK, "%s", banner), nil
}
