// nolint:ALL
package check_tcp_port

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/consol-monitoring/checkplugins/pkg/logger"
	"github.com/consol-monitoring/checkplugins/pkg/plugin"
	"github.com/consol-monitoring/checkplugins/pkg/threshold"
	"github.com/mackerelio/checkers"
)

func Check(ctx context.Context, output io.Writer, args []string) int {
	return plugin.Run(ctx, output, "check_tcp_port", args, &tcpOpts{})
}

type tcpOpts struct {
	plugin.CommonOpts
	Host    string  `short:"H" long:"host" required:"true" description:"host to check, ex.: 127.0.0.1"`
	Port    int     `short:"p" long:"port" required:"true" description:"port to check, ex.: 80"`
	Timeout float64 `short:"t" long:"timeout" default:"5" description:"timeout in seconds"`
}

func (opts *tcpOpts) Validate() error {
	if opts.Port < 1 || opts.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", opts.Port)
	}

	return nil
}

// Collect connects to the port, it returns the time it took to connect.
func (opts *tcpOpts) Collect(ctx context.Context) ([]threshold.Metric, error) {
	addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
	dialer := &net.Dialer{Timeout: plugin.Timeout(opts.Timeout)}

	logger.Log.Debugf("tcp: connecting to %s", addr)
	start := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, plugin.Unreachable(fmt.Errorf("Connection to port %d failed: %s", opts.Port, err.Error()))
	}
	conn.Close()

	return []threshold.Metric{{Name: "time", Unit: "s", Value: time.Since(start).Seconds()}}, nil
}

func (opts *tcpOpts) Evaluate(_ []threshold.Metric) (*plugin.CheckResult, error) {
	return plugin.NewResult(checkers.OK, "Connection to port %d successful", opts.Port), nil
}
