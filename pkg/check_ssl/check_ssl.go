// nolint:ALL
package check_ssl

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/consol-monitoring/checkplugins/pkg/logger"
	"github.com/consol-monitoring/checkplugins/pkg/plugin"
	"github.com/consol-monitoring/checkplugins/pkg/threshold"
	"github.com/consol-monitoring/checkplugins/pkg/utils"
	"github.com/mackerelio/checkers"
)

func Check(ctx context.Context, output io.Writer, args []string) int {
	return plugin.Run(ctx, output, "check_ssl", args, newSSLOpts(time.Now))
}

type sslOpts struct {
	plugin.CommonOpts
	Host     string  `short:"H" long:"host" required:"true" description:"host to check, ex.: www.example.com"`
	Port     int     `short:"p" long:"port" required:"true" description:"port to check, ex.: 443"`
	Warning  float64 `short:"w" long:"warn" required:"true" description:"number of days until certificate expiration to trigger a warning"`
	Critical float64 `short:"c" long:"critical" required:"true" description:"number of days until certificate expiration to trigger a critical alert"`
	Issuer   string  `short:"i" long:"issuer" description:"this text must appear in the common name of the issuer, ex.: COMODO"`
	Verify   bool    `long:"verify" description:"verify the certificate chain against the system roots"`
	Timeout  float64 `short:"t" long:"timeout" default:"5" description:"timeout in seconds"`

	now     func() time.Time
	rootCAs *x509.CertPool
}

func newSSLOpts(now func() time.Time) *sslOpts {
	return &sslOpts{now: now}
}

func (opts *sslOpts) threshold() threshold.Pair {
	return threshold.Pair{Warning: opts.Warning, Critical: opts.Critical}
}

func (opts *sslOpts) Validate() error {
	if opts.Port < 1 || opts.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", opts.Port)
	}

	return threshold.Expiry.Validate(opts.threshold())
}

// peerCertificate returns the leaf certificate presented by the server.
// Chain verification is optional, expired and self signed certificates
// must still be reported with their expiry.
func (opts *sslOpts) peerCertificate(ctx context.Context) (*x509.Certificate, error) {
	addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: plugin.Timeout(opts.Timeout)},
		Config: &tls.Config{
			ServerName:         opts.Host,
			InsecureSkipVerify: !opts.Verify, //nolint:gosec // certificate is checked below
			RootCAs:            opts.rootCAs,
			MinVersion:         tls.VersionTLS12,
		},
	}

	logger.Log.Debugf("ssl: connecting to %s", addr)
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, plugin.Unreachable(err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, plugin.ProtocolError(fmt.Errorf("no certificate received from %s", addr))
	}
	cert := state.PeerCertificates[0]
	logger.Log.Debugf("ssl: subject: %s, issuer: %s, not after: %s", cert.Subject, cert.Issuer, cert.NotAfter)

	return cert, nil
}

func (opts *sslOpts) Collect(ctx context.Context) ([]threshold.Metric, error) {
	cert, err := opts.peerCertificate(ctx)
	if err != nil {
		return nil, err
	}

	hostname := "mismatch"
	if matchesHost(cert, opts.Host) {
		hostname = "match"
	}

	return []threshold.Metric{
		{Name: "days", Value: float64(utils.DaysUntil(opts.now(), cert.NotAfter))},
		threshold.TextMetric("hostname", hostname),
		threshold.TextMetric("issuer", cert.Issuer.CommonName),
	}, nil
}

func (opts *sslOpts) Evaluate(metrics []threshold.Metric) (*plugin.CheckResult, error) {
	if hostname, _ := threshold.Find(metrics, "hostname"); hostname.Text != "match" {
		return plugin.NewResult(checkers.CRITICAL, "Hostname doesn't match certificate"), nil
	}
	if issuer, _ := threshold.Find(metrics, "issuer"); opts.Issuer != "" && !strings.Contains(issuer.Text, opts.Issuer) {
		return plugin.NewResult(checkers.CRITICAL, "%s not found in issuer string", opts.Issuer), nil
	}

	days, _ := threshold.Find(metrics, "days")
	chk := threshold.Check{Metric: days, Threshold: opts.threshold(), Policy: threshold.Expiry}
	state, err := threshold.Evaluate([]threshold.Check{chk})
	if err != nil {
		return nil, &plugin.ConfigError{Err: err}
	}

	var res *plugin.CheckResult
	switch remaining := int(days.Value); {
	case remaining == 0:
		res = plugin.NewResult(state, "certificate expired today")
	case remaining < 0:
		res = plugin.NewResult(state, "certificate expired %d days ago", -remaining)
	default:
		res = plugin.NewResult(state, "certificate expires in %d days", remaining)
	}
	res.AddMetrics(chk)

	return res, nil
}

// matchesHost returns true if the subject common name ends with host or the
// certificate is valid for host by its alternative names.
func matchesHost(cert *x509.Certificate, host string) bool {
	if cert.Subject.CommonName != "" && strings.HasSuffix(cert.Subject.CommonName, host) {
		return true
	}

	return cert.VerifyHostname(host) == nil
}
