package checkplugins

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/consol-monitoring/checkplugins/pkg/check_load"
	"github.com/consol-monitoring/checkplugins/pkg/check_ping"
	"github.com/consol-monitoring/checkplugins/pkg/check_response_code"
	"github.com/consol-monitoring/checkplugins/pkg/check_ssh"
	"github.com/consol-monitoring/checkplugins/pkg/check_ssl"
	"github.com/consol-monitoring/checkplugins/pkg/check_tcp_port"
	"github.com/consol-monitoring/checkplugins/pkg/check_time"
	"github.com/consol-monitoring/checkplugins/pkg/check_uptime"
	"github.com/consol-monitoring/checkplugins/pkg/check_users"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// CheckFunc runs a single plugin with the given arguments, writes the status
// line to output and returns the exit code.
type CheckFunc func(ctx context.Context, output io.Writer, args []string) int

// CheckEntry is a registered plugin.
type CheckEntry struct {
	Name        string
	Description string
	Check       CheckFunc
}

// AvailableChecks contains all plugins by name.
var AvailableChecks = map[string]CheckEntry{
	"check_load":          {"check_load", "1, 5 and 15 minute load average via SNMP", check_load.Check},
	"check_users":         {"check_users", "number of logged in users via SNMP", check_users.Check},
	"check_uptime":        {"check_uptime", "system uptime via SNMP", check_uptime.Check},
	"check_time":          {"check_time", "system time drift via SNMP", check_time.Check},
	"check_ping":          {"check_ping", "packet loss and round trip average", check_ping.Check},
	"check_tcp_port":      {"check_tcp_port", "tcp port connection", check_tcp_port.Check},
	"check_ssh":           {"check_ssh", "ssh banner", check_ssh.Check},
	"check_ssl":           {"check_ssl", "tls certificate hostname, issuer and expiry", check_ssl.Check},
	"check_response_code": {"check_response_code", "http response code of an url", check_response_code.Check},
}

// Names returns all plugin names sorted.
func Names() []string {
	names := maps.Keys(AvailableChecks)
	slices.Sort(names)

	return names
}

// Lookup returns the plugin for a name. The name may be a path and may carry
// a file extension, ex.: /usr/lib/nagios/plugins/check_load.exe
func Lookup(name string) (CheckEntry, bool) {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	entry, ok := AvailableChecks[name]

	return entry, ok
}
