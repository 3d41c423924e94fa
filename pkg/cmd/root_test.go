package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/consol-monitoring/checkplugins/pkg/plugin"
	"github.com/stretchr/testify/assert"
)

// runCommand runs the binary with args and returns output and exit code.
func runCommand(t *testing.T, args ...string) (string, int) {
	t.Helper()

	output := bytes.NewBuffer(nil)
	rc := Execute(context.TODO(), args, output)

	return output.String(), rc
}

func TestCmdVersion(t *testing.T) {
	out, rc := runCommand(t, "checkplugins", "-V")
	assert.Equal(t, plugin.ExitCodeUnknown, rc)
	assert.Equal(t, "checkplugins v"+plugin.Version+"\n", out)
}

func TestCmdSanitizeArgs(t *testing.T) {
	out, rc := runCommand(t, "checkplugins", "-version")
	assert.Equal(t, plugin.ExitCodeUnknown, rc)
	assert.Equal(t, "checkplugins v"+plugin.Version+"\n", out)

	rootCmd := NewRootCmd(context.TODO(), bytes.NewBuffer(nil), new(int))
	assert.Equal(t,
		[]string{"--version", "check_load", "-version", "-H", "localhost"},
		sanitizeArgs(rootCmd, []string{"-version", "check_load", "-version", "-H", "localhost"}),
	)
}

func TestCmdHelp(t *testing.T) {
	out, rc := runCommand(t, "checkplugins", "-h")
	assert.Equal(t, plugin.ExitCodeOK, rc)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "check_response_code")

	out, rc = runCommand(t, "checkplugins")
	assert.Equal(t, plugin.ExitCodeUnknown, rc)
	assert.Contains(t, out, "Checks:")
}

func TestCmdList(t *testing.T) {
	out, rc := runCommand(t, "checkplugins", "list")
	assert.Equal(t, plugin.ExitCodeOK, rc)
	assert.Contains(t, out, "check_load ")
	assert.Contains(t, out, "check_uptime ")
	assert.Contains(t, out, "check_ssl ")
}

func TestCmdSubCommand(t *testing.T) {
	out, rc := runCommand(t, "checkplugins", "check_tcp_port", "-V")
	assert.Equal(t, plugin.ExitCodeUnknown, rc)
	assert.Equal(t, "check_tcp_port v"+plugin.Version+"\n", out)

	out, rc = runCommand(t, "checkplugins", "check_tcp_port", "-H", "127.0.0.1")
	assert.Equal(t, plugin.ExitCodeUsage, rc)
	assert.Regexp(t, `^UNKNOWN: `, out)

	out, rc = runCommand(t, "checkplugins", "check_tcp_port", "-h")
	assert.Equal(t, plugin.ExitCodeUnknown, rc)
	assert.Contains(t, out, "--port")
}

func TestCmdMultiCall(t *testing.T) {
	out, rc := runCommand(t, "/usr/lib/nagios/plugins/check_users", "--version")
	assert.Equal(t, plugin.ExitCodeUnknown, rc)
	assert.Equal(t, "check_users v"+plugin.Version+"\n", out)
}

func TestCmdUnknown(t *testing.T) {
	out, rc := runCommand(t, "checkplugins", "check_nothing")
	assert.Equal(t, plugin.ExitCodeUsage, rc)
	assert.Contains(t, out, "unknown command")
}
