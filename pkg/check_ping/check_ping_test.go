package check_ping

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/consol-monitoring/checkplugins/pkg/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const linuxOutput = `PING 10.0.0.1 (10.0.0.1) 56(84) bytes of data.

--- 10.0.0.1 ping statistics ---
%d packets transmitted, %d received, %d%% packet loss, time 4005ms
rtt min/avg/max/mdev = 44.100/%s/46.200/0.700 ms
`

const linuxTotalLoss = `PING 10.0.0.2 (10.0.0.2) 56(84) bytes of data.

--- 10.0.0.2 ping statistics ---
3 packets transmitted, 0 received, +3 errors, 100% packet loss, time 2003ms
`

const macOutput = `PING localhost (127.0.0.1): 56 data bytes

--- localhost ping statistics ---
5 packets transmitted, 5 packets received, 0.0% packet loss
round-trip min/avg/max/stddev = 0.040/0.066/0.095/0.021 ms
`

const busyboxOutput = `PING 10.0.0.3 (10.0.0.3): 56 data bytes

--- 10.0.0.3 ping statistics ---
5 packets transmitted, 5 packets received, 0% packet loss
round-trip min/avg/max = 480.100/500.000/520.900 ms
`

const linuxDuplicates = `PING 10.0.0.4 (10.0.0.4) 56(84) bytes of data.

--- 10.0.0.4 ping statistics ---
4 packets transmitted, 4 received, +1 duplicates, 0% packet loss, time 3004ms
rtt min/avg/max/mdev = 1.100/1.250/1.400/0.100 ms
`

const unknownRTTOutput = `--- 10.0.0.5 ping statistics ---
5 packets transmitted, 5 received, 0% packet loss
average response 500ms
`

type fakeRunner struct {
	stdout string
	stderr string
	err    error
	argv   []string
}

func (f *fakeRunner) run(_ context.Context, argv []string) (string, string, error) {
	f.argv = argv

	return f.stdout, f.stderr, f.err
}

func runCheck(runner *fakeRunner, args ...string) (string, int) {
	output := bytes.NewBuffer(nil)
	rc := plugin.Run(context.TODO(), output, "check_ping", args, newPingOpts(runner.run))

	return output.String(), rc
}

func TestCheckPing(t *testing.T) {
	for _, tst := range []struct {
		sent, received, loss int
		rtt                  string
		output               string
		rc                   int
	}{
		{4, 4, 0, "45.000", "OK: packet loss 0.0%, rtt avg 45.0 ms\n", plugin.ExitCodeOK},
		{4, 3, 25, "50.000", "CRITICAL: packet loss 25.0%, rtt avg 50.0 ms\n", plugin.ExitCodeCritical},
		{10, 9, 10, "50.000", "WARNING: packet loss 10.0%, rtt avg 50.0 ms\n", plugin.ExitCodeWarning},
		{4, 4, 0, "120.500", "WARNING: packet loss 0.0%, rtt avg 120.5 ms\n", plugin.ExitCodeWarning},
		{4, 4, 0, "200.000", "CRITICAL: packet loss 0.0%, rtt avg 200.0 ms\n", plugin.ExitCodeCritical},
		{5, 3, 40, "120.500", "CRITICAL: packet loss 40.0%, rtt avg 120.5 ms\n", plugin.ExitCodeCritical},
	} {
		runner := &fakeRunner{stdout: fmt.Sprintf(linuxOutput, tst.sent, tst.received, tst.loss, tst.rtt)}
		output, rc := runCheck(runner, "-H", "10.0.0.1", "-w", "10,100", "-c", "20,200")
		assert.Equalf(t, tst.output, output, "output for loss %d rtt %s", tst.loss, tst.rtt)
		assert.Equalf(t, tst.rc, rc, "exit code for loss %d rtt %s", tst.loss, tst.rtt)
	}
}

func TestCheckPingOrderIndependent(t *testing.T) {
	// critical loss and warning rtt must be critical no matter which is evaluated first
	runner := &fakeRunner{stdout: fmt.Sprintf(linuxOutput, 4, 3, 25, "150.000")}
	output, rc := runCheck(runner, "-H", "10.0.0.1", "-w", "10,100", "-c", "20,200")
	assert.Equal(t, plugin.ExitCodeCritical, rc)
	assert.Equal(t, "CRITICAL: packet loss 25.0%, rtt avg 150.0 ms\n", output)

	runner = &fakeRunner{stdout: fmt.Sprintf(linuxOutput, 10, 9, 10, "250.000")}
	output, rc = runCheck(runner, "-H", "10.0.0.1", "-w", "10,100", "-c", "20,200")
	assert.Equal(t, plugin.ExitCodeCritical, rc)
	assert.Equal(t, "CRITICAL: packet loss 10.0%, rtt avg 250.0 ms\n", output)
}

func TestCheckPingTotalLoss(t *testing.T) {
	runner := &fakeRunner{stdout: linuxTotalLoss, err: errors.New("exit status 1")}
	output, rc := runCheck(runner, "-H", "10.0.0.2", "-w", "10,100", "-c", "20,200")
	assert.Equal(t, plugin.ExitCodeCritical, rc)
	assert.Equal(t, "CRITICAL: packet loss 100.0%, rtt avg n/a ms\n", output)
}

func TestCheckPingCommand(t *testing.T) {
	runner := &fakeRunner{stdout: macOutput}
	output, rc := runCheck(runner, "-H", "localhost", "-w", "10,100", "-c", "20,200", "--perfdata")
	assert.Equal(t, plugin.ExitCodeOK, rc)
	assert.Equal(t, "OK: packet loss 0.0%, rtt avg 0.066 ms |'pl'=0%;10;20;0;100 'rta'=0.066ms;100;200\n", output)
	assert.Equal(t, []string{"ping", "-q", "-W", "5", "-c", "5", "localhost"}, runner.argv)

	runner = &fakeRunner{stdout: macOutput}
	_, rc = runCheck(runner, "-H", "localhost", "-w", "10,100", "-c", "20,200", "-p", "3", "-t", "2",
		"--ping-command", `/usr/bin/ping -n -c $PACKETS$ -t '$TIMEOUT$' $HOST$`)
	assert.Equal(t, plugin.ExitCodeOK, rc)
	assert.Equal(t, []string{"/usr/bin/ping", "-n", "-c", "3", "-t", "2", "localhost"}, runner.argv)
}

func TestCheckPingUsage(t *testing.T) {
	runner := &fakeRunner{stdout: macOutput}
	for _, args := range [][]string{
		{"-H", "$(reboot)", "-w", "10,100", "-c", "20,200"},
		{"-H", "-f", "-w", "10,100", "-c", "20,200"},
		{"-H", "localhost", "-w", "10", "-c", "20,200"},
		{"-H", "localhost", "-w", "10,100", "-c", "20,50"},
		{"-H", "localhost", "-w", "10,100", "-c", "20,200", "-p", "0"},
		{"-H", "localhost", "-w", "10,100", "-c", "20,200", "--ping-command", `ping "$HOST$`},
		{"-H", "localhost", "-w", "10,100", "-c", "20,200", "--ping-command", `ping -c 1 $HOST$ | tee /tmp/ping.log`},
		{"-H", "localhost", "-w", "10,100", "-c", "20,200", "--ping-command", `LANG=de ping -c 1 $HOST$`},
		{"-H", "localhost", "-w", "10,100", "-c", "20,200", "--ping-command", ` `},
	} {
		output, rc := runCheck(runner, args...)
		assert.Equalf(t, plugin.ExitCodeUsage, rc, "exit code for %v: %s", args, output)
	}
	assert.Nilf(t, runner.argv, "ping must not run on usage errors")
}

func TestCheckPingFailures(t *testing.T) {
	runner := &fakeRunner{stderr: "ping: unknown.invalid: Name or service not known", err: errors.New("exit status 2")}
	output, rc := runCheck(runner, "-H", "unknown.invalid", "-w", "10,100", "-c", "20,200")
	assert.Equal(t, plugin.ExitCodeUnknown, rc)
	assert.Equal(t, "UNKNOWN: ping failed: exit status 2 ping: unknown.invalid: Name or service not known\n", output)

	runner = &fakeRunner{stdout: "garbage"}
	output, rc = runCheck(runner, "-H", "localhost", "-w", "10,100", "-c", "20,200")
	assert.Equal(t, plugin.ExitCodeUnknown, rc)
	assert.Equal(t, "UNKNOWN: cannot parse ping output: garbage\n", output)
}

func TestCheckPingRTTFormats(t *testing.T) {
	runner := &fakeRunner{stdout: busyboxOutput}
	output, rc := runCheck(runner, "-H", "10.0.0.3", "-w", "10,100", "-c", "20,200")
	assert.Equal(t, plugin.ExitCodeCritical, rc)
	assert.Equal(t, "CRITICAL: packet loss 0.0%, rtt avg 500.0 ms\n", output)

	runner = &fakeRunner{stdout: linuxDuplicates}
	output, rc = runCheck(runner, "-H", "10.0.0.4", "-w", "10,100", "-c", "20,200")
	assert.Equal(t, plugin.ExitCodeOK, rc)
	assert.Equal(t, "OK: packet loss 0.0%, rtt avg 1.25 ms\n", output)

	// replies without a known rtt summary must not skip the rtt threshold
	runner = &fakeRunner{stdout: unknownRTTOutput}
	output, rc = runCheck(runner, "-H", "10.0.0.5", "-w", "10,100", "-c", "20,200")
	assert.Equal(t, plugin.ExitCodeUnknown, rc)
	assert.Regexp(t, `^UNKNOWN: cannot parse rtt average from ping output: `, output)
}

func TestParseOutput(t *testing.T) {
	stats, err := ParseOutput(macOutput)
	require.NoError(t, err)
	assert.Equal(t, &Stats{Sent: 5, Received: 5, Loss: 0, RTT: 0.066, HasRTT: true}, stats)

	stats, err = ParseOutput(linuxTotalLoss)
	require.NoError(t, err)
	assert.Equal(t, &Stats{Sent: 3, Received: 0, Loss: 100}, stats)
	assert.Len(t, stats.Metrics(), 1)

	stats, err = ParseOutput(busyboxOutput)
	require.NoError(t, err)
	assert.Equal(t, &Stats{Sent: 5, Received: 5, Loss: 0, RTT: 500, HasRTT: true}, stats)

	stats, err = ParseOutput(linuxDuplicates)
	require.NoError(t, err)
	assert.Equal(t, &Stats{Sent: 4, Received: 4, Loss: 0, RTT: 1.25, HasRTT: true}, stats)

	var formatErr *plugin.FormatError
	_, err = ParseOutput("")
	require.ErrorAs(t, err, &formatErr)

	_, err = ParseOutput(unknownRTTOutput)
	require.ErrorAs(t, err, &formatErr)
}

func TestDefaultPingCommand(t *testing.T) {
	opts := newPingOpts(nil)
	opts.PingCommand = DefaultPingCommand
	opts.Host = "example.com"
	opts.Packets = 2
	opts.Timeout = 1.5
	argv, err := opts.command()
	require.NoError(t, err)
	assert.Equal(t, []string{"ping", "-q", "-W", "1.5", "-c", "2", "example.com"}, argv)
}

func TestExecRunner(t *testing.T) {
	stdout, _, err := execRunner(context.TODO(), []string{"sh", "-c", "echo $LC_ALL"})
	require.NoError(t, err)
	assert.Equal(t, "C\n", stdout)
}
