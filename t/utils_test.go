package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	DefaultCommandTimeout = 30 * time.Second
)

// cmdResult contains the result from the command
type cmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// cmd describes a command run along with the expected plugin result
type cmd struct {
	Cmd  string   // the command to run (required)
	Args []string // arguments for the command
	Dir  string   // override work dir

	Like    []string // stdout must match these regular expressions
	ErrLike []string // stderr must match these regular expressions, if nil, stderr must be empty
	Exit    int      // expected exit code, -1 accepts any

	Timeout time.Duration     // maximum run duration (default 30sec)
	Env     map[string]string // additional environment
}

// runCmd runs the command and verifies exit code and output
func runCmd(t *testing.T, opt *cmd) *cmdResult {
	t.Helper()
	require.NotEmptyf(t, opt.Cmd, "command must not be empty")

	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	proc := exec.CommandContext(ctx, opt.Cmd, opt.Args...) //nolint:gosec // test binary
	proc.Dir = opt.Dir
	proc.Env = os.Environ()
	for key, val := range opt.Env {
		proc.Env = append(proc.Env, key+"="+val)
	}
	proc.Stdout = &stdout
	proc.Stderr = &stderr
	// child processes may keep the output pipes open after a kill
	proc.WaitDelay = time.Second

	t.Logf("run: %s", proc.String())
	err := proc.Run()
	res := &cmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: proc.ProcessState.ExitCode(),
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		logCmd(t, proc, res)
		require.Failf(t, "command timeout", "command run into timeout after %s", timeout)
	case err != nil && !errors.As(err, &exitErr):
		logCmd(t, proc, res)
		require.NoErrorf(t, err, "command run: %s", opt.Cmd)
	}

	if opt.Exit != -1 && !assert.Equalf(t, opt.Exit, res.ExitCode, "exit code of %s", proc.String()) {
		logCmd(t, proc, res)
	}
	for _, l := range opt.Like {
		assert.Regexpf(t, l, res.Stdout, "stdout contains: %s", l)
	}
	if len(opt.ErrLike) == 0 {
		assert.Regexpf(t, `^\s*$`, res.Stderr, "stderr must be empty")
	}
	for _, l := range opt.ErrLike {
		assert.Regexpf(t, l, res.Stderr, "stderr contains: %s", l)
	}

	return res
}

// getBinary returns path to the checkplugins binary
func getBinary() string {
	workDir, _ := filepath.Abs(".")
	if runtime.GOOS == "windows" {
		return filepath.Join(workDir, "checkplugins.exe")
	}

	return filepath.Join(workDir, "checkplugins")
}

// linkPlugin creates a symlink named like the plugin pointing to the binary
// and returns its path.
func linkPlugin(t *testing.T, name string) string {
	t.Helper()

	link := filepath.Join(t.TempDir(), name)
	err := os.Symlink(getBinary(), link)
	require.NoErrorf(t, err, "creating symlink %s", link)

	return link
}

// logCmd prints diagnostics for a failed command
func logCmd(t *testing.T, proc *exec.Cmd, res *cmdResult) {
	t.Helper()
	t.Logf("cmd:     %s", proc.String())
	t.Logf("workdir: %s", proc.Dir)
	t.Logf("exit:    %d", res.ExitCode)
	t.Logf("stdout:  %s", res.Stdout)
	t.Logf("stderr:  %s", res.Stderr)
}
