package keepass

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes keepassxc-cli once and blocks until it exits. The
// combined stdout/stderr text and the exit code are the whole contract
// surface with the external tool. Implementations are the test seam.
type Runner interface {
	Run(ctx context.Context, exe string, args []string, stdin string) (output string, exitCode int, err error)
}

// ExecRunner spawns the real subprocess. The secret travels over stdin,
// never on the argument list.
type ExecRunner struct {
	Log *slog.Logger
}

func (r ExecRunner) Run(ctx context.Context, exe string, args []string, stdin string) (string, int, error) {
	if r.Log != nil {
		r.Log.Debug("invoking keepassxc-cli", "exe", exe, "args", strings.Join(args, " "))
	}
	cmd := exec.CommandContext(ctx, exe, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	out, err := cmd.CombinedOutput()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			// A non-zero exit with captured output is part of the
			// contract, not a Go-level failure.
			exitCode = exitErr.ExitCode()
			err = nil
		} else {
			exitCode = -1
		}
	}
	if r.Log != nil {
		r.Log.Debug("keepassxc-cli finished", "exit", exitCode)
	}
	return string(out), exitCode, err
}
