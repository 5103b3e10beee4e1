// Copyright © 2026 The rpmspec-ls authors

package speclint

import (
	"context"
	"io"
	"os/exec"
)

// Process is a handle on a started subprocess. Stdout must be drained
// before Wait is called.
type Process interface {
	// Stdout is the subprocess's standard output stream. It reaches EOF
	// when the process closes the descriptor, normally at exit.
	Stdout() io.Reader

	// Wait blocks until the process exits. A non-zero exit code is
	// returned as an error, matching os/exec.
	Wait() error
}

// Runner starts subprocesses. It exists so that the parser and the
// probes can be driven by a scripted fake in tests instead of a real
// rpmlint installation.
type Runner interface {
	// Start launches lc.Executable with args. An error means the process
	// never started (missing binary, permission denied); it is distinct
	// from the process starting and then exiting non-zero.
	Start(ctx context.Context, lc Context, args ...string) (Process, error)
}

// NewRunner returns a Runner backed by os/exec.
func NewRunner() Runner {
	return execRunner{}
}

type execRunner struct{}

func (execRunner) Start(ctx context.Context, lc Context, args ...string) (Process, error) {
	cmd := exec.CommandContext(ctx, lc.Executable, args...)
	cmd.Dir = lc.Dir
	cmd.Env = lc.Env
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd, stdout: stdout}, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout io.Reader
}

func (p *execProcess) Stdout() io.Reader { return p.stdout }

func (p *execProcess) Wait() error { return p.cmd.Wait() }
