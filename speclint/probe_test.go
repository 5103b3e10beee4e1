// Copyright © 2026 The rpmspec-ls authors

package speclint

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner scripts subprocess behavior for tests. spawnErr simulates a
// missing binary; exitErr simulates a started process exiting non-zero.
type fakeRunner struct {
	spawnErr error
	exitErr  error
	stdout   string

	starts []fakeStart
}

type fakeStart struct {
	lc   Context
	args []string
}

func (r *fakeRunner) Start(_ context.Context, lc Context, args ...string) (Process, error) {
	r.starts = append(r.starts, fakeStart{lc: lc, args: args})
	if r.spawnErr != nil {
		return nil, r.spawnErr
	}
	return &fakeProcess{stdout: strings.NewReader(r.stdout), exitErr: r.exitErr}, nil
}

type fakeProcess struct {
	stdout  *strings.Reader
	exitErr error
}

func (p *fakeProcess) Stdout() io.Reader { return p.stdout }

func (p *fakeProcess) Wait() error { return p.exitErr }

func TestProbeExecutable(t *testing.T) {
	lc := NewContext("rpm_lsp_server", "/ws")

	t.Run("clean exit is available", func(t *testing.T) {
		r := &fakeRunner{}
		require.NoError(t, ProbeExecutable(context.Background(), r, lc))
		require.Len(t, r.starts, 1)
		assert.Equal(t, []string{"--help"}, r.starts[0].args)
	})
	t.Run("non-zero exit is still available", func(t *testing.T) {
		r := &fakeRunner{exitErr: errors.New("exit status 2")}
		assert.NoError(t, ProbeExecutable(context.Background(), r, lc))
	})
	t.Run("spawn error is unavailable", func(t *testing.T) {
		r := &fakeRunner{spawnErr: errors.New("no such file or directory")}
		err := ProbeExecutable(context.Background(), r, lc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rpm_lsp_server")
	})
}

func TestSanityCheck(t *testing.T) {
	lc := NewContext("rpmlint", "/ws")

	t.Run("clean exit passes", func(t *testing.T) {
		r := &fakeRunner{stdout: "usage: rpmlint [options]"}
		assert.NoError(t, SanityCheck(context.Background(), r, lc))
	})
	t.Run("non-zero exit fails", func(t *testing.T) {
		// Stricter than ProbeExecutable on purpose.
		r := &fakeRunner{exitErr: errors.New("exit status 1")}
		err := SanityCheck(context.Background(), r, lc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--help")
	})
	t.Run("spawn error fails", func(t *testing.T) {
		r := &fakeRunner{spawnErr: errors.New("permission denied")}
		assert.Error(t, SanityCheck(context.Background(), r, lc))
	})
}

func TestRun(t *testing.T) {
	lc := NewContext("rpmlint", "/ws")

	t.Run("parses stdout and ignores exit code", func(t *testing.T) {
		r := &fakeRunner{
			stdout:  "/ws/pkg.spec:2: W: mixed-use-of-spaces-and-tabs\nnoise\n",
			exitErr: errors.New("exit status 64"), // rpmlint exits non-zero on findings
		}
		diags, err := Run(context.Background(), r, lc, "/ws/pkg.spec", 5)
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, 1, diags[0].Line)
		assert.Equal(t, "mixed-use-of-spaces-and-tabs", diags[0].Message)

		require.Len(t, r.starts, 1)
		assert.Equal(t, []string{"/ws/pkg.spec"}, r.starts[0].args)
		assert.Equal(t, "/ws", r.starts[0].lc.Dir)
	})
	t.Run("spawn error", func(t *testing.T) {
		r := &fakeRunner{spawnErr: errors.New("no such file or directory")}
		diags, err := Run(context.Background(), r, lc, "/ws/pkg.spec", 5)
		require.Error(t, err)
		assert.Nil(t, diags)
	})
	t.Run("no matching output", func(t *testing.T) {
		r := &fakeRunner{stdout: "0 packages and 1 specfiles checked\n"}
		diags, err := Run(context.Background(), r, lc, "/ws/pkg.spec", 5)
		require.NoError(t, err)
		assert.Empty(t, diags)
	})
}
