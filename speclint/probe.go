// Copyright © 2026 The rpmspec-ls authors

package speclint

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
)

// ProbeExecutable checks that lc.Executable can be launched at all by
// running it with --help. Any process exit counts as available, even a
// non-zero one: a binary that starts and complains about --help is still
// a binary that starts. Only a spawn-level failure reports the
// executable as unavailable.
//
// This is the liveness check used for the language server.
func ProbeExecutable(ctx context.Context, r Runner, lc Context) error {
	ctx, span := tracer.Start(ctx, "speclint.ProbeExecutable")
	span.SetAttributes(attribute.String("probe.executable", lc.Executable))
	defer span.End()

	proc, err := r.Start(ctx, lc, "--help")
	if err != nil {
		return fmt.Errorf("spawn %s: %w", lc.Executable, err)
	}
	_, _ = io.Copy(io.Discard, proc.Stdout())
	// Exit code deliberately ignored.
	_ = proc.Wait()
	return nil
}

// SanityCheck is the stricter probe used for rpmlint: in addition to the
// spawn succeeding, --help must exit zero. The asymmetry with
// ProbeExecutable is inherited behavior and preserved on purpose; do not
// unify the two.
func SanityCheck(ctx context.Context, r Runner, lc Context) error {
	ctx, span := tracer.Start(ctx, "speclint.SanityCheck")
	span.SetAttributes(attribute.String("probe.executable", lc.Executable))
	defer span.End()

	proc, err := r.Start(ctx, lc, "--help")
	if err != nil {
		return fmt.Errorf("spawn %s: %w", lc.Executable, err)
	}
	_, _ = io.Copy(io.Discard, proc.Stdout())
	if err := proc.Wait(); err != nil {
		return fmt.Errorf("%s --help: %w", lc.Executable, err)
	}
	return nil
}
