// Copyright © 2026 The rpmspec-ls authors

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rpmdev/rpmspec-ls/speclint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	lintJSON  bool
	lintWatch bool
)

var lintCmd = &cobra.Command{
	Use:   "lint [flags] files...",
	Short: "Run rpmlint on spec files",
	Long: `Run rpmlint on spec files and report findings.

Each finding is annotated with the offending source line when the file
is readable. Findings rpmlint reports without a line number are shown
against the file as a whole.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, unreadable files, rpmlint unusable)

Examples:
  rpmspec-ls lint pkg.spec                  # Lint a single spec file
  rpmspec-ls lint *.spec                    # Lint multiple files
  rpmspec-ls lint --json pkg.spec           # Output findings as JSON
  rpmspec-ls lint --watch pkg.spec          # Re-lint on every save
  rpmspec-ls lint ./...                     # Lint every spec file under .`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		files, err := expandArgs(args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		if len(files) == 0 {
			fmt.Fprintln(os.Stderr, "rpmspec-ls lint: no spec files found")
			os.Exit(2)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		runner := speclint.NewRunner()
		lc := speclint.NewContext(viper.GetString("rpmlint-path"), "")

		if err := speclint.SanityCheck(ctx, runner, lc); err != nil {
			fmt.Fprintf(os.Stderr, "rpmspec-ls lint: rpmlint is not usable: %v\n", err)
			os.Exit(2)
		}

		if lintWatch {
			if err := watchAndLint(ctx, runner, lc, files); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			return
		}

		var all []speclint.Diagnostic
		for _, path := range files {
			diags, err := lintFile(ctx, runner, lc, path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			all = append(all, diags...)
		}

		if len(all) == 0 {
			return
		}
		if lintJSON {
			if err := speclint.FormatJSON(os.Stdout, all); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
		} else {
			renderLintDiagnostics(all)
		}
		os.Exit(1)
	},
}

// lintFile runs rpmlint over a single spec file.
func lintFile(ctx context.Context, r speclint.Runner, lc speclint.Context, path string) ([]speclint.Diagnostic, error) {
	lineCount, err := countLines(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return speclint.Run(ctx, r, lc, path, lineCount)
}

// countLines reports how many lines the file at path holds, counting a
// trailing fragment without a newline as a line of its own.
func countLines(path string) (int, error) {
	data, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
	if err != nil {
		return 0, err
	}
	return strings.Count(string(data), "\n") + 1, nil
}

// watchAndLint lints the files once, then re-lints each on every write
// until interrupted.
func watchAndLint(ctx context.Context, r speclint.Runner, lc speclint.Context, files []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(files))
	for _, path := range files {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		watched[abs] = true
		// Watch the directory: editors replace files on save, which
		// drops a watch held on the file itself.
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
	}

	relint := func(path string) {
		diags, err := lintFile(ctx, r, lc, path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		if lintJSON {
			_ = speclint.FormatJSON(os.Stdout, diags)
		} else if len(diags) > 0 {
			renderLintDiagnostics(diags)
		}
	}

	for _, path := range files {
		relint(path)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !watched[abs] {
				continue
			}
			relint(abs)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().BoolVar(&lintJSON, "json", false,
		"Output findings as JSON.")
	lintCmd.Flags().BoolVar(&lintWatch, "watch", false,
		"Keep running and re-lint files as they change.")
}
