// Copyright © 2026 The rpmspec-ls authors

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rpmdev/rpmspec-ls/speclint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that rpmlint and the language server are usable",
	Long: `Probe the configured rpmlint and language server executables and
report what a language server session would enable.

rpmlint must run and exit cleanly; the language server only needs to be
spawnable. Exit code 1 means at least one tool is unusable.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		runner := speclint.NewRunner()
		failed := false

		rpmlint := viper.GetString("rpmlint-path")
		if err := speclint.SanityCheck(ctx, runner, speclint.NewContext(rpmlint, "")); err != nil {
			fmt.Printf("rpmlint (%s): UNUSABLE: %v\n", rpmlint, err)
			failed = true
		} else {
			fmt.Printf("rpmlint (%s): ok\n", rpmlint)
		}

		server := viper.GetString("lsp-path")
		if err := speclint.ProbeExecutable(ctx, runner, speclint.NewContext(server, "")); err != nil {
			fmt.Printf("language server (%s): NOT FOUND: %v\n", server, err)
			failed = true
		} else {
			fmt.Printf("language server (%s): ok\n", server)
		}

		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
