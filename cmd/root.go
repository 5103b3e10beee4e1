// Copyright © 2026 The rpmspec-ls authors

package cmd

import (
	"fmt"
	"os"

	"github.com/rpmdev/rpmspec-ls/lsp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	colorFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rpmspec-ls",
	Short: "rpmspec-ls — language tooling for RPM spec files",
	Long: `rpmspec-ls provides editor and CLI tooling for RPM spec files. It runs
rpmlint on spec files and, when an external RPM language server is
installed, bridges editors to it over a single LSP session.

Getting started:
  rpmspec-ls lsp                 Start the language server (stdio)
  rpmspec-ls lint pkg.spec       Lint a spec file from the command line
  rpmspec-ls lint --watch ./...  Re-lint spec files as they change
  rpmspec-ls check               Verify rpmlint and the language server

Configuration (flags override $HOME/.rpmspec-ls.yaml):
  lint           Run rpmlint on open and save (default true)
  lsp            Bridge to the external language server (default true)
  rpmlint-path   rpmlint executable (default "rpmlint")
  lsp-path       language server executable (default "rpm_lsp_server")

More information:
  rpmlint:         https://github.com/rpm-software-management/rpmlint
  language server: https://github.com/rpm-software-management/rpm-spec-language-server`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rpmspec-ls.yaml)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)

	viper.SetDefault("lint", true)
	viper.SetDefault("lsp", true)
	viper.SetDefault("rpmlint-path", "rpmlint")
	viper.SetDefault("lsp-path", "rpm_lsp_server")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".rpmspec-ls"
		// (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".rpmspec-ls")
	}

	viper.SetEnvPrefix("rpmspec_ls")
	viper.AutomaticEnv() // read in environment variables that match

	_ = viper.ReadInConfig()
}

// configFromViper builds the server configuration from the merged flag,
// environment, and config file settings.
func configFromViper() lsp.Config {
	return lsp.Config{
		LintEnabled:   viper.GetBool("lint"),
		ServerEnabled: viper.GetBool("lsp"),
		RpmlintPath:   viper.GetString("rpmlint-path"),
		ServerPath:    viper.GetString("lsp-path"),
	}
}
