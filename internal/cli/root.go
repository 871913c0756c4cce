// Package cli wires the issuegraph commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"issuegraph/internal/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "issuegraph",
	Short: "issuegraph - dependency-graph triage for GitHub issues",
	Long: `issuegraph automates triage of GitHub issues that use blocked-by
relationships. It renders the dependency graph as a Mermaid diagram, reports
which issues become unblocked when a blocking issue closes, and posts
deduplicated automation-trigger comments.

Diagnostics go to stderr; stdout carries only the diagram or the unblocked
list, so output can be piped into other tooling.

Example:
  issuegraph graph --repo myorg/myapp > deps.mmd
  issuegraph unblocked 42 --repo myorg/myapp`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = version.Short()
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .issuegraph.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().String("repo", "", "repository in owner/name form (overrides config)")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("project.repository", rootCmd.PersistentFlags().Lookup("repo"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error getting working directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".issuegraph")
	}

	viper.SetEnvPrefix("ISSUEGRAPH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
