// SPDX-License-Identifier: GPL-3.0-only
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bascanada/smartsearch/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "smartsearch",
	Short: "Smart search bar with key:value filters and autocomplete",
	Long: `smartsearch turns a free text box into a structured query editor.

Queries are made of key:value filters, free text, AND/OR and groups:
  level:error !environment:staging count:>10 (url:/api OR url:/auth) timeout`,
	PreRun: onCommandStart,
	Run: func(cmd *cobra.Command, args []string) {
		// Check if config exists before showing generic help
		if path, err := config.ResolvePath(configPath); err == nil {
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Println("Welcome to smartsearch!")
				fmt.Println("\nNo configuration found, the built-in event tags will be used.")
				fmt.Println("   Run 'smartsearch configure' to describe your own tags.")
				fmt.Println("\nOr use 'smartsearch --help' to see all available options.")
				return
			}
		}
		_ = cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (json or yaml), defaults to $"+config.EnvConfigPath+" then ~/.smartsearch/config.yaml")
	rootCmd.PersistentFlags().StringVar(&logger.Path, "logging-path", "", "file to output logs of the application")
	rootCmd.PersistentFlags().StringVar(&logger.Level, "logging-level", "", "logging level to output INFO WARN ERROR DEBUG TRACE")
	rootCmd.PersistentFlags().BoolVar(&logger.Stdout, "logging-stdout", false, "output appplication log in the stdout")

	// Register completion for --logging-level flag
	_ = rootCmd.RegisterFlagCompletionFunc("logging-level", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(versionCommand)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(configureCmd)
}
