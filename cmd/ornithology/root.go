package main

import (
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "0.3.0"

	// Global flags
	configFile string
	logLevel   string
	logFile    string
	quiet      bool
)

// rootCmd represents the base command. Passing an archive directly
// runs the enrich command, which is the everyday invocation.
var rootCmd = &cobra.Command{
	Use:   "ornithology [archive.zip]",
	Short: "Mine a Twitter archive export for your best tweets and followers",
	Long: `Ornithology joins the tweet and follower ids in a Twitter archive export
with the engagement metrics the API reports for them today, then ranks
the results: your all-time best tweets, tweets that were notable for
their moment, and the followers it is neat to have.

The run asks you to authorize once in the browser, absorbs the API's
rate limiting however long it takes, caches the fetched dataset in
cache.json, and renders everything into a self-contained HTML page.`,
	Example: `  # Enrich an export and open the report
  ornithology twitter-2024-01-01.zip

  # More entries per list, ignoring any cached dataset
  ornithology enrich twitter-2024-01-01.zip --top 10 --fresh`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runEnrich(cmd, args)
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .ornithology.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress log output below errors")

	rootCmd.SetVersionTemplate(`ornithology {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// globalFlags folds the persistent flags into a config overlay map.
func globalFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if quiet {
		flags["log-level"] = "error"
	}
	if logFile != "" {
		flags["log-file"] = logFile
	}
	return flags
}
