package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/K0NGR3SS/triagekit/internal/config"
	"github.com/K0NGR3SS/triagekit/internal/ui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	noBanner bool

	cfg    = config.Default()
	logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled).WithWriter(io.Discard)
)

var rootCmd = &cobra.Command{
	Use:   "triagekit",
	Short: "triagekit collects offline first-response evidence from an endpoint",
	Long: `triagekit is a read-only triage utility for IT security responders. It snapshots host,
network and process state into JSON and text reports and checks file hashes against a
local IOC list without any network-dependent tooling.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := ui.NewLogger(logLevel, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		logger = l

		if !noBanner && cmd != versionCmd {
			ui.PrintBanner(cmd.ErrOrStderr(), Version)
		}

		cfg = config.Default()
		if cfgFile != "" {
			loaded, err := config.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			cfg = loaded
			logger.Debug("loaded config", logger.Args("path", cfgFile))
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, pterm.Error.Sprint(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVar(&noBanner, "no-banner", false, "Do not print the banner")
}
