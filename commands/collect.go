package commands

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/K0NGR3SS/triagekit/internal/aws"
	"github.com/K0NGR3SS/triagekit/internal/collector"
	"github.com/K0NGR3SS/triagekit/internal/config"
	"github.com/K0NGR3SS/triagekit/internal/metrics"
	"github.com/K0NGR3SS/triagekit/internal/probe"
	"github.com/K0NGR3SS/triagekit/internal/report"
	"github.com/K0NGR3SS/triagekit/internal/syscmd"
	"github.com/K0NGR3SS/triagekit/internal/ui"
	"github.com/spf13/cobra"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Snapshot host, network and process state into a triage report",
	Long: `Collects host identity, IPv4 interfaces, routes, DNS configuration, active connections
and the largest processes by memory, then writes triage_<host>_<timestamp>.json and .txt
into --outdir. Every probe is best-effort: a failing probe is recorded, never fatal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyCollectFlags(cmd, cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()

		cmds := syscmd.ForPlatform(runtime.GOOS, syscmd.Options{Timeout: cfg.CommandTimeout})
		col := collector.New(probe.New(probe.NewSystemSource(), cmds, logger), logger)
		rec := metrics.NewRecorder()
		col.Metrics = rec

		if cfg.CloudMetadata {
			client, err := aws.NewClient(ctx)
			if err != nil {
				logger.Warn("cloud metadata disabled", logger.Args("error", err.Error()))
			} else {
				col.Cloud = client
			}
		}

		hashFile, _ := cmd.Flags().GetString("hash-file")

		spinner := ui.StartSpinner("Collecting evidence...")
		r := col.Collect(ctx, collector.Options{
			ConnectionLimit: cfg.Limits.Connections,
			ProcessLimit:    cfg.Limits.Processes,
			SecurityNotes:   cfg.SecurityNotes,
			HashFile:        hashFile,
		}, spinner)

		ui.UpdateSpinner(spinner, "Writing report...")
		paths, err := report.NewWriter(cfg.OutputDir, cfg.Compress).Write(r)
		ui.StopSpinner(spinner)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}

		if cfg.MetricsFile != "" {
			if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
				logger.Warn("metrics not written", logger.Args("error", err.Error()))
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), report.RenderText(r, paths))
		logger.Info("report written", logger.Args("json", paths.JSON, "txt", paths.Text))
		return nil
	},
}

// applyCollectFlags copies explicitly set flags over the loaded config.
func applyCollectFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("outdir") || cfgFile == "" {
		if c.OutputDir, err = flags.GetString("outdir"); err != nil {
			return err
		}
	}
	if flags.Changed("max-connections") {
		if c.Limits.Connections, err = flags.GetInt("max-connections"); err != nil {
			return err
		}
	}
	if flags.Changed("max-processes") {
		if c.Limits.Processes, err = flags.GetInt("max-processes"); err != nil {
			return err
		}
	}
	if flags.Changed("command-timeout") {
		if c.CommandTimeout, err = flags.GetDuration("command-timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("metrics-file") {
		if c.MetricsFile, err = flags.GetString("metrics-file"); err != nil {
			return err
		}
	}
	if flags.Changed("compress") {
		if c.Compress, err = flags.GetBool("compress"); err != nil {
			return err
		}
	}
	if flags.Changed("cloud-metadata") {
		if c.CloudMetadata, err = flags.GetBool("cloud-metadata"); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	f := collectCmd.Flags()
	f.String("outdir", "reports", "Output directory")
	f.String("hash-file", "", "Optional file to hash (MD5 and SHA256)")
	f.Int("max-connections", 200, "Maximum connections recorded")
	f.Int("max-processes", 30, "Number of processes kept, largest resident memory first")
	f.Duration("command-timeout", syscmd.DefaultTimeout, "Timeout for each native route/DNS command")
	f.String("metrics-file", "", "Write probe metrics in Prometheus textfile format to this path")
	f.Bool("compress", false, "Also write a zstd-compressed copy of the JSON report")
	f.Bool("cloud-metadata", false, "Query the local EC2 instance metadata service for instance identity")

	rootCmd.AddCommand(collectCmd)
}
