package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/K0NGR3SS/triagekit/internal/hashing"
	"github.com/K0NGR3SS/triagekit/internal/ioc"
	"github.com/K0NGR3SS/triagekit/internal/ui"
	"github.com/spf13/cobra"
)

var iocCmd = &cobra.Command{
	Use:   "ioc",
	Short: "Compare a file's MD5/SHA256 against an offline IOC hash list",
	Long: `Hashes --hash-file and looks both digests up in --ioc-file, a plain text list with one
MD5, SHA1 or SHA256 hash per line. Blank lines, '#' comments and anything else are ignored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		iocFile, _ := cmd.Flags().GetString("ioc-file")
		hashFile, _ := cmd.Flags().GetString("hash-file")
		return runIOCCheck(cmd.OutOrStdout(), iocFile, hashFile, time.Now())
	},
}

func runIOCCheck(w io.Writer, iocFile, hashFile string, now time.Time) error {
	if _, err := os.Stat(hashFile); err != nil {
		return fmt.Errorf("file not found: %s", hashFile)
	}

	set, err := ioc.Load(iocFile)
	if err != nil {
		return fmt.Errorf("failed to load IOC list: %w", err)
	}
	logger.Debug("loaded IOC list", logger.Args("path", iocFile, "indicators", set.Len()))

	sums, err := hashing.SumAll(hashFile, hashing.MD5, hashing.SHA256)
	if err != nil {
		return fmt.Errorf("failed to hash file: %w", err)
	}

	abs, err := filepath.Abs(hashFile)
	if err != nil {
		abs = hashFile
	}

	ui.PrintIOCReport(w, ui.IOCReport{
		CheckedAt: now,
		File:      abs,
		MD5:       sums[hashing.MD5],
		SHA256:    sums[hashing.SHA256],
		Verdict:   ioc.Check(set, sums),
	})
	return nil
}

func init() {
	iocCmd.Flags().String("ioc-file", "", "Path to IOC list (hashes)")
	iocCmd.Flags().String("hash-file", "", "File to hash and compare")
	_ = iocCmd.MarkFlagRequired("ioc-file")
	_ = iocCmd.MarkFlagRequired("hash-file")

	rootCmd.AddCommand(iocCmd)
}
