// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/spl-splitter/internal/split"
	"github.com/pdiddy/spl-splitter/pkg/types"
)

const (
	defaultInput  = "m50lines.spl"
	defaultOutput = "m50lines_components"
)

var splitCmd = &cobra.Command{
	Use:   "split [input] [output-dir]",
	Short: "Split one source file into per-category component files",
	Long: `Split reads the input file (default m50lines.spl) and writes its
components under the output directory (default m50lines_components):

  links/all_links.txt, includes/all_includes.txt, defines/all_defines.txt
  objects/<name>.txt, procedures/<name>.txt, screens/<name>.txt, menus/<name>.txt
  version.txt, globals.txt

Hyphens in entity names become underscores in file names. Existing files are
overwritten; files from earlier runs that this run does not produce are left
in place.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().String("encoding", types.DefaultEncoding, "source file encoding (WHATWG label, e.g. utf-8, windows-1252)")
	splitCmd.Flags().Bool("manifest", false, "write manifest.yaml listing every file produced")
	splitCmd.Flags().Bool("watch", false, "re-run the split whenever the input file changes")

	_ = viper.BindPFlag("split.encoding", splitCmd.Flags().Lookup("encoding"))
	_ = viper.BindPFlag("split.manifest", splitCmd.Flags().Lookup("manifest"))

	rootCmd.AddCommand(splitCmd)
}

func splitConfig() types.SplitConfig {
	return types.SplitConfig{
		Encoding: viper.GetString("split.encoding"),
		Manifest: viper.GetBool("split.manifest"),
	}
}

func runSplit(cmd *cobra.Command, args []string) error {
	input, output := defaultInput, defaultOutput
	if len(args) > 0 {
		input = args[0]
	}
	if len(args) > 1 {
		output = args[1]
	}

	cfg := splitConfig()
	if err := split.ValidateEncoding(cfg.Encoding); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	extractor := split.New(cfg, logger)
	run := func() error {
		summary, err := extractor.Extract(input, output)
		if err != nil {
			return err
		}
		printSummary(w, summary)
		fmt.Fprintf(w, "Extraction completed. Components saved in %s\n", output)
		return nil
	}

	if err := run(); err != nil {
		return err
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Fprintf(w, "Watching %s for changes (Ctrl-C to stop)\n", input)
	return split.Watch(ctx, input, logger, run)
}

func printSummary(w io.Writer, s split.Summary) {
	for _, c := range types.AllCategories {
		if n := s.Matches[c]; n > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", c, n)
		}
	}
}
