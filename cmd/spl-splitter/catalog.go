// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/spl-splitter/internal/catalog"
	"github.com/pdiddy/spl-splitter/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Index split output in SQLite (store, retrieve, show, export)",
	Long: `Catalog keeps a SQLite index of one or more component directories
produced by split. Use subcommands to index a directory, query entries, show
one entry, or export.`,
}

// --- store subcommand ---

var catalogStoreCmd = &cobra.Command{
	Use:   "store [components-dir...]",
	Short: "Index component directories into the catalog",
	Long: `Store reads every component file under each directory and replaces
whatever the catalog held for that directory before.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCatalogStore,
}

func runCatalogStore(cmd *cobra.Command, args []string) error {
	store, err := catalog.NewStore(catalogConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	for _, dir := range args {
		if _, err := store.Ingest(cmd.Context(), dir, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("cataloging %s: %w", dir, err)
		}
	}
	return nil
}

// --- retrieve subcommand ---

var catalogRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the catalog by content, category, or name",
	RunE:  runCatalogRetrieve,
}

func runCatalogRetrieve(cmd *cobra.Command, args []string) error {
	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --category, --name, or --source")
	}

	store, err := catalog.NewStore(catalogConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(cmd.OutOrStdout(), results, jsonOutput)
}

func formatRetrieveOutput(w io.Writer, results []catalog.Entry, jsonOutput bool) error {
	if jsonOutput {
		if results == nil {
			results = []catalog.Entry{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-10s  %-24s  %s\n", "ID", "Category", "Name", "Path")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, r := range results {
		name := truncate(r.Name, 24)
		path := r.Path
		if r.Line > 0 {
			path = fmt.Sprintf("%s:%d", path, r.Line)
		}
		fmt.Fprintf(w, "%-36s  %-10s  %-24s  %s\n", r.ID, r.Category, name, path)
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// --- show subcommand ---

var catalogShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print the content of one catalog entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := catalog.NewStore(catalogConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		e, err := store.Show(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), e.Content)
		if !strings.HasSuffix(e.Content, "\n") {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	},
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML or JSON",
	RunE:  runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	store, err := catalog.NewStore(catalogConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if output == "" {
			output = "catalog-export.yaml"
		}
		if err := store.ExportYAML(cmd.Context(), output, opts); err != nil {
			return err
		}
	case "json":
		if output == "" {
			output = "catalog-export.json"
		}
		if err := store.ExportJSON(cmd.Context(), output, opts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
	return nil
}

// --- shared helpers ---

func catalogConfig() types.CatalogConfig {
	return types.CatalogConfig{
		DBPath:     viper.GetString("catalog.db"),
		MaxResults: viper.GetInt("catalog.max_results"),
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) catalog.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	category, _ := cmd.Flags().GetString("category")
	name, _ := cmd.Flags().GetString("name")
	source, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")

	return catalog.QueryOptions{
		Query:      queryText,
		Category:   types.Category(category),
		Name:       name,
		SourceDir:  source,
		MaxResults: limit,
	}
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "substring to match in entry content")
	cmd.Flags().String("category", "", "filter by category: link, include, define, object, procedure, screen, menu, version, globals")
	cmd.Flags().String("name", "", "filter by entity name")
	cmd.Flags().String("source", "", "filter by components directory")
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	catalogCmd.PersistentFlags().String("db", "spl-catalog.db", "catalog SQLite database file")
	catalogCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")
	_ = viper.BindPFlag("catalog.db", catalogCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("catalog.max_results", catalogCmd.PersistentFlags().Lookup("max-results"))

	// Retrieve flags.
	addFilterFlags(catalogRetrieveCmd)
	catalogRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	catalogRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	addFilterFlags(catalogExportCmd)
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	catalogExportCmd.Flags().String("output", "", "export file (default catalog-export.yaml or .json)")

	catalogCmd.AddCommand(catalogStoreCmd)
	catalogCmd.AddCommand(catalogRetrieveCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogExportCmd)
	rootCmd.AddCommand(catalogCmd)
}
