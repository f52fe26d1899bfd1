package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Zachdehooge/drugmort-dashboard/internal/config"
	"github.com/Zachdehooge/drugmort-dashboard/internal/dashboard"
	"github.com/Zachdehooge/drugmort-dashboard/internal/exporter"
	"github.com/Zachdehooge/drugmort-dashboard/internal/fetcher"
	"github.com/Zachdehooge/drugmort-dashboard/internal/generator"
	"github.com/Zachdehooge/drugmort-dashboard/internal/logging"
	"github.com/Zachdehooge/drugmort-dashboard/internal/server"
	"github.com/Zachdehooge/drugmort-dashboard/internal/tiers"
)

var (
	configFile string
	csvURL     string
	mapPath    string
	port       int
	verbose    bool
	htmlOutput string
	xlsxOutput string
	sortColumn string
	sortDesc   bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "drugmort-dashboard",
		Short: "Serve the Scottish drug related mortality dashboard",
		Long: `Drugmort Dashboard fetches drug related mortality statistics for each
Scottish health board and serves them as a single page with a map,
a highlighted table and the open data references.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "dashboard.yaml", "Optional YAML config file")
	rootCmd.PersistentFlags().StringVar(&csvURL, "csv-url", "", "Override the CSV dataset URL")
	rootCmd.PersistentFlags().StringVar(&mapPath, "map", "", "Override the map HTML fragment path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config, 8050)")

	addRenderCmd(rootCmd)
	addListCmd(rootCmd)
	addExportCmd(rootCmd)

	return rootCmd
}

// setup loads the configuration, applies flag overrides and installs the logger.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}

	if csvURL != "" {
		cfg.Data.CSVURL = csvURL
	}
	if mapPath != "" {
		cfg.Data.MapPath = mapPath
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := logging.Setup(cfg.Logging, cmd.ErrOrStderr())
	return cfg, logger, nil
}

// serve loads the dashboard and serves it until interrupted.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dash, err := dashboard.Load(ctx, nil, cfg.Data, logger)
	if err != nil {
		logger.Error("Startup failed", slog.String("error", err.Error()))
		return err
	}

	page, err := dash.Render(generator.DefaultOptions())
	if err != nil {
		logger.Error("Startup failed", slog.String("error", err.Error()))
		return err
	}

	return server.New(cfg.Server, page, logger).Run(ctx)
}

// addRenderCmd adds a 'render' subcommand that writes the page to a file
func addRenderCmd(rootCmd *cobra.Command) {
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Write the dashboard page to an HTML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			dash, err := dashboard.Load(cmd.Context(), nil, cfg.Data, logger)
			if err != nil {
				return err
			}

			if verbose {
				cmd.Println(fmt.Sprintf("Generating HTML to %s...", htmlOutput))
			}
			err = generator.GenerateDashboardHTML(dash.Table, dash.Styling, dash.Map, htmlOutput, generator.DefaultOptions())
			if err != nil {
				return fmt.Errorf("failed to generate HTML: %w", err)
			}

			cmd.Println(fmt.Sprintf("Dashboard saved to %s", htmlOutput))
			return nil
		},
	}
	renderCmd.Flags().StringVarP(&htmlOutput, "output", "o", "dashboard.html", "Output HTML file path")

	rootCmd.AddCommand(renderCmd)
}

// addListCmd adds a 'list' subcommand to print the table without the map
func addListCmd(rootCmd *cobra.Command) {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the region table with highlight tiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			table, styling, err := dashboard.LoadTable(cmd.Context(), nil, cfg.Data, logger)
			if err != nil {
				return err
			}

			if sortColumn != "" {
				if sortColumn != table.KeyColumn && !table.HasColumn(sortColumn) {
					return fmt.Errorf("unknown column %q", sortColumn)
				}
				table = table.SortBy(sortColumn, sortDesc)
			}

			printTable(cmd, table, styling)
			cmd.Println("")
			cmd.Println("** above the 50th percentile, * at or below it")
			return nil
		},
	}
	listCmd.Flags().StringVarP(&sortColumn, "sort", "s", "", "Column to sort by")
	listCmd.Flags().BoolVar(&sortDesc, "desc", false, "Sort descending")

	rootCmd.AddCommand(listCmd)
}

// addExportCmd adds an 'export' subcommand that writes the styled table to xlsx
func addExportCmd(rootCmd *cobra.Command) {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the highlighted table to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			table, styling, err := dashboard.LoadTable(cmd.Context(), nil, cfg.Data, logger)
			if err != nil {
				return err
			}

			if err := exporter.SaveXLSX(xlsxOutput, table, styling); err != nil {
				return err
			}
			cmd.Println(fmt.Sprintf("Table saved to %s", xlsxOutput))
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&xlsxOutput, "output", "o", "regions.xlsx", "Output workbook path")

	rootCmd.AddCommand(exportCmd)
}

// printTable writes the table as aligned columns, marking tiered cells
func printTable(cmd *cobra.Command, table *fetcher.Table, styling tiers.Styling) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprint(w, table.KeyColumn)
	for _, c := range table.Columns {
		fmt.Fprint(w, "\t", c)
	}
	fmt.Fprintln(w)

	for _, r := range table.Regions {
		fmt.Fprint(w, r.Code)
		for _, col := range table.Columns {
			fmt.Fprint(w, "\t", r.Values[col]+tierMarker(styling.Tier(r.Code, col)))
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}

func tierMarker(t tiers.Tier) string {
	switch t {
	case tiers.TierHigh:
		return " **"
	case tiers.TierMid:
		return " *"
	default:
		return ""
	}
}
