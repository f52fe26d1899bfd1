// Package dashboard loads everything the page needs at startup. Any failure
// here is fatal for the process; nothing is retried.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Zachdehooge/drugmort-dashboard/internal/config"
	"github.com/Zachdehooge/drugmort-dashboard/internal/fetcher"
	"github.com/Zachdehooge/drugmort-dashboard/internal/generator"
	"github.com/Zachdehooge/drugmort-dashboard/internal/mapfile"
	"github.com/Zachdehooge/drugmort-dashboard/internal/tiers"
)

// Dashboard is the immutable state held for the life of the process.
type Dashboard struct {
	Table   *fetcher.Table
	Styling tiers.Styling
	Map     mapfile.Fragment
}

// LoadTable fetches the CSV and computes the cell tiers.
func LoadTable(ctx context.Context, client *http.Client, cfg config.DataConfig, logger *slog.Logger) (*fetcher.Table, tiers.Styling, error) {
	if client == nil {
		client = &http.Client{Timeout: cfg.FetchTimeout}
	}

	logger.Debug("Fetching region data", slog.String("url", cfg.CSVURL))
	table, err := fetcher.FetchRegions(ctx, client, cfg.CSVURL, fetcher.Options{
		KeyColumn:   cfg.KeyColumn,
		DropColumns: cfg.DropColumns,
	})
	if err != nil {
		return nil, tiers.Styling{}, err
	}

	styling := tiers.StyleTable(table)
	logger.Info("Region data loaded",
		slog.Int("regions", table.Len()),
		slog.Int("columns", len(table.Columns)),
		slog.Int("numeric_columns", len(table.NumericColumns())))
	for _, col := range table.NumericColumns() {
		th := styling.Thresholds[col]
		logger.Debug("Column thresholds",
			slog.String("column", col),
			slog.Float64("p10", th.P10),
			slog.Float64("p50", th.P50))
	}
	return table, styling, nil
}

// Load fetches the data and reads the map fragment.
func Load(ctx context.Context, client *http.Client, cfg config.DataConfig, logger *slog.Logger) (*Dashboard, error) {
	if logger == nil {
		logger = slog.Default()
	}

	table, styling, err := LoadTable(ctx, client, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load region data: %w", err)
	}

	fragment, err := mapfile.Load(cfg.MapPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load map: %w", err)
	}
	logger.Debug("Map fragment loaded", slog.String("path", fragment.Path), slog.Int("bytes", len(fragment.HTML)))

	return &Dashboard{Table: table, Styling: styling, Map: fragment}, nil
}

// Render produces the full page.
func (d *Dashboard) Render(opts generator.Options) ([]byte, error) {
	return generator.RenderDashboardBytes(d.Table, d.Styling, d.Map, opts)
}
