package dashboard

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachdehooge/drugmort-dashboard/internal/config"
	"github.com/Zachdehooge/drugmort-dashboard/internal/fetcher"
	"github.com/Zachdehooge/drugmort-dashboard/internal/generator"
	"github.com/Zachdehooge/drugmort-dashboard/internal/mapfile"
	"github.com/Zachdehooge/drugmort-dashboard/internal/tiers"
)

func csvServer(t *testing.T) *httptest.Server {
	t.Helper()
	data, err := os.ReadFile("testdata/regions.csv")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dataConfig(url, mapPath string) config.DataConfig {
	return config.DataConfig{
		CSVURL:       url,
		KeyColumn:    "HBCode",
		DropColumns:  []string{"geometry"},
		MapPath:      mapPath,
		FetchTimeout: 5 * time.Second,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad_EndToEnd(t *testing.T) {
	srv := csvServer(t)

	dash, err := Load(context.Background(), srv.Client(), dataConfig(srv.URL, "testdata/drugmortmap.html"), quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 14, dash.Table.Len())
	assert.False(t, dash.Table.HasColumn("geometry"))
	assert.Equal(t, "Drug mortality map", dash.Map.Title)

	// DrugDeaths is 10..140: p10 = 23, p50 = 75.
	th := dash.Styling.Thresholds["DrugDeaths"]
	assert.InDelta(t, 23, th.P10, 1e-9)
	assert.InDelta(t, 75, th.P50, 1e-9)
	assert.Equal(t, 7, dash.Styling.Count("DrugDeaths", tiers.TierMid))
	assert.Equal(t, 7, dash.Styling.Count("DrugDeaths", tiers.TierHigh))
	assert.Equal(t, 0, dash.Styling.Count("DrugDeaths", tiers.TierNone))

	for _, r := range dash.Table.Regions {
		v := dash.Table.Cell(r.Code, "DrugDeaths")
		require.True(t, v.Valid)
		want := tiers.TierHigh
		if v.Value <= 75 {
			want = tiers.TierMid
		}
		assert.Equal(t, want, dash.Styling.Tier(r.Code, "DrugDeaths"), r.Code)
	}

	// DeathRate has one missing value (Orkney), excluded from the percentiles.
	rate := dash.Styling.Thresholds["DeathRate"]
	assert.InDelta(t, 7.32, rate.P10, 1e-9)
	assert.InDelta(t, 17.9, rate.P50, 1e-9)
	assert.Equal(t, tiers.TierNone, dash.Styling.Tier("S08000025", "DeathRate"))
	assert.Equal(t, 7, dash.Styling.Count("DeathRate", tiers.TierMid))
	assert.Equal(t, 6, dash.Styling.Count("DeathRate", tiers.TierHigh))

	page, err := dash.Render(generator.DefaultOptions())
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, 14, doc.Find("table#regions tbody tr").Length())
	assert.Equal(t, 13, doc.Find("td.tier-high").Length())
	assert.Equal(t, 14, doc.Find("td.tier-mid").Length())
	assert.NotContains(t, string(page), "POLYGON")
}

func TestLoad_FetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.Client(), dataConfig(srv.URL, "testdata/drugmortmap.html"), quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load region data")
}

func TestLoad_MissingKeyColumn(t *testing.T) {
	srv := csvServer(t)
	cfg := dataConfig(srv.URL, "testdata/drugmortmap.html")
	cfg.KeyColumn = "RegionCode"

	_, err := Load(context.Background(), srv.Client(), cfg, quietLogger())
	assert.ErrorIs(t, err, fetcher.ErrMissingKeyColumn)
}

func TestLoad_MissingMap(t *testing.T) {
	srv := csvServer(t)

	_, err := Load(context.Background(), srv.Client(), dataConfig(srv.URL, filepath.Join(t.TempDir(), "missing.html")), quietLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, mapfile.ErrMapNotFound)
}

func TestLoad_EmptyDropColumnsStillDropsGeometry(t *testing.T) {
	srv := csvServer(t)
	cfg := dataConfig(srv.URL, "testdata/drugmortmap.html")
	cfg.DropColumns = []string{}

	dash, err := Load(context.Background(), srv.Client(), cfg, quietLogger())
	require.NoError(t, err)
	assert.False(t, dash.Table.HasColumn("geometry"))

	page, err := dash.Render(generator.DefaultOptions())
	require.NoError(t, err)
	assert.NotContains(t, string(page), "POLYGON")
}

func TestLoadTable_NilClientUsesTimeout(t *testing.T) {
	srv := csvServer(t)

	table, styling, err := LoadTable(context.Background(), nil, dataConfig(srv.URL, ""), quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 14, table.Len())
	assert.Len(t, styling.Thresholds, 2)
}
