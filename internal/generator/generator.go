package generator

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/Zachdehooge/drugmort-dashboard/internal/fetcher"
	"github.com/Zachdehooge/drugmort-dashboard/internal/mapfile"
	"github.com/Zachdehooge/drugmort-dashboard/internal/tiers"
)

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
   <meta charset="UTF-8"/>
   <meta name="viewport" content="width=device-width, initial-scale=1"/>
   <title>{{ .Content.Title }}</title>
   <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css"/>
   <style>
      :root {
         --tier-high-bg: #808080;
         --tier-mid-bg: #C0C0C0;
         --tier-text: #ffffff;
         --header-bg: #f8f9fa;
         --sticky-bg: #ffffff;
      }
      .padded { padding: 10px 10px; }
      .centered { text-align: center; }
      summary { list-style: none; display: block; cursor: default; }
      .map-frame { border: 0; max-width: 100%; }
      .table-wrap { overflow-x: auto; min-width: 100%; }
      table.regions { border-collapse: collapse; min-width: 100%; }
      table.regions th, table.regions td {
         text-align: center;
         padding: 6px 10px;
         border: 1px solid #dee2e6;
         white-space: nowrap;
      }
      table.regions th {
         background-color: var(--header-bg);
         cursor: pointer;
         user-select: none;
      }
      table.regions th[data-dir="asc"]::after { content: " \25B2"; }
      table.regions th[data-dir="desc"]::after { content: " \25BC"; }
      table.regions .sticky {
         position: sticky;
         left: 0;
         z-index: 1;
         background-color: var(--sticky-bg);
      }
      table.regions th.sticky { background-color: var(--header-bg); z-index: 2; }
      td.tier-high { background-color: var(--tier-high-bg); color: var(--tier-text); }
      td.tier-mid { background-color: var(--tier-mid-bg); color: var(--tier-text); }
      .updated { font-size: 0.8em; color: #888; }
   </style>
   <script>
      // Click a header to sort; click again to reverse. Missing values stay last.
      window.addEventListener('DOMContentLoaded', function () {
         const table = document.getElementById('regions');
         if (!table) return;
         const body = table.tBodies[0];
         table.querySelectorAll('thead th').forEach(function (th, idx) {
            th.addEventListener('click', function () {
               const dir = th.dataset.dir === 'asc' ? 'desc' : 'asc';
               table.querySelectorAll('thead th').forEach(function (h) { delete h.dataset.dir; });
               th.dataset.dir = dir;
               const numeric = th.dataset.numeric === 'true';
               const rows = Array.from(body.rows);
               rows.sort(function (a, b) {
                  const ca = a.cells[idx], cb = b.cells[idx];
                  const ma = ca.dataset.missing === 'true', mb = cb.dataset.missing === 'true';
                  if (ma !== mb) return ma ? 1 : -1;
                  if (ma) return 0;
                  let cmp;
                  if (numeric) {
                     cmp = parseFloat(ca.dataset.value) - parseFloat(cb.dataset.value);
                  } else {
                     cmp = ca.textContent.localeCompare(cb.textContent);
                  }
                  return dir === 'asc' ? cmp : -cmp;
               });
               rows.forEach(function (r) { body.appendChild(r); });
            });
         });
      });
   </script>
</head>
<body>
<div class="container">
   <h1 class="mb-2 padded centered">{{ .Content.Title }}</h1>
   <div class="row"><div class="col">
      <summary class="mb-2 padded">{{ .Content.MapSummary }}</summary>
   </div></div>
   <div class="row centered"><div class="col">
      <iframe id="map" class="map-frame" height="600" width="1000" title="{{ .MapTitle }}" srcdoc="{{ .MapHTML }}"></iframe>
   </div></div>
   <figcaption class="mb-2 padded centered">{{ .Content.MapCaption }}</figcaption>

   <h4 class="mb-2 padded centered" style="margin-top: 1em;">{{ .Content.RelationshipsHeading }}</h4>
   {{ range .Content.Relationships }}
   <summary class="mb-2">{{ . }}</summary>
   {{ end }}

   <figcaption class="mb-2 padded centered" style="margin-bottom: 1em;">{{ .Content.TableCaption }}</figcaption>
   <div class="row"><div class="col table-wrap">
      <table id="regions" class="regions">
         <thead>
            <tr>
               <th class="sticky" data-numeric="false" data-column="{{ .KeyColumn }}">{{ .KeyLabel }}</th>
               {{ range .Columns }}<th data-numeric="{{ .Numeric }}">{{ .Name }}</th>{{ end }}
            </tr>
         </thead>
         <tbody>
            {{ range .Rows }}
            <tr data-region="{{ .Code }}">
               <td class="sticky">{{ .Code }}</td>
               {{ range .Cells }}<td{{ if .Class }} class="{{ .Class }}"{{ end }} data-value="{{ .SortValue }}" data-missing="{{ .Missing }}">{{ .Raw }}</td>{{ end }}
            </tr>
            {{ end }}
         </tbody>
      </table>
   </div></div>

   <h4 class="mb-2 padded centered" style="margin-top: 1em;">{{ .Content.ReferencesHeading }}</h4>
   {{ range .Content.References }}
   <summary>{{ .Publisher }}</summary>
   {{ range .URLs }}<li><cite>{{ . }}</cite></li>{{ end }}
   {{ end }}

   <p class="updated">Data loaded {{ .LastUpdated }} · {{ .RegionCount }} regions</p>
</div>
</body>
</html>
`))

// Options adjusts page rendering.
type Options struct {
	Content Content
	// Now stamps the page; defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions renders the published dashboard text.
func DefaultOptions() Options {
	return Options{Content: DefaultContent(), Now: time.Now}
}

// TemplateColumn is a table header.
type TemplateColumn struct {
	Name    string
	Numeric bool
}

// TemplateCell is one rendered table cell.
type TemplateCell struct {
	Raw       string
	Class     string
	SortValue string
	Missing   bool
}

// TemplateRow is one region row.
type TemplateRow struct {
	Code  string
	Cells []TemplateCell
}

type pageData struct {
	Content     Content
	MapTitle    string
	MapHTML     string
	KeyColumn   string
	KeyLabel    string
	Columns     []TemplateColumn
	Rows        []TemplateRow
	RegionCount int
	LastUpdated string
}

// RenderDashboard writes the dashboard page for table to w.
func RenderDashboard(w io.Writer, table *fetcher.Table, styling tiers.Styling, fragment mapfile.Fragment, opts Options) error {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	mapTitle := fragment.Title
	if mapTitle == "" {
		mapTitle = opts.Content.MapCaption
	}

	keyLabel := opts.Content.KeyLabel
	if keyLabel == "" {
		keyLabel = table.KeyColumn
	}

	data := pageData{
		Content:     opts.Content,
		MapTitle:    mapTitle,
		MapHTML:     fragment.HTML,
		KeyColumn:   table.KeyColumn,
		KeyLabel:    keyLabel,
		Columns:     convertColumns(table),
		Rows:        convertRows(table, styling),
		RegionCount: table.Len(),
		LastUpdated: opts.Now().UTC().Format("Jan 2, 2006 at 15:04 UTC"),
	}

	if err := dashboardTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	return nil
}

// RenderDashboardBytes renders the page into memory.
func RenderDashboardBytes(table *fetcher.Table, styling tiers.Styling, fragment mapfile.Fragment, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderDashboard(&buf, table, styling, fragment, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateDashboardHTML renders the page and writes it to outputPath.
func GenerateDashboardHTML(table *fetcher.Table, styling tiers.Styling, fragment mapfile.Fragment, outputPath string, opts Options) error {
	page, err := RenderDashboardBytes(table, styling, fragment, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, page, 0644)
}

func convertColumns(table *fetcher.Table) []TemplateColumn {
	cols := make([]TemplateColumn, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = TemplateColumn{Name: c, Numeric: table.IsNumeric(c)}
	}
	return cols
}

func convertRows(table *fetcher.Table, styling tiers.Styling) []TemplateRow {
	rows := make([]TemplateRow, len(table.Regions))
	for i, r := range table.Regions {
		cells := make([]TemplateCell, len(table.Columns))
		for j, col := range table.Columns {
			c := table.Cell(r.Code, col)
			tc := TemplateCell{Raw: c.Raw, SortValue: c.Raw, Missing: c.Missing}
			if table.IsNumeric(col) && c.Valid {
				tc.SortValue = strconv.FormatFloat(c.Value, 'g', -1, 64)
				tc.Class = styling.Tier(r.Code, col).CSSClass()
			}
			cells[j] = tc
		}
		rows[i] = TemplateRow{Code: r.Code, Cells: cells}
	}
	return rows
}
