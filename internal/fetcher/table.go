package fetcher

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Region is one health board row. Values holds the raw cell text per column.
type Region struct {
	Code   string
	Values map[string]string
}

// Cell is a single column value with its numeric interpretation. Valid is
// set when Raw parses as a number; Missing when Raw is a null marker.
type Cell struct {
	Code    string
	Raw     string
	Value   float64
	Valid   bool
	Missing bool
}

// Table is the loaded dataset. It is not modified after ParseRegions returns.
type Table struct {
	KeyColumn string
	Columns   []string
	Regions   []Region

	index   map[string]int
	numeric map[string]bool
}

// Len returns the number of regions.
func (t *Table) Len() int {
	return len(t.Regions)
}

// Region looks up a row by region code.
func (t *Table) Region(code string) (Region, bool) {
	i, ok := t.index[code]
	if !ok {
		return Region{}, false
	}
	return t.Regions[i], true
}

// HasColumn reports whether name is a displayed column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// IsNumeric reports whether every present value of the column is a number.
func (t *Table) IsNumeric(column string) bool {
	return t.numeric[column]
}

// NumericColumns returns the numeric columns in display order.
func (t *Table) NumericColumns() []string {
	cols := make([]string, 0, len(t.numeric))
	for _, c := range t.Columns {
		if t.numeric[c] {
			cols = append(cols, c)
		}
	}
	return cols
}

// Column returns the cells of a column in row order.
func (t *Table) Column(name string) []Cell {
	cells := make([]Cell, len(t.Regions))
	for i, r := range t.Regions {
		cells[i] = cellOf(r, name)
	}
	return cells
}

// Cell returns the value of column for the given region.
func (t *Table) Cell(code, column string) Cell {
	r, ok := t.Region(code)
	if !ok {
		return Cell{Code: code, Missing: true}
	}
	return cellOf(r, column)
}

// SortBy returns a copy of the table ordered by column. Numeric columns sort
// by value, others by text; missing values always come last. Sorting by the
// key column orders by region code.
func (t *Table) SortBy(column string, descending bool) *Table {
	sorted := &Table{
		KeyColumn: t.KeyColumn,
		Columns:   t.Columns,
		Regions:   make([]Region, len(t.Regions)),
		index:     make(map[string]int, len(t.Regions)),
		numeric:   t.numeric,
	}
	copy(sorted.Regions, t.Regions)

	key := func(r Region) string {
		if column == t.KeyColumn {
			return r.Code
		}
		return r.Values[column]
	}

	sort.SliceStable(sorted.Regions, func(i, j int) bool {
		a, b := key(sorted.Regions[i]), key(sorted.Regions[j])
		if isMissing(a) != isMissing(b) {
			return !isMissing(a)
		}
		if isMissing(a) {
			return false
		}
		if t.numeric[column] {
			av, _ := parseNumber(a)
			bv, _ := parseNumber(b)
			if descending {
				return av > bv
			}
			return av < bv
		}
		if descending {
			return a > b
		}
		return a < b
	})

	for i, r := range sorted.Regions {
		sorted.index[r.Code] = i
	}
	return sorted
}

func (t *Table) detectNumeric() {
	t.numeric = make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		present := 0
		numeric := true
		for _, r := range t.Regions {
			raw := r.Values[c]
			if isMissing(raw) {
				continue
			}
			present++
			if _, ok := parseNumber(raw); !ok {
				numeric = false
				break
			}
		}
		t.numeric[c] = numeric && present > 0
	}
}

func cellOf(r Region, column string) Cell {
	raw := r.Values[column]
	c := Cell{Code: r.Code, Raw: raw}
	if isMissing(raw) {
		c.Missing = true
		return c
	}
	c.Value, c.Valid = parseNumber(raw)
	return c
}

// missingMarkers are the strings read_csv treats as NA by default. Matching
// is case-sensitive.
var missingMarkers = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

func isMissing(raw string) bool {
	return missingMarkers[strings.TrimSpace(raw)]
}

func parseNumber(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
