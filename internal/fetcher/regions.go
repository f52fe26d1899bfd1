package fetcher

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GeometryColumn holds the region boundaries. It is always dropped.
const GeometryColumn = "geometry"

// DefaultCSVURL is the published drug mortality dataset, one row per health board.
const DefaultCSVURL = "https://raw.githubusercontent.com/healthbiodatascientist/drug_mortality/refs/heads/main/drug_mort_mapped.csv"

var (
	ErrMissingKeyColumn = errors.New("key column not found in CSV header")
	ErrDuplicateRegion  = errors.New("duplicate region code")
	ErrEmptyRegionCode  = errors.New("empty region code")
	ErrMalformedCSV     = errors.New("malformed CSV")
	ErrNoRegions        = errors.New("CSV contains no region rows")
)

// Options controls how the CSV is turned into a Table.
type Options struct {
	// KeyColumn holds the unique region code. Defaults to "HBCode".
	KeyColumn string
	// DropColumns are removed from the table if present, in addition to
	// GeometryColumn.
	DropColumns []string
}

// DefaultOptions returns the options matching the published dataset.
func DefaultOptions() Options {
	return Options{
		KeyColumn:   "HBCode",
		DropColumns: []string{GeometryColumn},
	}
}

func (o Options) withDefaults() Options {
	if o.KeyColumn == "" {
		o.KeyColumn = DefaultOptions().KeyColumn
	}
	return o
}

// FetchRegions downloads the CSV at url and parses it. There is a single
// attempt; any network or HTTP error is returned to the caller.
func FetchRegions(ctx context.Context, client *http.Client, url string, opts Options) (*Table, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "drugmort-dashboard/1.0 (github.com/Zachdehooge/drugmort-dashboard)")
	req.Header.Set("Accept", "text/csv")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch regions: %w", err)
	}
	defer resp.Body.Close()

	// Check response status
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snip, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("CSV source returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snip)))
	}

	table, err := ParseRegions(resp.Body, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}
	return table, nil
}

// ParseRegions reads a CSV with a header row into a Table keyed by region code.
func ParseRegions(r io.Reader, opts Options) (*Table, error) {
	opts = opts.withDefaults()

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header row", ErrMalformedCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	keyIdx := -1
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		header[i] = name
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrMalformedCSV, name)
		}
		seen[name] = true
		if name == opts.KeyColumn {
			keyIdx = i
		}
	}
	if keyIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingKeyColumn, opts.KeyColumn)
	}

	dropped := map[string]bool{GeometryColumn: true}
	for _, c := range opts.DropColumns {
		dropped[c] = true
	}

	table := &Table{KeyColumn: opts.KeyColumn, index: make(map[string]int)}
	kept := make([]int, 0, len(header))
	for i, name := range header {
		if i == keyIdx || dropped[name] {
			continue
		}
		kept = append(kept, i)
		table.Columns = append(table.Columns, name)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}

		line, _ := reader.FieldPos(keyIdx)
		code := strings.TrimSpace(record[keyIdx])
		if code == "" {
			return nil, fmt.Errorf("%w on line %d", ErrEmptyRegionCode, line)
		}
		if _, dup := table.index[code]; dup {
			return nil, fmt.Errorf("%w %q on line %d", ErrDuplicateRegion, code, line)
		}

		values := make(map[string]string, len(kept))
		for j, idx := range kept {
			values[table.Columns[j]] = strings.TrimSpace(record[idx])
		}
		table.index[code] = len(table.Regions)
		table.Regions = append(table.Regions, Region{Code: code, Values: values})
	}

	if len(table.Regions) == 0 {
		return nil, ErrNoRegions
	}

	table.detectNumeric()
	return table, nil
}
