package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/regions.csv")
	require.NoError(t, err)
	return data
}

func TestParseRegions(t *testing.T) {
	table, err := ParseRegions(strings.NewReader(string(loadFixture(t))), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 14, table.Len())
	assert.Equal(t, "HBCode", table.KeyColumn)
	assert.Equal(t, []string{"HBName", "DrugDeaths", "DeathRate"}, table.Columns)
	assert.False(t, table.HasColumn("geometry"))
	assert.False(t, table.HasColumn("HBCode"))

	r, ok := table.Region("S08000024")
	require.True(t, ok)
	assert.Equal(t, "Lothian", r.Values["HBName"])
	assert.Equal(t, "70", r.Values["DrugDeaths"])
	_, hasGeometry := r.Values["geometry"]
	assert.False(t, hasGeometry)

	// Source order is kept.
	assert.Equal(t, "S08000015", table.Regions[0].Code)
	assert.Equal(t, "S08000032", table.Regions[13].Code)
}

func TestParseRegions_Errors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr error
	}{
		{
			name:    "missing key column",
			csv:     "Code,Deaths\nS1,3\n",
			wantErr: ErrMissingKeyColumn,
		},
		{
			name:    "duplicate region code",
			csv:     "HBCode,Deaths\nS1,3\nS2,4\nS1,5\n",
			wantErr: ErrDuplicateRegion,
		},
		{
			name:    "empty region code",
			csv:     "HBCode,Deaths\nS1,3\n ,4\n",
			wantErr: ErrEmptyRegionCode,
		},
		{
			name:    "ragged row",
			csv:     "HBCode,Deaths\nS1,3,9\n",
			wantErr: ErrMalformedCSV,
		},
		{
			name:    "unterminated quote",
			csv:     "HBCode,Deaths\nS1,\"3\n",
			wantErr: ErrMalformedCSV,
		},
		{
			name:    "duplicate column",
			csv:     "HBCode,Deaths,Deaths\nS1,3,4\n",
			wantErr: ErrMalformedCSV,
		},
		{
			name:    "empty input",
			csv:     "",
			wantErr: ErrMalformedCSV,
		},
		{
			name:    "header only",
			csv:     "HBCode,Deaths\n",
			wantErr: ErrNoRegions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseRegions(strings.NewReader(tt.csv), DefaultOptions())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, table)
		})
	}
}

func TestParseRegions_DuplicateNeverMerges(t *testing.T) {
	_, err := ParseRegions(strings.NewReader("HBCode,Deaths\nS1,3\nS1,3\n"), DefaultOptions())
	assert.ErrorIs(t, err, ErrDuplicateRegion)
	assert.Contains(t, err.Error(), `"S1"`)
}

func TestParseRegions_CustomOptions(t *testing.T) {
	csv := "id,name,shape,wkt,value\nA,Alpha,x,y,1\nB,Beta,x,y,2\n"
	table, err := ParseRegions(strings.NewReader(csv), Options{
		KeyColumn:   "id",
		DropColumns: []string{"shape", "wkt"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "value"}, table.Columns)
	assert.Equal(t, 2, table.Len())
}

func TestParseRegions_GeometryAlwaysDropped(t *testing.T) {
	csv := "HBCode,Deaths,geometry\nS1,3,\"POLYGON ((0 0, 1 0, 1 1, 0 0))\"\n"
	for name, drop := range map[string][]string{
		"nil":   nil,
		"empty": {},
		"other": {"Deaths"},
	} {
		t.Run(name, func(t *testing.T) {
			table, err := ParseRegions(strings.NewReader(csv), Options{KeyColumn: "HBCode", DropColumns: drop})
			require.NoError(t, err)
			assert.False(t, table.HasColumn(GeometryColumn))
			_, ok := table.Regions[0].Values[GeometryColumn]
			assert.False(t, ok)
		})
	}
}

func TestParseRegions_GeometryOptional(t *testing.T) {
	table, err := ParseRegions(strings.NewReader("HBCode,Deaths\nS1,3\n"), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"Deaths"}, table.Columns)
}

func TestParseRegions_ByteOrderMark(t *testing.T) {
	table, err := ParseRegions(strings.NewReader("\ufeffHBCode,Deaths\nS1,3\n"), DefaultOptions())
	require.NoError(t, err)
	_, ok := table.Region("S1")
	assert.True(t, ok)
}

func TestFetchRegions(t *testing.T) {
	fixture := loadFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/csv")
		w.Write(fixture)
	}))
	defer srv.Close()

	table, err := FetchRegions(context.Background(), srv.Client(), srv.URL, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 14, table.Len())
	assert.False(t, table.HasColumn("geometry"))
}

func TestFetchRegions_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	table, err := FetchRegions(context.Background(), srv.Client(), srv.URL, DefaultOptions())
	require.Error(t, err)
	assert.Nil(t, table)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestFetchRegions_SingleAttempt(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := FetchRegions(context.Background(), srv.Client(), srv.URL, DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFetchRegions_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := FetchRegions(context.Background(), nil, url, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch regions")
}

func TestFetchRegions_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Code,Deaths\nS1,3\n"))
	}))
	defer srv.Close()

	_, err := FetchRegions(context.Background(), srv.Client(), srv.URL, DefaultOptions())
	assert.ErrorIs(t, err, ErrMissingKeyColumn)
}
