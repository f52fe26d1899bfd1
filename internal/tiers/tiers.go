// Package tiers classifies numeric table cells into highlight tiers using the
// 10th and 50th percentile of their column.
package tiers

import (
	"math"
	"sort"

	"github.com/Zachdehooge/drugmort-dashboard/internal/fetcher"
)

// Tier is the presentation class of a single cell.
type Tier int

const (
	TierNone Tier = iota
	TierMid
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMid:
		return "mid"
	default:
		return "none"
	}
}

// CSSClass returns the class used by the dashboard stylesheet.
func (t Tier) CSSClass() string {
	switch t {
	case TierHigh:
		return "tier-high"
	case TierMid:
		return "tier-mid"
	default:
		return ""
	}
}

// Background is the cell fill colour for the tier, empty for TierNone.
func (t Tier) Background() string {
	switch t {
	case TierHigh:
		return "#808080"
	case TierMid:
		return "#C0C0C0"
	default:
		return ""
	}
}

// Foreground is the text colour for the tier, empty for TierNone.
func (t Tier) Foreground() string {
	if t == TierNone {
		return ""
	}
	return "#FFFFFF"
}

// Percentile returns the q-th quantile (0 <= q <= 1) of values using linear
// interpolation between order statistics at index q*(n-1). NaN values are
// ignored. It returns NaN when no values remain.
func Percentile(values []float64, q float64) float64 {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 || q < 0 || q > 1 {
		return math.NaN()
	}
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// Thresholds are the cut points of one column.
type Thresholds struct {
	P10 float64
	P50 float64
}

// ComputeThresholds returns the 10th and 50th percentile of values.
func ComputeThresholds(values []float64) Thresholds {
	return Thresholds{
		P10: Percentile(values, 0.10),
		P50: Percentile(values, 0.50),
	}
}

// Valid reports whether the thresholds came from at least one value.
func (th Thresholds) Valid() bool {
	return !math.IsNaN(th.P10) && !math.IsNaN(th.P50)
}

// Classify assigns a tier to a value. The "high" rule (v > P10) and the
// "mid" rule (v <= P50) are independent; when both match, "mid" is applied
// last and wins. Missing values are never tiered.
func Classify(v float64, valid bool, th Thresholds) Tier {
	if !valid || math.IsNaN(v) || !th.Valid() {
		return TierNone
	}
	tier := TierNone
	if v > th.P10 {
		tier = TierHigh
	}
	if v <= th.P50 {
		tier = TierMid
	}
	return tier
}

// Styling holds the thresholds and per-cell tiers of a table. It never
// changes the table itself.
type Styling struct {
	Thresholds map[string]Thresholds
	cells      map[string]map[string]Tier
}

// StyleTable computes thresholds for every numeric column of t and classifies
// each of its cells.
func StyleTable(t *fetcher.Table) Styling {
	s := Styling{
		Thresholds: make(map[string]Thresholds),
		cells:      make(map[string]map[string]Tier),
	}
	for _, col := range t.NumericColumns() {
		cells := t.Column(col)
		values := make([]float64, 0, len(cells))
		for _, c := range cells {
			if c.Valid {
				values = append(values, c.Value)
			}
		}
		th := ComputeThresholds(values)
		s.Thresholds[col] = th

		byCode := make(map[string]Tier, len(cells))
		for _, c := range cells {
			byCode[c.Code] = Classify(c.Value, c.Valid, th)
		}
		s.cells[col] = byCode
	}
	return s
}

// Tier returns the tier of a cell. Text columns and unknown cells are TierNone.
func (s Styling) Tier(code, column string) Tier {
	return s.cells[column][code]
}

// Count returns how many cells of column fall into tier.
func (s Styling) Count(column string, tier Tier) int {
	n := 0
	for _, t := range s.cells[column] {
		if t == tier {
			n++
		}
	}
	return n
}
