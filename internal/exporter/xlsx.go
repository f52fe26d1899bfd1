// Package exporter writes the styled region table to a spreadsheet.
package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Zachdehooge/drugmort-dashboard/internal/fetcher"
	"github.com/Zachdehooge/drugmort-dashboard/internal/tiers"
)

// SheetName is the worksheet holding the table.
const SheetName = "Regions"

// BuildWorkbook lays out table on a single sheet. Numeric cells are written as
// numbers and filled with their tier colour; missing values stay blank.
func BuildWorkbook(table *fetcher.Table, styling tiers.Styling) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	styles, err := newTierStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	header := append([]string{table.KeyColumn}, table.Columns...)
	for i, name := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(SheetName, cell, name); err != nil {
			f.Close()
			return nil, err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, styles.header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for r, region := range table.Regions {
		row := r + 2
		codeCell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(SheetName, codeCell, region.Code); err != nil {
			f.Close()
			return nil, err
		}

		for c, col := range table.Columns {
			cell, _ := excelize.CoordinatesToCellName(c+2, row)
			v := table.Cell(region.Code, col)
			if v.Missing {
				continue
			}

			var value interface{} = v.Raw
			if table.IsNumeric(col) && v.Valid {
				value = v.Value
			}
			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				f.Close()
				return nil, err
			}

			if style, ok := styles.byTier[styling.Tier(region.Code, col)]; ok {
				if err := f.SetCellStyle(SheetName, cell, cell, style); err != nil {
					f.Close()
					return nil, err
				}
			}
		}
	}

	// Keep the region code visible while scrolling, like the dashboard.
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	return f, nil
}

// WriteXLSX streams the workbook to w.
func WriteXLSX(w io.Writer, table *fetcher.Table, styling tiers.Styling) error {
	f, err := BuildWorkbook(table, styling)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes the workbook to path.
func SaveXLSX(path string, table *fetcher.Table, styling tiers.Styling) error {
	f, err := BuildWorkbook(table, styling)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

type tierStyles struct {
	header int
	byTier map[tiers.Tier]int
}

func newTierStyles(f *excelize.File) (tierStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return tierStyles{}, fmt.Errorf("failed to create header style: %w", err)
	}

	s := tierStyles{header: header, byTier: make(map[tiers.Tier]int)}
	for _, t := range []tiers.Tier{tiers.TierHigh, tiers.TierMid} {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{
				Type:    "pattern",
				Pattern: 1,
				Color:   []string{strings.TrimPrefix(t.Background(), "#")},
			},
			Font:      &excelize.Font{Color: strings.TrimPrefix(t.Foreground(), "#")},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return tierStyles{}, fmt.Errorf("failed to create %s style: %w", t, err)
		}
		s.byTier[t] = id
	}
	return s, nil
}
