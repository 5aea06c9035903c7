package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// standardIndex resolves the canonical 8 columns against a header row by
// exact (case-insensitive) name. A column the header does not carry maps
// to -1.
type standardIndex [numStandardColumns]int

// Canonical column positions within StandardColumns.
const (
	colSerial = iota
	colDescription
	colServiceTag
	colIdentNumber
	colDate
	colCost
	colLocation
	colDepartment
)

// ParseStandard reads a sheet that already follows the canonical layout.
// The header must carry all eight canonical columns; a sheet with any of
// them entirely absent is rejected before any row is read. Below the
// header, missing cell values are filled with explicit placeholders rather
// than dropped. A cost cell that is present but not numeric is a row
// error: the row is reported, not stored.
func ParseStandard(grid [][]string) (records []Record, rowErrors []string, err error) {
	headerRow, idx := findStandardHeader(grid)
	if headerRow < 0 {
		return nil, nil, errors.New("standard header row not found")
	}
	var missing []string
	for c, pos := range idx {
		if pos < 0 {
			missing = append(missing, StandardColumns[c])
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	serial := 1
	for i := headerRow + 1; i < len(grid); i++ {
		row := grid[i]
		if isBlank(row) {
			continue
		}

		cost, err := parseStandardCost(pick(row, idx[colCost]))
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}

		n := strconv.Itoa(serial)
		rec := Record{
			SlNo:                 orDefault(pick(row, idx[colSerial]), n),
			Description:          orDefault(pick(row, idx[colDescription]), "Item "+n),
			ServiceTag:           orDefault(pick(row, idx[colServiceTag]), "ST-"+n),
			IdentificationNumber: orDefault(pick(row, idx[colIdentNumber]), "ID-"+n),
			ProcurementDate:      NormalizeDate(pick(row, idx[colDate])),
			Cost:                 cost,
			Location:             orDefault(pick(row, idx[colLocation]), "General Location"),
			Department:           orDefault(pick(row, idx[colDepartment]), "Unspecified"),
		}
		records = append(records, rec)
		serial++
	}
	return records, rowErrors, nil
}

// parseStandardCost is strict: an empty cell means zero, anything else must
// parse as a number once currency symbols and separators are stripped.
func parseStandardCost(raw string) (float64, error) {
	s := strings.NewReplacer(",", "", "₹", "", "$", "", " ", "").Replace(strings.TrimSpace(raw))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cost %q", raw)
	}
	return v, nil
}

func findStandardHeader(grid [][]string) (int, standardIndex) {
	var idx standardIndex
	limit := detectScanRows
	if len(grid) < limit {
		limit = len(grid)
	}
	for r := 0; r < limit; r++ {
		if rowHeaderMatches(grid[r]) >= standardMinMatches {
			for c := range idx {
				idx[c] = -1
			}
			for i, cell := range grid[r] {
				for c, name := range StandardColumns {
					if strings.EqualFold(strings.TrimSpace(cell), name) {
						idx[c] = i
					}
				}
			}
			return r, idx
		}
	}
	return -1, idx
}

func rowHeaderMatches(row []string) int {
	matches := 0
	for _, col := range StandardColumns {
		want := strings.ToLower(col)
		for _, cell := range row {
			if strings.Contains(strings.ToLower(cleanCell(cell)), want) {
				matches++
				break
			}
		}
	}
	return matches
}

func pick(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return cleanCell(row[i])
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cleanCell(cell) != "" {
			return false
		}
	}
	return true
}
