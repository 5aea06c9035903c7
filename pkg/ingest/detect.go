package ingest

import (
	"errors"
	"strings"
)

// Format is the detected layout of an uploaded sheet.
type Format int

const (
	FormatStandard Format = iota
	FormatIrregular
)

func (f Format) String() string {
	if f == FormatStandard {
		return "standard"
	}
	return "cleaned_complex"
}

// ErrUnrecognizedFormat means the sheet matched neither the standard tabular
// layout nor the multi-section irregular layout.
var ErrUnrecognizedFormat = errors.New("sheet matches no known layout")

// numStandardColumns is the width of the canonical layout.
const numStandardColumns = 8

// StandardColumns are the eight canonical columns of a standard tabular
// sheet, in order.
var StandardColumns = [numStandardColumns]string{
	"SL No", "Description", "Service Tag", "Identification Number",
	"Procurement Date", "Cost", "Location", "Department",
}

// institutionKeywords mark the banner rows of an institutional export.
var institutionKeywords = []string{"DEPARTMENT", "INSTITUTE", "TECHNOLOGY", "ENGINEERING"}

const (
	detectScanRows     = 10
	standardMinMatches = 6
	standardMinColumns = 8
)

// DetectFormat decides whether a sheet follows the standard tabular layout
// or the multi-section irregular one. A sheet is Standard when at least six
// of the eight canonical headers appear (case-insensitively) within the
// first ten rows and the sheet is at least eight columns wide. A sheet is
// only eligible for Irregular parsing when an institution keyword appears in
// the first ten rows and a section keyword appears anywhere; failing both,
// the sheet is rejected rather than silently parsed as empty.
func DetectFormat(grid [][]string) (Format, error) {
	if countHeaderMatches(grid) >= standardMinMatches && maxWidth(grid) >= standardMinColumns {
		return FormatStandard, nil
	}
	if hasInstitutionBanner(grid) && hasSectionKeyword(grid) {
		return FormatIrregular, nil
	}
	return 0, ErrUnrecognizedFormat
}

func countHeaderMatches(grid [][]string) int {
	limit := detectScanRows
	if len(grid) < limit {
		limit = len(grid)
	}
	matches := 0
	for _, col := range StandardColumns {
		want := strings.ToLower(col)
		found := false
		for _, row := range grid[:limit] {
			for _, cell := range row {
				if strings.Contains(strings.ToLower(cleanCell(cell)), want) {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if found {
			matches++
		}
	}
	return matches
}

func maxWidth(grid [][]string) int {
	w := 0
	for _, row := range grid {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

func hasInstitutionBanner(grid [][]string) bool {
	limit := detectScanRows
	if len(grid) < limit {
		limit = len(grid)
	}
	for _, row := range grid[:limit] {
		for _, cell := range row {
			upper := strings.ToUpper(cleanCell(cell))
			for _, kw := range institutionKeywords {
				if strings.Contains(upper, kw) {
					return true
				}
			}
		}
	}
	return false
}

func hasSectionKeyword(grid [][]string) bool {
	for _, row := range grid {
		for _, cell := range row {
			c := cleanCell(cell)
			if c == "" {
				continue
			}
			for _, kw := range sectionKeywords {
				if strings.Contains(c, kw) {
					return true
				}
			}
		}
	}
	return false
}
