package ingest

import "strings"

// RowClass is the role a single sheet row plays in an irregular layout.
type RowClass int

const (
	ClassBlank RowClass = iota
	ClassSectionHeader
	ClassTableHeader
	ClassDataRow
	ClassSummaryRow
	ClassUnclassified
)

func (c RowClass) String() string {
	switch c {
	case ClassBlank:
		return "blank"
	case ClassSectionHeader:
		return "section_header"
	case ClassTableHeader:
		return "table_header"
	case ClassDataRow:
		return "data_row"
	case ClassSummaryRow:
		return "summary_row"
	}
	return "unclassified"
}

// Mode is the classifier's view of where the parser currently is.
type Mode int

const (
	ModeAwaitingSection Mode = iota
	ModeWithinTable
)

// sectionKeywords identify a lone cell as a section title. Matched
// case-sensitively, as in the source sheets.
var sectionKeywords = []string{
	"Laboratory", "Lab", "Facility", "Centre", "Center", "Computing",
	"Workshop", "Department", "Office", "Room", "Hall", "Block",
}

// headerIndicators identify a row as a table header when any cell contains
// one of them.
var headerIndicators = []string{"Sl. No", "Sl.No", "SlNo", "Serial", "Description", "Desc"}

// Classify assigns one row to a role. Section and table headers are
// structurally unambiguous (cell count plus keyword), so they are tested
// before the permissive numeric-first-cell rule for data rows; otherwise a
// lone section title would be misread as a one-column data row.
func Classify(row []string, mode Mode, headerActive bool) RowClass {
	nonEmpty := make([]string, 0, len(row))
	for _, cell := range row {
		if c := cleanCell(cell); c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}

	if len(nonEmpty) == 0 {
		return ClassBlank
	}

	if len(nonEmpty) == 1 && isSectionTitle(nonEmpty[0]) {
		return ClassSectionHeader
	}

	for _, cell := range nonEmpty {
		for _, ind := range headerIndicators {
			if strings.Contains(cell, ind) {
				return ClassTableHeader
			}
		}
	}

	if mode == ModeWithinTable && headerActive && IsSerialLike(nonEmpty[0]) {
		return ClassDataRow
	}

	// A lone short number is a cumulative count row left behind by the
	// sheet author; discard rather than ingest.
	if len(nonEmpty) == 1 && len(nonEmpty[0]) <= 3 && allDigits(nonEmpty[0]) {
		return ClassSummaryRow
	}

	return ClassUnclassified
}

func isSectionTitle(cell string) bool {
	if strings.Contains(cell, "Sl. No") {
		return false
	}
	for _, kw := range sectionKeywords {
		if strings.Contains(cell, kw) {
			return true
		}
	}
	return false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
