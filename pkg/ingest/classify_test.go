package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBlank(t *testing.T) {
	assert.Equal(t, ClassBlank, Classify(nil, ModeAwaitingSection, false))
	assert.Equal(t, ClassBlank, Classify([]string{"", "  ", "nan"}, ModeWithinTable, true))
}

func TestClassifySectionHeader(t *testing.T) {
	assert.Equal(t, ClassSectionHeader, Classify([]string{"Computer Laboratory"}, ModeAwaitingSection, false))
	assert.Equal(t, ClassSectionHeader, Classify([]string{"", "Mechanical Workshop", ""}, ModeWithinTable, true))

	// Two non-empty cells is no longer a lone title.
	assert.NotEqual(t, ClassSectionHeader, Classify([]string{"Computer Laboratory", "x"}, ModeAwaitingSection, false))
	// Keyword matching is case sensitive; an uppercase banner does not count.
	assert.NotEqual(t, ClassSectionHeader, Classify([]string{"DEPARTMENT OF PHYSICS"}, ModeAwaitingSection, false))
}

func TestClassifyTableHeader(t *testing.T) {
	row := []string{"Sl. No", "Description", "Service Tag", "Identification No", "Procurement Date", "Cost", "Location"}
	assert.Equal(t, ClassTableHeader, Classify(row, ModeAwaitingSection, false))
	assert.Equal(t, ClassTableHeader, Classify([]string{"", "Serial", "Item"}, ModeWithinTable, true))
}

func TestClassifyDataRow(t *testing.T) {
	row := []string{"1", "Dell Optiplex", "ST100", "EID-001", "2021-03-05", "45000", "Room 101"}
	assert.Equal(t, ClassDataRow, Classify(row, ModeWithinTable, true))

	// The same row before any header is seen stays unclassified.
	assert.Equal(t, ClassUnclassified, Classify(row, ModeAwaitingSection, false))
	assert.Equal(t, ClassUnclassified, Classify(row, ModeWithinTable, false))
}

func TestClassifySummaryRow(t *testing.T) {
	assert.Equal(t, ClassSummaryRow, Classify([]string{"", "", "12"}, ModeAwaitingSection, false))
	assert.Equal(t, ClassUnclassified, Classify([]string{"1234"}, ModeAwaitingSection, false))
}

func TestClassifyHeaderBeatsDataRow(t *testing.T) {
	// A header row whose first cell is numeric-looking must still be a
	// header, or a repeated table header inside a section would be stored
	// as an asset.
	row := []string{"1", "Description", "Service Tag"}
	assert.Equal(t, ClassTableHeader, Classify(row, ModeWithinTable, true))
}
