package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five", 9)
	assert.Equal(t, []string{"one two", "three", "four five"}, lines)

	assert.Empty(t, wrapText("", 20))
	assert.Equal(t, []string{"word"}, wrapText("word", 20))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	// Multibyte labels truncate on rune boundaries, never mid-character.
	assert.Equal(t, "सूचना प्रयोग…", truncate("सूचना प्रयोगशाला कक्ष", 13))
	assert.Equal(t, "αβγδ…", truncate("αβγδεζη", 5))
}

func TestBarChartRendersWithoutFont(t *testing.T) {
	fonts := loadFonts("")
	img := barChart("Resources per Department", []Bar{
		{Label: "Computer Science and Engineering", Value: 120},
		{Label: "Mechanical Engineering", Value: 45},
	}, fonts, "%.0f")

	bounds := img.Bounds()
	assert.Equal(t, pageWidth, bounds.Dx())
	assert.Equal(t, pageHeight, bounds.Dy())
}

func TestBuildProducesPDF(t *testing.T) {
	data := Data{
		GeneratedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		GeneratedBy:     "admin@example.edu",
		TotalResources:  3,
		TotalCost:       125000,
		DepartmentCount: 2,
		LocationCount:   2,
		CountByDepartment: []Bar{
			{Label: "Computer Science and Engineering", Value: 2},
			{Label: "Mechanical Engineering", Value: 1},
		},
		CostByDepartment: []Bar{
			{Label: "Computer Science and Engineering", Value: 100000},
			{Label: "Mechanical Engineering", Value: 25000},
		},
		CountByCategory: []Bar{
			{Label: "Computing Equipment", Value: 2},
			{Label: "Workshop Tools", Value: 1},
		},
		Summary: "The inventory is dominated by computing equipment.",
	}

	pdf, err := Build(data, "")
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}
