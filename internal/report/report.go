// Package report renders the inventory summary PDF. Pages are drawn as
// PNG images and assembled into a single document.
package report

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// A4 at 96 DPI, portrait.
const (
	pageWidth  = 794
	pageHeight = 1123
	margin     = 60.0
)

// Data is everything one report renders
type Data struct {
	GeneratedAt       time.Time
	GeneratedBy       string
	TotalResources    int
	TotalCost         float64
	DepartmentCount   int
	LocationCount     int
	CountByDepartment []Bar
	CountByParent     []Bar
	TopLocations      []Bar
	CostByDepartment  []Bar
	CountByCategory   []Bar
	Summary           string
}

// Build renders the report and returns the PDF bytes.
func Build(data Data, fontPath string) ([]byte, error) {
	fonts := loadFonts(fontPath)

	pages := []image.Image{
		coverPage(data, fonts),
		barChart("Resources per Department", data.CountByDepartment, fonts, "%.0f"),
		barChart("Resources per Parent Department", data.CountByParent, fonts, "%.0f"),
		barChart("Top Locations", data.TopLocations, fonts, "%.0f"),
		barChart("Cost per Department (₹)", data.CostByDepartment, fonts, "%.2f"),
		barChart("Resources per Category", data.CountByCategory, fonts, "%.0f"),
	}

	readers := make([]io.Reader, 0, len(pages))
	for _, page := range pages {
		var buf bytes.Buffer
		if err := png.Encode(&buf, page); err != nil {
			return nil, fmt.Errorf("encode page: %w", err)
		}
		readers = append(readers, &buf)
	}

	var out bytes.Buffer
	imp := pdfcpu.DefaultImportConfig()
	if err := api.ImportImages(nil, &out, readers, imp, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("assemble pdf: %w", err)
	}
	return out.Bytes(), nil
}

// coverPage draws the title page with the key figures and, when present,
// the executive summary.
func coverPage(data Data, fonts fontSet) image.Image {
	dc := gg.NewContext(pageWidth, pageHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0.23, 0.51, 0.96)
	dc.DrawRectangle(0, 0, pageWidth, 8)
	dc.Fill()

	dc.SetFontFace(fonts.title)
	dc.SetRGB(0.12, 0.16, 0.22)
	dc.DrawString("Campus Asset Inventory Report", margin, 140)

	dc.SetFontFace(fonts.body)
	dc.SetRGB(0.25, 0.29, 0.35)
	dc.DrawString("Generated "+data.GeneratedAt.Format("2 January 2006 15:04"), margin, 175)
	if data.GeneratedBy != "" {
		dc.DrawString("Requested by "+data.GeneratedBy, margin, 195)
	}

	figures := []string{
		fmt.Sprintf("Total resources:   %d", data.TotalResources),
		fmt.Sprintf("Total cost:        ₹%.2f", data.TotalCost),
		fmt.Sprintf("Departments:       %d", data.DepartmentCount),
		fmt.Sprintf("Locations:         %d", data.LocationCount),
	}
	y := 260.0
	for _, line := range figures {
		dc.DrawString(line, margin, y)
		y += 26
	}

	if data.Summary != "" {
		y += 30
		dc.SetRGB(0.12, 0.16, 0.22)
		dc.DrawString("Executive Summary", margin, y)
		y += 26
		dc.SetRGB(0.25, 0.29, 0.35)
		for _, line := range wrapText(data.Summary, 86) {
			dc.DrawString(line, margin, y)
			y += 20
			if y > pageHeight-margin {
				break
			}
		}
	}

	return dc.Image()
}

// wrapText breaks text into lines of at most width characters at word
// boundaries.
func wrapText(text string, width int) []string {
	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+1+len(word) > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
