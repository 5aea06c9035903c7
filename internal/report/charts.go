package report

import (
	"fmt"
	"image"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Bar is one labeled value in a chart
type Bar struct {
	Label string
	Value float64
}

// fontSet holds the faces used across report pages
type fontSet struct {
	title font.Face
	body  font.Face
}

// loadFonts builds the report faces from a TTF file. Without a configured
// font the report falls back to the builtin fixed face, which is legible
// if plain.
func loadFonts(fontPath string) fontSet {
	if fontPath != "" {
		title, errTitle := loadFontFace(fontPath, 28)
		body, errBody := loadFontFace(fontPath, 14)
		if errTitle == nil && errBody == nil {
			return fontSet{title: title, body: body}
		}
	}
	return fontSet{title: basicfont.Face7x13, body: basicfont.Face7x13}
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	face := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return face, nil
}

// barChart renders a horizontal bar chart page. Horizontal bars keep long
// department names readable.
func barChart(title string, bars []Bar, fonts fontSet, valueFormat string) image.Image {
	dc := gg.NewContext(pageWidth, pageHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetFontFace(fonts.title)
	dc.SetRGB(0.12, 0.16, 0.22)
	dc.DrawString(title, margin, margin+20)

	if len(bars) == 0 {
		dc.SetFontFace(fonts.body)
		dc.DrawString("No data available", margin, margin+80)
		return dc.Image()
	}

	maxValue := bars[0].Value
	for _, b := range bars {
		if b.Value > maxValue {
			maxValue = b.Value
		}
	}
	if maxValue <= 0 {
		maxValue = 1
	}

	const labelWidth = 260.0
	chartLeft := margin + labelWidth
	chartWidth := float64(pageWidth) - chartLeft - margin
	rowHeight := (float64(pageHeight) - margin*2 - 60) / float64(len(bars))
	if rowHeight > 56 {
		rowHeight = 56
	}
	barHeight := rowHeight * 0.6

	dc.SetFontFace(fonts.body)
	for i, b := range bars {
		y := margin + 60 + float64(i)*rowHeight

		dc.SetRGB(0.12, 0.16, 0.22)
		dc.DrawStringAnchored(truncate(b.Label, 34), margin+labelWidth-10, y+barHeight/2, 1, 0.35)

		w := chartWidth * (b.Value / maxValue)
		dc.SetRGB(0.23, 0.51, 0.96)
		dc.DrawRectangle(chartLeft, y, w, barHeight)
		dc.Fill()

		dc.SetRGB(0.25, 0.29, 0.35)
		dc.DrawString(fmt.Sprintf(valueFormat, b.Value), chartLeft+w+8, y+barHeight/2+5)
	}

	return dc.Image()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
