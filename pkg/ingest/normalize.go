package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// PlaceholderDate is substituted for blank or unparseable procurement dates.
const PlaceholderDate = "2024-01-01"

// placeholderTokens are textual stand-ins for "no value" seen in source
// spreadsheets. They normalize to zero cost rather than an error.
var placeholderTokens = map[string]bool{
	"":     true,
	"---":  true,
	"N/A":  true,
	"n/a":  true,
	"NA":   true,
	"-":    true,
	"NULL": true,
}

// dateLayouts are tried in order when parsing a textual date cell.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02-01-2006",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"02.01.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// NormalizeCost converts a raw cost cell into a non-negative float.
// Currency glyphs, thousands separators and whitespace are stripped first.
// Placeholder tokens, parse failures, NaN and infinities all map to 0.0;
// this function never fails.
func NormalizeCost(raw string) float64 {
	s := strings.TrimSpace(raw)
	if placeholderTokens[s] {
		return 0
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ',', '₹', '$', ' ', '\t':
			continue
		}
		b.WriteRune(r)
	}
	cleaned := b.String()
	if placeholderTokens[cleaned] {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// NormalizeDate reduces a raw date cell to a YYYY-MM-DD string. Timestamps
// lose their time-of-day portion. Blank or unparseable values fall back to
// PlaceholderDate.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return PlaceholderDate
	}
	// A textual timestamp like "2021-03-05 00:00:00" keeps only the date.
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return PlaceholderDate
}

// IsSerialLike reports whether a trimmed cell looks like a serial-number
// cell: all digits, digits with one trailing letter ("1a"), or digits with
// a trailing period ("1.").
func IsSerialLike(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return false
	}
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	} else if c := s[len(s)-1]; (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		s = s[:len(s)-1]
	}
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

// cleanCell trims a raw cell and collapses pandas-style "nan" markers to the
// empty string, which the pipeline treats as absent.
func cleanCell(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}
