package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var standardHeader = []string{
	"SL No", "Description", "Service Tag", "Identification Number",
	"Procurement Date", "Cost", "Location", "Department",
}

func TestDetectFormatStandard(t *testing.T) {
	grid := [][]string{
		standardHeader,
		{"1", "Dell Laptop", "ST500", "ID100", "2021-03-05", "45000", "Lab 1", "CSE"},
	}
	format, err := DetectFormat(grid)
	require.NoError(t, err)
	assert.Equal(t, FormatStandard, format)
	assert.Equal(t, "standard", format.String())
}

func TestDetectFormatStandardPartialHeader(t *testing.T) {
	// Six of eight canonical headers is enough; width still matters.
	grid := [][]string{
		{"SL No", "Description", "Service Tag", "Procurement Date", "Cost", "Location", "x", "y"},
	}
	format, err := DetectFormat(grid)
	require.NoError(t, err)
	assert.Equal(t, FormatStandard, format)
}

func TestDetectFormatFiveHeaderMatchesFallsToIrregular(t *testing.T) {
	// Five of eight canonical headers is below the standard threshold even
	// on a wide sheet; a banner plus a section title makes it irregular.
	grid := [][]string{
		{"DEPARTMENT OF ELECTRONICS AND INSTRUMENTATION ENGINEERING"},
		{"Computing Laboratory"},
		{"SL No", "Description", "Service Tag", "Procurement Date", "Qty", "Remarks", "Condition", "Status"},
	}
	// The banner contributes the Department match; the header row adds
	// four more, stopping at five.
	require.Equal(t, 5, countHeaderMatches(grid))
	format, err := DetectFormat(grid)
	require.NoError(t, err)
	assert.Equal(t, FormatIrregular, format)
}

func TestDetectFormatIrregular(t *testing.T) {
	grid := [][]string{
		{"DEPARTMENT OF ELECTRONICS AND INSTRUMENTATION ENGINEERING"},
		{},
		{"Computer Laboratory"},
		{"Sl. No", "Description", "Service Tag", "Identification No", "Date", "Cost", "Location"},
		{"1", "Dell Optiplex", "ST100", "EID-001", "2021-03-05", "45000", "Room 101"},
	}
	format, err := DetectFormat(grid)
	require.NoError(t, err)
	assert.Equal(t, FormatIrregular, format)
	assert.Equal(t, "cleaned_complex", format.String())
}

func TestDetectFormatUnrecognized(t *testing.T) {
	grid := [][]string{
		{"just", "some"},
		{"random", "cells"},
	}
	_, err := DetectFormat(grid)
	assert.ErrorIs(t, err, ErrUnrecognizedFormat)
}

func TestDetectFormatNarrowSheetNotStandard(t *testing.T) {
	// All eight header names crammed into a seven column sheet must not
	// count as standard; it falls through to the irregular check.
	grid := [][]string{
		{"INSTITUTE OF TECHNOLOGY"},
		{"Computer Laboratory"},
		{"Sl. No", "Description", "Service Tag", "Identification No", "Procurement Date", "Cost", "Location"},
	}
	format, err := DetectFormat(grid)
	require.NoError(t, err)
	assert.Equal(t, FormatIrregular, format)
}
