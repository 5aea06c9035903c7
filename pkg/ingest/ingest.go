package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/tealeg/xlsx/v3"
)

// Kind is the upload channel the file arrived on.
type Kind string

const (
	KindCSV   Kind = "csv"
	KindExcel Kind = "excel"
)

// maxErrorSamples caps the error strings carried back to the caller; the
// counts stay exact regardless.
const maxErrorSamples = 10

// Meta is caller-supplied context stamped onto every stored record.
type Meta struct {
	ParentDepartment string
	UploadedBy       string
	Now              time.Time
}

// Store persists one parsed record. Implementations decide the backing
// table; errors are counted per row, not fatal to the run.
type Store interface {
	Insert(ctx context.Context, rec Record, meta Meta) error
}

// Result summarizes one ingestion run.
type Result struct {
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors,omitempty"`
	SkippedRows  int      `json:"skipped_rows"`
	FormatType   string   `json:"format_type"`
}

// Ingest reads an uploaded spreadsheet, detects its layout, parses it and
// persists every resulting record through store. Per-row failures are
// accumulated rather than aborting the run; only unreadable files and
// unrecognized layouts fail outright.
func Ingest(ctx context.Context, r io.Reader, filename string, kind Kind, meta Meta, mapping Mapping, store Store) (*Result, error) {
	grid, err := readGrid(r, filename, kind)
	if err != nil {
		return nil, err
	}

	format, err := DetectFormat(grid)
	if err != nil {
		return nil, err
	}

	res := &Result{FormatType: format.String()}

	var records []Record
	switch format {
	case FormatStandard:
		parsed, rowErrors, err := ParseStandard(grid)
		if err != nil {
			return nil, err
		}
		records = parsed
		for _, msg := range rowErrors {
			res.addError(msg)
		}
	case FormatIrregular:
		var st ParserState
		records, st = SectionParser{Mapping: mapping}.Parse(grid)
		res.SkippedRows = st.Skipped()
	}

	for _, rec := range records {
		if err := store.Insert(ctx, rec, meta); err != nil {
			res.addError(fmt.Sprintf("sl no %s: %v", rec.SlNo, err))
			continue
		}
		res.SuccessCount++
	}
	return res, nil
}

func (r *Result) addError(msg string) {
	r.ErrorCount++
	if len(r.Errors) < maxErrorSamples {
		r.Errors = append(r.Errors, msg)
	}
}

// readGrid materializes the file into rows of cell strings. The extension
// must match the upload channel so a CSV cannot slip through the Excel
// endpoint and vice versa.
func readGrid(r io.Reader, filename string, kind Kind) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch kind {
	case KindCSV:
		if ext != ".csv" {
			return nil, fmt.Errorf("expected a .csv file, got %q", ext)
		}
		return readCSV(r)
	case KindExcel:
		if ext != ".xlsx" && ext != ".xls" {
			return nil, fmt.Errorf("expected an .xlsx or .xls file, got %q", ext)
		}
		return readExcel(r)
	}
	return nil, fmt.Errorf("unknown upload kind %q", kind)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	var grid [][]string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		grid = append(grid, row)
	}
	if len(grid) == 0 {
		return nil, errors.New("csv file is empty")
	}
	return grid, nil
}

func readExcel(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	wb, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if len(wb.Sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	sheet := wb.Sheets[0]
	grid := make([][]string, 0, sheet.MaxRow)
	for i := 0; i < sheet.MaxRow; i++ {
		row := make([]string, sheet.MaxCol)
		for j := 0; j < sheet.MaxCol; j++ {
			cell, err := sheet.Cell(i, j)
			if err != nil {
				continue
			}
			if cell.IsTime() {
				if t, err := cell.GetTime(false); err == nil {
					row[j] = t.Format("2006-01-02")
					continue
				}
			}
			row[j] = cell.String()
		}
		grid = append(grid, row)
	}
	if len(grid) == 0 {
		return nil, errors.New("worksheet is empty")
	}
	return grid, nil
}
