package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
)

type fakeStore struct {
	records []Record
	metas   []Meta
	failOn  func(rec Record) error
}

func (f *fakeStore) Insert(_ context.Context, rec Record, meta Meta) error {
	if f.failOn != nil {
		if err := f.failOn(rec); err != nil {
			return err
		}
	}
	f.records = append(f.records, rec)
	f.metas = append(f.metas, meta)
	return nil
}

func testMeta() Meta {
	return Meta{
		ParentDepartment: "Electronics and Instrumentation Engineering",
		UploadedBy:       "admin@example.edu",
		Now:              time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func standardCSV(rows ...string) string {
	header := "SL No,Description,Service Tag,Identification Number,Procurement Date,Cost,Location,Department"
	return header + "\n" + strings.Join(rows, "\n") + "\n"
}

func TestIngestStandardCSV(t *testing.T) {
	body := standardCSV(
		"1,Dell Laptop,ST500,ID100,2021-03-05,45000,Lab 1,CSE",
		"2,HP Printer,ST501,ID101,2021-04-01,12000,Lab 2,CSE",
	)
	store := &fakeStore{}
	res, err := Ingest(context.Background(), strings.NewReader(body), "assets.csv", KindCSV, testMeta(), DefaultMapping(), store)
	require.NoError(t, err)

	assert.Equal(t, "standard", res.FormatType)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 0, res.ErrorCount)
	require.Len(t, store.records, 2)
	assert.Equal(t, "Dell Laptop", store.records[0].Description)
	assert.Equal(t, "Electronics and Instrumentation Engineering", store.metas[0].ParentDepartment)
}

func TestIngestStandardBadCostIsRowError(t *testing.T) {
	body := standardCSV(
		"1,Dell Laptop,ST500,ID100,2021-03-05,45000,Lab 1,CSE",
		"2,HP Printer,ST501,ID101,2021-04-01,not-a-number,Lab 2,CSE",
		"3,Scanner,ST502,ID102,2021-05-01,,Lab 2,CSE",
	)
	store := &fakeStore{}
	res, err := Ingest(context.Background(), strings.NewReader(body), "assets.csv", KindCSV, testMeta(), DefaultMapping(), store)
	require.NoError(t, err)

	// The bad row is reported and withheld; the empty cost row stores as
	// zero.
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 1, res.ErrorCount)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "not-a-number")
	require.Len(t, store.records, 2)
	assert.Equal(t, 0.0, store.records[1].Cost)
}

func TestIngestStandardFillsPlaceholders(t *testing.T) {
	body := standardCSV("1,,,,,,,")
	store := &fakeStore{}
	res, err := Ingest(context.Background(), strings.NewReader(body), "assets.csv", KindCSV, testMeta(), DefaultMapping(), store)
	require.NoError(t, err)

	assert.Equal(t, 1, res.SuccessCount)
	require.Len(t, store.records, 1)
	rec := store.records[0]
	assert.Equal(t, "Item 1", rec.Description)
	assert.Equal(t, "ST-1", rec.ServiceTag)
	assert.Equal(t, "ID-1", rec.IdentificationNumber)
	assert.Equal(t, PlaceholderDate, rec.ProcurementDate)
	assert.Equal(t, "General Location", rec.Location)
	assert.Equal(t, "Unspecified", rec.Department)
}

func TestIngestStandardMissingColumnsRejected(t *testing.T) {
	// Six of eight canonical headers is enough for detection, but a
	// standard sheet without every canonical column fails whole-request
	// before any row is stored.
	body := "SL No,Description,Service Tag,Procurement Date,Cost,Location,Notes,Extra\n" +
		"1,Dell Laptop,ST500,2021-03-05,45000,Lab 1,new,x\n"
	store := &fakeStore{}
	res, err := Ingest(context.Background(), strings.NewReader(body), "assets.csv", KindCSV, testMeta(), DefaultMapping(), store)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "Identification Number")
	assert.Contains(t, err.Error(), "Department")
	assert.Empty(t, store.records)
}

func TestIngestIrregularCSV(t *testing.T) {
	body := strings.Join([]string{
		"DEPARTMENT OF ELECTRONICS AND INSTRUMENTATION ENGINEERING,,,,,,",
		",,,,,,",
		"Computer Laboratory,,,,,,",
		"Sl. No,Description,Service Tag,Identification No,Procurement Date,Cost,Location",
		"1,Dell Optiplex,ST100,EID-001,2021-03-05,\"45,000\",Room 101",
		"2,,,EID-002,---,---,",
	}, "\n") + "\n"

	store := &fakeStore{}
	res, err := Ingest(context.Background(), strings.NewReader(body), "inventory.csv", KindCSV, testMeta(), DefaultMapping(), store)
	require.NoError(t, err)

	assert.Equal(t, "cleaned_complex", res.FormatType)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 1, res.SkippedRows)
	require.Len(t, store.records, 2)
	assert.Equal(t, "Dell Optiplex", store.records[1].Description)
}

func TestIngestExcelWorkbook(t *testing.T) {
	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Inventory")
	require.NoError(t, err)

	addRow := func(cells ...string) {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}
	addRow("SL No", "Description", "Service Tag", "Identification Number", "Procurement Date", "Cost", "Location", "Department")
	addRow("1", "Oscilloscope", "ST900", "EID-900", "2022-01-10", "85000", "Instrumentation Lab", "EIE")

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))

	store := &fakeStore{}
	res, err := Ingest(context.Background(), &buf, "inventory.xlsx", KindExcel, testMeta(), DefaultMapping(), store)
	require.NoError(t, err)

	assert.Equal(t, "standard", res.FormatType)
	assert.Equal(t, 1, res.SuccessCount)
	require.Len(t, store.records, 1)
	assert.Equal(t, "Oscilloscope", store.records[0].Description)
	assert.Equal(t, 85000.0, store.records[0].Cost)
}

func TestIngestExtensionMismatch(t *testing.T) {
	_, err := Ingest(context.Background(), strings.NewReader("x"), "assets.xlsx", KindCSV, testMeta(), DefaultMapping(), &fakeStore{})
	assert.Error(t, err)

	_, err = Ingest(context.Background(), strings.NewReader("x"), "assets.csv", KindExcel, testMeta(), DefaultMapping(), &fakeStore{})
	assert.Error(t, err)
}

func TestIngestUnrecognizedFormat(t *testing.T) {
	body := "alpha,beta\ngamma,delta\n"
	_, err := Ingest(context.Background(), strings.NewReader(body), "odd.csv", KindCSV, testMeta(), DefaultMapping(), &fakeStore{})
	assert.ErrorIs(t, err, ErrUnrecognizedFormat)
}

func TestIngestStoreFailuresAreCappedSamples(t *testing.T) {
	var rows []string
	for i := 1; i <= 15; i++ {
		rows = append(rows, fmt.Sprintf("%d,Item %d,ST%d,ID%d,2021-01-01,100,Lab,CSE", i, i, i, i))
	}
	store := &fakeStore{failOn: func(Record) error { return errors.New("insert refused") }}
	res, err := Ingest(context.Background(), strings.NewReader(standardCSV(rows...)), "assets.csv", KindCSV, testMeta(), DefaultMapping(), store)
	require.NoError(t, err)

	assert.Equal(t, 0, res.SuccessCount)
	assert.Equal(t, 15, res.ErrorCount)
	assert.Len(t, res.Errors, maxErrorSamples)
}
