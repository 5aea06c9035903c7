package ingest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record is one normalized asset row emitted by a parser. Caller metadata
// (parent department, uploader, timestamps) is stamped on at persistence
// time by the orchestrator, not here.
type Record struct {
	SlNo                 string
	Description          string
	ServiceTag           string
	IdentificationNumber string
	ProcurementDate      string
	Cost                 float64
	Location             string
	SectionLocation      string
	ProductCategory      string
	Department           string
}

// Field names a logical column of a Record for header mapping.
type Field string

const (
	FieldSerial      Field = "serial"
	FieldDescription Field = "description"
	FieldServiceTag  Field = "service_tag"
	FieldIdentNumber Field = "identification_number"
	FieldDate        Field = "procurement_date"
	FieldCost        Field = "cost"
	FieldLocation    Field = "location"
)

// headerSynonyms maps each field to the header spellings seen in the wild.
// Looked up once per table header row, not per cell.
var headerSynonyms = map[Field][]string{
	FieldSerial:      {"Sl. No", "Sl.No", "SlNo", "Sl No", "Serial No", "S.No"},
	FieldDescription: {"Description", "Desctiption", "Desc", "Item Description", "Item"},
	FieldServiceTag:  {"Service Tag", "ServiceTag", "Service No", "Asset Tag"},
	FieldIdentNumber: {"Identification No", "Identification Number", "ID No", "Asset ID", "Equipment ID"},
	FieldDate:        {"Procurement Date", "ProcurementDate", "Date", "Purchase Date"},
	FieldCost:        {"Cost", "Price", "Amount", "Value"},
	FieldLocation:    {"Location", "Place", "Room", "Position"},
}

// Mapping drives section-name derivation: which keyword makes a section
// belong to which canonical department, and which keyword implies which
// product category. A zero Mapping is unusable; use DefaultMapping or
// LoadMapping.
type Mapping struct {
	Departments       []KeywordRule `yaml:"departments"`
	Categories        []KeywordRule `yaml:"categories"`
	DefaultDepartment string        `yaml:"default_department"`
	DefaultCategory   string        `yaml:"default_category"`
}

// KeywordRule maps a case-insensitive keyword to a canonical value.
type KeywordRule struct {
	Keyword string `yaml:"keyword"`
	Value   string `yaml:"value"`
}

// DefaultMapping mirrors the department structure of the source campus.
func DefaultMapping() Mapping {
	return Mapping{
		Departments: []KeywordRule{
			{Keyword: "Computer", Value: "Computer Science and Engineering"},
			{Keyword: "Computing", Value: "Computer Science and Engineering"},
			{Keyword: "Electronics", Value: "Electronics and Instrumentation Engineering"},
			{Keyword: "Instrumentation", Value: "Electronics and Instrumentation Engineering"},
			{Keyword: "Mechanical", Value: "Mechanical Engineering"},
			{Keyword: "Civil", Value: "Civil Engineering"},
		},
		Categories: []KeywordRule{
			{Keyword: "Computer", Value: "Computing Equipment"},
			{Keyword: "Computing", Value: "Computing Equipment"},
			{Keyword: "Laboratory", Value: "Lab Equipment"},
			{Keyword: "Workshop", Value: "Workshop Tools"},
			{Keyword: "Facility", Value: "Infrastructure"},
			{Keyword: "Office", Value: "Office Equipment"},
		},
		DefaultDepartment: "Electronics and Instrumentation Engineering",
		DefaultCategory:   "General Equipment",
	}
}

// LoadMapping reads a keyword mapping from a YAML file, filling omitted
// defaults from DefaultMapping.
func LoadMapping(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Mapping{}, fmt.Errorf("read mapping: %w", err)
	}
	m := DefaultMapping()
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Mapping{}, fmt.Errorf("parse mapping: %w", err)
	}
	return m, nil
}

func (m Mapping) department(section string) string {
	lower := strings.ToLower(section)
	for _, rule := range m.Departments {
		if strings.Contains(lower, strings.ToLower(rule.Keyword)) {
			return rule.Value
		}
	}
	return m.DefaultDepartment
}

func (m Mapping) category(section string) string {
	lower := strings.ToLower(section)
	for _, rule := range m.Categories {
		if strings.Contains(lower, strings.ToLower(rule.Keyword)) {
			return rule.Value
		}
	}
	return m.DefaultCategory
}

// ParserState is the carry-forward state of a section-aware parse. It is a
// plain value: Step returns the updated state rather than mutating shared
// fields, so each transition can be tested in isolation.
type ParserState struct {
	Mode    Mode
	Section string   // current section title, "" before the first header
	Header  []string // active table header labels, nil before one is seen

	// Carry-forward values. Department resets on each section header;
	// description and location deliberately survive section boundaries.
	LastDescription string
	LastLocation    string

	serial  int // next serial to assign, 1-based across the whole parse
	skipped int // unclassified + summary rows seen
}

// NewParserState returns the starting state for one sheet.
func NewParserState() ParserState {
	return ParserState{Mode: ModeAwaitingSection, serial: 1}
}

// Skipped reports how many rows the classifier could not place. These are
// tolerated, not errors, but the count is surfaced so silent data loss in a
// malformed sheet is visible to the uploader.
func (st ParserState) Skipped() int { return st.skipped }

// SectionParser walks an irregular multi-section sheet and emits one Record
// per data row.
type SectionParser struct {
	Mapping Mapping
}

// Parse runs the state machine over the whole grid.
func (p SectionParser) Parse(grid [][]string) ([]Record, ParserState) {
	st := NewParserState()
	var out []Record
	for _, row := range grid {
		var rec *Record
		st, rec = p.Step(st, row)
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out, st
}

// Step processes one row, returning the next state and the record emitted
// for that row, if any.
func (p SectionParser) Step(st ParserState, row []string) (ParserState, *Record) {
	switch Classify(row, st.Mode, st.Header != nil) {
	case ClassBlank:
		return st, nil

	case ClassSectionHeader:
		st.Section = firstNonEmpty(row)
		st.Header = nil
		st.Mode = ModeAwaitingSection
		return st, nil

	case ClassTableHeader:
		st.Header = headerLabels(row)
		st.Mode = ModeWithinTable
		return st, nil

	case ClassDataRow:
		return p.emit(st, row)

	case ClassSummaryRow:
		st.skipped++
		return st, nil
	}

	st.skipped++
	return st, nil
}

// emit maps a data row through the active header, applies carry-forward and
// defaults, and drops rows that still lack a description or identification
// number after normalization.
func (p SectionParser) emit(st ParserState, row []string) (ParserState, *Record) {
	cells := lookupByHeader(row, st.Header)

	desc := cells[FieldDescription]
	if desc == "" {
		desc = st.LastDescription
	} else {
		st.LastDescription = desc
	}

	loc := cells[FieldLocation]
	if loc == "" && st.LastLocation != "" {
		loc = st.LastLocation
	} else if cells[FieldLocation] != "" {
		st.LastLocation = cells[FieldLocation]
	}
	if loc == "" {
		loc = st.Section
	}

	if desc == "" || cells[FieldIdentNumber] == "" {
		st.skipped++
		return st, nil
	}

	rec := Record{
		SlNo:                 fmt.Sprintf("%d", st.serial),
		Description:          desc,
		ServiceTag:           cells[FieldServiceTag],
		IdentificationNumber: cells[FieldIdentNumber],
		ProcurementDate:      NormalizeDate(cells[FieldDate]),
		Cost:                 NormalizeCost(cells[FieldCost]),
		Location:             loc,
		SectionLocation:      st.Section,
		ProductCategory:      p.Mapping.category(st.Section),
		Department:           p.Mapping.department(st.Section),
	}
	if rec.ServiceTag == "" {
		rec.ServiceTag = "ST-" + rec.SlNo
	}
	st.serial++
	return st, &rec
}

// lookupByHeader resolves each field to a cell via the synonym table. The
// first header label equal to any accepted spelling wins.
func lookupByHeader(row []string, header []string) map[Field]string {
	out := make(map[Field]string, len(headerSynonyms))
	for field, spellings := range headerSynonyms {
		for i, label := range header {
			if i >= len(row) {
				break
			}
			if matchesAny(label, spellings) {
				out[field] = cleanCell(row[i])
				break
			}
		}
	}
	return out
}

func matchesAny(label string, spellings []string) bool {
	l := strings.TrimSpace(label)
	for _, s := range spellings {
		if strings.EqualFold(l, s) {
			return true
		}
	}
	return false
}

// headerLabels keeps the row's cells positionally so header index i labels
// column i of the data rows beneath it.
func headerLabels(row []string) []string {
	labels := make([]string, len(row))
	for i, cell := range row {
		labels[i] = cleanCell(cell)
	}
	return labels
}

func firstNonEmpty(row []string) string {
	for _, cell := range row {
		if c := cleanCell(cell); c != "" {
			return c
		}
	}
	return ""
}
