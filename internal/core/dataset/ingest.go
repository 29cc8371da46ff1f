// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx/v2"

	"github.com/chorostat/chorostat/pkg/convert"
)

// # Bulk Ingestion
//
// Observations arrive either as a JSON array or as an uploaded spreadsheet
// (CSV or XLSX). Both forms decode into []Record; the service screens each
// record, resolves its geographic label, and inserts the survivors in one
// transaction. Nothing is dropped silently: every rejected record appears
// in the [Report] with its row number and a machine-readable reason.

// Record is one loosely-typed incoming observation. Value and Year are
// pointers because an absent cell is not the same as a zero.
type Record struct {
	GeoLabel       string   `json:"geographic_label"`
	Name           string   `json:"attribute_name"`
	Value          *float64 `json:"attribute_value"`
	Year           *int     `json:"attribute_year"`
	ValueType      string   `json:"attribute_value_type"`
	RelativeWeight string   `json:"attribute_relative_weight"`
}

// SkipReason classifies why a record was rejected during screening.
type SkipReason string

const (
	// SkipMissingValue marks a record with no numeric value.
	SkipMissingValue SkipReason = "missing_value"

	// SkipMissingName marks a record with an empty attribute name.
	SkipMissingName SkipReason = "missing_name"

	// SkipUnresolvedGeo marks a record whose geographic label matched no
	// FIPS code, name, or abbreviation.
	SkipUnresolvedGeo SkipReason = "unresolved_geo"

	// SkipDuplicate marks a record repeating an earlier record's
	// (region, name, year) tuple within the same batch.
	SkipDuplicate SkipReason = "duplicate"
)

// Skipped reports one rejected record. Row is 1-based over the incoming
// batch, counting data rows only (a spreadsheet header is row 0).
type Skipped struct {
	Row    int        `json:"row"`
	Reason SkipReason `json:"reason"`
}

// Report summarises a bulk ingestion: how many observations were inserted
// and precisely which incoming records were rejected, and why.
type Report struct {
	Inserted int       `json:"inserted"`
	Skipped  []Skipped `json:"skipped"`
}

// # Spreadsheet Decoding

// Recognised column headers, matched after normalization. The hyphenated
// forms mirror the upload template; underscores and spaces are accepted.
const (
	columnGeoLabel       = "geographic-label"
	columnName           = "attribute-name"
	columnValue          = "attribute-value"
	columnYear           = "attribute-year"
	columnValueType      = "attribute-value-type"
	columnRelativeWeight = "attribute-relative-weight"
)

// normalizeHeader canonicalizes a column header for matching.
func normalizeHeader(header string) string {
	header = strings.ToLower(strings.TrimSpace(header))
	header = strings.ReplaceAll(header, "_", "-")
	return strings.ReplaceAll(header, " ", "-")
}

// columnIndex maps recognised headers to their position in the sheet.
type columnIndex map[string]int

func indexColumns(headers []string) columnIndex {
	index := make(columnIndex, len(headers))
	for position, header := range headers {
		normalized := normalizeHeader(header)
		switch normalized {
		case columnGeoLabel, columnName, columnValue, columnYear,
			columnValueType, columnRelativeWeight:
			index[normalized] = position
		}
	}
	return index
}

func (index columnIndex) cell(row []string, column string) string {
	position, ok := index[column]
	if !ok || position >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[position])
}

// recordFromRow converts one spreadsheet row using the header index.
func recordFromRow(index columnIndex, row []string) Record {
	return Record{
		GeoLabel:       index.cell(row, columnGeoLabel),
		Name:           index.cell(row, columnName),
		Value:          convert.ToFloatPtr(index.cell(row, columnValue)),
		Year:           convert.ToIntPtr(index.cell(row, columnYear)),
		ValueType:      index.cell(row, columnValueType),
		RelativeWeight: index.cell(row, columnRelativeWeight),
	}
}

/*
ParseCSV decodes an uploaded CSV into ingestion records.

Description: The first row must be a header naming at least the
geographic-label, attribute-name, and attribute-value columns
(case-insensitive; underscores and spaces tolerated). Unrecognised columns
are ignored. Ragged rows are tolerated; missing cells decode as absent.

Parameters:
  - reader: io.Reader (Raw CSV stream)

Returns:
  - []Record: One record per data row, in file order
  - error: Malformed CSV or a header missing the required columns
*/
func ParseCSV(reader io.Reader) ([]Record, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest_parse_csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ingest_parse_csv: empty file")
	}

	index := indexColumns(rows[0])
	if err := requireColumns(index); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, recordFromRow(index, row))
	}
	return records, nil
}

/*
ParseXLSX decodes an uploaded XLSX workbook into ingestion records.

Description: Only the first sheet is read. The first row must be a header
following the same column conventions as [ParseCSV].

Parameters:
  - data: []byte (Raw workbook bytes)

Returns:
  - []Record: One record per data row, in sheet order
  - error: Unreadable workbook, empty sheet, or missing required columns
*/
func ParseXLSX(data []byte) ([]Record, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("ingest_parse_xlsx: %w", err)
	}
	if len(file.Sheets) == 0 || len(file.Sheets[0].Rows) == 0 {
		return nil, fmt.Errorf("ingest_parse_xlsx: empty workbook")
	}

	sheet := file.Sheets[0]
	index := indexColumns(rowStrings(sheet.Rows[0]))
	if err := requireColumns(index); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		records = append(records, recordFromRow(index, rowStrings(row)))
	}
	return records, nil
}

func rowStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for position, cell := range row.Cells {
		cells[position] = cell.String()
	}
	return cells
}

func requireColumns(index columnIndex) error {
	for _, required := range []string{columnGeoLabel, columnName, columnValue} {
		if _, ok := index[required]; !ok {
			return fmt.Errorf("ingest_parse: missing required column %q", required)
		}
	}
	return nil
}

// # Screening

// observationKey identifies one (region, name, year) tuple for intra-batch
// duplicate detection. Undated records key separately from year 0.
type observationKey struct {
	geoCodeID int64
	name      string
	hasYear   bool
	year      int
}

func keyFor(geoCodeID int64, name string, year *int) observationKey {
	key := observationKey{geoCodeID: geoCodeID, name: name}
	if year != nil {
		key.hasYear = true
		key.year = *year
	}
	return key
}
