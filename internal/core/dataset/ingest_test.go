// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package dataset_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/chorostat/chorostat/internal/core/dataset"
)

/*
TestParseCSV verifies header mapping, pointer semantics for absent cells,
and row ordering.
*/
func TestParseCSV(t *testing.T) {
	input := strings.Join([]string{
		"geographic-label,attribute-name,attribute-value,attribute-year",
		"CA,Unemployment,5.1,2020",
		"TX,Unemployment,,2020",
		"06,Median Income,64100,",
	}, "\n")

	records, err := dataset.ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "CA", first.GeoLabel)
	assert.Equal(t, "Unemployment", first.Name)
	require.NotNil(t, first.Value)
	assert.InDelta(t, 5.1, *first.Value, 0.0001)
	require.NotNil(t, first.Year)
	assert.Equal(t, 2020, *first.Year)

	// Empty value cell decodes as absent, not zero.
	assert.Nil(t, records[1].Value)

	// Empty year cell decodes as undated.
	assert.Nil(t, records[2].Year)
	require.NotNil(t, records[2].Value)
}

/*
TestParseCSV_HeaderVariants verifies that underscores, spaces, and mixed
case are accepted in column headers.
*/
func TestParseCSV_HeaderVariants(t *testing.T) {
	input := strings.Join([]string{
		"Geographic_Label,ATTRIBUTE NAME,attribute_value",
		"CA,Unemployment,5.1",
	}, "\n")

	records, err := dataset.ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "CA", records[0].GeoLabel)
	assert.Equal(t, "Unemployment", records[0].Name)
}

/*
TestParseCSV_MissingRequiredColumn verifies the header contract.
*/
func TestParseCSV_MissingRequiredColumn(t *testing.T) {
	input := "geographic-label,attribute-year\nCA,2020"

	_, err := dataset.ParseCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attribute-name")
}

/*
TestParseCSV_RaggedRows verifies that short rows decode with absent cells
instead of failing the whole file.
*/
func TestParseCSV_RaggedRows(t *testing.T) {
	input := strings.Join([]string{
		"geographic-label,attribute-name,attribute-value,attribute-year",
		"CA,Unemployment",
	}, "\n")

	records, err := dataset.ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Value)
	assert.Nil(t, records[0].Year)
}

/*
TestParseCSV_EmptyFile verifies the empty-input error.
*/
func TestParseCSV_EmptyFile(t *testing.T) {
	_, err := dataset.ParseCSV(strings.NewReader(""))
	assert.Error(t, err)
}

// buildWorkbook writes an in-memory XLSX file with one sheet of string rows.
func buildWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("observations")
	require.NoError(t, err)

	for _, cells := range rows {
		row := sheet.AddRow()
		for _, value := range cells {
			row.AddCell().SetString(value)
		}
	}

	var buffer bytes.Buffer
	require.NoError(t, file.Write(&buffer))
	return buffer.Bytes()
}

/*
TestParseXLSX verifies that the first worksheet decodes under the same
header conventions as CSV input.
*/
func TestParseXLSX(t *testing.T) {
	data := buildWorkbook(t, [][]string{
		{"geographic-label", "attribute-name", "attribute-value", "attribute-year"},
		{"CA", "Unemployment", "5.1", "2020"},
		{"06", "Median Income", "64100", ""},
	})

	records, err := dataset.ParseXLSX(data)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "CA", records[0].GeoLabel)
	require.NotNil(t, records[0].Value)
	assert.InDelta(t, 5.1, *records[0].Value, 0.0001)
	require.NotNil(t, records[0].Year)
	assert.Equal(t, 2020, *records[0].Year)

	// Empty year cell decodes as undated.
	assert.Nil(t, records[1].Year)
}

/*
TestParseXLSX_MissingRequiredColumn verifies the header contract applies to
workbooks too.
*/
func TestParseXLSX_MissingRequiredColumn(t *testing.T) {
	data := buildWorkbook(t, [][]string{
		{"geographic-label", "attribute-year"},
		{"CA", "2020"},
	})

	_, err := dataset.ParseXLSX(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attribute-name")
}

/*
TestParseXLSX_NotAWorkbook verifies garbage bytes fail cleanly.
*/
func TestParseXLSX_NotAWorkbook(t *testing.T) {
	_, err := dataset.ParseXLSX([]byte("definitely not a zip archive"))
	assert.Error(t, err)
}

/*
TestParseCSV_OptionalColumns verifies decoding of the value-type and
relative-weight columns when present.
*/
func TestParseCSV_OptionalColumns(t *testing.T) {
	input := strings.Join([]string{
		"geographic-label,attribute-name,attribute-value,attribute-value-type,attribute-relative-weight",
		"CA,Population,39500000,count,high",
	}, "\n")

	records, err := dataset.ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "count", records[0].ValueType)
	assert.Equal(t, "high", records[0].RelativeWeight)
}
