// Package export renders a batch of extraction results as an XLSX workbook,
// one row per source document with the schema fields as columns.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/certvault/cert-extractor/constants"
	"github.com/certvault/cert-extractor/internal/pipeline"
)

const sheetName = "Certificates"

// RecordsXLSX builds the workbook in memory and returns the serialized bytes.
// Columns are the canonical fields of the variant, prefixed with the source
// file and status so partial batches stay auditable.
func RecordsXLSX(results []pipeline.Result, variant constants.SchemaVariant) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), sheetName)

	fields := constants.FieldsFor(variant)
	headers := append([]string{"Source File", "Status", "Text Length"}, fields...)

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("set header %q: %w", h, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheetName, "A1", last, headerStyle)
	}

	for i, res := range results {
		row := i + 2
		values := []any{res.Filename, res.Status, res.TextLength}
		for _, field := range fields {
			values = append(values, res.Record[field])
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("cell for row %d: %w", row, err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
