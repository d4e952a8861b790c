package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/certvault/cert-extractor/constants"
	"github.com/certvault/cert-extractor/internal/llm"
	"github.com/certvault/cert-extractor/internal/pipeline"
)

func TestRecordsXLSX(t *testing.T) {
	results := []pipeline.Result{
		{
			Status:     "success",
			Filename:   "scan1.png",
			TextLength: 120,
			Record: llm.Record{
				"certificateNo": "C-101", "dateofIssue": "2019-06-12", "name": "Priya Sharma",
				"enrolmentNo": "EN-44", "graduationYear": "2019", "degree": "B.Tech", "department": "CSE",
			},
		},
		{
			Status:     "success",
			Filename:   "scan2.pdf",
			TextLength: 340,
			Record: llm.Record{
				"certificateNo": "", "dateofIssue": "", "name": "Ravi Kumar",
				"enrolmentNo": "", "graduationYear": "2021", "degree": "BSc", "department": "",
			},
		},
	}

	data, err := RecordsXLSX(results, constants.SchemaCertificate)
	if err != nil {
		t.Fatalf("RecordsXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Certificates")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}

	wantHeader := append([]string{"Source File", "Status", "Text Length"}, constants.CertificateFields...)
	for i, want := range wantHeader {
		if i >= len(rows[0]) || rows[0][i] != want {
			t.Errorf("header[%d] = %q, want %q", i, cell(rows[0], i), want)
		}
	}

	if cell(rows[1], 0) != "scan1.png" || cell(rows[1], 1) != "success" || cell(rows[1], 2) != "120" {
		t.Errorf("row 1 prefix = %v", rows[1])
	}
	// column 3 onward follows CertificateFields order
	if cell(rows[1], 5) != "Priya Sharma" {
		t.Errorf("row 1 name = %q", cell(rows[1], 5))
	}
	if cell(rows[2], 0) != "scan2.pdf" || cell(rows[2], 5) != "Ravi Kumar" {
		t.Errorf("row 2 = %v", rows[2])
	}
}

func TestRecordsXLSXEmptyBatch(t *testing.T) {
	data, err := RecordsXLSX(nil, constants.SchemaDegree)
	if err != nil {
		t.Fatalf("RecordsXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Certificates")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want header only", len(rows))
	}
	if got := len(rows[0]); got != 3+len(constants.DegreeFields) {
		t.Errorf("header columns = %d, want %d", got, 3+len(constants.DegreeFields))
	}
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
