package web

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/csvrelay/internal/logging"
	"github.com/JonMunkholm/csvrelay/internal/schema"
)

const (
	templateName  = "students_template"
	templateSheet = "Students"
)

// handleDownloadTemplate returns an empty file carrying the expected header.
// ?format=xlsx returns a workbook instead of CSV.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		writeCSVTemplate(w)
	case "xlsx":
		if err := writeXLSXTemplate(w); err != nil {
			logging.FromContext(r.Context()).Error("xlsx template", "error", err)
			writeText(w, http.StatusInternalServerError, "Could not build template")
		}
	default:
		writeText(w, http.StatusBadRequest, fmt.Sprintf("Unknown template format %q", format))
	}
}

func writeCSVTemplate(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, templateName))

	cw := csv.NewWriter(w)
	_ = cw.Write(schema.Columns())
	cw.Flush()
}

// NewTemplateWorkbook builds a single-sheet workbook with the header row.
func NewTemplateWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, 0, schema.Len)
	for _, col := range schema.Columns() {
		header = append(header, col)
	}
	if err := f.SetSheetRow(templateSheet, "A1", &header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return f, nil
}

func writeXLSXTemplate(w http.ResponseWriter) error {
	f, err := NewTemplateWorkbook()
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, templateName))
	_, err = buf.WriteTo(w)
	return err
}
