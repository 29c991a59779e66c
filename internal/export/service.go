package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/labforms/coc-extractor/internal/pipeline"
)

// Service produces XLSX bytes for an extracted document.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// sampleHeaders are the report column headers, in column order. They mirror
// the Row JSON names.
var sampleHeaders = []string{
	"Customer Sample ID",
	"Matrix",
	"Comp/Grab",
	"Composite Start Date",
	"Composite Start Time",
	"Composite or Collected End Date",
	"Composite or Collected End Time",
	"# Cont",
	"Residual Chloride Result",
	"Residual Chloride Units",
	"analysis_request",
}

// DocumentXLSX returns a workbook with one sheet of reconciled sample rows
// and one sheet of general information fields.
func (s *Service) DocumentXLSX(doc *pipeline.Document) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sampleSheet = "Sample Data"
	const generalSheet = "General Information"

	if _, err := f.NewSheet(sampleSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(generalSheet); err != nil {
		return nil, err
	}
	_ = f.DeleteSheet("Sheet1")
	activeIndex, _ := f.GetSheetIndex(sampleSheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range sampleHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sampleSheet, cell, h)
	}

	for i, r := range doc.SampleData {
		row := i + 2
		values := []string{
			r.SampleID, r.Matrix, r.CompGrab,
			r.StartDate, r.StartTime, r.EndDate, r.EndTime,
			r.Containers, r.ChlorideResult, r.ChlorideUnits,
			r.AnalysisRequest,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sampleSheet, cell, v)
		}
	}

	generalHeaders := []string{"Key", "Value", "Type", "Page"}
	for i, h := range generalHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(generalSheet, cell, h)
	}
	for i, rec := range doc.GeneralInformation {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(generalSheet, cell, v)
		}
		write(1, rec.Key)
		write(2, rec.Value)
		write(3, string(rec.Kind))
		write(4, rec.Page)
	}

	// Widen the sample ID and date columns
	_ = f.SetColWidth(sampleSheet, "A", "A", 22)
	_ = f.SetColWidth(sampleSheet, "D", "G", 18)
	_ = f.SetColWidth(sampleSheet, "K", "K", 28)
	_ = f.SetColWidth(generalSheet, "A", "B", 32)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"sample_rows", len(doc.SampleData),
		"general_fields", len(doc.GeneralInformation),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
