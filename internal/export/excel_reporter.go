package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/storeops/opsflow/internal/domain/entity"
	"github.com/storeops/opsflow/internal/domain/workflow"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelReporter writes entity listings to spreadsheet files
type ExcelReporter struct {
	outputDir string
	logger    *zap.Logger
}

// NewExcelReporter creates a new spreadsheet reporter
func NewExcelReporter(outputDir string, logger *zap.Logger) *ExcelReporter {
	return &ExcelReporter{
		outputDir: outputDir,
		logger:    logger,
	}
}

var reportHeaders = []string{
	"ID", "Status", "Customer", "Motive", "Notes", "Next Contact", "Created", "Updated",
}

// WriteReport writes one kind's entities to a new workbook and returns
// the path of the generated file.
func (r *ExcelReporter) WriteReport(kind workflow.Kind, entities []*entity.WorkflowEntity) (string, error) {
	r.logger.Info("Writing entity report",
		zap.String("kind", kind.String()),
		zap.Int("count", len(entities)))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := kind.String()
	f.SetSheetName("Sheet1", sheetName)

	for col, header := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		r.setCell(f, sheetName, cell, header)
	}

	for row, e := range entities {
		nextContact := ""
		if e.NextContactAt != nil {
			nextContact = e.NextContactAt.Format("2006-01-02")
		}

		values := []interface{}{
			e.ID,
			e.Status.String(),
			e.CustomerRef,
			e.Motive,
			e.Notes,
			nextContact,
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.UpdatedAt.Format("2006-01-02 15:04"),
		}

		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			r.setCell(f, sheetName, cell, value)
		}
	}

	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.xlsx", kind.String(), time.Now().Format("20060102_150405"))
	outputPath := filepath.Join(r.outputDir, filename)

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	r.logger.Info("Entity report written", zap.String("output_path", outputPath))
	return outputPath, nil
}

// setCell sets a cell value, logging instead of failing on error
func (r *ExcelReporter) setCell(f *excelize.File, sheet, cell string, value interface{}) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		r.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}
