package employee

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"employee-directory/internal/models"
)

const exportSheet = "Employees"

var exportHeader = []interface{}{"Name", "Email", "Position", "Department", "Date joined", "Salary"}

// WriteWorkbook writes employees as a single-sheet xlsx, one row each, in
// the order given.
func WriteWorkbook(w io.Writer, employees []models.Employee) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return errors.Wrap(err, "naming export sheet")
	}

	header := exportHeader
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return errors.Wrap(err, "writing export header")
	}

	// built-in format 2 is "0.00"
	salaryStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return errors.Wrap(err, "creating salary style")
	}

	for i, e := range employees {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return errors.Wrap(err, "addressing export row")
		}
		values := []interface{}{
			e.Name,
			e.Email,
			e.Position,
			e.Department.Label(),
			e.DateJoined.Format(dateLayout),
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return errors.Wrap(err, "writing export row")
		}

		// The decimal text is stored as the numeric cell value, so no
		// digits pass through a float.
		salaryCell, err := excelize.CoordinatesToCellName(len(exportHeader), row)
		if err != nil {
			return errors.Wrap(err, "addressing salary cell")
		}
		if err := f.SetCellDefault(exportSheet, salaryCell, e.Salary.StringFixed(2)); err != nil {
			return errors.Wrap(err, "writing salary")
		}
		if err := f.SetCellStyle(exportSheet, salaryCell, salaryCell, salaryStyle); err != nil {
			return errors.Wrap(err, "styling salary")
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}
