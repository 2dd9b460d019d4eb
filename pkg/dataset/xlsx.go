package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

// ToXLSX - convert DataSet to an Excel workbook, one sheet per table.
//
// Headers show column names with database types (e.g. "amount (NUMBER)").
// The caller owns the returned file and must Close it.
func ToXLSX(ds *DataSet) (*excelize.File, error) {
	f := excelize.NewFile()

	if len(ds.Tables) == 0 {
		return f, nil
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, table := range ds.Tables {
		sheet := sheetName(table.Name, i)
		index, err := f.NewSheet(sheet)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
		if i == 0 {
			f.SetActiveSheet(index)
		}

		for col, c := range table.Columns {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				f.Close()
				return nil, err
			}
			header := c.Name
			if c.DatabaseType != "" {
				header = fmt.Sprintf("%s (%s)", c.Name, c.DatabaseType)
			}
			f.SetCellValue(sheet, cell, header)
			f.SetCellStyle(sheet, cell, cell, headerStyle)
		}

		for r, row := range table.Rows {
			for col, v := range row {
				cell, err := excelize.CoordinatesToCellName(col+1, r+2)
				if err != nil {
					f.Close()
					return nil, err
				}
				if err := f.SetCellValue(sheet, cell, cellValue(v)); err != nil {
					f.Close()
					return nil, fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
				}
			}
		}
	}

	// The default sheet is only kept when a table claimed its name.
	if ds.Table("Sheet1") == nil {
		f.DeleteSheet("Sheet1")
	}

	return f, nil
}

// WriteXLSX saves ds to filePath.
func WriteXLSX(ds *DataSet, filePath string) error {
	f, err := ToXLSX(ds)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save %s: %w", filePath, err)
	}
	return nil
}

func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	default:
		return val
	}
}

// sheetName strips characters Excel rejects and enforces the length limit.
func sheetName(name string, index int) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	if name == "" {
		name = fmt.Sprintf("Table%d", index+1)
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}
