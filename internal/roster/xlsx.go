package roster

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// readXLSX returns the rows of the first worksheet.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataAccess, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s: workbook has no sheets", ErrDataAccess, path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: sheet %q: %v", ErrDataAccess, path, sheets[0], err)
	}
	return rows, nil
}
