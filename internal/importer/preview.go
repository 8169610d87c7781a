package importer

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetPreview is the first rows of one sheet.
type SheetPreview struct {
	Name string
	Rows [][]string
}

// Preview returns up to maxRows rows (header included) of every sheet in
// the workbook at path.
func Preview(path string, maxRows int) ([]SheetPreview, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in %s", path)
	}

	previews := make([]SheetPreview, 0, len(sheets))
	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		if len(rows) > maxRows {
			rows = rows[:maxRows]
		}
		previews = append(previews, SheetPreview{Name: name, Rows: rows})
	}
	return previews, nil
}
