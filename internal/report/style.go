package report

import (
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

type styles struct {
	header int
	body   int
	amount int
	total  int
}

func border() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

// newStyles registers the cell styles. excelize deduplicates identical
// styles, so calling it once per sheet is fine.
func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	numFmt := amountFormat

	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    border(),
	}); err != nil {
		return s, err
	}
	if s.body, err = f.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	}); err != nil {
		return s, err
	}
	if s.amount, err = f.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		CustomNumFmt: &numFmt,
	}); err != nil {
		return s, err
	}
	if s.total, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: border(),
	}); err != nil {
		return s, err
	}
	return s, nil
}

// autofit sizes every used column of sheet from its longest rendered
// value.
func autofit(f *excelize.File, sheet string) error {
	cols, err := f.GetCols(sheet)
	if err != nil {
		return err
	}
	for i, col := range cols {
		longest := 0
		for _, v := range col {
			if n := utf8.RuneCountInString(v); n > longest {
				longest = n
			}
		}
		if longest == 0 {
			continue
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, columnWidth(longest)); err != nil {
			return err
		}
	}
	return nil
}

func columnWidth(chars int) float64 {
	w := float64(chars+2) * 1.08
	if w > maxColumnWidth {
		return maxColumnWidth
	}
	return w
}
