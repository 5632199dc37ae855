package codec

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/harborstat/bunnytab/tabular"
)

func init() {
	Register(excelCodec{}, "xlsx", "xlsm", "xltx", "xltm")
}

// excelCodec stores the table on the workbook's first sheet, header row
// first, all cells as strings.
type excelCodec struct{}

func (excelCodec) Name() string { return "xlsx" }

func (c excelCodec) Encode(w io.Writer, t *tabular.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if err := c.setRow(f, sheet, 1, t.Columns); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := c.setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return &EncodeError{Format: c.Name(), Err: err}
	}
	return nil
}

func (c excelCodec) setRow(f *excelize.File, sheet string, rowIdx int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return &EncodeError{Format: c.Name(), Err: err}
	}
	vals := make([]interface{}, len(cells))
	for i, v := range cells {
		vals[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return &EncodeError{Format: c.Name(), Err: err}
	}
	return nil
}

func (c excelCodec) Decode(src Source) (*tabular.Table, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, &DecodeError{Format: c.Name(), Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DecodeError{Format: c.Name(), Err: fmt.Errorf("workbook has no sheets")}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &DecodeError{Format: c.Name(), Err: err}
	}
	if len(rows) == 0 {
		return nil, &DecodeError{Format: c.Name(), Err: fmt.Errorf("sheet %q is empty", sheets[0])}
	}

	t := tabular.New(rows[0]...)
	for _, row := range rows[1:] {
		// GetRows trims trailing empty cells.
		t.Rows = append(t.Rows, padRow(row, len(t.Columns)))
	}
	return t, nil
}
