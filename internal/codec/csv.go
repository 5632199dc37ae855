package codec

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/harborstat/bunnytab/tabular"
)

func init() {
	Register(csvCodec{}, "csv")
}

// csvCodec writes the header row followed by data rows.
type csvCodec struct{}

func (csvCodec) Name() string { return "csv" }

func (c csvCodec) Encode(w io.Writer, t *tabular.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return &EncodeError{Format: c.Name(), Err: err}
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return &EncodeError{Format: c.Name(), Err: err}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &EncodeError{Format: c.Name(), Err: err}
	}
	return nil
}

func (c csvCodec) Decode(src Source) (*tabular.Table, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &DecodeError{Format: c.Name(), Err: fmt.Errorf("empty file")}
	}
	if err != nil {
		return nil, &DecodeError{Format: c.Name(), Err: err}
	}

	t := tabular.New(header...)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DecodeError{Format: c.Name(), Err: err}
		}
		t.Rows = append(t.Rows, padRow(row, len(header)))
	}
	return t, nil
}

// padRow right-pads short rows with empty cells so the table is rectangular.
func padRow(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row[:n]
}
