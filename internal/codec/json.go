package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/harborstat/bunnytab/tabular"
)

func init() {
	Register(jsonCodec{}, "json")
}

// jsonCodec uses a split-orient document so column order survives the
// round trip (JSON objects would not preserve it).
type jsonCodec struct{}

type jsonDoc struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func (jsonCodec) Name() string { return "json" }

func (c jsonCodec) Encode(w io.Writer, t *tabular.Table) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(jsonDoc{Columns: t.Columns, Rows: t.Rows}); err != nil {
		return &EncodeError{Format: c.Name(), Err: err}
	}
	return nil
}

func (c jsonCodec) Decode(src Source) (*tabular.Table, error) {
	var doc jsonDoc
	if err := json.NewDecoder(src).Decode(&doc); err != nil {
		return nil, &DecodeError{Format: c.Name(), Err: err}
	}
	if doc.Columns == nil {
		return nil, &DecodeError{Format: c.Name(), Err: fmt.Errorf("missing columns field")}
	}
	t := tabular.New(doc.Columns...)
	for _, row := range doc.Rows {
		t.Rows = append(t.Rows, padRow(row, len(doc.Columns)))
	}
	return t, nil
}
