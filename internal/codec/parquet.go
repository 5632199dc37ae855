package codec

import (
	"context"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/harborstat/bunnytab/tabular"
)

func init() {
	Register(parquetCodec{}, "parquet")
}

type parquetCodec struct{}

func (parquetCodec) Name() string { return "parquet" }

func (c parquetCodec) Encode(w io.Writer, t *tabular.Table) error {
	mem := memory.DefaultAllocator
	schema := arrowSchema(t)

	rec := recordFromTable(mem, schema, t)
	defer rec.Release()

	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	chunk := int64(len(t.Rows))
	if chunk == 0 {
		chunk = 1
	}
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	if err := pqarrow.WriteTable(tbl, w, chunk, props, pqarrow.DefaultWriterProps()); err != nil {
		return &EncodeError{Format: c.Name(), Err: err}
	}
	return nil
}

func (c parquetCodec) Decode(src Source) (*tabular.Table, error) {
	mem := memory.DefaultAllocator

	pf, err := file.NewParquetReader(src)
	if err != nil {
		return nil, &DecodeError{Format: c.Name(), Err: err}
	}
	defer func() { _ = pf.Close() }()

	rdr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, &DecodeError{Format: c.Name(), Err: err}
	}
	at, err := rdr.ReadTable(context.Background())
	if err != nil {
		return nil, &DecodeError{Format: c.Name(), Err: err}
	}
	defer at.Release()

	columns := make([]string, at.NumCols())
	cols := make([][]string, at.NumCols())
	for j := 0; j < int(at.NumCols()); j++ {
		columns[j] = at.Schema().Field(j).Name
		for _, chunk := range at.Column(j).Data().Chunks() {
			cols[j] = chunkValues(cols[j], chunk)
		}
	}
	return tableFromColumns(columns, cols, int(at.NumRows())), nil
}
