package codec

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/harborstat/bunnytab/tabular"
)

// Shared Arrow plumbing for the Parquet and Feather codecs. Every
// column is encoded as a nullable UTF-8 field.

func arrowSchema(t *tabular.Table) *arrow.Schema {
	fields := make([]arrow.Field, len(t.Columns))
	for i, name := range t.Columns {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// recordFromTable builds a single record batch holding all rows.
// The caller owns the returned record and must Release it.
func recordFromTable(mem memory.Allocator, schema *arrow.Schema, t *tabular.Table) arrow.Record {
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for _, row := range t.Rows {
		for j := range t.Columns {
			b.Field(j).(*array.StringBuilder).Append(row[j])
		}
	}
	return b.NewRecord()
}

// tableFromColumns assembles a tabular.Table from per-column cell slices.
func tableFromColumns(columns []string, cols [][]string, numRows int) *tabular.Table {
	t := tabular.New(columns...)
	for i := 0; i < numRows; i++ {
		row := make([]string, len(columns))
		for j := range columns {
			row[j] = cols[j][i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// chunkValues flattens one arrow array into string cells. Nulls decode
// as empty strings.
func chunkValues(dst []string, arr arrow.Array) []string {
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			dst = append(dst, "")
			continue
		}
		dst = append(dst, arr.ValueStr(i))
	}
	return dst
}
