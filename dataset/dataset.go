// Package dataset implements the columnar record batch (DataSet), the
// grouping key used by the aggregate operator, and the window assignment
// policies (Fixed, Sliding, Period).
package dataset

import (
	"fmt"

	"github.com/streamql/streamql/types"
)

// DataSet is an immutable record batch: a schema plus one Array per field,
// all sharing a single row count, and a dedicated time column that carries
// event time for downstream operators.
type DataSet struct {
	schema  *types.Schema
	columns []types.Array
	timeIdx int
}

// New builds a DataSet, checking that columns match schema in count and
// type and that every column has the same length.
func New(schema *types.Schema, columns []types.Array, timeIdx int) (*DataSet, error) {
	if len(columns) != schema.Len() {
		return nil, fmt.Errorf("dataset: %d columns for schema of %d fields", len(columns), schema.Len())
	}
	var numRows = -1
	for i, col := range columns {
		field := schema.Field(i)
		if !col.DataType().Equal(field.DataType) {
			return nil, fmt.Errorf("dataset: column %d has type %s, field %q declares %s", i, col.DataType(), field.Name, field.DataType)
		}
		if numRows == -1 {
			numRows = col.Len()
		} else if col.Len() != numRows {
			return nil, fmt.Errorf("dataset: column %d has %d rows, expected %d", i, col.Len(), numRows)
		}
	}
	if timeIdx < 0 || timeIdx >= schema.Len() {
		return nil, fmt.Errorf("dataset: time column index %d out of range", timeIdx)
	}
	if schema.Field(timeIdx).DataType.Kind != types.Timestamp {
		return nil, fmt.Errorf("dataset: time column %q is not a Timestamp", schema.Field(timeIdx).Name)
	}
	return &DataSet{schema: schema, columns: columns, timeIdx: timeIdx}, nil
}

func (d *DataSet) Schema() *types.Schema { return d.schema }

func (d *DataSet) Column(i int) types.Array { return d.columns[i] }

func (d *DataSet) NumRows() int {
	if len(d.columns) == 0 {
		return 0
	}
	return d.columns[0].Len()
}

// TimeIdx is the index of the dedicated event-time column.
func (d *DataSet) TimeIdx() int { return d.timeIdx }

// EventTime returns the event time of row i, read from the time column.
func (d *DataSet) EventTime(row int) int64 {
	ts := d.columns[d.timeIdx].(*types.TimestampArray)
	return ts.Value(row)
}
