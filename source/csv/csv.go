// Package csv is an illustrative external source: it reads an entire CSV
// input, infers a schema per column the way the original engine's
// csv_reader did, and replays the rows as a sequence of batched DataSets.
// It sits outside the engine core (spec.md §6 treats CSV ingestion as an
// external collaborator) but is grounded directly in the original's
// inference algorithm.
package csv

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/streamql/streamql/dataset"
	"github.com/streamql/streamql/errkind"
	"github.com/streamql/streamql/types"
)

// Options configures how the input is tokenized.
type Options struct {
	Delimiter byte
	HasHeader bool
}

// DefaultOptions matches the original's CsvOptions::default.
func DefaultOptions() Options {
	return Options{Delimiter: ',', HasHeader: false}
}

var (
	decimalRe = regexp.MustCompile(`^-?(\d+\.\d+)$`)
	integerRe = regexp.MustCompile(`^-?(\d+)$`)
	booleanRe = regexp.MustCompile(`(?i)^(true)$|^(false)$`)
)

// inferFieldType classifies one observed cell, mirroring
// infer_field_schema: a leading quote forces String (Go's encoding/csv
// already strips well-formed quoting, so this mostly guards malformed
// input), then boolean, then decimal, then integer, else String.
func inferFieldType(s string) types.Kind {
	if strings.HasPrefix(s, `"`) {
		return types.String
	}
	switch {
	case booleanRe.MatchString(s):
		return types.Boolean
	case decimalRe.MatchString(s):
		return types.Float64
	case integerRe.MatchString(s):
		return types.Int64
	default:
		return types.String
	}
}

// InferSchema scans every record once, collecting the set of kinds
// observed per column, and resolves each column exactly per
// csv_reader.rs: a single observed kind wins outright; {Int64, Float64}
// widens to Float64; anything else (no rows, any other pair of kinds, or
// more than two distinct kinds) falls back to String.
func InferSchema(header []string, records [][]string) (*types.Schema, error) {
	seen := make([]map[types.Kind]bool, len(header))
	for i := range seen {
		seen[i] = make(map[types.Kind]bool)
	}
	for _, rec := range records {
		for i := range header {
			if i >= len(rec) {
				continue
			}
			seen[i][inferFieldType(rec[i])] = true
		}
	}

	fields := make([]types.Field, len(header))
	for i, name := range header {
		kinds := seen[i]
		switch len(kinds) {
		case 1:
			for k := range kinds {
				fields[i] = types.NewField(name, types.DataType{Kind: k})
			}
		case 2:
			if kinds[types.Int64] && kinds[types.Float64] {
				fields[i] = types.NewField(name, types.Float64Type)
			} else {
				fields[i] = types.NewField(name, types.StringType)
			}
		default:
			fields[i] = types.NewField(name, types.StringType)
		}
	}
	return types.NewSchema(fields)
}

// Source is a batch SourceOperator over an in-memory CSV record set. It
// implements stream.SourceOperator without importing the stream package,
// the same way the original's CsvReader is independent of the engine's
// operator wiring.
type Source struct {
	schema  *types.Schema
	timeIdx int
	records [][]string

	batchSize int

	mu  sync.Mutex
	pos int
}

// New reads every record from r, infers (or validates) a schema, and
// designates timeColumn as the dataset's event-time column. Since the
// inference algorithm has no Timestamp kind, timeColumn must infer as
// Int64 (epoch milliseconds); the source widens that one field to
// Timestamp(Millisecond) for the DataSets it builds. batchSize <= 0
// defaults to 1024 rows per batch.
func New(r io.Reader, opts Options, timeColumn string, batchSize int) (*Source, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.Comma = rune(opts.Delimiter)
	cr.FieldsPerRecord = -1
	all, err := cr.ReadAll()
	if err != nil {
		return nil, errkind.IoError.New(err.Error())
	}
	if len(all) == 0 {
		return nil, errkind.IoError.New("empty csv input")
	}

	var header []string
	records := all
	if opts.HasHeader {
		header = all[0]
		records = all[1:]
	} else {
		header = make([]string, len(all[0]))
		for i := range header {
			header[i] = fmt.Sprintf("c%d", i+1)
		}
	}

	inferred, err := InferSchema(header, records)
	if err != nil {
		return nil, err
	}

	timeIdx := inferred.IndexOf(timeColumn)
	if timeIdx < 0 {
		return nil, errkind.IoError.New(fmt.Sprintf("time column %q not found", timeColumn))
	}
	if inferred.Field(timeIdx).DataType.Kind != types.Int64 {
		return nil, errkind.IoError.New(fmt.Sprintf("time column %q must infer as Int64 (epoch milliseconds), got %s", timeColumn, inferred.Field(timeIdx).DataType))
	}

	fields := make([]types.Field, inferred.Len())
	for i := 0; i < inferred.Len(); i++ {
		if i == timeIdx {
			fields[i] = types.NewField(inferred.Field(i).Name, types.TimestampType(types.Millisecond))
			continue
		}
		fields[i] = inferred.Field(i)
	}
	schema, err := types.NewSchema(fields)
	if err != nil {
		return nil, err
	}

	if batchSize <= 0 {
		batchSize = 1024
	}

	return &Source{schema: schema, timeIdx: timeIdx, records: records, batchSize: batchSize}, nil
}

func (s *Source) Schema() *types.Schema { return s.schema }
func (s *Source) TimeIdx() int          { return s.timeIdx }

// Next returns the next batch as a DataSet, or a nil DataSet once every
// record has been emitted. The reported watermark is the batch's last
// row's event time, since the source contract requires a non-decreasing
// time column and this source never revisits an earlier position.
func (s *Source) Next(ctx context.Context) (*dataset.DataSet, *int64, error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.records) {
		return nil, nil, nil
	}
	end := s.pos + s.batchSize
	if end > len(s.records) {
		end = len(s.records)
	}
	batch := s.records[s.pos:end]
	s.pos = end

	cols, err := s.buildColumns(batch)
	if err != nil {
		return nil, nil, err
	}
	ds, err := dataset.New(s.schema, cols, s.timeIdx)
	if err != nil {
		return nil, nil, err
	}
	wm := ds.EventTime(ds.NumRows() - 1)
	return ds, &wm, nil
}

func (s *Source) buildColumns(batch [][]string) ([]types.Array, error) {
	n := s.schema.Len()
	builders := make([]any, n)
	for i := 0; i < n; i++ {
		builders[i] = types.NewBuilder(s.schema.Field(i).DataType)
	}
	for _, rec := range batch {
		for i := 0; i < n; i++ {
			if i >= len(rec) {
				appendNull(builders[i])
				continue
			}
			if err := appendCell(builders[i], s.schema.Field(i).DataType, rec[i]); err != nil {
				return nil, err
			}
		}
	}
	cols := make([]types.Array, n)
	for i, b := range builders {
		cols[i] = finishBuilder(b)
	}
	return cols, nil
}

// appendNull mirrors csv_reader.rs's record.get(i) -> None path: a row
// shorter than the schema gets a null cell rather than a parse failure.
func appendNull(b any) {
	switch bb := b.(type) {
	case *types.IntBuilder:
		bb.AppendNull()
	case *types.FloatBuilder:
		bb.AppendNull()
	case *types.BooleanBuilder:
		bb.AppendNull()
	case *types.TimestampBuilder:
		bb.AppendNull()
	case *types.StringBuilder:
		bb.AppendNull()
	case *types.NullBuilder:
		bb.AppendNull()
	}
}

func appendCell(b any, dt types.DataType, cell string) error {
	switch bb := b.(type) {
	case *types.IntBuilder:
		v, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return errkind.IoError.New(fmt.Sprintf("parsing %q as %s: %s", cell, dt, err))
		}
		bb.Append(v)
	case *types.FloatBuilder:
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return errkind.IoError.New(fmt.Sprintf("parsing %q as %s: %s", cell, dt, err))
		}
		bb.Append(v)
	case *types.BooleanBuilder:
		bb.Append(strings.EqualFold(cell, "true"))
	case *types.TimestampBuilder:
		v, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return errkind.IoError.New(fmt.Sprintf("parsing %q as %s: %s", cell, dt, err))
		}
		bb.Append(v)
	case *types.StringBuilder:
		bb.Append(cell)
	case *types.NullBuilder:
		bb.AppendNull()
	}
	return nil
}

// finishBuilder mirrors the dispatch dataset/select.go and
// stream/aggregate/builder.go perform; duplicated here since this
// package has no import path to either's unexported helpers.
func finishBuilder(b any) types.Array {
	switch bb := b.(type) {
	case *types.IntBuilder:
		return bb.Finish()
	case *types.FloatBuilder:
		return bb.Finish()
	case *types.BooleanBuilder:
		return bb.Finish()
	case *types.TimestampBuilder:
		return bb.Finish()
	case *types.StringBuilder:
		return bb.Finish()
	case *types.NullBuilder:
		return bb.Finish()
	default:
		return nil
	}
}
