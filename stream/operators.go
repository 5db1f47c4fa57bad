package stream

import (
	"context"

	"github.com/streamql/streamql/dataset"
	"github.com/streamql/streamql/errkind"
	"github.com/streamql/streamql/expr"
	"github.com/streamql/streamql/planner"
	"github.com/streamql/streamql/types"
)

// send delivers r downstream, returning false if ctx was cancelled first.
func send(ctx context.Context, out chan<- Result, r Result) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// Filter is a stateless operator: it evaluates pred over every incoming
// dataset and forwards only the selected rows, carrying the upstream
// watermark unchanged. Barriers pass through untouched.
func Filter(ctx context.Context, upstream EventStream, pred expr.PhysicalExpr) EventStream {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case res, ok := <-upstream:
				if !ok {
					return
				}
				if res.Err != nil {
					send(ctx, out, res)
					return
				}
				switch ev := res.Event.(type) {
				case *DataSetEvent:
					filtered, err := filterDataSet(ev.DataSet, pred)
					if err != nil {
						send(ctx, out, Result{Err: err})
						return
					}
					if !send(ctx, out, Result{Event: &DataSetEvent{Watermark: ev.Watermark, DataSet: filtered}}) {
						return
					}
				case *CheckPointEvent:
					if !send(ctx, out, res) {
						return
					}
					if ev.Barrier.IsExit {
						return
					}
				}
			}
		}
	}()
	return out
}

func filterDataSet(ds *dataset.DataSet, pred expr.PhysicalExpr) (*dataset.DataSet, error) {
	arr, err := pred.Eval(ds)
	if err != nil {
		return nil, errkind.EvalError.New(err.Error())
	}
	var rows []int
	for i := 0; i < arr.Len(); i++ {
		v := arr.ScalarValue(i)
		if !v.Null && v.Boolean {
			rows = append(rows, i)
		}
	}
	return dataset.SelectRows(ds, rows)
}

// ProjectSchema builds a non-aggregating projection's output schema: one
// field per projection field, plus a trailing hidden time column carrying
// the upstream time column verbatim, so the invariant that every DataSet
// carries a dedicated time column holds across Project too.
func ProjectSchema(fields []planner.ProjectionField, timeField types.Field) (schema *types.Schema, timeIdx int, err error) {
	outFields := make([]types.Field, 0, len(fields)+1)
	for _, f := range fields {
		outFields = append(outFields, types.NewField(f.Name, f.Expr.DataType()))
	}
	timeIdx = len(outFields)
	outFields = append(outFields, types.NewField("_event_time", timeField.DataType))
	schema, err = types.NewSchema(outFields)
	return schema, timeIdx, err
}

// AggregateSchema builds the aggregate operator's output schema: one field
// per projection field, plus a trailing Timestamp(Millisecond) column
// carrying each emitted row's window start, matching
// aggregate.Manager.Schema's documented layout.
func AggregateSchema(fields []planner.ProjectionField) (schema *types.Schema, timeIdx int, err error) {
	outFields := make([]types.Field, 0, len(fields)+1)
	for _, f := range fields {
		outFields = append(outFields, types.NewField(f.Name, f.Expr.DataType()))
	}
	timeIdx = len(outFields)
	outFields = append(outFields, types.NewField("_window_start", types.TimestampType(types.Millisecond)))
	schema, err = types.NewSchema(outFields)
	return schema, timeIdx, err
}

// Project is a stateless operator: it evaluates fields column-wise over
// every incoming dataset, producing a dataset against outSchema/outTimeIdx
// (as built by ProjectSchema). Barriers pass through untouched.
func Project(ctx context.Context, upstream EventStream, fields []planner.ProjectionField, inTimeIdx int, outSchema *types.Schema, outTimeIdx int) EventStream {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case res, ok := <-upstream:
				if !ok {
					return
				}
				if res.Err != nil {
					send(ctx, out, res)
					return
				}
				switch ev := res.Event.(type) {
				case *DataSetEvent:
					projected, err := projectDataSet(ev.DataSet, fields, inTimeIdx, outSchema, outTimeIdx)
					if err != nil {
						send(ctx, out, Result{Err: err})
						return
					}
					if !send(ctx, out, Result{Event: &DataSetEvent{Watermark: ev.Watermark, DataSet: projected}}) {
						return
					}
				case *CheckPointEvent:
					if !send(ctx, out, res) {
						return
					}
					if ev.Barrier.IsExit {
						return
					}
				}
			}
		}
	}()
	return out
}

func projectDataSet(ds *dataset.DataSet, fields []planner.ProjectionField, inTimeIdx int, outSchema *types.Schema, outTimeIdx int) (*dataset.DataSet, error) {
	cols := make([]types.Array, outSchema.Len())
	for i, f := range fields {
		arr, err := f.Expr.Eval(ds)
		if err != nil {
			return nil, errkind.EvalError.New(err.Error())
		}
		cols[i] = arr
	}
	cols[outTimeIdx] = ds.Column(inTimeIdx)
	return dataset.New(outSchema, cols, outTimeIdx)
}

// RunAggregate drives mgr's event loop: it is the stateful aggregate
// operator, assigned id via sctx and restored from a prior checkpoint
// (if any) before the first upstream event is read.
func RunAggregate(ctx context.Context, sctx *CreateStreamContext, upstream EventStream, mgr aggregateManager) (EventStream, uint32, error) {
	id := sctx.NextNodeID()
	if data, ok := sctx.TakeState(id); ok {
		if err := mgr.LoadState(data); err != nil {
			return nil, 0, errkind.StateError.New(err.Error())
		}
	}

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case res, ok := <-upstream:
				if !ok {
					return
				}
				if res.Err != nil {
					send(ctx, out, res)
					return
				}
				switch ev := res.Event.(type) {
				case *DataSetEvent:
					if err := mgr.Process(ev.DataSet); err != nil {
						send(ctx, out, Result{Err: errkind.EvalError.New(err.Error())})
						return
					}
					if ev.Watermark == nil {
						continue
					}
					emitted, err := mgr.Emit(*ev.Watermark)
					if err != nil {
						send(ctx, out, Result{Err: err})
						return
					}
					if emitted == nil {
						continue
					}
					if !send(ctx, out, Result{Event: &DataSetEvent{Watermark: ev.Watermark, DataSet: emitted}}) {
						return
					}
				case *CheckPointEvent:
					b := ev.Barrier
					if !b.IsSaved(id) {
						state, err := mgr.SaveState()
						if err != nil {
							send(ctx, out, Result{Err: errkind.StateError.New(err.Error())})
							return
						}
						b.SetState(id, state)
						b.DecrementNodes()
					}
					if !send(ctx, out, res) {
						return
					}
					if b.IsExit {
						return
					}
				}
			}
		}
	}()
	return out, id, nil
}

// aggregateManager is the subset of *aggregate.Manager RunAggregate
// drives; declared locally so RunAggregate depends only on the four
// methods it calls.
type aggregateManager interface {
	Process(ds *dataset.DataSet) error
	Emit(watermark int64) (*dataset.DataSet, error)
	SaveState() ([]byte, error)
	LoadState(data []byte) error
}
