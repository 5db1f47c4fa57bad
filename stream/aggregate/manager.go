// Package aggregate implements the AggregateManager: window assignment,
// group-by within a window, per-group accumulation via cloned expression
// trees, and watermark-driven emission — the core of the streaming engine.
package aggregate

import (
	"sort"

	"github.com/streamql/streamql/dataset"
	"github.com/streamql/streamql/errkind"
	"github.com/streamql/streamql/expr"
	"github.com/streamql/streamql/internal/groupmap"
	"github.com/streamql/streamql/types"
)

// aggregateState is one group's running record: a clone of the manager's
// output expression template (so each group has its own accumulator
// state) plus the last value each expression produced.
type aggregateState struct {
	exprs  []expr.PhysicalExpr
	values []types.Scalar
}

// windowState holds one open window's children, keyed by GroupedKey.
type windowState struct {
	start, end int64
	children   *groupmap.Map[*aggregateState]
}

// Manager owns one windowed, grouped aggregation: it is constructed once
// per pipeline, optionally restored from a checkpoint, and driven by the
// aggregate operator's event loop.
type Manager struct {
	// Schema is the output schema: one field per OutExprs entry, in
	// order, plus a trailing Timestamp field whose value is the window
	// start.
	Schema     *types.Schema
	GroupExprs []expr.PhysicalExpr
	OutExprs   []expr.PhysicalExpr
	Window     dataset.Window
	TimeIdx    int

	windows map[int64]*windowState
	closed  map[int64]bool
}

// NewManager builds a Manager. groupExprs key rows into groups; outExprs
// are evaluated (cloned per group) to produce Schema's non-trailing
// fields, in order.
func NewManager(schema *types.Schema, groupExprs, outExprs []expr.PhysicalExpr, window dataset.Window, timeIdx int) *Manager {
	return &Manager{
		Schema:     schema,
		GroupExprs: groupExprs,
		OutExprs:   outExprs,
		Window:     window,
		TimeIdx:    timeIdx,
		windows:    make(map[int64]*windowState),
		closed:     make(map[int64]bool),
	}
}

// Process assigns every row of ds to its window(s), groups within each
// window, and folds the subset into each group's accumulator. Rows with a
// null time value are dropped.
func (m *Manager) Process(ds *dataset.DataSet) error {
	timeCol := ds.Column(m.TimeIdx)
	type span struct{ start, end int64 }
	buckets := make(map[span][]int)

	for i := 0; i < ds.NumRows(); i++ {
		tv := timeCol.ScalarValue(i)
		if tv.Null {
			continue
		}
		for _, s := range m.Window.AssignWindows(tv.Timestamp) {
			k := span{s.Start, s.End}
			buckets[k] = append(buckets[k], i)
		}
	}

	for k, rows := range buckets {
		// A row arriving for a window already drained by a prior
		// watermark is silently dropped: there is no reopening.
		if m.closed[k.start] {
			continue
		}
		sub, err := dataset.SelectRows(ds, rows)
		if err != nil {
			return err
		}
		if err := m.accumulate(k.start, k.end, sub); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) accumulate(start, end int64, sub *dataset.DataSet) error {
	ws, ok := m.windows[start]
	if !ok {
		ws = &windowState{start: start, end: end, children: groupmap.New[*aggregateState]()}
		m.windows[start] = ws
	}

	n := sub.NumRows()
	keyArrays := make([]types.Array, len(m.GroupExprs))
	for i, ge := range m.GroupExprs {
		arr, err := ge.Eval(sub)
		if err != nil {
			return errkind.EvalError.New(err.Error())
		}
		keyArrays[i] = arr
	}

	rowsByKey := make(map[string][]int)
	keyByHash := make(map[string]dataset.GroupedKey)
	for r := 0; r < n; r++ {
		vals := make([]types.Scalar, len(keyArrays))
		for i, arr := range keyArrays {
			vals[i] = arr.ScalarValue(r)
		}
		gk := dataset.NewGroupedKey(vals)
		sk := string(gk.Canonical())
		rowsByKey[sk] = append(rowsByKey[sk], r)
		keyByHash[sk] = gk
	}

	for sk, rows := range rowsByKey {
		gk := keyByHash[sk]
		groupSub, err := dataset.SelectRows(sub, rows)
		if err != nil {
			return err
		}
		state, found := ws.children.Get(gk)
		if !found {
			exprs := make([]expr.PhysicalExpr, len(m.OutExprs))
			values := make([]types.Scalar, len(m.OutExprs))
			for i, tmpl := range m.OutExprs {
				exprs[i] = tmpl.Clone()
				values[i] = types.NullScalar(exprs[i].DataType().Kind)
			}
			state = &aggregateState{exprs: exprs, values: values}
			ws.children.Set(gk, state)
		}
		for i, e := range state.exprs {
			arr, err := e.Eval(groupSub)
			if err != nil {
				return errkind.EvalError.New(err.Error())
			}
			if arr.Len() == 0 {
				continue
			}
			state.values[i] = arr.ScalarValue(arr.Len() - 1)
		}
	}
	return nil
}

// Emit drains every window whose end_time is strictly less than watermark,
// in ascending start order, and builds one output DataSet containing all
// their groups. It returns a nil dataset if nothing is yet eligible.
func (m *Manager) Emit(watermark int64) (*dataset.DataSet, error) {
	var starts []int64
	for s, ws := range m.windows {
		if ws != nil && watermark > ws.end {
			starts = append(starts, s)
		}
	}
	if len(starts) == 0 {
		return nil, nil
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	nOut := m.Schema.Len()
	timeIdx := nOut - 1
	builders := make([]any, nOut)
	for i := 0; i < nOut; i++ {
		builders[i] = newBuilderFor(m.Schema.Field(i).DataType)
	}

	for _, s := range starts {
		ws := m.windows[s]
		ws.children.Each(func(_ dataset.GroupedKey, state *aggregateState) {
			for i := 0; i < timeIdx; i++ {
				v := state.values[i]
				if !v.Null && v.Kind != m.Schema.Field(i).DataType.Kind {
					v = types.NullScalar(m.Schema.Field(i).DataType.Kind)
				}
				appendScalarTo(builders[i], v)
			}
			appendScalarTo(builders[timeIdx], types.TimestampScalar(ws.start))
		})
		// Closed: removed from the map and marked so a later, later
		// arriving row for the same start is dropped rather than
		// reopening it.
		delete(m.windows, s)
		m.closed[s] = true
	}

	cols := make([]types.Array, nOut)
	for i, b := range builders {
		cols[i] = finishBuilderFrom(b)
	}
	return dataset.New(m.Schema, cols, timeIdx)
}
