package aggregate

import (
	"github.com/streamql/streamql/dataset"
	"github.com/streamql/streamql/expr"
	"github.com/streamql/streamql/internal/binstate"
	"github.com/streamql/streamql/internal/groupmap"
	"github.com/streamql/streamql/types"
)

// managerBlob is the wire form of one Manager's state, matching spec.md
// §6's aggregate node state shape: group_exprs_state, and one entry per
// open window with its groups.
type managerBlob struct {
	GroupExprsState [][]byte
	Windows         []windowBlob
}

type windowBlob struct {
	Start, End int64
	Groups     []groupBlob
}

type groupBlob struct {
	Key        []types.Scalar
	ExprStates [][]byte
	Values     []types.Scalar
}

// SaveState snapshots every open window's groups, plus the (normally
// empty) state of the group-by expression templates themselves.
func (m *Manager) SaveState() ([]byte, error) {
	blob := managerBlob{GroupExprsState: make([][]byte, len(m.GroupExprs))}
	for i, ge := range m.GroupExprs {
		s, err := ge.SaveState()
		if err != nil {
			return nil, err
		}
		blob.GroupExprsState[i] = s
	}

	for start, ws := range m.windows {
		wb := windowBlob{Start: start, End: ws.end}
		var saveErr error
		ws.children.Each(func(key dataset.GroupedKey, state *aggregateState) {
			if saveErr != nil {
				return
			}
			gb := groupBlob{Key: key.Values, Values: state.values, ExprStates: make([][]byte, len(state.exprs))}
			for i, e := range state.exprs {
				s, err := e.SaveState()
				if err != nil {
					saveErr = err
					return
				}
				gb.ExprStates[i] = s
			}
			wb.Groups = append(wb.Groups, gb)
		})
		if saveErr != nil {
			return nil, saveErr
		}
		blob.Windows = append(blob.Windows, wb)
	}

	return binstate.Encode(blob)
}

// LoadState restores open windows and their groups from a snapshot
// produced by SaveState. It is only ever called once, at construction,
// before any Process call.
func (m *Manager) LoadState(data []byte) error {
	var blob managerBlob
	if err := binstate.Decode(data, &blob); err != nil {
		return err
	}

	for i, s := range blob.GroupExprsState {
		if i >= len(m.GroupExprs) || len(s) == 0 {
			continue
		}
		if err := m.GroupExprs[i].LoadState(s); err != nil {
			return err
		}
	}

	m.windows = make(map[int64]*windowState, len(blob.Windows))
	for _, wb := range blob.Windows {
		ws := &windowState{start: wb.Start, end: wb.End, children: groupmap.New[*aggregateState]()}
		for _, gb := range wb.Groups {
			exprs := make([]expr.PhysicalExpr, len(m.OutExprs))
			for i, tmpl := range m.OutExprs {
				exprs[i] = tmpl.Clone()
				if i < len(gb.ExprStates) && len(gb.ExprStates[i]) > 0 {
					if err := exprs[i].LoadState(gb.ExprStates[i]); err != nil {
						return err
					}
				}
			}
			values := make([]types.Scalar, len(gb.Values))
			copy(values, gb.Values)
			ws.children.Set(dataset.NewGroupedKey(gb.Key), &aggregateState{exprs: exprs, values: values})
		}
		m.windows[wb.Start] = ws
	}
	return nil
}
