// Package stream wires the streaming operators (source, filter, project)
// around the aggregate core, and the DataStream pipeline that drives them
// with checkpoint barriers.
package stream

import (
	"github.com/streamql/streamql/dataset"
	"github.com/streamql/streamql/stream/checkpoint"
)

// Event is either a record batch or a checkpoint control event flowing
// along one pipeline edge.
type Event interface {
	isEvent()
}

// DataSetEvent carries one record batch plus the highest event-time the
// upstream has committed to. A nil Watermark means no watermark has been
// observed yet.
type DataSetEvent struct {
	Watermark *int64
	DataSet   *dataset.DataSet
}

func (*DataSetEvent) isEvent() {}

// CheckPointEvent is the control event carrying a checkpoint Barrier
// through the pipeline.
type CheckPointEvent struct {
	Barrier *checkpoint.Barrier
}

func (*CheckPointEvent) isEvent() {}

// Result is one element of an EventStream: either an Event or a terminal
// error. Once Err is non-nil the stream produces no further results.
type Result struct {
	Event Event
	Err   error
}

// EventStream is the channel form of an operator's lazy async sequence of
// events, the Go analogue of the original's boxed async Stream.
type EventStream <-chan Result
