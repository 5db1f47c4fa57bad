package stream

import (
	"context"

	"github.com/streamql/streamql/dataset"
	"github.com/streamql/streamql/errkind"
	"github.com/streamql/streamql/stream/checkpoint"
	"github.com/streamql/streamql/types"
)

// SourceOperator is the contract an external source (e.g. a CSV reader)
// implements to feed a DataStream. Next is expected to block until a batch
// is available, ctx is cancelled, or no more data will ever arrive; it
// returns a nil DataSet only on the latter. The emitted schema must match
// Schema, and every DataSet's event-time column, and the successive
// watermarks Next reports, must be non-decreasing.
type SourceOperator interface {
	Schema() *types.Schema
	TimeIdx() int
	Next(ctx context.Context) (ds *dataset.DataSet, watermark *int64, err error)
	SaveState() ([]byte, error)
	LoadState(data []byte) error
}

// RunSource drives src's event loop: it is the one stateful node every
// pipeline has, assigned id via sctx and restored from a prior checkpoint
// (if any) before the first call to Next.
func RunSource(ctx context.Context, sctx *CreateStreamContext, barriers <-chan *checkpoint.Barrier, src SourceOperator) (EventStream, uint32, error) {
	id := sctx.NextNodeID()
	if data, ok := sctx.TakeState(id); ok {
		if err := src.LoadState(data); err != nil {
			return nil, 0, errkind.StateError.New(err.Error())
		}
	}

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		// exhausted is set once Next reports no more data will ever
		// arrive; from then on the loop only waits on barriers/ctx
		// instead of busy-calling Next.
		exhausted := false
		handleBarrier := func(b *checkpoint.Barrier) bool {
			state, err := src.SaveState()
			if err != nil {
				send(ctx, out, Result{Err: errkind.StateError.New(err.Error())})
				return false
			}
			b.SetState(id, state)
			b.DecrementSources()
			if !send(ctx, out, Result{Event: &CheckPointEvent{Barrier: b}}) {
				return false
			}
			return !b.IsExit
		}

		for {
			if exhausted {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-barriers:
					if !ok || !handleBarrier(b) {
						return
					}
				}
				continue
			}

			select {
			case <-ctx.Done():
				return
			case b, ok := <-barriers:
				if !ok || !handleBarrier(b) {
					return
				}
			default:
				ds, wm, err := src.Next(ctx)
				if err != nil {
					send(ctx, out, Result{Err: errkind.IoError.New(err.Error())})
					return
				}
				if ds == nil {
					exhausted = true
					continue
				}
				if !send(ctx, out, Result{Event: &DataSetEvent{Watermark: wm, DataSet: ds}}) {
					return
				}
			}
		}
	}()
	return out, id, nil
}
