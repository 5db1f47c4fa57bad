package stream

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/streamql/streamql/errkind"
	"github.com/streamql/streamql/expr"
	"github.com/streamql/streamql/planner"
	"github.com/streamql/streamql/stream/aggregate"
	"github.com/streamql/streamql/stream/checkpoint"
)

// DataStream assembles a bound Plan's operators around a caller-supplied
// source and drives the checkpoint protocol: a barrier is injected into the
// source on every CheckpointInterval tick, propagates downstream through
// every operator, and once every stateful node has contributed its state the
// assembled blob is handed to the save callback.
type DataStream struct {
	cancel   context.CancelFunc
	group    *errgroup.Group
	barriers chan *checkpoint.Barrier
	coord    *checkpoint.Coordinator

	consumer EventStream

	nodeCount   int
	sourceCount int
}

// NewDataStream builds and starts a DataStream for plan, reading from src.
// loadFn is consulted once, at construction, to restore prior state; a nil
// loadFn (or one returning an empty blob) is a cold start. saveFn may be nil,
// in which case completed checkpoints are discarded.
func NewDataStream(parent context.Context, cfg Config, plan *planner.Plan, src SourceOperator, loadFn checkpoint.LoadStateFunc, saveFn checkpoint.SaveStateFunc, log *logrus.Entry) (*DataStream, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var prevState map[uint32][]byte
	if loadFn != nil {
		blob, err := loadFn()
		if err != nil {
			return nil, errkind.StateError.New(err.Error())
		}
		decoded, err := checkpoint.DecodeBlob(blob)
		if err != nil {
			return nil, err
		}
		prevState = decoded
	}
	sctx := NewCreateStreamContext(prevState)

	runCtx, cancel := context.WithCancel(parent)
	barriers := make(chan *checkpoint.Barrier, 1)

	upstream, _, err := RunSource(runCtx, sctx, barriers, src)
	if err != nil {
		cancel()
		return nil, err
	}

	// nodeCount only counts stateful interior operators (the aggregate,
	// if present): the source contributes to pendingSources instead, via
	// DecrementSources, not DecrementNodes.
	nodeCount := 0
	sourceCount := 1
	var s EventStream = upstream

	if plan.Where != nil {
		s = Filter(runCtx, s, plan.Where)
	}

	if plan.Aggregating {
		if plan.Window == nil {
			cancel()
			return nil, errkind.TypeError.New("aggregating plan has no window")
		}
		aggSchema, _, err := AggregateSchema(plan.Fields)
		if err != nil {
			cancel()
			return nil, err
		}
		mgr := aggregate.NewManager(aggSchema, plan.GroupBy, outExprsOf(plan.Fields), *plan.Window, src.TimeIdx())
		ag, _, err := RunAggregate(runCtx, sctx, s, mgr)
		if err != nil {
			cancel()
			return nil, err
		}
		s = ag
		nodeCount++

		if plan.Having != nil {
			s = Filter(runCtx, s, plan.Having)
		}
	} else {
		outSchema, outTimeIdx, err := ProjectSchema(plan.Fields, src.Schema().Field(src.TimeIdx()))
		if err != nil {
			cancel()
			return nil, err
		}
		s = Project(runCtx, s, plan.Fields, src.TimeIdx(), outSchema, outTimeIdx)
	}

	g, gctx := errgroup.WithContext(runCtx)
	ds := &DataStream{
		cancel:      cancel,
		group:       g,
		barriers:    barriers,
		coord:       checkpoint.NewCoordinator(saveFn, log),
		consumer:    s,
		nodeCount:   nodeCount,
		sourceCount: sourceCount,
	}
	g.Go(func() error { return ds.runTicker(gctx, cfg.CheckpointInterval) })
	return ds, nil
}

// outExprsOf extracts the bound expression of every projection field, in
// order, for use as the aggregate Manager's per-group output template: a
// plain grouped column and an aggregate call are both just a PhysicalExpr
// evaluated against the group's row subset.
func outExprsOf(fields []planner.ProjectionField) []expr.PhysicalExpr {
	out := make([]expr.PhysicalExpr, len(fields))
	for i, f := range fields {
		out[i] = f.Expr
	}
	return out
}

// runTicker injects a non-exit barrier every interval, persisting it once it
// completes. Under back-pressure (the source hasn't drained the previous
// barrier yet) a tick is simply dropped; the next tick tries again.
func (ds *DataStream) runTicker(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			b := checkpoint.NewBarrier(ds.nodeCount, ds.sourceCount, false)
			select {
			case ds.barriers <- b:
				go ds.awaitAndPersist(ctx, b)
			default:
			}
		}
	}
}

func (ds *DataStream) awaitAndPersist(ctx context.Context, b *checkpoint.Barrier) {
	if err := b.Wait(ctx); err != nil {
		return
	}
	ds.coord.Persist(b)
}

// Events returns the pipeline's terminal event stream. The caller must
// range over it to drive the pipeline: every edge is a one-slot buffered
// channel, so an operator blocks once its downstream neighbor stops
// receiving.
func (ds *DataStream) Events() EventStream {
	return ds.consumer
}

// Shutdown sends an exit barrier through the pipeline, waits for every node
// to acknowledge it, persists the final state, and cancels the pipeline's
// context. The caller should keep draining Events until it closes.
func (ds *DataStream) Shutdown(ctx context.Context) error {
	b := checkpoint.NewBarrier(ds.nodeCount, ds.sourceCount, true)
	select {
	case ds.barriers <- b:
	case <-ctx.Done():
		ds.cancel()
		return ctx.Err()
	}
	if err := b.Wait(ctx); err != nil {
		ds.cancel()
		return err
	}
	ds.coord.Persist(b)
	ds.cancel()
	return nil
}

// Err blocks until the ticker goroutine has exited (which only happens once
// the pipeline's context is cancelled, typically via Shutdown) and returns
// its error, or nil on a clean ctx.Cancel-driven shutdown.
func (ds *DataStream) Err() error {
	if err := ds.group.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
