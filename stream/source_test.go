package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamql/streamql/dataset"
	"github.com/streamql/streamql/stream/checkpoint"
	"github.com/streamql/streamql/types"
)

// fakeSource is a minimal SourceOperator driven by a queue of canned Next
// results, for exercising RunSource in isolation.
type fakeSource struct {
	schema *types.Schema

	mu      sync.Mutex
	batches []*dataset.DataSet
	wms     []*int64
	pos     int

	nextErr   error
	nextCalls int
	saveCalls int
	savedPos  int
	loadedPos int
}

func (s *fakeSource) Schema() *types.Schema { return s.schema }
func (s *fakeSource) TimeIdx() int          { return 0 }

func (s *fakeSource) Next(ctx context.Context) (*dataset.DataSet, *int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCalls++
	if s.nextErr != nil {
		return nil, nil, s.nextErr
	}
	if s.pos >= len(s.batches) {
		return nil, nil, nil
	}
	ds, wm := s.batches[s.pos], s.wms[s.pos]
	s.pos++
	return ds, wm, nil
}

func (s *fakeSource) SaveState() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	s.savedPos = s.pos
	return []byte("pos"), nil
}

func (s *fakeSource) LoadState(data []byte) error {
	s.loadedPos = 1
	return nil
}

func fakeDataSet(t *testing.T, n int64) *dataset.DataSet {
	t.Helper()
	schema, err := types.NewSchema([]types.Field{types.NewField("event_time", types.TimestampType(types.Millisecond))})
	require.NoError(t, err)
	b := types.NewTimestampBuilder(types.Millisecond)
	b.Append(n)
	ds, err := dataset.New(schema, []types.Array{b.Finish()}, 0)
	require.NoError(t, err)
	return ds
}

func TestRunSourceEmitsBatchesThenStopsPolling(t *testing.T) {
	schema, err := types.NewSchema([]types.Field{types.NewField("event_time", types.TimestampType(types.Millisecond))})
	require.NoError(t, err)

	wm1, wm2 := int64(10), int64(20)
	src := &fakeSource{
		schema:  schema,
		batches: []*dataset.DataSet{fakeDataSet(t, 10), fakeDataSet(t, 20)},
		wms:     []*int64{&wm1, &wm2},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	barriers := make(chan *checkpoint.Barrier, 1)
	sctx := NewCreateStreamContext(nil)

	out, id, err := RunSource(ctx, sctx, barriers, src)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), id)

	res := <-out
	require.NoError(t, res.Err)
	assert.Equal(t, int64(10), *res.Event.(*DataSetEvent).Watermark)

	res = <-out
	require.NoError(t, res.Err)
	assert.Equal(t, int64(20), *res.Event.(*DataSetEvent).Watermark)

	// Once exhausted (the third Next call returns no batch), the source
	// must stop calling Next and simply wait; a barrier must still be
	// handled.
	time.Sleep(20 * time.Millisecond)
	src.mu.Lock()
	callsBeforeBarrier := src.nextCalls
	src.mu.Unlock()
	assert.Equal(t, 3, callsBeforeBarrier)

	b := checkpoint.NewBarrier(0, 1, true)
	barriers <- b
	res = <-out
	require.NoError(t, res.Err)
	cpe, ok := res.Event.(*CheckPointEvent)
	require.True(t, ok)
	assert.True(t, cpe.Barrier.IsExit)

	ctxWait, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	require.NoError(t, b.Wait(ctxWait))

	_, ok = <-out
	assert.False(t, ok, "RunSource must close its output after the exit barrier")
}

func TestRunSourcePropagatesNextError(t *testing.T) {
	schema, err := types.NewSchema([]types.Field{types.NewField("event_time", types.TimestampType(types.Millisecond))})
	require.NoError(t, err)
	src := &fakeSource{schema: schema, nextErr: errors.New("disk error")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	barriers := make(chan *checkpoint.Barrier, 1)
	sctx := NewCreateStreamContext(nil)

	out, _, err := RunSource(ctx, sctx, barriers, src)
	require.NoError(t, err)

	res := <-out
	require.Error(t, res.Err)
}

func TestRunSourceRestoresStateFromContext(t *testing.T) {
	schema, err := types.NewSchema([]types.Field{types.NewField("event_time", types.TimestampType(types.Millisecond))})
	require.NoError(t, err)
	src := &fakeSource{schema: schema}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	barriers := make(chan *checkpoint.Barrier, 1)
	sctx := NewCreateStreamContext(map[uint32][]byte{0: []byte("prior")})

	_, _, err = RunSource(ctx, sctx, barriers, src)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, src.loadedPos)
}
