package checkpoint

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarrierCompletesOnceEveryNodeAndSourceContribute(t *testing.T) {
	b := NewBarrier(2, 1, false)

	select {
	case <-b.Done():
		t.Fatal("barrier reported done before any contribution")
	default:
	}

	b.SetState(1, []byte("node-1"))
	b.DecrementNodes()
	select {
	case <-b.Done():
		t.Fatal("barrier reported done before the second node contributed")
	default:
	}

	b.SetState(2, []byte("node-2"))
	b.DecrementNodes()
	select {
	case <-b.Done():
		t.Fatal("barrier reported done before the source contributed")
	default:
	}

	b.SetState(0, []byte("source"))
	b.DecrementSources()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, b.Wait(ctx))

	states := b.States()
	assert.Len(t, states, 3)
	assert.Equal(t, []byte("node-1"), states[1])
}

func TestBarrierWithZeroNodesCompletesImmediatelyOnceSourceContributes(t *testing.T) {
	b := NewBarrier(0, 1, false)
	b.DecrementSources()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, b.Wait(ctx))
}

func TestBarrierWaitTimesOutWhenIncomplete(t *testing.T) {
	b := NewBarrier(1, 1, false)
	b.DecrementSources()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := b.Wait(ctx)
	require.Error(t, err)
}

func TestBarrierIsSavedPreventsDoubleSave(t *testing.T) {
	b := NewBarrier(1, 1, false)
	assert.False(t, b.IsSaved(1))
	b.SetState(1, []byte("x"))
	assert.True(t, b.IsSaved(1))
}

func TestBarrierDoneIsIdempotentUnderConcurrentDecrements(t *testing.T) {
	b := NewBarrier(1, 2, true)
	done := make(chan struct{})
	go func() {
		b.DecrementSources()
		done <- struct{}{}
	}()
	go func() {
		b.DecrementSources()
		done <- struct{}{}
	}()
	<-done
	<-done
	b.DecrementNodes()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, b.Wait(ctx))
	assert.True(t, b.IsExit)
}
