// Package checkpoint implements the Chandy-Lamport-style barrier protocol
// that coordinates state snapshots across every stateful operator in a
// pipeline: a Barrier travels downstream from the sources, collecting one
// state blob per node, and a Coordinator hands the assembled blob to the
// caller's persistence callback once every node has contributed.
package checkpoint

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// LoadStateFunc loads the last persisted checkpoint blob, or returns a nil
// slice for a cold start.
type LoadStateFunc func() ([]byte, error)

// SaveStateFunc persists a completed checkpoint blob.
type SaveStateFunc func([]byte) error

// Barrier is one checkpoint attempt in flight: it carries a correlation id
// for log lines, the expected node/source counts, and the per-node state
// collected as the barrier propagates.
type Barrier struct {
	ID          uuid.UUID
	IsExit      bool
	NodeCount   int
	SourceCount int

	mu     sync.Mutex
	states map[uint32][]byte

	pendingSources atomic.Int64
	pendingNodes   atomic.Int64

	once sync.Once
	done chan struct{}
}

// NewBarrier builds a Barrier expecting nodeCount stateful nodes and
// sourceCount source operators to contribute before it is complete.
func NewBarrier(nodeCount, sourceCount int, isExit bool) *Barrier {
	b := &Barrier{
		ID:          uuid.New(),
		IsExit:      isExit,
		NodeCount:   nodeCount,
		SourceCount: sourceCount,
		states:      make(map[uint32][]byte, nodeCount),
		done:        make(chan struct{}),
	}
	b.pendingSources.Store(int64(sourceCount))
	b.pendingNodes.Store(int64(nodeCount))
	b.checkDone()
	return b
}

// IsSaved reports whether node id has already contributed its state,
// letting an operator that sees the same barrier twice skip re-saving.
func (b *Barrier) IsSaved(id uint32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.states[id]
	return ok
}

// SetState records id's state snapshot. Safe for concurrent use by
// multiple operators; each id is written at most once per barrier.
func (b *Barrier) SetState(id uint32, data []byte) {
	b.mu.Lock()
	b.states[id] = data
	b.mu.Unlock()
}

// States returns a copy of the collected per-node state map.
func (b *Barrier) States() map[uint32][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[uint32][]byte, len(b.states))
	for k, v := range b.states {
		out[k] = v
	}
	return out
}

// DecrementSources is called by a source operator once it has finished
// emitting its in-flight batch and forwarded the barrier.
func (b *Barrier) DecrementSources() {
	if b.pendingSources.Add(-1) <= 0 {
		b.checkDone()
	}
}

// DecrementNodes is called by a stateful interior operator after it has
// saved its state and forwarded the barrier.
func (b *Barrier) DecrementNodes() {
	if b.pendingNodes.Add(-1) <= 0 {
		b.checkDone()
	}
}

func (b *Barrier) checkDone() {
	if b.pendingSources.Load() <= 0 && b.pendingNodes.Load() <= 0 {
		b.once.Do(func() { close(b.done) })
	}
}

// Done returns a channel closed once every source and node has
// contributed.
func (b *Barrier) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until the barrier is complete or ctx is cancelled.
func (b *Barrier) Wait(ctx context.Context) error {
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
