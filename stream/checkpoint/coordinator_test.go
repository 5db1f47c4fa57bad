package checkpoint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedBarrier(t *testing.T) *Barrier {
	t.Helper()
	b := NewBarrier(1, 1, false)
	b.SetState(0, []byte("source-state"))
	b.DecrementSources()
	b.SetState(1, []byte("node-state"))
	b.DecrementNodes()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, b.Wait(ctx))
	return b
}

func TestCoordinatorPersistEncodesCollectedStates(t *testing.T) {
	var saved []byte
	coord := NewCoordinator(func(blob []byte) error {
		saved = blob
		return nil
	}, nil)

	coord.Persist(completedBarrier(t))
	require.NotEmpty(t, saved)

	states, err := DecodeBlob(saved)
	require.NoError(t, err)
	assert.Equal(t, []byte("source-state"), states[0])
	assert.Equal(t, []byte("node-state"), states[1])
}

func TestCoordinatorPersistWithNilSaveFnDoesNotPanic(t *testing.T) {
	coord := NewCoordinator(nil, nil)
	coord.Persist(completedBarrier(t))
}

func TestCoordinatorPersistSwallowsSaveError(t *testing.T) {
	called := false
	coord := NewCoordinator(func(blob []byte) error {
		called = true
		return errors.New("disk full")
	}, nil)

	coord.Persist(completedBarrier(t))
	assert.True(t, called)
}

func TestDecodeBlobEmptyIsColdStart(t *testing.T) {
	states, err := DecodeBlob(nil)
	require.NoError(t, err)
	assert.Nil(t, states)
}

func TestDecodeBlobRejectsTruncatedData(t *testing.T) {
	_, err := DecodeBlob([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
}
