package checkpoint

import (
	"github.com/sirupsen/logrus"

	"github.com/streamql/streamql/internal/binstate"
)

// Coordinator owns the user-supplied persistence callbacks and serializes a
// completed Barrier's collected states into the opaque blob format
// (map<node_id, bytes>) before handing it to SaveStateFunc.
type Coordinator struct {
	save SaveStateFunc
	log  *logrus.Entry
}

// NewCoordinator builds a Coordinator. saveFn may be nil, in which case
// completed checkpoints are discarded (useful for tests).
func NewCoordinator(saveFn SaveStateFunc, log *logrus.Entry) *Coordinator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Coordinator{save: saveFn, log: log}
}

// Persist encodes b's collected states and hands the blob to the save
// callback. Per spec.md §4.5/§7, a serialization or save failure is logged
// at Warn and swallowed: the pipeline keeps running and the next checkpoint
// attempt tries again.
func (c *Coordinator) Persist(b *Barrier) {
	blob, err := binstate.Encode(b.States())
	if err != nil {
		c.log.WithField("barrier_id", b.ID).WithError(err).Warn("checkpoint: failed to encode state blob")
		return
	}
	if c.save == nil {
		return
	}
	if err := c.save(blob); err != nil {
		c.log.WithField("barrier_id", b.ID).WithError(err).Warn("checkpoint: failed to persist state blob")
	}
}

// DecodeBlob deserializes a persisted blob back into its per-node state
// map, as loaded at DataStream construction via LoadStateFunc.
func DecodeBlob(blob []byte) (map[uint32][]byte, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	var states map[uint32][]byte
	if err := binstate.Decode(blob, &states); err != nil {
		return nil, err
	}
	return states, nil
}
