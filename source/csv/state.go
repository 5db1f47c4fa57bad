package csv

import "github.com/streamql/streamql/internal/binstate"

type sourceBlob struct {
	Pos int
}

// SaveState snapshots the source's read position: the only state a replay
// source carries across a checkpoint.
func (s *Source) SaveState() ([]byte, error) {
	s.mu.Lock()
	pos := s.pos
	s.mu.Unlock()
	return binstate.Encode(sourceBlob{Pos: pos})
}

// LoadState restores the read position from a prior checkpoint.
func (s *Source) LoadState(data []byte) error {
	var blob sourceBlob
	if err := binstate.Decode(data, &blob); err != nil {
		return err
	}
	s.mu.Lock()
	s.pos = blob.Pos
	s.mu.Unlock()
	return nil
}
