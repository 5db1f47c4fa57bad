package stream

import (
	"time"

	"github.com/streamql/streamql/errkind"
)

// Config is the YAML-deserializable configuration for one DataStream.
type Config struct {
	Name               string        `yaml:"name"`
	CheckpointInterval time.Duration `yaml:"checkpoint_interval"`
}

// Validate enforces the minimum checkpoint interval (1ms) spec.md §5
// requires at config validation time.
func (c Config) Validate() error {
	if c.CheckpointInterval < time.Millisecond {
		return errkind.ConfigError.New("checkpoint_interval must be >= 1ms, got " + c.CheckpointInterval.String())
	}
	return nil
}
