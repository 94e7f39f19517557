package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the runtime knobs that do not affect terrain determinism.
// Invalid values are a configuration error and fatal at startup.
type Tuning struct {
	TickRateHz int `yaml:"tick_rate_hz"`

	StreamRadiusChunks int `yaml:"stream_radius_chunks"`
	StreamBatchPerTick int `yaml:"stream_batch_per_tick"`

	LoadRadiusChunks int `yaml:"load_radius_chunks"`
	EvictEveryTicks  int `yaml:"evict_every_ticks"`

	StoreShards int `yaml:"store_shards"`
}

func Defaults() Tuning {
	return Tuning{
		TickRateHz:         5,
		StreamRadiusChunks: 6,
		StreamBatchPerTick: 4,
		LoadRadiusChunks:   10,
		EvictEveryTicks:    50,
		StoreShards:        32,
	}
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tuning: tick_rate_hz must be positive, got %d", t.TickRateHz)
	}
	if t.StreamRadiusChunks <= 0 {
		return fmt.Errorf("tuning: stream_radius_chunks must be positive, got %d", t.StreamRadiusChunks)
	}
	if t.StreamBatchPerTick <= 0 {
		return fmt.Errorf("tuning: stream_batch_per_tick must be positive, got %d", t.StreamBatchPerTick)
	}
	if t.LoadRadiusChunks < t.StreamRadiusChunks {
		return fmt.Errorf("tuning: load_radius_chunks %d below stream radius %d", t.LoadRadiusChunks, t.StreamRadiusChunks)
	}
	if t.EvictEveryTicks <= 0 {
		return fmt.Errorf("tuning: evict_every_ticks must be positive, got %d", t.EvictEveryTicks)
	}
	if t.StoreShards <= 0 {
		return fmt.Errorf("tuning: store_shards must be positive, got %d", t.StoreShards)
	}
	return nil
}
