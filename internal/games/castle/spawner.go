package castle

import "github.com/vovakirdan/castlechain/internal/config"

// Spawner is the spawn scheduler. It counts down in ticks; every time
// the countdown fires, one hostile is spawned and the inter-spawn delay
// shrinks by twice the acceleration accumulator, clamped to a floor.
// The accumulator itself grows by a fixed step up to a ceiling, so the
// spawn rate intensifies monotonically but stays bounded.
type Spawner struct {
	countdown int
	delay     int
	floor     int
	accel     int
	accelStep int
	accelMax  int
}

// NewSpawner creates a spawner from config.
func NewSpawner(cfg config.SpawnerConfig) Spawner {
	return Spawner{
		countdown: cfg.InitialDelay,
		delay:     cfg.InitialDelay,
		floor:     cfg.FloorDelay,
		accelStep: cfg.AccelStep,
		accelMax:  cfg.AccelMax,
	}
}

// Tick advances the scheduler by one tick. Returns true when a hostile
// should spawn this tick.
func (s *Spawner) Tick() bool {
	s.countdown--
	if s.countdown > 0 {
		return false
	}

	s.delay -= 2 * s.accel
	if s.delay < s.floor {
		s.delay = s.floor
	}
	s.countdown = s.delay

	s.accel += s.accelStep
	if s.accel > s.accelMax {
		s.accel = s.accelMax
	}

	return true
}

// Delay returns the current inter-spawn delay in ticks.
func (s *Spawner) Delay() int {
	return s.delay
}

// Accel returns the current acceleration accumulator.
func (s *Spawner) Accel() int {
	return s.accel
}
