package config

// DifficultyPreset represents a named difficulty level.
// Presets reshape the spawn scheduler, which is the sole source of
// difficulty progression in a session.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset maps a CLI string to a preset. Unknown values return the
// empty preset, which leaves the config untouched.
func ParsePreset(s string) DifficultyPreset {
	switch s {
	case "easy":
		return DifficultyEasy
	case "normal":
		return DifficultyNormal
	case "hard":
		return DifficultyHard
	case "fixed":
		return DifficultyFixed
	default:
		return ""
	}
}

// ApplyCastlePreset modifies the spawner config based on a difficulty
// preset. The delay floor and acceleration ceiling invariants hold for
// every preset.
func ApplyCastlePreset(cfg *CastleConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Spawner.InitialDelay = 130
		cfg.Spawner.FloorDelay = 30
		cfg.Spawner.AccelStep = 1
		cfg.Spawner.AccelMax = 10
	case DifficultyNormal:
		// Reference tuning, same as the defaults
	case DifficultyHard:
		cfg.Spawner.InitialDelay = 70
		cfg.Spawner.FloorDelay = 15
		cfg.Spawner.AccelStep = 3
		cfg.Spawner.AccelMax = 24
	case DifficultyFixed:
		// No progression: the delay never shrinks
		cfg.Spawner.AccelStep = 0
		cfg.Spawner.AccelMax = 0
	}
}
