package core

// RuntimeConfig contains configuration passed to games at initialization.
// Games use this to adapt to screen size and for deterministic simulation.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second (default 60)
	Seed     int64 // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// Outcome is the terminal result of a session.
type Outcome int

const (
	OutcomeNone Outcome = iota // Session still running
	OutcomeWin                 // Timer expired with resource remaining
	OutcomeLoss                // Resource exhausted
)

// String returns a human-readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	default:
		return "none"
	}
}

// GameState represents the current state of a session.
// Returned by Game.State() to communicate status to the platform.
type GameState struct {
	Score     int     // Current score
	Resource  int     // Player resource (health) level
	TimeLeft  int64   // Remaining session time in milliseconds
	Outcome   Outcome // Terminal outcome, OutcomeNone while running
	Augmented bool    // Whether a paid resource restore happened this session
	GameOver  bool    // Whether the session has reached a terminal state
	Paused    bool    // Whether the game is paused
}

// Event is a one-shot signal emitted by a simulation tick.
// Events cross the tick boundary exactly once; the platform reacts to
// them outside the simulation loop.
type Event interface {
	gameEvent()
}

// GameOverEvent is emitted on the tick that reaches a terminal state.
// It carries everything the platform needs to settle the session.
type GameOverEvent struct {
	Score     int
	Outcome   Outcome
	Resource  int
	Augmented bool
	ElapsedMs int64
}

func (GameOverEvent) gameEvent() {}

// KillEvent is emitted for every projectile-hostile kill.
type KillEvent struct {
	Score int // Score after the kill
}

func (KillEvent) gameEvent() {}

// BreachEvent is emitted when a hostile crosses the defended boundary.
type BreachEvent struct {
	Damage   int
	Resource int // Resource after the damage was applied
}

func (BreachEvent) gameEvent() {}

// StepResult is returned by Game.Step() after each simulation tick.
// Contains the updated game state and any events that occurred.
type StepResult struct {
	State  GameState
	Events []Event
}
