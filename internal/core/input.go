package core

// Action represents a semantic game action, abstracted from physical key
// presses. The platform maps keys and mouse events to actions; the game
// consumes intents without knowing the input source.
type Action int

const (
	ActionNone    Action = iota
	ActionUp             // W, Up arrow - move up
	ActionDown           // S, Down arrow - move down
	ActionLeft           // A, Left arrow - move left
	ActionRight          // D, Right arrow - move right
	ActionFire           // Mouse click, Space - fire a projectile toward the aim point
	ActionRestore        // Injected by the platform when a confirmed purchase restores resource
	ActionConfirm        // Enter - confirm selection
	ActionBack           // Esc - go back
	ActionRestart        // R key - restart after game over
	ActionQuit           // Q, Ctrl+C - exit
	ActionPause          // P - pause/unpause
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionFire:
		return "Fire"
	case ActionRestore:
		return "Restore"
	case ActionConfirm:
		return "Confirm"
	case ActionBack:
		return "Back"
	case ActionRestart:
		return "Restart"
	case ActionQuit:
		return "Quit"
	case ActionPause:
		return "Pause"
	default:
		return "Unknown"
	}
}

// InputFrame represents the input state for a single simulation tick.
// Besides the action set it carries the pointer position in world
// coordinates, which the game uses for aiming.
type InputFrame struct {
	// Actions maps action types to whether they were triggered this frame.
	Actions map[Action]bool

	// order records actions in arrival order. Movement is resolved per
	// axis: when opposing commands land in the same frame, the
	// last-applied one wins. No diagonal normalization.
	order []Action

	// AimX, AimY is the pointer position in world coordinates.
	// Valid only when HasAim is true.
	AimX, AimY float64
	HasAim     bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
	f.order = append(f.order, a)
}

// SetAim records the pointer position for this frame.
func (f *InputFrame) SetAim(x, y float64) {
	f.AimX = x
	f.AimY = y
	f.HasAim = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// LastAxis resolves an axis pair to the command applied last this frame.
// Returns ActionNone when neither was triggered.
func (f InputFrame) LastAxis(neg, pos Action) Action {
	for i := len(f.order) - 1; i >= 0; i-- {
		if f.order[i] == neg || f.order[i] == pos {
			return f.order[i]
		}
	}
	return ActionNone
}

// Clear resets all actions for the next frame. The aim point is kept:
// the pointer stays where it is until the surface reports a new position.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
	f.order = f.order[:0]
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := NewInputFrame()
	for k, v := range f.Actions {
		clone.Actions[k] = v
	}
	clone.order = append(clone.order, f.order...)
	clone.AimX = f.AimX
	clone.AimY = f.AimY
	clone.HasAim = f.HasAim
	return clone
}
