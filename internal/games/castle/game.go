// Package castle implements the timed castle defense simulation.
// The game logic is pure and deterministic: no chain access, no
// rendering dependencies, all randomness from the seeded RNG.
package castle

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/castlechain/internal/config"
	"github.com/vovakirdan/castlechain/internal/core"
	"github.com/vovakirdan/castlechain/internal/registry"
)

// Visual characters for rendering
const (
	PlayerChar     = '@'
	HostileChar    = '¤'
	ProjectileChar = '·'
	WallChar       = '█'
	HealthChar     = '▰'
	HealthGapChar  = '▱'
)

// configPath stores the custom config path set via CLI
var configPath string

// difficultyPreset stores the difficulty preset set via CLI
var difficultyPreset config.DifficultyPreset

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset.
func SetDifficultyPreset(preset string) {
	difficultyPreset = config.ParsePreset(preset)
}

// Session is one complete run of the timed simulation. Exactly one
// session is current at a time; a restart replaces it wholesale.
type Session struct {
	DurationMs int64
	Score      int // Non-decreasing, grows only by the kill reward
	Augmented  bool // Sticky: set once a paid resource restore lands
	Over       bool
	Outcome    core.Outcome
}

// Game implements the castle defense game logic.
type Game struct {
	// Entity collections, owned exclusively by the simulation
	player   *Player
	hostiles []*Hostile
	shots    []*Projectile

	session Session
	spawner Spawner

	tickCount int
	paused    bool

	// Configuration
	runtime core.RuntimeConfig
	cfg     config.CastleConfig
	rng     *rand.Rand

	minScreenW     int
	minScreenH     int
	screenTooSmall bool
}

// New creates a new castle defense game instance.
func New() *Game {
	return &Game{}
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return "castle"
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Castle Defense"
}

// Reset initializes or restarts the game with a fresh session:
// zeroed score and timer, full resource, and a new spawn scheduler.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime

	cfg, err := config.LoadCastle(configPath)
	if err != nil {
		cfg = config.DefaultCastleConfig()
	}
	if difficultyPreset != "" {
		config.ApplyCastlePreset(&cfg, difficultyPreset)
	}
	g.cfg = cfg

	g.minScreenW = 40
	g.minScreenH = 15
	g.screenTooSmall = runtime.ScreenW < g.minScreenW || runtime.ScreenH < g.minScreenH

	g.rng = rand.New(rand.NewSource(runtime.Seed))

	g.session = Session{DurationMs: cfg.Session.DurationMs}
	g.spawner = NewSpawner(cfg.Spawner)
	g.tickCount = 0
	g.paused = false

	g.player = &Player{
		Pos:      core.Vec2{X: cfg.Player.StartX, Y: cfg.Player.StartY},
		Resource: cfg.Player.MaxResource,
		Alive:    true,
	}
	g.hostiles = g.hostiles[:0]
	g.shots = g.shots[:0]

	// One hostile is on the field from the first tick
	g.spawnHostile()
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	// Confirmed purchases arrive between ticks as a restore action and
	// are delivered exactly once, so they apply before any short-circuit:
	// a refill paid for must land even when this tick is paused. Full
	// refill, and the augmented flag sticks for the session.
	if in.Has(core.ActionRestore) && !g.session.Over {
		g.player.Restore(g.cfg.Player.MaxResource)
		g.session.Augmented = true
	}

	if g.screenTooSmall {
		return core.StepResult{State: g.State()}
	}

	// Handle restart
	if in.Has(core.ActionRestart) && g.session.Over {
		g.Reset(g.runtime)
		return core.StepResult{State: g.State()}
	}

	// Handle pause toggle
	if in.Has(core.ActionPause) && !g.session.Over {
		g.paused = !g.paused
	}

	if g.paused || g.session.Over {
		return core.StepResult{State: g.State()}
	}

	g.tickCount++

	var events []core.Event

	g.applyInput(in)
	events = g.advanceHostiles(events)
	g.advanceProjectiles()
	events = g.resolveCollisions(events)

	if g.spawner.Tick() {
		g.spawnHostile()
	}

	// Terminal arbitration: resource exhaustion is a loss even when the
	// timer runs out on the same tick.
	remaining := g.remainingMs()
	switch {
	case g.player.Resource <= 0:
		events = append(events, g.finish(core.OutcomeLoss))
	case remaining <= 0:
		events = append(events, g.finish(core.OutcomeWin))
	}

	return core.StepResult{State: g.State(), Events: events}
}

// applyInput handles movement, aiming, and firing.
// Movement is axis-independent; opposing commands in the same frame net
// to the one applied last. No diagonal normalization.
func (g *Game) applyInput(in core.InputFrame) {
	speed := g.cfg.Player.Speed

	switch in.LastAxis(core.ActionLeft, core.ActionRight) {
	case core.ActionLeft:
		g.player.Pos.X -= speed
	case core.ActionRight:
		g.player.Pos.X += speed
	}
	switch in.LastAxis(core.ActionUp, core.ActionDown) {
	case core.ActionUp:
		g.player.Pos.Y -= speed
	case core.ActionDown:
		g.player.Pos.Y += speed
	}

	g.player.Pos.X = core.ClampF(g.player.Pos.X, 0, g.cfg.World.Width)
	g.player.Pos.Y = core.ClampF(g.player.Pos.Y, 0, g.cfg.World.Height)

	if in.HasAim {
		g.player.Facing = g.player.Pos.AngleTo(core.Vec2{X: in.AimX, Y: in.AimY})
	}

	if in.Has(core.ActionFire) {
		g.fire()
	}
}

// fire creates a projectile at the player's position along the facing
// angle. Speed and angle are fixed for the projectile's lifetime.
func (g *Game) fire() {
	angle := g.player.Facing
	g.shots = append(g.shots, &Projectile{
		Pos:   g.player.Pos,
		Vel:   core.FromAngle(angle, g.cfg.Projectiles.Speed),
		Angle: angle,
		Alive: true,
	})
}

// advanceHostiles moves every hostile toward the defended boundary.
// A hostile that crosses applies its damage exactly once, is destroyed,
// and the loop keeps going over the remaining hostiles.
func (g *Game) advanceHostiles(events []core.Event) []core.Event {
	for _, h := range g.hostiles {
		if !h.Alive {
			continue
		}
		if h.Advance(g.cfg.World.BoundaryX) {
			g.player.TakeDamage(h.Damage)
			h.Alive = false
			events = append(events, core.BreachEvent{
				Damage:   h.Damage,
				Resource: g.player.Resource,
			})
		}
	}
	g.hostiles = liveHostiles(g.hostiles)
	return events
}

// advanceProjectiles moves projectiles and culls any that left the world.
func (g *Game) advanceProjectiles() {
	for _, pr := range g.shots {
		if !pr.Alive {
			continue
		}
		if pr.Advance(g.cfg.World.Width, g.cfg.World.Height) {
			pr.Alive = false
		}
	}
	g.shots = liveProjectiles(g.shots)
}

// resolveCollisions destroys every overlapping projectile-hostile pair
// and credits the kill reward. A projectile scores at most once even
// when it overlaps several hostiles in the same tick: it is destroyed
// on its first hit and removed before further pairs are considered.
func (g *Game) resolveCollisions(events []core.Event) []core.Event {
	hh := g.cfg.Hostiles
	pp := g.cfg.Projectiles

	for _, pr := range g.shots {
		if !pr.Alive {
			continue
		}
		prBox := core.RectAround(pr.Pos, pp.HalfW, pp.HalfH)
		for _, h := range g.hostiles {
			if !h.Alive {
				continue
			}
			if prBox.Overlaps(core.RectAround(h.Pos, hh.HalfW, hh.HalfH)) {
				pr.Alive = false
				h.Alive = false
				g.session.Score += g.cfg.Session.KillReward
				events = append(events, core.KillEvent{Score: g.session.Score})
				break
			}
		}
	}

	g.shots = liveProjectiles(g.shots)
	g.hostiles = liveHostiles(g.hostiles)
	return events
}

// spawnHostile creates one hostile at a random lateral offset along the
// spawn edge. Damage is sampled once, here.
func (g *Game) spawnHostile() {
	w := g.cfg.World
	h := g.cfg.Hostiles

	y := w.SpawnMinY + g.rng.Float64()*(w.SpawnMaxY-w.SpawnMinY)
	damage := h.DamageMin + g.rng.Intn(h.DamageMax-h.DamageMin+1)

	g.hostiles = append(g.hostiles, &Hostile{
		Pos:    core.Vec2{X: w.SpawnX, Y: y},
		Vel:    core.Vec2{X: -h.Speed},
		Damage: damage,
		Alive:  true,
	})
}

// finish marks the session terminal and returns the one-shot event.
func (g *Game) finish(outcome core.Outcome) core.Event {
	g.session.Over = true
	g.session.Outcome = outcome
	return core.GameOverEvent{
		Score:     g.session.Score,
		Outcome:   outcome,
		Resource:  g.player.Resource,
		Augmented: g.session.Augmented,
		ElapsedMs: g.elapsedMs(),
	}
}

// elapsedMs derives elapsed session time from the tick count, keeping
// the simulation deterministic regardless of wall-clock jitter.
func (g *Game) elapsedMs() int64 {
	rate := g.runtime.TickRate
	if rate <= 0 {
		rate = 60
	}
	return int64(g.tickCount) * 1000 / int64(rate)
}

// remainingMs returns the remaining session time, never negative.
func (g *Game) remainingMs() int64 {
	remaining := g.session.DurationMs - g.elapsedMs()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// liveHostiles filters out destroyed hostiles in place.
func liveHostiles(in []*Hostile) []*Hostile {
	out := in[:0]
	for _, h := range in {
		if h.Alive {
			out = append(out, h)
		}
	}
	return out
}

// liveProjectiles filters out destroyed projectiles in place.
func liveProjectiles(in []*Projectile) []*Projectile {
	out := in[:0]
	for _, pr := range in {
		if pr.Alive {
			out = append(out, pr)
		}
	}
	return out
}

// State returns the current session state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:     g.session.Score,
		Resource:  g.player.Resource,
		TimeLeft:  g.remainingMs(),
		Outcome:   g.session.Outcome,
		Augmented: g.session.Augmented,
		GameOver:  g.session.Over,
		Paused:    g.paused,
	}
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.screenTooSmall {
		msg := "Window too small"
		hint := fmt.Sprintf("Need %dx%d", g.minScreenW, g.minScreenH)
		dst.DrawTextCentered(dst.Height()/2-1, msg)
		dst.DrawTextCentered(dst.Height()/2+1, hint)
		return
	}

	g.renderHUD(dst)
	g.renderWall(dst)
	g.renderEntities(dst)
	g.renderOverlay(dst)
}

// renderHUD draws score, timer, and the resource bar on the top rows.
func (g *Game) renderHUD(dst *core.Screen) {
	dst.DrawText(1, 0, fmt.Sprintf("Score: %d", g.session.Score))

	remaining := g.remainingMs()
	timer := fmt.Sprintf("%d:%02d", remaining/60000, remaining/1000%60)
	dst.DrawText(dst.Width()-len(timer)-1, 0, timer)

	// Resource bar in the center, 20 cells wide
	const barW = 20
	max := g.cfg.Player.MaxResource
	filled := 0
	if max > 0 {
		filled = g.player.Resource * barW / max
	}
	barX := (dst.Width() - barW) / 2
	for i := 0; i < barW; i++ {
		if i < filled {
			dst.SetColored(barX+i, 0, HealthChar, ColorForResource(g.player.Resource, max))
		} else {
			dst.SetColored(barX+i, 0, HealthGapChar, core.ColorGray)
		}
	}
	if g.session.Augmented {
		dst.SetColored(barX+barW+1, 0, '$', core.ColorBrightYellow)
	}

	for x := range dst.Width() {
		dst.Set(x, 1, '─')
	}
}

// ColorForResource picks the resource bar color by remaining fraction.
func ColorForResource(resource, max int) core.Color {
	if max <= 0 {
		return core.ColorGreen
	}
	switch {
	case resource*4 <= max: // below 25%
		return core.ColorBrightRed
	case resource*2 <= max: // below 50%
		return core.ColorBrightYellow
	default:
		return core.ColorBrightGreen
	}
}

// renderWall draws the defended boundary as a wall column.
func (g *Game) renderWall(dst *core.Screen) {
	x, _ := g.project(core.Vec2{X: g.cfg.World.BoundaryX}, dst)
	for y := 2; y < dst.Height(); y++ {
		dst.SetColored(x, y, WallChar, core.ColorGray)
	}
}

// renderEntities draws hostiles, projectiles, and the player.
func (g *Game) renderEntities(dst *core.Screen) {
	for _, h := range g.hostiles {
		x, y := g.project(h.Pos, dst)
		dst.SetColored(x, y, HostileChar, core.ColorBrightRed)
	}
	for _, pr := range g.shots {
		x, y := g.project(pr.Pos, dst)
		dst.SetColored(x, y, ProjectileChar, core.ColorBrightYellow)
	}
	x, y := g.project(g.player.Pos, dst)
	dst.SetColored(x, y, PlayerChar, core.ColorBrightCyan)
}

// project maps world coordinates to screen cells. Row 0-1 are HUD.
func (g *Game) project(p core.Vec2, dst *core.Screen) (int, int) {
	gameH := dst.Height() - 2
	x := int(p.X / g.cfg.World.Width * float64(dst.Width()))
	y := 2 + int(p.Y/g.cfg.World.Height*float64(gameH))
	return core.Clamp(x, 0, dst.Width()-1), core.Clamp(y, 2, dst.Height()-1)
}

// renderOverlay draws pause and terminal state messages.
func (g *Game) renderOverlay(dst *core.Screen) {
	switch {
	case g.paused:
		g.drawCenteredBox(dst, "PAUSED", "Press P to resume")
	case g.session.Over && g.session.Outcome == core.OutcomeWin:
		subtitle := fmt.Sprintf("Score: %d  |  Press R to restart", g.session.Score)
		g.drawCenteredBox(dst, "CASTLE DEFENDED!", subtitle)
	case g.session.Over:
		subtitle := fmt.Sprintf("Score: %d  |  Press R to restart", g.session.Score)
		g.drawCenteredBox(dst, "CASTLE FELL", subtitle)
	}
}

// drawCenteredBox draws a centered message box.
func (g *Game) drawCenteredBox(dst *core.Screen, title, subtitle string) {
	w := dst.Width()
	h := dst.Height()

	boxW := core.Max(len(title), len(subtitle)) + 4
	boxH := 5
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ')
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH))

	dst.DrawText(boxX+(boxW-len(title))/2, boxY+1, title)
	dst.DrawText(boxX+(boxW-len(subtitle))/2, boxY+3, subtitle)
}

// Register the game with the registry
func init() {
	registry.Register("castle", func() registry.Game {
		return New()
	})
}
