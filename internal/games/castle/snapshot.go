package castle

import "github.com/vovakirdan/castlechain/internal/core"

// Snapshot contains the complete game state for replay and save support.
// Uses primitive types only for stable serialization.
type Snapshot struct {
	Tick      int
	Score     int
	Resource  int
	Augmented bool
	Over      bool
	Outcome   int
	Paused    bool

	PlayerX      float64
	PlayerY      float64
	PlayerFacing float64

	SpawnCountdown int
	SpawnDelay     int
	SpawnAccel     int

	// Hostile state (each hostile is 5 floats: X, Y, VX, VY, Damage)
	HostileCount int
	HostileData  []float64

	// Projectile state (each projectile is 5 floats: X, Y, VX, VY, Angle)
	ShotCount int
	ShotData  []float64
}

// Snapshot returns the current game state as a Snapshot.
func (g *Game) Snapshot() Snapshot {
	hostileData := make([]float64, len(g.hostiles)*5)
	for i, h := range g.hostiles {
		idx := i * 5
		hostileData[idx] = h.Pos.X
		hostileData[idx+1] = h.Pos.Y
		hostileData[idx+2] = h.Vel.X
		hostileData[idx+3] = h.Vel.Y
		hostileData[idx+4] = float64(h.Damage)
	}

	shotData := make([]float64, len(g.shots)*5)
	for i, pr := range g.shots {
		idx := i * 5
		shotData[idx] = pr.Pos.X
		shotData[idx+1] = pr.Pos.Y
		shotData[idx+2] = pr.Vel.X
		shotData[idx+3] = pr.Vel.Y
		shotData[idx+4] = pr.Angle
	}

	return Snapshot{
		Tick:      g.tickCount,
		Score:     g.session.Score,
		Resource:  g.player.Resource,
		Augmented: g.session.Augmented,
		Over:      g.session.Over,
		Outcome:   int(g.session.Outcome),
		Paused:    g.paused,

		PlayerX:      g.player.Pos.X,
		PlayerY:      g.player.Pos.Y,
		PlayerFacing: g.player.Facing,

		SpawnCountdown: g.spawner.countdown,
		SpawnDelay:     g.spawner.delay,
		SpawnAccel:     g.spawner.accel,

		HostileCount: len(g.hostiles),
		HostileData:  hostileData,
		ShotCount:    len(g.shots),
		ShotData:     shotData,
	}
}

// ApplySnapshot restores game state from a snapshot.
func (g *Game) ApplySnapshot(snap Snapshot) {
	g.tickCount = snap.Tick
	g.session.Score = snap.Score
	g.session.Augmented = snap.Augmented
	g.session.Over = snap.Over
	g.session.Outcome = core.Outcome(snap.Outcome)
	g.paused = snap.Paused

	g.player.Pos.X = snap.PlayerX
	g.player.Pos.Y = snap.PlayerY
	g.player.Facing = snap.PlayerFacing
	g.player.Resource = snap.Resource

	g.spawner.countdown = snap.SpawnCountdown
	g.spawner.delay = snap.SpawnDelay
	g.spawner.accel = snap.SpawnAccel

	g.hostiles = make([]*Hostile, 0, snap.HostileCount)
	for i := range snap.HostileCount {
		idx := i * 5
		if idx+4 >= len(snap.HostileData) {
			break
		}
		g.hostiles = append(g.hostiles, &Hostile{
			Pos:    vec2At(snap.HostileData, idx),
			Vel:    vec2At(snap.HostileData, idx+2),
			Damage: int(snap.HostileData[idx+4]),
			Alive:  true,
		})
	}

	g.shots = make([]*Projectile, 0, snap.ShotCount)
	for i := range snap.ShotCount {
		idx := i * 5
		if idx+4 >= len(snap.ShotData) {
			break
		}
		g.shots = append(g.shots, &Projectile{
			Pos:   vec2At(snap.ShotData, idx),
			Vel:   vec2At(snap.ShotData, idx+2),
			Angle: snap.ShotData[idx+4],
			Alive: true,
		})
	}
}

// vec2At reads a vector from two consecutive slice entries.
func vec2At(data []float64, idx int) core.Vec2 {
	return core.Vec2{X: data[idx], Y: data[idx+1]}
}
