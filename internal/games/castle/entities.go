package castle

import (
	"github.com/vovakirdan/castlechain/internal/core"
)

// The entity set is closed: Player, Hostile, Projectile. Common fields
// (position, alive flag) live on each variant struct; behavior is
// dispatched by the tick loop, not by an open hierarchy.

// Player is the defender. It owns the resource level and the facing
// angle used to aim projectiles.
type Player struct {
	Pos      core.Vec2
	Facing   float64 // Radians, toward the current aim point
	Resource int
	Alive    bool
}

// TakeDamage applies damage to the resource level, floored at 0.
func (p *Player) TakeDamage(amount int) {
	p.Resource -= amount
	if p.Resource < 0 {
		p.Resource = 0
	}
}

// Restore refills the resource level to the given maximum.
func (p *Player) Restore(max int) {
	p.Resource = max
}

// Hostile marches toward the defended boundary at constant speed.
// Its damage is sampled once at spawn and never changes.
type Hostile struct {
	Pos    core.Vec2
	Vel    core.Vec2
	Damage int
	Alive  bool
}

// Advance moves the hostile one tick. Returns true when it has crossed
// the defended boundary and must apply its damage.
func (h *Hostile) Advance(boundaryX float64) bool {
	h.Pos = h.Pos.Add(h.Vel)
	return h.Pos.X <= boundaryX
}

// Projectile travels along a fixed angle at constant speed, both set at
// creation.
type Projectile struct {
	Pos   core.Vec2
	Vel   core.Vec2
	Angle float64
	Alive bool
}

// Advance moves the projectile one tick. Returns true when it has left
// the world bounds and must be destroyed.
func (pr *Projectile) Advance(worldW, worldH float64) bool {
	pr.Pos = pr.Pos.Add(pr.Vel)
	return pr.Pos.X < 0 || pr.Pos.X > worldW || pr.Pos.Y < 0 || pr.Pos.Y > worldH
}
