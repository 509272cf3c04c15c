package castle

import (
	"math"
	"testing"

	"github.com/vovakirdan/castlechain/internal/core"
)

func testRuntime(seed int64) core.RuntimeConfig {
	return core.RuntimeConfig{
		Seed:     seed,
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
	}
}

func newTestGame(seed int64) *Game {
	g := New()
	g.Reset(testRuntime(seed))
	return g
}

func TestDeterminism(t *testing.T) {
	// Two games with the same seed should produce identical snapshots
	g1 := newTestGame(12345)
	g2 := newTestGame(12345)

	input := core.NewInputFrame()
	for i := 0; i < 500; i++ {
		input.Clear()
		if i%7 == 0 {
			input.SetAim(800, 300)
			input.Set(core.ActionFire)
		}
		if i%11 == 0 {
			input.Set(core.ActionUp)
		}
		g1.Step(input)
		g2.Step(input)
	}

	snap1 := g1.Snapshot()
	snap2 := g2.Snapshot()

	if snap1.Tick != snap2.Tick {
		t.Errorf("Tick mismatch: %d vs %d", snap1.Tick, snap2.Tick)
	}
	if snap1.Score != snap2.Score {
		t.Errorf("Score mismatch: %d vs %d", snap1.Score, snap2.Score)
	}
	if snap1.Resource != snap2.Resource {
		t.Errorf("Resource mismatch: %d vs %d", snap1.Resource, snap2.Resource)
	}
	if snap1.HostileCount != snap2.HostileCount {
		t.Errorf("Hostile count mismatch: %d vs %d", snap1.HostileCount, snap2.HostileCount)
	}
	for i := range snap1.HostileData {
		if snap1.HostileData[i] != snap2.HostileData[i] {
			t.Fatalf("Hostile data mismatch at %d: %v vs %v",
				i, snap1.HostileData[i], snap2.HostileData[i])
		}
	}
}

func TestWinAtTimerExpiry(t *testing.T) {
	g := newTestGame(1)

	// Jump to the last tick of the session with the field cleared so no
	// breach can interfere
	g.tickCount = 90*60 - 1
	g.hostiles = g.hostiles[:0]

	res := g.Step(core.NewInputFrame())

	if !res.State.GameOver {
		t.Fatal("Session should be over when the timer expires")
	}
	if res.State.Outcome != core.OutcomeWin {
		t.Errorf("Outcome = %v, want win", res.State.Outcome)
	}
	if res.State.TimeLeft != 0 {
		t.Errorf("TimeLeft = %d, want 0", res.State.TimeLeft)
	}

	over := findGameOver(res.Events)
	if over == nil {
		t.Fatal("Expected a GameOverEvent")
	}
	if over.Outcome != core.OutcomeWin {
		t.Errorf("Event outcome = %v, want win", over.Outcome)
	}
	if over.Resource <= 0 {
		t.Errorf("Winning session must end with positive resource, got %d", over.Resource)
	}
	if over.ElapsedMs != 90000 {
		t.Errorf("ElapsedMs = %d, want 90000", over.ElapsedMs)
	}
}

func TestLossWhenResourceAndTimerExpireTogether(t *testing.T) {
	g := newTestGame(1)

	// Last tick of the session, and a breach that zeroes the resource on
	// that same tick. Resource exhaustion must win the arbitration.
	g.tickCount = 90*60 - 1
	g.player.Resource = 5
	g.hostiles = []*Hostile{{
		Pos:    core.Vec2{X: 85, Y: 300},
		Vel:    core.Vec2{X: -7},
		Damage: 5,
		Alive:  true,
	}}

	res := g.Step(core.NewInputFrame())

	if !res.State.GameOver {
		t.Fatal("Session should be over")
	}
	if res.State.Outcome != core.OutcomeLoss {
		t.Errorf("Outcome = %v, want loss when resource and timer expire together",
			res.State.Outcome)
	}
}

func TestResourceExhaustionLoss(t *testing.T) {
	g := newTestGame(1)

	g.player.Resource = 4
	g.hostiles = []*Hostile{{
		Pos:    core.Vec2{X: 85, Y: 300},
		Vel:    core.Vec2{X: -7},
		Damage: 6,
		Alive:  true,
	}}

	res := g.Step(core.NewInputFrame())

	if res.State.Outcome != core.OutcomeLoss {
		t.Fatalf("Outcome = %v, want loss", res.State.Outcome)
	}
	if res.State.Resource != 0 {
		t.Errorf("Resource = %d, want floored at 0", res.State.Resource)
	}
	if res.State.TimeLeft <= 0 {
		t.Error("Loss should not depend on the timer here")
	}
}

func TestBreachAppliesDamageOnceAndDestroysHostile(t *testing.T) {
	g := newTestGame(1)

	g.hostiles = []*Hostile{{
		Pos:    core.Vec2{X: 85, Y: 300},
		Vel:    core.Vec2{X: -7},
		Damage: 6,
		Alive:  true,
	}}
	before := g.player.Resource

	res := g.Step(core.NewInputFrame())

	if g.player.Resource != before-6 {
		t.Errorf("Resource = %d, want %d", g.player.Resource, before-6)
	}
	breach := false
	for _, ev := range res.Events {
		if b, ok := ev.(core.BreachEvent); ok {
			breach = true
			if b.Damage != 6 {
				t.Errorf("BreachEvent damage = %d, want 6", b.Damage)
			}
		}
	}
	if !breach {
		t.Error("Expected a BreachEvent")
	}
	for _, h := range g.hostiles {
		if h.Pos.X <= g.cfg.World.BoundaryX {
			t.Error("Breached hostile should be removed from the field")
		}
	}
}

func TestMultipleBreachesSameTick(t *testing.T) {
	g := newTestGame(1)

	// Two hostiles cross on the same tick; both damages apply
	g.hostiles = []*Hostile{
		{Pos: core.Vec2{X: 85, Y: 100}, Vel: core.Vec2{X: -7}, Damage: 4, Alive: true},
		{Pos: core.Vec2{X: 86, Y: 500}, Vel: core.Vec2{X: -7}, Damage: 8, Alive: true},
	}
	before := g.player.Resource

	g.Step(core.NewInputFrame())

	if g.player.Resource != before-12 {
		t.Errorf("Resource = %d, want %d (both breaches applied)", g.player.Resource, before-12)
	}
}

func TestKillRewardAndDestruction(t *testing.T) {
	g := newTestGame(1)

	// A motionless overlapping pair resolves to a kill this tick
	g.hostiles = []*Hostile{
		{Pos: core.Vec2{X: 500, Y: 300}, Alive: true, Damage: 5},
	}
	g.shots = []*Projectile{
		{Pos: core.Vec2{X: 500, Y: 300}, Alive: true},
	}

	res := g.Step(core.NewInputFrame())

	if res.State.Score != 10 {
		t.Errorf("Score = %d, want 10", res.State.Score)
	}
	if len(g.shots) != 0 {
		t.Errorf("Projectile should be destroyed on hit, %d remain", len(g.shots))
	}
	kill := false
	for _, ev := range res.Events {
		if k, ok := ev.(core.KillEvent); ok {
			kill = true
			if k.Score != 10 {
				t.Errorf("KillEvent score = %d, want 10", k.Score)
			}
		}
	}
	if !kill {
		t.Error("Expected a KillEvent")
	}
}

func TestOneKillPerProjectile(t *testing.T) {
	g := newTestGame(1)

	// One projectile overlapping two hostiles scores exactly once
	g.hostiles = []*Hostile{
		{Pos: core.Vec2{X: 500, Y: 300}, Alive: true, Damage: 5},
		{Pos: core.Vec2{X: 504, Y: 302}, Alive: true, Damage: 5},
	}
	g.shots = []*Projectile{
		{Pos: core.Vec2{X: 501, Y: 300}, Alive: true},
	}

	res := g.Step(core.NewInputFrame())

	if res.State.Score != 10 {
		t.Errorf("Score = %d, want 10 (one kill per projectile)", res.State.Score)
	}
	if len(g.hostiles) != 1 {
		t.Errorf("Exactly one hostile should survive, got %d", len(g.hostiles))
	}
}

func TestScoreNeverDecreases(t *testing.T) {
	g := newTestGame(77)

	input := core.NewInputFrame()
	last := 0
	for i := 0; i < 2000 && !g.session.Over; i++ {
		input.Clear()
		input.SetAim(800, float64(50+i%550))
		input.Set(core.ActionFire)
		res := g.Step(input)
		if res.State.Score < last {
			t.Fatalf("Score decreased from %d to %d at tick %d", last, res.State.Score, i)
		}
		last = res.State.Score
	}
}

func TestRestoreRefillsAndAugmentedSticks(t *testing.T) {
	g := newTestGame(1)

	g.player.TakeDamage(150)
	if g.player.Resource != 50 {
		t.Fatalf("Resource = %d, want 50", g.player.Resource)
	}

	input := core.NewInputFrame()
	input.Set(core.ActionRestore)
	res := g.Step(input)

	if res.State.Resource != g.cfg.Player.MaxResource {
		t.Errorf("Resource = %d, want full %d", res.State.Resource, g.cfg.Player.MaxResource)
	}
	if !res.State.Augmented {
		t.Error("Augmented flag should be set after a paid restore")
	}

	// The flag is sticky for the rest of the session
	input.Clear()
	for i := 0; i < 10; i++ {
		res = g.Step(input)
	}
	if !res.State.Augmented {
		t.Error("Augmented flag must stay set for the session")
	}
}

func TestRestoreAppliesWhilePaused(t *testing.T) {
	g := newTestGame(1)

	g.player.TakeDamage(150)
	if g.player.Resource != 50 {
		t.Fatalf("Resource = %d, want 50", g.player.Resource)
	}

	input := core.NewInputFrame()
	input.Set(core.ActionPause)
	g.Step(input)
	tick := g.tickCount

	// The confirmation lands on a paused tick; the paid refill must not
	// be lost to the pause short-circuit.
	input.Clear()
	input.Set(core.ActionRestore)
	res := g.Step(input)

	if res.State.Resource != g.cfg.Player.MaxResource {
		t.Errorf("Resource = %d, want full %d (confirmed purchase lost)",
			res.State.Resource, g.cfg.Player.MaxResource)
	}
	if !res.State.Augmented {
		t.Error("Augmented flag should be set after a paid restore")
	}
	if !res.State.Paused {
		t.Error("Restore must not unpause the session")
	}
	if g.tickCount != tick {
		t.Errorf("Tick count = %d, want %d (paused ticks must not advance)", g.tickCount, tick)
	}

	// Resume with the refilled resource intact
	input.Clear()
	input.Set(core.ActionPause)
	res = g.Step(input)
	if res.State.Paused {
		t.Fatal("Expected unpaused state")
	}
	if res.State.Resource != g.cfg.Player.MaxResource {
		t.Errorf("Resource = %d after resume, want full", res.State.Resource)
	}
}

func TestThreeBreachesThenTimerWin(t *testing.T) {
	g := newTestGame(1)

	// Three breaches of 8 drain the resource to 176; the timer then
	// expires with the castle still standing.
	g.hostiles = []*Hostile{
		{Pos: core.Vec2{X: 85, Y: 100}, Vel: core.Vec2{X: -7}, Damage: 8, Alive: true},
		{Pos: core.Vec2{X: 85, Y: 300}, Vel: core.Vec2{X: -7}, Damage: 8, Alive: true},
		{Pos: core.Vec2{X: 85, Y: 500}, Vel: core.Vec2{X: -7}, Damage: 8, Alive: true},
	}
	g.Step(core.NewInputFrame())
	if g.player.Resource != 176 {
		t.Fatalf("Resource = %d, want 176 after three breaches", g.player.Resource)
	}

	g.tickCount = 90*60 - 1
	g.hostiles = g.hostiles[:0]
	res := g.Step(core.NewInputFrame())

	over := findGameOver(res.Events)
	if over == nil {
		t.Fatal("Expected a GameOverEvent")
	}
	if over.Outcome != core.OutcomeWin {
		t.Errorf("Outcome = %v, want win", over.Outcome)
	}
	if over.Resource != 176 {
		t.Errorf("Resource = %d, want 176", over.Resource)
	}
	if over.ElapsedMs != 90000 {
		t.Errorf("ElapsedMs = %d, want 90000", over.ElapsedMs)
	}
}

func TestOpposingKeysLastApplied(t *testing.T) {
	g := newTestGame(1)
	g.hostiles = g.hostiles[:0]

	startX := g.player.Pos.X

	input := core.NewInputFrame()
	input.Set(core.ActionLeft)
	input.Set(core.ActionRight)
	g.Step(input)

	if g.player.Pos.X != startX+g.cfg.Player.Speed {
		t.Errorf("Player X = %v, want %v (right was applied last)",
			g.player.Pos.X, startX+g.cfg.Player.Speed)
	}

	// Axes resolve independently: horizontal and vertical both apply
	startX, startY := g.player.Pos.X, g.player.Pos.Y
	input.Clear()
	input.Set(core.ActionUp)
	input.Set(core.ActionLeft)
	g.Step(input)

	if g.player.Pos.X != startX-g.cfg.Player.Speed {
		t.Errorf("Player X = %v, want %v", g.player.Pos.X, startX-g.cfg.Player.Speed)
	}
	if g.player.Pos.Y != startY-g.cfg.Player.Speed {
		t.Errorf("Player Y = %v, want %v", g.player.Pos.Y, startY-g.cfg.Player.Speed)
	}
}

func TestPlayerClampedToWorld(t *testing.T) {
	g := newTestGame(1)
	g.hostiles = g.hostiles[:0]

	input := core.NewInputFrame()
	input.Set(core.ActionLeft)
	input.Set(core.ActionUp)
	for i := 0; i < 500; i++ {
		g.Step(input)
		if g.session.Over {
			break
		}
	}

	if g.player.Pos.X < 0 || g.player.Pos.Y < 0 {
		t.Errorf("Player escaped the world at (%v, %v)", g.player.Pos.X, g.player.Pos.Y)
	}
}

func TestFireTravelsTowardAim(t *testing.T) {
	g := newTestGame(1)
	g.hostiles = g.hostiles[:0]

	input := core.NewInputFrame()
	input.SetAim(g.player.Pos.X+200, g.player.Pos.Y)
	input.Set(core.ActionFire)
	g.Step(input)

	if len(g.shots) != 1 {
		t.Fatalf("Expected 1 projectile, got %d", len(g.shots))
	}
	pr := g.shots[0]
	if math.Abs(pr.Angle) > 1e-9 {
		t.Errorf("Angle = %v, want 0 (aim straight right)", pr.Angle)
	}
	if pr.Vel.X != g.cfg.Projectiles.Speed {
		t.Errorf("Vel.X = %v, want %v", pr.Vel.X, g.cfg.Projectiles.Speed)
	}
}

func TestProjectileCulledAtWorldEdge(t *testing.T) {
	g := newTestGame(1)
	g.hostiles = g.hostiles[:0]

	g.shots = []*Projectile{{
		Pos:   core.Vec2{X: g.cfg.World.Width - 1, Y: 300},
		Vel:   core.Vec2{X: g.cfg.Projectiles.Speed},
		Alive: true,
	}}

	g.Step(core.NewInputFrame())

	if len(g.shots) != 0 {
		t.Errorf("Out-of-bounds projectile should be culled, %d remain", len(g.shots))
	}
}

func TestSpawnBoundsAndDamageRange(t *testing.T) {
	g := newTestGame(999)

	for i := 0; i < 100; i++ {
		g.spawnHostile()
	}
	for _, h := range g.hostiles {
		if h.Pos.X != g.cfg.World.SpawnX {
			t.Errorf("Spawn X = %v, want %v", h.Pos.X, g.cfg.World.SpawnX)
		}
		if h.Pos.Y < g.cfg.World.SpawnMinY || h.Pos.Y > g.cfg.World.SpawnMaxY {
			t.Errorf("Spawn Y = %v outside [%v, %v]",
				h.Pos.Y, g.cfg.World.SpawnMinY, g.cfg.World.SpawnMaxY)
		}
		if h.Damage < g.cfg.Hostiles.DamageMin || h.Damage > g.cfg.Hostiles.DamageMax {
			t.Errorf("Damage %d outside [%d, %d]",
				h.Damage, g.cfg.Hostiles.DamageMin, g.cfg.Hostiles.DamageMax)
		}
	}
}

func TestGameOverFreezesSimulation(t *testing.T) {
	g := newTestGame(1)

	g.tickCount = 90*60 - 1
	g.hostiles = g.hostiles[:0]
	res := g.Step(core.NewInputFrame())
	if findGameOver(res.Events) == nil {
		t.Fatal("Expected a GameOverEvent")
	}

	// Further steps do nothing and never re-emit the terminal event
	tick := g.tickCount
	for i := 0; i < 5; i++ {
		res = g.Step(core.NewInputFrame())
		if len(res.Events) != 0 {
			t.Fatal("No events should be emitted after the session ends")
		}
	}
	if g.tickCount != tick {
		t.Error("Simulation must not advance after the session ends")
	}
}

func TestRestartStartsFreshSession(t *testing.T) {
	g := newTestGame(1)

	g.session.Score = 120
	g.session.Augmented = true
	g.player.Resource = 0
	g.session.Over = true
	g.session.Outcome = core.OutcomeLoss

	input := core.NewInputFrame()
	input.Set(core.ActionRestart)
	res := g.Step(input)

	if res.State.GameOver {
		t.Error("Restart should produce a live session")
	}
	if res.State.Score != 0 {
		t.Errorf("Score = %d, want 0 after restart", res.State.Score)
	}
	if res.State.Resource != g.cfg.Player.MaxResource {
		t.Errorf("Resource = %d, want full after restart", res.State.Resource)
	}
	if res.State.Augmented {
		t.Error("Augmented flag must not carry across sessions")
	}
	if res.State.TimeLeft != g.cfg.Session.DurationMs {
		t.Errorf("TimeLeft = %d, want %d", res.State.TimeLeft, g.cfg.Session.DurationMs)
	}
}

func TestRestartIgnoredMidSession(t *testing.T) {
	g := newTestGame(1)
	g.hostiles = g.hostiles[:0]
	g.session.Score = 30

	input := core.NewInputFrame()
	input.Set(core.ActionRestart)
	res := g.Step(input)

	if res.State.Score != 30 {
		t.Errorf("Score = %d, restart must be ignored while the session runs", res.State.Score)
	}
}

func TestPauseFreezesAndResumes(t *testing.T) {
	g := newTestGame(1)

	input := core.NewInputFrame()
	input.Set(core.ActionPause)
	res := g.Step(input)
	if !res.State.Paused {
		t.Fatal("Expected paused state")
	}

	tick := g.tickCount
	for i := 0; i < 10; i++ {
		g.Step(core.NewInputFrame())
	}
	if g.tickCount != tick {
		t.Error("Tick count must not advance while paused")
	}

	res = g.Step(input)
	if res.State.Paused {
		t.Fatal("Expected unpaused state")
	}
	g.Step(core.NewInputFrame())
	if g.tickCount != tick+2 {
		t.Errorf("Tick count = %d, want %d after resume", g.tickCount, tick+2)
	}
}

func TestElapsedDerivedFromTickRate(t *testing.T) {
	rt := testRuntime(1)
	rt.TickRate = 30
	g := New()
	g.Reset(rt)
	g.hostiles = g.hostiles[:0]

	input := core.NewInputFrame()
	for i := 0; i < 30; i++ {
		g.Step(input)
	}

	if got := g.State().TimeLeft; got != 89000 {
		t.Errorf("TimeLeft = %d, want 89000 after one second of ticks", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := newTestGame(55)

	input := core.NewInputFrame()
	for i := 0; i < 200; i++ {
		input.Clear()
		if i%9 == 0 {
			input.SetAim(800, 300)
			input.Set(core.ActionFire)
		}
		g.Step(input)
	}

	snap := g.Snapshot()

	restored := newTestGame(55)
	restored.ApplySnapshot(snap)

	if restored.tickCount != g.tickCount {
		t.Errorf("Tick = %d, want %d", restored.tickCount, g.tickCount)
	}
	if restored.session.Score != g.session.Score {
		t.Errorf("Score = %d, want %d", restored.session.Score, g.session.Score)
	}
	if restored.player.Resource != g.player.Resource {
		t.Errorf("Resource = %d, want %d", restored.player.Resource, g.player.Resource)
	}
	if len(restored.hostiles) != len(g.hostiles) {
		t.Fatalf("Hostiles = %d, want %d", len(restored.hostiles), len(g.hostiles))
	}
	for i := range g.hostiles {
		if restored.hostiles[i].Pos != g.hostiles[i].Pos {
			t.Errorf("Hostile %d pos = %v, want %v", i, restored.hostiles[i].Pos, g.hostiles[i].Pos)
		}
		if restored.hostiles[i].Damage != g.hostiles[i].Damage {
			t.Errorf("Hostile %d damage = %d, want %d",
				i, restored.hostiles[i].Damage, g.hostiles[i].Damage)
		}
	}
	if restored.spawner.Delay() != g.spawner.Delay() {
		t.Errorf("Spawner delay = %d, want %d", restored.spawner.Delay(), g.spawner.Delay())
	}
}

// findGameOver returns the first GameOverEvent in an event list, or nil.
func findGameOver(events []core.Event) *core.GameOverEvent {
	for _, ev := range events {
		if over, ok := ev.(core.GameOverEvent); ok {
			return &over
		}
	}
	return nil
}
