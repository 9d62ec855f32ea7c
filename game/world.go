package game

import (
	"maps"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Goti-staniol/Online-Pvp/protocol"
)

// World is one peer's game state. It owns the local player's pending
// entities (not yet sent) and the simulated entities both peers have admitted.
type World struct {
	Tick    int
	Role    protocol.Role
	Local   Player
	Remote  Player
	Bullets []*Bullet
	Enemies []*Enemy

	pendingBullets map[string]Point
	pendingEnemies map[string]Point
	admitted       map[string]struct{}

	spawnCounter int
	fire         *rate.Limiter
	rng          *rand.Rand
	newID        func() string
	log          zerolog.Logger
}

type Option func(*World)

// WithIDs replaces the entity id generator.
func WithIDs(fn func() string) Option {
	return func(w *World) { w.newID = fn }
}

// WithSeed seeds the enemy spawn positions.
func WithSeed(seed int64) Option {
	return func(w *World) { w.rng = rand.New(rand.NewSource(seed)) }
}

func WithLogger(l zerolog.Logger) Option {
	return func(w *World) { w.log = l }
}

func NewWorld(role protocol.Role, opts ...Option) *World {
	w := &World{
		Role:           role,
		Local:          Player{Role: role},
		Remote:         Player{Role: role.Opposite()},
		pendingBullets: make(map[string]Point),
		pendingEnemies: make(map[string]Point),
		admitted:       make(map[string]struct{}),
		fire:           rate.NewLimiter(rate.Every(FireCooldown), 1),
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		newID:          NewID,
		log:            zerolog.Nop(),
	}
	w.Local.X, w.Local.Y = startFor(role).X, startFor(role).Y
	w.Remote.X, w.Remote.Y = startFor(role.Opposite()).X, startFor(role.Opposite()).Y
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func startFor(role protocol.Role) Point {
	if role == protocol.RoleHost {
		return HostStart
	}
	return ClientStart
}

var epoch = time.Unix(1_000_000, 0)

// clock derives time from the tick count so the fire cooldown does not
// depend on wall time.
func (w *World) clock() time.Time {
	return epoch.Add(time.Duration(w.Tick) * time.Second / protocol.FrameHz)
}

// Apply moves the local player and records new bullets and, on the host,
// new enemies in the pending maps.
func (w *World) Apply(in Input) {
	p := &w.Local
	if in.Up {
		p.Y -= PlayerSpeed
	}
	if in.Down {
		p.Y += PlayerSpeed
	}
	if in.Left {
		p.X -= PlayerSpeed
	}
	if in.Right {
		p.X += PlayerSpeed
	}
	p.X = clamp(p.X, 0, PlayerMaxX)
	p.Y = clamp(p.Y, 0, PlayerMaxY)

	if in.Fire && w.fire.AllowN(w.clock(), 1) {
		w.pendingBullets[w.newID()] = Point{X: p.X, Y: p.Y + BulletSpawnOffset}
	}
	if w.Role == protocol.RoleHost {
		w.spawnEnemy()
	}
}

// Only the host spawns; joiners learn about enemies through snapshots.
func (w *World) spawnEnemy() {
	w.spawnCounter++
	if w.spawnCounter < EnemySpawnTicks {
		return
	}
	w.spawnCounter = 0
	w.pendingEnemies[w.newID()] = Point{
		X: EnemySpawnMinX + w.rng.Intn(EnemySpawnMaxX-EnemySpawnMinX+1),
		Y: w.rng.Intn(EnemySpawnMaxY + 1),
	}
}

// Outgoing builds the snapshot to send this frame.
func (w *World) Outgoing() protocol.Snapshot {
	return protocol.Snapshot{
		X:       w.Local.X,
		Y:       w.Local.Y,
		Bullets: maps.Clone(w.pendingBullets),
		Enemies: maps.Clone(w.pendingEnemies),
		Score:   w.Local.Score,
	}
}

func (w *World) PendingBullets() map[string]Point { return maps.Clone(w.pendingBullets) }

func (w *World) PendingEnemies() map[string]Point { return maps.Clone(w.pendingEnemies) }

// Score returns the points credited to role so far.
func (w *World) Score(role protocol.Role) int {
	return w.player(role).Score
}

func (w *World) player(role protocol.Role) *Player {
	if role == w.Role {
		return &w.Local
	}
	return &w.Remote
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
