package game

import (
	"github.com/google/uuid"

	"github.com/Goti-staniol/Online-Pvp/protocol"
)

type Point = protocol.Point

// Rect is an axis aligned box in window space.
type Rect struct {
	X, Y, W, H int
}

// Overlaps reports whether two rects share interior area. Touching edges do
// not count.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

type Kind uint8

const (
	KindPlayer Kind = iota
	KindBullet
	KindEnemy
)

// Body is what motion and collision need from any entity.
type Body interface {
	Kind() Kind
	Rect() Rect
}

type Bullet struct {
	ID   string
	X, Y int
	Role protocol.Role
}

func (b *Bullet) Kind() Kind { return KindBullet }

func (b *Bullet) Rect() Rect { return Rect{X: b.X, Y: b.Y, W: BulletWidth, H: BulletHeight} }

func (b *Bullet) move() { b.Y -= BulletSpeed }

type Enemy struct {
	ID   string
	X, Y int
}

func (e *Enemy) Kind() Kind { return KindEnemy }

func (e *Enemy) Rect() Rect { return Rect{X: e.X, Y: e.Y, W: EnemyWidth, H: EnemyHeight} }

func (e *Enemy) move() { e.Y += EnemySpeed }

type Player struct {
	Role  protocol.Role
	X, Y  int
	Score int
}

func (p *Player) Kind() Kind { return KindPlayer }

func (p *Player) Rect() Rect { return Rect{X: p.X, Y: p.Y, W: PlayerWidth, H: PlayerHeight} }

// penalize subtracts n points without going below zero.
func (p *Player) penalize(n int) {
	p.Score -= n
	if p.Score < 0 {
		p.Score = 0
	}
}

// NewID returns a fresh entity id.
func NewID() string {
	return uuid.NewString()
}
