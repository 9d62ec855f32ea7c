package game

import (
	"slices"

	"github.com/Goti-staniol/Online-Pvp/protocol"
)

// Step advances every simulated entity by one tick and resolves collisions.
// It depends only on the current state, so both peers compute the same
// motion for the same admitted entity.
func (w *World) Step() {
	w.Tick++

	players := w.players()
	enemies := w.Enemies[:0]
	for _, e := range w.Enemies {
		if p := touching(e, players[:]); p != nil {
			p.penalize(ContactPenalty)
			continue
		}
		e.move()
		if e.Y > WindowHeight {
			continue
		}
		enemies = append(enemies, e)
	}
	clear(w.Enemies[len(enemies):])
	w.Enemies = enemies

	bullets := w.Bullets[:0]
	for _, b := range w.Bullets {
		b.move()
		if w.hit(b) {
			w.player(b.Role).Score += HitScore
			continue
		}
		if b.Y+BulletHeight < 0 {
			continue
		}
		bullets = append(bullets, b)
	}
	clear(w.Bullets[len(bullets):])
	w.Bullets = bullets
}

// players lists the host first so contact resolves the same on both peers.
func (w *World) players() [2]*Player {
	if w.Role == protocol.RoleHost {
		return [2]*Player{&w.Local, &w.Remote}
	}
	return [2]*Player{&w.Remote, &w.Local}
}

func touching(b Body, players []*Player) *Player {
	r := b.Rect()
	for _, p := range players {
		if r.Overlaps(p.Rect()) {
			return p
		}
	}
	return nil
}

// hit removes the first enemy overlapping b and reports whether there was one.
func (w *World) hit(b *Bullet) bool {
	r := b.Rect()
	i := slices.IndexFunc(w.Enemies, func(e *Enemy) bool { return r.Overlaps(e.Rect()) })
	if i < 0 {
		return false
	}
	w.Enemies = slices.Delete(w.Enemies, i, i+1)
	return true
}
