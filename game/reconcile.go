package game

import (
	"slices"

	"github.com/Goti-staniol/Online-Pvp/protocol"
)

// Admission counts the entities a Reconcile call added to the simulation.
type Admission struct {
	Bullets int
	Enemies int
}

// Reconcile merges the local pending entities and the remote snapshot (nil
// when nothing arrived this frame) into the simulated sets. Every id is
// admitted at most once per session, whoever lists it and however often.
// Admitted ids are purged from the local pending maps so they are sent once.
func (w *World) Reconcile(remote *protocol.Snapshot) Admission {
	var a Admission
	if remote != nil {
		w.Remote.X, w.Remote.Y = remote.X, remote.Y
	}

	batches := []batch{{role: w.Role, bullets: w.pendingBullets, enemies: w.pendingEnemies}}
	if remote != nil {
		batches = append(batches, batch{role: w.Role.Opposite(), bullets: remote.Bullets, enemies: remote.Enemies})
	}
	// Host entities go first on both peers so lockstep peers build identical
	// sequences and resolve collisions the same way.
	slices.SortStableFunc(batches, func(x, y batch) int {
		if x.role == y.role {
			return 0
		}
		if x.role == protocol.RoleHost {
			return -1
		}
		return 1
	})
	for _, b := range batches {
		a.Bullets += w.admitBullets(b.bullets, b.role)
		a.Enemies += w.admitEnemies(b.enemies)
	}

	for id := range w.pendingBullets {
		if w.isAdmitted(id) {
			delete(w.pendingBullets, id)
		}
	}
	for id := range w.pendingEnemies {
		if w.isAdmitted(id) {
			delete(w.pendingEnemies, id)
		}
	}

	if a.Bullets > 0 || a.Enemies > 0 {
		w.log.Debug().Int("tick", w.Tick).Int("bullets", a.Bullets).Int("enemies", a.Enemies).Msg("admitted")
	}
	return a
}

type batch struct {
	role    protocol.Role
	bullets map[string]Point
	enemies map[string]Point
}

func (w *World) isAdmitted(id string) bool {
	_, ok := w.admitted[id]
	return ok
}

// Ids are admitted in sorted order so both peers build the same sequence
// from the same batch.
func (w *World) admitBullets(src map[string]Point, role protocol.Role) int {
	n := 0
	for _, id := range sortedIDs(src) {
		if w.isAdmitted(id) {
			continue
		}
		w.admitted[id] = struct{}{}
		p := src[id]
		w.Bullets = append(w.Bullets, &Bullet{ID: id, X: p.X, Y: p.Y, Role: role})
		n++
	}
	return n
}

func (w *World) admitEnemies(src map[string]Point) int {
	n := 0
	for _, id := range sortedIDs(src) {
		if w.isAdmitted(id) {
			continue
		}
		w.admitted[id] = struct{}{}
		p := src[id]
		w.Enemies = append(w.Enemies, &Enemy{ID: id, X: p.X, Y: p.Y})
		n++
	}
	return n
}

func sortedIDs(m map[string]Point) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
