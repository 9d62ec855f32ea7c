package game

import "github.com/Goti-staniol/Online-Pvp/protocol"

// View is the merged world handed to the renderer each frame.
type View struct {
	Tick    int           `json:"tick"`
	Role    protocol.Role `json:"role"`
	Players []PlayerView  `json:"players"`
	Bullets []BulletView  `json:"bullets"`
	Enemies []EnemyView   `json:"enemies"`
}

type PlayerView struct {
	Role  protocol.Role `json:"role"`
	X     int           `json:"x"`
	Y     int           `json:"y"`
	Score int           `json:"score"`
}

type BulletView struct {
	ID   string        `json:"id"`
	X    int           `json:"x"`
	Y    int           `json:"y"`
	Role protocol.Role `json:"role"`
}

type EnemyView struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

func (w *World) View() View {
	v := View{
		Tick:    w.Tick,
		Role:    w.Role,
		Players: make([]PlayerView, 0, 2),
		Bullets: make([]BulletView, 0, len(w.Bullets)),
		Enemies: make([]EnemyView, 0, len(w.Enemies)),
	}
	for _, p := range w.players() {
		v.Players = append(v.Players, PlayerView{Role: p.Role, X: p.X, Y: p.Y, Score: p.Score})
	}
	for _, b := range w.Bullets {
		v.Bullets = append(v.Bullets, BulletView{ID: b.ID, X: b.X, Y: b.Y, Role: b.Role})
	}
	for _, e := range w.Enemies {
		v.Enemies = append(v.Enemies, EnemyView{ID: e.ID, X: e.X, Y: e.Y})
	}
	return v
}
