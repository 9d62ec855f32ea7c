package match

import (
	"math/rand"

	"github.com/Goti-staniol/Online-Pvp/game"
)

// Autopilot stands in for a keyboard when the game runs headless. It drifts
// left and right in random stretches and keeps the trigger held.
type Autopilot struct {
	rng  *rand.Rand
	dir  int
	hold int
}

func NewAutopilot(seed int64) *Autopilot {
	return &Autopilot{rng: rand.New(rand.NewSource(seed))}
}

func (a *Autopilot) Poll(tick int) game.Input {
	if a.hold <= 0 {
		a.dir = a.rng.Intn(3) - 1
		a.hold = 10 + a.rng.Intn(30)
	}
	a.hold--
	return game.Input{Left: a.dir < 0, Right: a.dir > 0, Fire: true}
}
