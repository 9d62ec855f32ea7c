package game

import "time"

const (
	WindowWidth       = 700
	WindowHeight      = 500
	PlayerWidth       = 60
	PlayerHeight      = 60
	PlayerSpeed       = 5
	PlayerMaxX        = 645
	PlayerMaxY        = 450
	BulletWidth       = 40
	BulletHeight      = 20
	BulletSpeed       = 7  // px per tick, toward the top of the screen
	BulletSpawnOffset = 15 // below the player's top edge
	EnemyWidth        = 50
	EnemyHeight       = 50
	EnemySpeed        = 2 // px per tick, toward the players
	EnemySpawnTicks   = 30
	EnemySpawnMinX    = 50
	EnemySpawnMaxX    = 620
	EnemySpawnMaxY    = 30
	FireCooldown      = 300 * time.Millisecond
	HitScore          = 1
	ContactPenalty    = 1
)

var (
	HostStart   = Point{X: 150, Y: 150}
	ClientStart = Point{X: 300, Y: 150}
)
