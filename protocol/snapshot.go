package protocol

import (
	"maps"

	"github.com/mitchellh/copystructure"
)

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Snapshot is the per-frame state one peer sends to the other. Bullets and
// Enemies only hold entities that have not been forwarded yet.
type Snapshot struct {
	X       int              `json:"x"`
	Y       int              `json:"y"`
	Bullets map[string]Point `json:"bullets"`
	Enemies map[string]Point `json:"enemies"`
	Score   int              `json:"score"`
}

func NewSnapshot(x, y int) Snapshot {
	return Snapshot{
		X:       x,
		Y:       y,
		Bullets: make(map[string]Point),
		Enemies: make(map[string]Point),
	}
}

// Normalize replaces nil entity maps with empty ones so they encode as {}.
func (s *Snapshot) Normalize() {
	if s.Bullets == nil {
		s.Bullets = make(map[string]Point)
	}
	if s.Enemies == nil {
		s.Enemies = make(map[string]Point)
	}
}

// Clone returns a deep copy that shares no maps with s.
func (s Snapshot) Clone() Snapshot {
	out := copystructure.Must(copystructure.Copy(s)).(Snapshot)
	out.Normalize()
	return out
}

// Coalesce folds a newer snapshot into s. Position and score come from newer,
// entity maps are unioned so nothing pending in s is lost.
func (s Snapshot) Coalesce(newer Snapshot) Snapshot {
	out := s.Clone()
	out.X = newer.X
	out.Y = newer.Y
	out.Score = newer.Score
	maps.Copy(out.Bullets, newer.Bullets)
	maps.Copy(out.Enemies, newer.Enemies)
	return out
}

// Empty reports whether the snapshot carries no pending entities.
func (s Snapshot) Empty() bool {
	return len(s.Bullets) == 0 && len(s.Enemies) == 0
}
