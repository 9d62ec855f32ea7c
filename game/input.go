package game

// Input is the local player's controls for one frame.
type Input struct {
	Up, Down, Left, Right bool
	Fire                  bool
}
