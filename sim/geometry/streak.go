package geometry

import (
	"fmt"
	"iter"
)

// Streak is a contiguous run of coordinates along the x axis, from
// Origin up to but excluding EndX. Streaks are the unit of bulk grid I/O
// and of update dispatch.
type Streak struct {
	Origin Coord
	EndX   int
}

// NewStreak builds a streak starting at origin with the given end.
func NewStreak(origin Coord, endX int) Streak {
	return Streak{Origin: origin, EndX: endX}
}

// Length returns the number of coordinates in the streak.
func (s Streak) Length() int {
	if s.EndX <= s.Origin.X {
		return 0
	}
	return s.EndX - s.Origin.X
}

// End returns the first coordinate past the streak.
func (s Streak) End() Coord {
	return Coord{X: s.EndX, Y: s.Origin.Y, Z: s.Origin.Z}
}

// Coords yields the coordinates of the streak in increasing x.
func (s Streak) Coords() iter.Seq[Coord] {
	return func(yield func(Coord) bool) {
		c := s.Origin
		for ; c.X < s.EndX; c.X++ {
			if !yield(c) {
				return
			}
		}
	}
}

func (s Streak) String() string {
	return fmt.Sprintf("Streak(origin: %s, endX: %d)", s.Origin, s.EndX)
}
