package geom

import (
	"fmt"
	"math"
	"strings"
)

// Direction is one of the six grid faces. The zero value is None.
type Direction uint8

const (
	None Direction = iota
	Down
	Up
	North
	South
	West
	East
)

// Directions lists the six faces in a stable order.
var Directions = [6]Direction{Down, Up, North, South, West, East}

// Horizontals lists the four horizontal faces clockwise from north.
var Horizontals = [4]Direction{North, East, South, West}

var dirNames = [...]string{
	None:  "none",
	Down:  "down",
	Up:    "up",
	North: "north",
	South: "south",
	West:  "west",
	East:  "east",
}

var dirOffsets = [...]Pos{
	None:  {},
	Down:  {0, -1, 0},
	Up:    {0, 1, 0},
	North: {0, 0, -1},
	South: {0, 0, 1},
	West:  {-1, 0, 0},
	East:  {1, 0, 0},
}

func (d Direction) String() string {
	if int(d) < len(dirNames) {
		return dirNames[d]
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

func (d Direction) Valid() bool { return d >= Down && d <= East }

func (d Direction) Offset() Pos {
	if int(d) < len(dirOffsets) {
		return dirOffsets[d]
	}
	return Pos{}
}

// Vec is the unit normal of the face.
func (d Direction) Vec() Vec3 { return d.Offset().Vec() }

func (d Direction) Horizontal() bool {
	switch d {
	case North, South, West, East:
		return true
	}
	return false
}

func (d Direction) Opposite() Direction {
	switch d {
	case Down:
		return Up
	case Up:
		return Down
	case North:
		return South
	case South:
		return North
	case West:
		return East
	case East:
		return West
	}
	return None
}

// QuarterTurns is the number of clockwise quarter turns (seen from above)
// that take north to d. It is -1 for non-horizontal directions.
func (d Direction) QuarterTurns() int {
	for i, h := range Horizontals {
		if h == d {
			return i
		}
	}
	return -1
}

// ParseDirection accepts the lowercase face names, case-insensitively.
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range dirNames {
		if n == s && i != int(None) {
			return Direction(i), nil
		}
	}
	return None, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText accepts "none" and the empty string as None.
func (d *Direction) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	if s == "" || s == dirNames[None] {
		*d = None
		return nil
	}
	v, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Nearest returns the face whose normal is closest to v. The zero vector
// yields None.
func Nearest(v Vec3) Direction {
	best := None
	bestDot := 0.0
	for _, d := range Directions {
		if dot := d.Vec().Dot(v); dot > bestDot+Epsilon {
			best, bestDot = d, dot
		}
	}
	return best
}

// DominantHorizontal picks the horizontal face along the larger of |x| and
// |z|. A centred offset maps to North.
func DominantHorizontal(v Vec3) Direction {
	ax, az := math.Abs(v[0]), math.Abs(v[2])
	switch {
	case ax < Epsilon && az < Epsilon:
		return North
	case ax > az:
		if v[0] > 0 {
			return East
		}
		return West
	default:
		if v[2] > 0 {
			return South
		}
		return North
	}
}
