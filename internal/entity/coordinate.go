package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/apperror"
)

// Size - standard gomoku board is 15x15.
const Size = 15

const openingToken = "start"

// Sentinel - the move an agent answers with when it gives up.
var Sentinel = Coordinate{X: -1, Y: -1}

type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (that Coordinate) Valid() bool {
	return that.X >= 0 && that.X < Size && that.Y >= 0 && that.Y < Size
}

// IsSentinel - either component set to -1 means the agent forfeits.
func (that Coordinate) IsSentinel() bool {
	return that.X == -1 || that.Y == -1
}

// Encode - wire form of a coordinate, "x-y".
func (that Coordinate) Encode() string {
	return strconv.Itoa(that.X) + "-" + strconv.Itoa(that.Y)
}

func (that Coordinate) String() string {
	return "(" + strconv.Itoa(that.X) + "," + strconv.Itoa(that.Y) + ")"
}

// DecodeCoordinate - parses the "x-y" wire form produced by Encode.
func DecodeCoordinate(raw string) (Coordinate, error) {
	xs, ys, ok := strings.Cut(raw, "-")
	if !ok {
		return Coordinate{}, fmt.Errorf("%w: %q", apperror.ErrMalformedMove, raw)
	}

	x, err := strconv.Atoi(xs)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q", apperror.ErrMalformedMove, raw)
	}

	y, err := strconv.Atoi(ys)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q", apperror.ErrMalformedMove, raw)
	}

	return Coordinate{X: x, Y: y}, nil
}

// Move - what an agent is handed when asked to play: the opening signal or the adversary's last stone.
type Move struct {
	Coordinate
	Opening bool
}

func Opening() Move {
	return Move{Opening: true}
}

func Played(c Coordinate) Move {
	return Move{Coordinate: c}
}

func (that Move) Encode() string {
	if that.Opening {
		return openingToken
	}
	return that.Coordinate.Encode()
}

func (that Move) String() string {
	if that.Opening {
		return openingToken
	}
	return that.Coordinate.String()
}
