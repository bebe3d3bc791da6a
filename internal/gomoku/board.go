package gomoku

import (
	"fmt"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/apperror"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
)

// Board records which stone sits on every cell and the order they were placed in.
// It does no rule checking beyond keeping each cell written at most once.
type Board struct {
	cells   [entity.Size][entity.Size]*entity.Stone
	history []entity.Stone
	step    int
}

func NewBoard() *Board {
	return &Board{
		history: make([]entity.Stone, 0, entity.Size*entity.Size),
	}
}

// Apply - records the stone and reports the new step.
func (that *Board) Apply(c entity.Coordinate, color entity.Color) (int, error) {
	if err := that.validate(c); err != nil {
		return that.step, fmt.Errorf("can't apply %s: %w", c, err)
	}

	that.step++

	stone := entity.Stone{Coordinate: c, Color: color, Step: that.step}
	that.cells[c.Y][c.X] = &stone
	that.history = append(that.history, stone)

	return that.step, nil
}

// validate - checks that the coordinate is on the board and still empty.
func (that *Board) validate(c entity.Coordinate) error {
	if !c.Valid() {
		return apperror.ErrInvalidCoordinate
	}

	if that.cells[c.Y][c.X] != nil {
		return apperror.ErrCellOccupied
	}

	return nil
}

func (that *Board) At(c entity.Coordinate) (entity.Stone, bool) {
	if !c.Valid() || that.cells[c.Y][c.X] == nil {
		return entity.Stone{}, false
	}
	return *that.cells[c.Y][c.X], true
}

// History - stones in play order.
func (that *Board) History() []entity.Stone {
	out := make([]entity.Stone, len(that.history))
	copy(out, that.history)
	return out
}

func (that *Board) Step() int {
	return that.step
}
