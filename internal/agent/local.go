package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
)

// Surface is the board a human plays on. NextSelection blocks until one cell is picked.
type Surface interface {
	NextSelection(ctx context.Context, color entity.Color) (entity.Coordinate, error)
}

// Local takes its move from a single selection on the board surface.
type Local struct {
	logger  *slog.Logger
	surface Surface

	color   entity.Color
	session string
}

func NewLocal(logger *slog.Logger, surface Surface, seat *entity.Seat) *Local {
	return &Local{
		logger:  logger.With("component", "local_agent", "color", seat.Color),
		surface: surface,
		color:   seat.Color,
		session: seat.Session,
	}
}

func (that *Local) Color() entity.Color {
	return that.color
}

func (that *Local) Session() string {
	return that.session
}

func (that *Local) Move(ctx context.Context, adversary entity.Move) <-chan Reply {
	that.logger.Debug("waiting for selection", "adversary", adversary.String())

	return resolve(func() (entity.Coordinate, error) {
		move, err := that.surface.NextSelection(ctx, that.color)
		if err != nil {
			return entity.Coordinate{}, fmt.Errorf("failed to wait for selection: %w", err)
		}

		return move, nil
	})
}
