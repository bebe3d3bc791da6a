package agent

import (
	"context"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
)

// Reply is the single result of one Move call.
type Reply struct {
	Move entity.Coordinate
	Err  error
}

// Agent is one seat's move source. Move starts computing asynchronously and the
// returned channel receives exactly one Reply, then is closed.
type Agent interface {
	Color() entity.Color
	Session() string
	Move(ctx context.Context, adversary entity.Move) <-chan Reply
}

// resolve - runs fn in the background and delivers its outcome once.
func resolve(fn func() (entity.Coordinate, error)) <-chan Reply {
	replyCh := make(chan Reply, 1)

	go func() {
		defer close(replyCh)

		move, err := fn()
		replyCh <- Reply{Move: move, Err: err}
	}()

	return replyCh
}
