package agent

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/apperror"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
)

// Selector is a Surface building block: it hands one offered cell to the NextSelection call
// that is pending at that moment. Offers made while nobody waits are dropped.
type Selector struct {
	onArmed func(color entity.Color)

	mu      sync.Mutex
	pending chan entity.Coordinate
	color   entity.Color
	closed  bool
}

// NewSelector - onArmed, when set, is called each time a wait starts accepting offers.
func NewSelector(onArmed func(color entity.Color)) *Selector {
	return &Selector{onArmed: onArmed}
}

// NextSelection - blocks until a cell is offered, ctx is done or the selector is closed.
func (that *Selector) NextSelection(ctx context.Context, color entity.Color) (entity.Coordinate, error) {
	waitCh := make(chan entity.Coordinate, 1)

	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		return entity.Coordinate{}, apperror.ErrSurfaceClosed
	}
	that.pending = waitCh
	that.color = color
	that.mu.Unlock()

	if that.onArmed != nil {
		that.onArmed(color)
	}

	defer func() {
		that.mu.Lock()
		if that.pending == waitCh {
			that.pending = nil
		}
		that.mu.Unlock()
	}()

	select {
	case c, ok := <-waitCh:
		if !ok {
			return entity.Coordinate{}, apperror.ErrSurfaceClosed
		}
		return c, nil
	case <-ctx.Done():
		return entity.Coordinate{}, ctx.Err()
	}
}

// Offer - delivers c to the pending wait, reports false when there is none.
func (that *Selector) Offer(c entity.Coordinate) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.pending == nil {
		return false
	}

	that.pending <- c
	that.pending = nil

	return true
}

// Waiting - returns the color of the pending wait, if any.
func (that *Selector) Waiting() (entity.Color, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.pending == nil {
		return "", false
	}

	return that.color, true
}

// Close - releases the pending wait with ErrSurfaceClosed and rejects further ones.
func (that *Selector) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return
	}
	that.closed = true

	if that.pending != nil {
		close(that.pending)
		that.pending = nil
	}
}
