package agent

import (
	"context"
	"testing"
	"time"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/apperror"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type selection struct {
	move entity.Coordinate
	err  error
}

func waitSelection(ctx context.Context, selector *Selector, color entity.Color) <-chan selection {
	resultCh := make(chan selection, 1)
	go func() {
		move, err := selector.NextSelection(ctx, color)
		resultCh <- selection{move, err}
	}()

	return resultCh
}

func armed(t *testing.T, selector *Selector) entity.Color {
	t.Helper()

	var color entity.Color
	require.Eventually(t, func() bool {
		var ok bool
		color, ok = selector.Waiting()
		return ok
	}, 5*time.Second, time.Millisecond)

	return color
}

func TestSelector(t *testing.T) {
	t.Run("Offer without a wait is dropped", func(t *testing.T) {
		selector := NewSelector(nil)

		// When: a cell is offered while nobody waits
		ok := selector.Offer(entity.Coordinate{X: 1, Y: 1})

		// Then: it is not queued for a later wait
		assert.False(t, ok)
		_, waiting := selector.Waiting()
		assert.False(t, waiting)
	})

	t.Run("Offer resolves the pending wait once", func(t *testing.T) {
		// Given: a wait for white
		selector := NewSelector(nil)
		resultCh := waitSelection(context.Background(), selector, entity.White)
		assert.Equal(t, entity.White, armed(t, selector))

		// When: two cells are offered
		first := selector.Offer(entity.Coordinate{X: 5, Y: 5})
		second := selector.Offer(entity.Coordinate{X: 6, Y: 6})

		// Then: only the first one is taken
		assert.True(t, first)
		assert.False(t, second)

		result := <-resultCh
		require.NoError(t, result.err)
		assert.Equal(t, entity.Coordinate{X: 5, Y: 5}, result.move)
	})

	t.Run("Announces the wait once armed", func(t *testing.T) {
		// Given: a selector that forwards the hook to a channel
		announced := make(chan entity.Color, 1)
		var selector *Selector
		selector = NewSelector(func(color entity.Color) {
			_, waiting := selector.Waiting()
			assert.True(t, waiting)
			announced <- color
		})

		// When: a wait starts
		resultCh := waitSelection(context.Background(), selector, entity.Black)

		// Then: the hook sees an armed selector and an offer made from it is taken
		require.Equal(t, entity.Black, <-announced)
		require.True(t, selector.Offer(entity.Coordinate{X: 0, Y: 14}))
		assert.Equal(t, entity.Coordinate{X: 0, Y: 14}, (<-resultCh).move)
	})

	t.Run("Cancelled wait", func(t *testing.T) {
		selector := NewSelector(nil)
		ctx, cancel := context.WithCancel(context.Background())
		resultCh := waitSelection(ctx, selector, entity.Black)
		armed(t, selector)

		cancel()

		result := <-resultCh
		require.ErrorIs(t, result.err, context.Canceled)
		assert.Eventually(t, func() bool {
			_, waiting := selector.Waiting()
			return !waiting
		}, 5*time.Second, time.Millisecond)
	})

	t.Run("Close releases the wait", func(t *testing.T) {
		// Given: a pending wait
		selector := NewSelector(nil)
		resultCh := waitSelection(context.Background(), selector, entity.Black)
		armed(t, selector)

		// When: the selector is closed
		selector.Close()

		// Then: the wait and every later one fail with ErrSurfaceClosed
		require.ErrorIs(t, (<-resultCh).err, apperror.ErrSurfaceClosed)

		_, err := selector.NextSelection(context.Background(), entity.Black)
		require.ErrorIs(t, err, apperror.ErrSurfaceClosed)
	})
}
