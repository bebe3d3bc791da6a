package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/apperror"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
)

func TestMemoryMatchRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores a copy of the snapshot", func(t *testing.T) {
		// Given: a stored match
		matchRepo := NewMemoryMatchRepository(time.Minute)
		match := sampleMatch()
		require.NoError(t, matchRepo.CreateOrUpdate(ctx, match))

		// When: the caller keeps mutating its match
		match.Record(entity.Stone{Coordinate: entity.Coordinate{X: 8, Y: 8}, Color: entity.White, Step: 2})

		// Then: the stored snapshot is unchanged
		stored, err := matchRepo.GetByID(ctx, match.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Stones, 1)
		assert.Equal(t, 1, stored.Step)
	})

	t.Run("Expires after ttl", func(t *testing.T) {
		// Given: a repository with a controllable clock
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		matchRepo := &memMatch{entries: make(map[string]memoryEntry), ttl: time.Minute, now: func() time.Time { return now }}
		require.NoError(t, matchRepo.CreateOrUpdate(ctx, sampleMatch()))

		// When: the ttl passes
		now = now.Add(2 * time.Minute)

		// Then: the match is not found anymore
		_, err := matchRepo.GetByID(ctx, "123")
		require.ErrorIs(t, err, apperror.ErrMatchNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		// Given: a stored match
		matchRepo := NewMemoryMatchRepository(0)
		require.NoError(t, matchRepo.CreateOrUpdate(ctx, sampleMatch()))

		// When: it is deleted twice
		first := matchRepo.DeleteByID(ctx, "123")
		second := matchRepo.DeleteByID(ctx, "123")

		// Then: the second delete reports not found
		require.NoError(t, first)
		require.ErrorIs(t, second, apperror.ErrMatchNotFound)
	})
}
