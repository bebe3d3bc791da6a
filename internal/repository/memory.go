package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/apperror"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// memMatch keeps snapshots in process when no redis is configured.
type memMatch struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryMatchRepository(ttl time.Duration) MatchRepository {
	return &memMatch{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (that *memMatch) CreateOrUpdate(_ context.Context, match *entity.Match) error {
	matchJSON, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("could not marshal match: %w", err)
	}

	entry := memoryEntry{payload: matchJSON}
	if that.ttl > 0 {
		entry.expiresAt = that.now().Add(that.ttl)
	}

	that.mu.Lock()
	that.entries[match.ID] = entry
	that.mu.Unlock()

	return nil
}

func (that *memMatch) GetByID(_ context.Context, id string) (*entity.Match, error) {
	that.mu.RLock()
	entry, ok := that.entries[id]
	that.mu.RUnlock()

	if !ok || that.expired(entry) {
		return &entity.Match{}, apperror.ErrMatchNotFound
	}

	var existingMatch entity.Match
	if err := json.Unmarshal(entry.payload, &existingMatch); err != nil {
		return &entity.Match{}, fmt.Errorf("failed to unmarshal match: %w", err)
	}

	return &existingMatch, nil
}

func (that *memMatch) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.entries[id]
	if !ok || that.expired(entry) {
		delete(that.entries, id)
		return apperror.ErrMatchNotFound
	}

	delete(that.entries, id)

	return nil
}

func (that *memMatch) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && that.now().After(entry.expiresAt)
}
