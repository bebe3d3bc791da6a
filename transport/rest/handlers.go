package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/apperror"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
)

type matchReader interface {
	GetByID(ctx context.Context, id string) (*entity.Match, error)
}

func PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

type MatchHandler struct {
	logger  *slog.Logger
	matches matchReader
}

func NewMatchHandler(logger *slog.Logger, matches matchReader) *MatchHandler {
	return &MatchHandler{
		logger:  logger.With("component", "match_handler"),
		matches: matches,
	}
}

// GetMatch - writes the stored snapshot of a live match.
func (that *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetMatch")

	id := r.PathValue("id")

	match, err := that.matches.GetByID(r.Context(), id)
	if errors.Is(err, apperror.ErrMatchNotFound) {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error("failed to get match", "match", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(match); err != nil {
		log.Error("failed to write match", "match", id, "error", err)
	}
}
