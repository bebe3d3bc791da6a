package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
)

func (that *Server) handleSelect(_ context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleSelect")

	var payload SelectPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.X == nil || payload.Y == nil {
		return that.sendError(c, "x and y are required")
	}

	cell := entity.Coordinate{X: *payload.X, Y: *payload.Y}
	if !cell.Valid() {
		return that.sendError(c, "cell is outside the board")
	}

	that.mu.Lock()
	_, occupied := that.board.At(cell)
	that.mu.Unlock()

	if occupied {
		return that.sendError(c, "cell is already occupied")
	}

	if !that.selector.Offer(cell) {
		return that.sendError(c, "no move is awaited")
	}

	log.Info("board selection", "position", cell.String())

	return nil
}

func (that *Server) sendError(c *client, text string) error {
	return that.reply(c, actionError, ErrorPayload{Error: text})
}
