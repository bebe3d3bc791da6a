package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/agent"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/gomoku"
)

const (
	sendBufferSize = 32
	writeWait      = 10 * time.Second
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Server is the browser board: it streams the match to every connected page
// and takes the human's selections from them.
type Server struct {
	logger   *slog.Logger
	selector *agent.Selector
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	board   *gomoku.Board
	state   json.RawMessage

	handlers map[string]func(ctx context.Context, c *client, message *Message) error
}

func New(logger *slog.Logger) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},

		clients: make(map[*client]struct{}),
		board:   gomoku.NewBoard(),

		handlers: make(map[string]func(context.Context, *client, *Message) error),
	}

	server.selector = agent.NewSelector(func(color entity.Color) {
		server.broadcast(actionTurnAwait, TurnPayload{Color: color})
	})
	server.handlers[actionBoardSelect] = server.handleSelect

	return server
}

// ServeHTTP - upgrades the connection to WebSocket and serves it until the page goes away.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Debug("unable to upgrade connection", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}

	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		_ = conn.Close()
		return
	}
	that.clients[c] = struct{}{}
	// the buffer is empty, so the greeting never blocks
	if greeting, err := that.stateMessage(); err == nil {
		c.send <- greeting
	}
	that.mu.Unlock()

	log.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	go that.writeLoop(c)
	that.readLoop(req.Context(), c)
}

// NextSelection - announces the wait to every page and blocks until one of them selects a cell.
func (that *Server) NextSelection(ctx context.Context, color entity.Color) (entity.Coordinate, error) {
	c, err := that.selector.NextSelection(ctx, color)
	if err != nil {
		return entity.Coordinate{}, fmt.Errorf("failed to wait for board selection: %w", err)
	}

	return c, nil
}

func (that *Server) MatchStarted(_ context.Context, match *entity.Match) {
	that.mu.Lock()
	that.board = gomoku.NewBoard()
	that.mu.Unlock()

	that.keepState(match)
	that.broadcast(actionMatchState, that.statePayload())
}

func (that *Server) StonePlaced(_ context.Context, match *entity.Match, stone entity.Stone) {
	that.mu.Lock()
	if _, err := that.board.Apply(stone.Coordinate, stone.Color); err != nil {
		that.logger.Warn("board out of sync", "position", stone.String(), "error", err)
	}
	that.mu.Unlock()

	that.keepState(match)
	that.broadcast(actionStonePlaced, StonePayload{Stone: stone, Turn: match.Turn})
}

func (that *Server) MatchFinished(_ context.Context, match *entity.Match) {
	that.keepState(match)
	that.broadcast(actionMatchOver, OverPayload{Result: match.Result, Steps: match.Step})
}

// Close - drops every page, refuses new ones and fails the pending selection.
func (that *Server) Close() {
	that.selector.Close()

	that.mu.Lock()
	defer that.mu.Unlock()

	that.closed = true

	for c := range that.clients {
		delete(that.clients, c)
		close(c.send)
		_ = c.conn.Close()
	}
}

func (that *Server) readLoop(ctx context.Context, c *client) {
	log := that.logger.With("method", "readLoop")

	defer that.drop(c)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			continue
		}

		if err = handler(ctx, c, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) writeLoop(c *client) {
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			that.logger.Debug("failed to write message", "error", err)
			_ = c.conn.Close()
			for range c.send {
			}
			return
		}
	}
}

func (that *Server) drop(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.clients[c]; !ok {
		return
	}

	delete(that.clients, c)
	close(c.send)
	_ = c.conn.Close()
}

func (that *Server) broadcast(action string, payload any) {
	data, err := encodeMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to encode broadcast", "action", action, "error", err)
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for c := range that.clients {
		select {
		case c.send <- data:
		default:
			// slow page, it reloads the state on reconnect
			delete(that.clients, c)
			close(c.send)
			_ = c.conn.Close()
		}
	}
}

func (that *Server) reply(c *client, action string, payload any) error {
	data, err := encodeMessage(action, payload)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.clients[c]; !ok {
		return nil
	}

	select {
	case c.send <- data:
	default:
	}

	return nil
}

func (that *Server) keepState(match *entity.Match) {
	raw, err := json.Marshal(match)
	if err != nil {
		that.logger.Error("failed to marshal match", "match", match.ID, "error", err)
		return
	}

	that.mu.Lock()
	that.state = raw
	that.mu.Unlock()
}

func (that *Server) statePayload() StatePayload {
	that.mu.Lock()
	defer that.mu.Unlock()

	awaiting, _ := that.selector.Waiting()

	return StatePayload{Match: that.state, Awaiting: awaiting}
}

// stateMessage expects mu to be held.
func (that *Server) stateMessage() ([]byte, error) {
	awaiting, _ := that.selector.Waiting()

	return encodeMessage(actionMatchState, StatePayload{Match: that.state, Awaiting: awaiting})
}
