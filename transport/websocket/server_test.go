package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/apperror"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
)

func newTestServer(t *testing.T) (*Server, *websocket.Conn) {
	t.Helper()

	server := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	// the greeting tells us the page is registered
	greeting := readMessage(t, conn)
	require.Equal(t, actionMatchState, greeting.Action)

	return server, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var message Message
	require.NoError(t, conn.ReadJSON(&message))

	return message
}

func sendSelect(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(Message{Action: actionBoardSelect, Payload: json.RawMessage(payload)}))
}

func newMatch() *entity.Match {
	match := entity.NewMatch("match-1", entity.ModeHumanVsComputer,
		&entity.Seat{Color: entity.Black, Kind: entity.KindLocal, Name: "me"},
		&entity.Seat{Color: entity.White, Kind: entity.KindRemote, Name: "bot", Endpoint: "http://bot"},
	)
	match.State = entity.StateAwaitingOpening
	match.Turn = entity.Black

	return match
}

type selection struct {
	move entity.Coordinate
	err  error
}

func waitSelection(server *Server, color entity.Color) <-chan selection {
	resultCh := make(chan selection, 1)
	go func() {
		move, err := server.NextSelection(context.Background(), color)
		resultCh <- selection{move, err}
	}()

	return resultCh
}

func TestServer_Selection(t *testing.T) {
	// Given: a connected page and a started match
	server, conn := newTestServer(t)
	ctx := context.Background()
	match := newMatch()

	server.MatchStarted(ctx, match)
	state := readMessage(t, conn)
	require.Equal(t, actionMatchState, state.Action)

	// When: the local seat waits for black
	resultCh := waitSelection(server, entity.Black)

	// Then: the page is told to play black
	await := readMessage(t, conn)
	require.Equal(t, actionTurnAwait, await.Action)

	var turn TurnPayload
	require.NoError(t, json.Unmarshal(await.Payload, &turn))
	assert.Equal(t, entity.Black, turn.Color)

	// When: the page selects (7,7)
	sendSelect(t, conn, `{"x":7,"y":7}`)

	// Then: the wait resolves to it
	select {
	case result := <-resultCh:
		require.NoError(t, result.err)
		assert.Equal(t, entity.Coordinate{X: 7, Y: 7}, result.move)
	case <-time.After(5 * time.Second):
		t.Fatal("selection never resolved")
	}
}

func TestServer_RejectedSelections(t *testing.T) {
	server, conn := newTestServer(t)
	ctx := context.Background()
	match := newMatch()

	server.MatchStarted(ctx, match)
	readMessage(t, conn)

	// Given: a stone at (7,7)
	stone := entity.Stone{Coordinate: entity.Coordinate{X: 7, Y: 7}, Color: entity.Black, Step: 1}
	match.Record(stone)
	match.Turn = entity.White
	server.StonePlaced(ctx, match, stone)

	placed := readMessage(t, conn)
	require.Equal(t, actionStonePlaced, placed.Action)

	var payload StonePayload
	require.NoError(t, json.Unmarshal(placed.Payload, &payload))
	assert.Equal(t, stone, payload.Stone)
	assert.Equal(t, entity.White, payload.Turn)

	errorText := func() string {
		message := readMessage(t, conn)
		require.Equal(t, actionError, message.Action)

		var errPayload ErrorPayload
		require.NoError(t, json.Unmarshal(message.Payload, &errPayload))
		return errPayload.Error
	}

	// When: the page selects while nothing is awaited
	sendSelect(t, conn, `{"x":1,"y":1}`)

	// Then: the selection is refused
	assert.Equal(t, "no move is awaited", errorText())

	// Given: a wait for white
	resultCh := waitSelection(server, entity.White)
	require.Equal(t, actionTurnAwait, readMessage(t, conn).Action)

	// When: the page selects bad cells
	sendSelect(t, conn, `{"x":7,"y":7}`)
	assert.Equal(t, "cell is already occupied", errorText())

	sendSelect(t, conn, `{"x":15,"y":0}`)
	assert.Equal(t, "cell is outside the board", errorText())

	sendSelect(t, conn, `{"x":3}`)
	assert.Equal(t, "x and y are required", errorText())

	// Then: the wait is still pending, and a good cell resolves it
	sendSelect(t, conn, `{"x":0,"y":0}`)

	select {
	case result := <-resultCh:
		require.NoError(t, result.err)
		assert.Equal(t, entity.Coordinate{X: 0, Y: 0}, result.move)
	case <-time.After(5 * time.Second):
		t.Fatal("selection never resolved")
	}
}

func TestServer_MatchFinished(t *testing.T) {
	server, conn := newTestServer(t)
	ctx := context.Background()
	match := newMatch()

	// Given: a match that black forfeits
	server.MatchStarted(ctx, match)
	readMessage(t, conn)
	match.Terminate(entity.Black, entity.ReasonForfeit, "")

	// When: the observer is told
	server.MatchFinished(ctx, match)

	// Then: the page gets the result
	over := readMessage(t, conn)
	require.Equal(t, actionMatchOver, over.Action)

	var payload OverPayload
	require.NoError(t, json.Unmarshal(over.Payload, &payload))
	assert.Equal(t, entity.Black, payload.Result.Forfeit)
	assert.Equal(t, entity.White, payload.Result.Survivor)

	// Then: a page connecting afterwards receives the final snapshot
	late, err := encodeMessage(actionMatchState, server.statePayload())
	require.NoError(t, err)
	assert.Contains(t, string(late), `"state":"terminated"`)
}

func TestServer_Close(t *testing.T) {
	server, _ := newTestServer(t)

	// Given: a pending wait
	resultCh := waitSelection(server, entity.Black)
	require.Eventually(t, func() bool {
		_, waiting := server.selector.Waiting()
		return waiting
	}, 5*time.Second, time.Millisecond)

	// When: the board is closed
	server.Close()

	// Then: the wait fails with ErrSurfaceClosed
	require.ErrorIs(t, (<-resultCh).err, apperror.ErrSurfaceClosed)
}

func TestServer_ConnectDuringClose(t *testing.T) {
	// Given: a board and pages connecting to it
	server := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			if err != nil {
				return
			}
			defer conn.Close()

			_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			for {
				if _, _, err = conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}

	// When: the board is closed while pages are still arriving
	server.MatchStarted(context.Background(), newMatch())
	server.Close()
	wg.Wait()

	// Then: a page connecting afterwards is dropped without a greeting
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)

	server.mu.Lock()
	defer server.mu.Unlock()
	assert.Empty(t, server.clients)
}
