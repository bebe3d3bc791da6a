// Package terminal draws the match on a tview board and takes the human's moves from the keyboard.
package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/agent"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/gomoku"
)

const (
	blackStone = '●'
	whiteStone = '○'
)

type Board struct {
	logger   *slog.Logger
	app      *tview.Application
	box      *tview.Box
	hint     *tview.TextView
	selector *agent.Selector
	queue    func(update func())

	quitOnce sync.Once
	quit     chan struct{}
	stopOnce sync.Once
	stopped  chan struct{}

	mu       sync.Mutex
	board    *gomoku.Board
	names    map[entity.Color]string
	last     *entity.Stone
	selX     int
	selY     int
	awaiting entity.Color
	result   *entity.Result
}

func New(logger *slog.Logger) *Board {
	board := &Board{
		logger:  logger.With("component", "terminal"),
		app:     tview.NewApplication(),
		box:     tview.NewBox(),
		hint:    tview.NewTextView(),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),

		board: gomoku.NewBoard(),
		names: make(map[entity.Color]string),
		selX:  entity.Size / 2,
		selY:  entity.Size / 2,
	}

	board.queue = func(update func()) {
		// QueueUpdateDraw must not be called from the draw goroutine
		go board.app.QueueUpdateDraw(update)
	}
	board.selector = agent.NewSelector(func(color entity.Color) {
		board.mu.Lock()
		board.awaiting = color
		board.mu.Unlock()
		board.redraw()
	})

	board.box.SetDrawFunc(board.draw)
	board.box.SetInputCapture(board.handleKey)

	return board
}

// Run - shows the board until ctx is done or the human quits.
func (that *Board) Run(ctx context.Context) error {
	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(that.box, entity.Size+2, 0, true).
		AddItem(that.hint, 0, 1, false)

	go func() {
		select {
		case <-ctx.Done():
		case <-that.quit:
		}
		that.stop()
		that.app.Stop()
	}()

	that.refreshHint()
	err := that.app.SetRoot(layout, true).Run()
	that.stop()
	if err != nil {
		return fmt.Errorf("failed to run terminal board: %w", err)
	}

	return nil
}

func (that *Board) stop() {
	that.stopOnce.Do(func() {
		close(that.stopped)
	})
}

// redraw - queues a hint refresh, unless the board has been quit or stopped.
func (that *Board) redraw() {
	select {
	case <-that.quit:
		return
	case <-that.stopped:
		return
	default:
	}

	that.queue(that.refreshHint)
}

// Done - closed when the human quits.
func (that *Board) Done() <-chan struct{} {
	return that.quit
}

func (that *Board) NextSelection(ctx context.Context, color entity.Color) (entity.Coordinate, error) {
	c, err := that.selector.NextSelection(ctx, color)

	that.mu.Lock()
	that.awaiting = ""
	that.mu.Unlock()
	that.redraw()

	if err != nil {
		return entity.Coordinate{}, fmt.Errorf("failed to wait for key selection: %w", err)
	}

	return c, nil
}

func (that *Board) MatchStarted(_ context.Context, match *entity.Match) {
	that.mu.Lock()
	that.board = gomoku.NewBoard()
	that.last = nil
	that.result = nil
	that.names[entity.Black] = seatName(match.Black)
	that.names[entity.White] = seatName(match.White)
	that.mu.Unlock()

	that.redraw()
}

func (that *Board) StonePlaced(_ context.Context, _ *entity.Match, stone entity.Stone) {
	that.mu.Lock()
	if _, err := that.board.Apply(stone.Coordinate, stone.Color); err != nil {
		that.logger.Warn("board out of sync", "position", stone.String(), "error", err)
	}
	that.last = &stone
	that.mu.Unlock()

	that.redraw()
}

func (that *Board) MatchFinished(_ context.Context, match *entity.Match) {
	that.mu.Lock()
	result := *match.Result
	that.result = &result
	that.awaiting = ""
	that.mu.Unlock()

	that.redraw()
}

// handleKey - moves the cursor, plays on Enter and quits on q.
func (that *Board) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyUp:
		that.moveSelection(0, -1)
	case tcell.KeyDown:
		that.moveSelection(0, 1)
	case tcell.KeyLeft:
		that.moveSelection(-1, 0)
	case tcell.KeyRight:
		that.moveSelection(1, 0)
	case tcell.KeyEnter:
		that.play()
	case tcell.KeyRune:
		switch event.Rune() {
		case 'h':
			that.moveSelection(-1, 0)
		case 'j':
			that.moveSelection(0, 1)
		case 'k':
			that.moveSelection(0, -1)
		case 'l':
			that.moveSelection(1, 0)
		case 'q':
			that.Close()
		default:
			return event
		}
	default:
		return event
	}

	return nil
}

// Close - fails the pending selection and stops the board.
func (that *Board) Close() {
	that.quitOnce.Do(func() {
		that.selector.Close()
		close(that.quit)
	})
}

func (that *Board) moveSelection(h, v int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	next := entity.Coordinate{X: that.selX + h, Y: that.selY + v}
	if !next.Valid() {
		return
	}

	that.selX, that.selY = next.X, next.Y
}

func (that *Board) play() {
	that.mu.Lock()
	cell := entity.Coordinate{X: that.selX, Y: that.selY}
	_, occupied := that.board.At(cell)
	that.mu.Unlock()

	if occupied {
		return
	}

	if that.selector.Offer(cell) {
		that.logger.Info("key selection", "position", cell.String())
	}
}

func (that *Board) draw(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	left, top := x+4, y+1
	gridStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)

	for col := 0; col < entity.Size; col++ {
		label := fmt.Sprintf("%-2d", col)
		screen.SetContent(left+col*2, y, rune(label[0]), nil, tcell.StyleDefault)
		screen.SetContent(left+col*2+1, y, rune(label[1]), nil, tcell.StyleDefault)
	}

	for row := 0; row < entity.Size; row++ {
		label := fmt.Sprintf("%2d", row)
		screen.SetContent(x+1, top+row, rune(label[0]), nil, tcell.StyleDefault)
		screen.SetContent(x+2, top+row, rune(label[1]), nil, tcell.StyleDefault)

		for col := 0; col < entity.Size; col++ {
			c := entity.Coordinate{X: col, Y: row}
			r, style := gridRune(col, row), gridStyle

			if stone, ok := that.board.At(c); ok {
				r, style = stoneRune(stone.Color), tcell.StyleDefault.Foreground(tcell.ColorWhite)
				if that.last != nil && that.last.Coordinate == c {
					style = style.Bold(true).Foreground(tcell.ColorYellow)
				}
			}
			if col == that.selX && row == that.selY && that.awaiting != "" {
				style = style.Reverse(true)
			}

			screen.SetContent(left+col*2, top+row, r, nil, style)
		}
	}

	return x, y, width, height
}

func (that *Board) refreshHint() {
	that.mu.Lock()
	text := that.hintText()
	that.mu.Unlock()

	that.hint.SetText(text)
}

// hintText expects mu to be held.
func (that *Board) hintText() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("  %c %s   %c %s   stones: %d\n\n",
		blackStone, that.names[entity.Black], whiteStone, that.names[entity.White], that.board.Step()))

	switch {
	case that.result != nil:
		b.WriteString(fmt.Sprintf("  Game over: %s wins, %s %s", that.result.Survivor, that.result.Forfeit, that.result.Reason))
		if that.result.Detail != "" {
			b.WriteString(fmt.Sprintf(" (%s)", that.result.Detail))
		}
		b.WriteString("\n\n  q · quit")
	case that.awaiting != "":
		b.WriteString(fmt.Sprintf("  %c Your move (%s)\n\n", stoneRune(that.awaiting), that.awaiting))
		b.WriteString("  hjkl/↑↓←→ move   ⏎ play   q quit")
	default:
		b.WriteString("  ◌ Thinking...\n\n  q quit")
	}

	return b.String()
}

func seatName(seat *entity.Seat) string {
	if seat.Name != "" {
		return seat.Name
	}

	return string(seat.Color)
}

func stoneRune(color entity.Color) rune {
	if color == entity.White {
		return whiteStone
	}

	return blackStone
}

func gridRune(x, y int) rune {
	last := entity.Size - 1

	switch {
	case y == 0 && x == 0:
		return '┌'
	case y == 0 && x == last:
		return '┐'
	case y == last && x == 0:
		return '└'
	case y == last && x == last:
		return '┘'
	case y == 0:
		return '┬'
	case y == last:
		return '┴'
	case x == 0:
		return '├'
	case x == last:
		return '┤'
	default:
		return '┼'
	}
}
