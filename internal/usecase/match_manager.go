package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/agent"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/apperror"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/gomoku"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/pkg"
)

type matchRepo interface {
	CreateOrUpdate(ctx context.Context, match *entity.Match) error
}

// Observer is told about every stone and the end of the match, e.g. to draw it.
// The match is only valid for the duration of the call.
type Observer interface {
	MatchStarted(ctx context.Context, match *entity.Match)
	StonePlaced(ctx context.Context, match *entity.Match, stone entity.Stone)
	MatchFinished(ctx context.Context, match *entity.Match)
}

type MatchManager struct {
	logger    *slog.Logger
	matchRepo matchRepo
	observers []Observer
}

func NewMatchManager(logger *slog.Logger, matchRepo matchRepo, observers ...Observer) *MatchManager {
	return &MatchManager{
		logger: logger.With("component", "match_manager"),

		matchRepo: matchRepo,
		observers: observers,
	}
}

// Play - drives the lineup through alternating moves until a seat forfeits or breaks the protocol.
// A sentinel forfeit returns a nil error; every other way a match ends returns an error describing it.
func (that *MatchManager) Play(ctx context.Context, lineup *Lineup) (*entity.Match, error) {
	match := entity.NewMatch(pkg.GenerateMatchID(), lineup.Mode, lineup.Black.Seat, lineup.White.Seat)
	log := that.logger.With("method", "Play", "match", match.ID, "mode", match.Mode)

	agents := map[entity.Color]agent.Agent{
		entity.Black: lineup.Black.Agent,
		entity.White: lineup.White.Agent,
	}
	board := gomoku.NewBoard()

	match.StartedAt = time.Now().UTC()
	match.State = entity.StateAwaitingOpening
	match.Turn = entity.Black

	log.Info("match started",
		"black", match.Black.Name, "black_session", match.Black.Session,
		"white", match.White.Name, "white_session", match.White.Session)

	that.saveMatch(ctx, match)
	for _, observer := range that.observers {
		observer.MatchStarted(ctx, match)
	}

	adversary := entity.Opening()
	for {
		color := match.Turn
		replyCh := agents[color].Move(ctx, adversary)

		var reply agent.Reply
		select {
		case r, ok := <-replyCh:
			if !ok {
				r = agent.Reply{Err: apperror.ErrAgentUnresponsive}
			}
			reply = r
		case <-ctx.Done():
			return that.finish(ctx, match, color, entity.ReasonCancelled, ctx.Err())
		}

		if reply.Err != nil {
			reason, cause := classify(ctx, reply.Err)
			return that.finish(ctx, match, color, reason, cause)
		}

		move := reply.Move
		if move.IsSentinel() {
			log.Info("seat failed", "color", color, "step", match.Step)
			return that.finish(ctx, match, color, entity.ReasonForfeit, nil)
		}

		step, err := board.Apply(move, color)
		if errors.Is(err, apperror.ErrCellOccupied) {
			log.Warn("seat replayed an occupied cell", "color", color, "position", move.String())
			return that.finish(ctx, match, color, entity.ReasonOccupied, err)
		}
		if err != nil {
			return that.finish(ctx, match, color, entity.ReasonInvalidCoordinate, err)
		}

		stone := entity.Stone{Coordinate: move, Color: color, Step: step}
		match.Record(stone)
		match.State = entity.StateAwaitingReply
		match.Turn = color.Opposite()

		log.Info("move", "step", step, "color", color, "position", move.String())

		for _, observer := range that.observers {
			observer.StonePlaced(ctx, match, stone)
		}
		that.saveMatch(ctx, match)

		adversary = entity.Played(move)
	}
}

// classify - maps an agent failure to the reason the match ends with.
func classify(ctx context.Context, err error) (string, error) {
	switch {
	case ctx.Err() != nil:
		return entity.ReasonCancelled, ctx.Err()
	case errors.Is(err, apperror.ErrMalformedMove):
		return entity.ReasonInvalidCoordinate, err
	case errors.Is(err, apperror.ErrAgentUnresponsive):
		return entity.ReasonUnresponsive, err
	default:
		return entity.ReasonUnresponsive, fmt.Errorf("%w: %w", apperror.ErrAgentUnresponsive, err)
	}
}

func (that *MatchManager) finish(ctx context.Context, match *entity.Match, forfeit entity.Color, reason string, cause error) (*entity.Match, error) {
	log := that.logger.With("method", "finish", "match", match.ID)

	detail := ""
	if cause != nil {
		detail = cause.Error()
	}

	match.Terminate(forfeit, reason, detail)

	// the final snapshot is stored even when the match ends because ctx was cancelled
	ctx = context.WithoutCancel(ctx)

	for _, observer := range that.observers {
		observer.MatchFinished(ctx, match)
	}
	that.saveMatch(ctx, match)

	log.Info("game over", "forfeit", forfeit, "survivor", match.Result.Survivor, "reason", reason, "steps", match.Step)

	if cause != nil {
		return match, fmt.Errorf("%s seat: %w", forfeit, cause)
	}

	return match, nil
}

func (that *MatchManager) saveMatch(ctx context.Context, match *entity.Match) {
	if err := that.matchRepo.CreateOrUpdate(ctx, match); err != nil {
		that.logger.Error("failed to save match", "match", match.ID, "error", err)
	}
}
