package usecase

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/agent"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/apperror"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/pkg"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Participant is one configured computer player.
type Participant struct {
	Name string
	API  string
}

// Setup is what the match configuration surface selects.
type Setup struct {
	Mode        string
	HumanColor  entity.Color
	HumanName   string
	Black       Participant
	White       Participant
	AI          Participant
	MoveTimeout time.Duration
}

type Contender struct {
	Seat  *entity.Seat
	Agent agent.Agent
}

type Lineup struct {
	Mode  string
	Black Contender
	White Contender
}

// NewLineup - binds an agent variant to each seat according to the mode.
// Every call generates two fresh sessions, so two bots of the same service never share one.
func NewLineup(logger *slog.Logger, setup Setup, surface agent.Surface, client httpDoer) (*Lineup, error) {
	sessionA := pkg.GenerateSessionID()
	sessionB := pkg.GenerateSessionID()

	switch setup.Mode {
	case entity.ModeComputerVsComputer:
		if setup.Black.API == "" || setup.White.API == "" {
			return nil, fmt.Errorf("%w: both computer seats need an api", apperror.ErrEndpointIsRequired)
		}

		black := remoteContender(logger, client, setup.MoveTimeout, &entity.Seat{
			Color: entity.Black, Name: setup.Black.Name, Kind: entity.KindRemote, Session: sessionA, Endpoint: setup.Black.API,
		})
		white := remoteContender(logger, client, setup.MoveTimeout, &entity.Seat{
			Color: entity.White, Name: setup.White.Name, Kind: entity.KindRemote, Session: sessionB, Endpoint: setup.White.API,
		})

		return &Lineup{Mode: setup.Mode, Black: black, White: white}, nil

	case entity.ModeHumanVsComputer:
		if !setup.HumanColor.Valid() {
			return nil, fmt.Errorf("%w: human color %q", apperror.ErrUnknownColor, setup.HumanColor)
		}
		if setup.AI.API == "" {
			return nil, fmt.Errorf("%w: computer seat needs an api", apperror.ErrEndpointIsRequired)
		}
		if surface == nil {
			return nil, fmt.Errorf("%w: human seat needs a board", apperror.ErrSurfaceClosed)
		}

		humanSeat := &entity.Seat{Color: setup.HumanColor, Name: setup.HumanName, Kind: entity.KindLocal, Session: sessionB}
		human := Contender{Seat: humanSeat, Agent: agent.NewLocal(logger, surface, humanSeat)}

		computer := remoteContender(logger, client, setup.MoveTimeout, &entity.Seat{
			Color: setup.HumanColor.Opposite(), Name: setup.AI.Name, Kind: entity.KindRemote, Session: sessionA, Endpoint: setup.AI.API,
		})

		if setup.HumanColor == entity.Black {
			return &Lineup{Mode: setup.Mode, Black: human, White: computer}, nil
		}
		return &Lineup{Mode: setup.Mode, Black: computer, White: human}, nil

	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownMode, setup.Mode)
	}
}

func remoteContender(logger *slog.Logger, client httpDoer, timeout time.Duration, seat *entity.Seat) Contender {
	return Contender{Seat: seat, Agent: agent.NewRemote(logger, client, seat, timeout)}
}
