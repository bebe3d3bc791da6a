package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/agent"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/config"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/repository"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/repository/storage"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/usecase"
	"github.com/rocketscienceinc/gomoku-arbiter/transport/rest"
	"github.com/rocketscienceinc/gomoku-arbiter/transport/terminal"
	"github.com/rocketscienceinc/gomoku-arbiter/transport/websocket"
)

const shutdownTimeout = 5 * time.Second

type outcome struct {
	match *entity.Match
	err   error
}

// RunApp - runs one match and returns once it is over.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	matchRepo, closeRepo, err := initMatchRepository(ctx, conf)
	if err != nil {
		return err
	}
	defer closeRepo(log)

	webBoard := websocket.New(logger)
	defer webBoard.Close()

	observers := []usecase.Observer{webBoard}
	var surface agent.Surface = webBoard

	var termBoard *terminal.Board
	if conf.Surface == config.SurfaceTerminal {
		termBoard = terminal.New(logger)
		observers = append(observers, termBoard)
		surface = termBoard
	}

	lineup, err := usecase.NewLineup(logger, newSetup(conf), surface, &http.Client{})
	if err != nil {
		return fmt.Errorf("could not seat the players: %w", err)
	}

	matchManager := usecase.NewMatchManager(logger, matchRepo, observers...)

	// run HTTP server
	restServer := rest.New(logger, conf.HTTPPort, matchRepo, webBoard)
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := restServer.Start(); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	defer func() {
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()

		if shutdownErr := restServer.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error("could not stop HTTP server", "error", shutdownErr)
		}
	}()

	// run terminal board
	termDone := make(chan struct{})
	if termBoard != nil {
		go func() {
			defer close(termDone)

			if termErr := termBoard.Run(ctx); termErr != nil {
				log.Error("terminal board error", "error", termErr)
			}
			termBoard.Close()
			cancel()
		}()
	}

	matchDone := make(chan outcome, 1)
	go func() {
		match, playErr := matchManager.Play(ctx, lineup)
		matchDone <- outcome{match: match, err: playErr}
	}()

	select {
	case err = <-httpErrCh:
		cancel()
		<-matchDone
		return fmt.Errorf("HTTP server error: %w", err)
	case result := <-matchDone:
		logOutcome(log, result)
	}

	return holdAfterMatch(ctx, log, conf, termDone, httpErrCh)
}

// holdAfterMatch - keeps the boards and /matches up once the match is over, until the human
// quits the terminal board or the process is told to stop. keep-serving: false skips the wait.
func holdAfterMatch(ctx context.Context, log *slog.Logger, conf *config.Config, termDone <-chan struct{}, httpErrCh <-chan error) error {
	if conf.Surface == config.SurfaceTerminal {
		<-termDone
		return nil
	}

	if !conf.KeepServing {
		return nil
	}

	log.Info("match is over, serving its snapshot until interrupted", "port", conf.HTTPPort)

	select {
	case <-ctx.Done():
		return nil
	case err := <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}

func initMatchRepository(ctx context.Context, conf *config.Config) (repository.MatchRepository, func(*slog.Logger), error) {
	if !conf.UsesRedis() {
		return repository.NewMemoryMatchRepository(conf.MatchTTL), func(*slog.Logger) {}, nil
	}

	redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr(), conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeRepo := func(log *slog.Logger) {
		if closeErr := redisStorage.Close(); closeErr != nil {
			log.Error("could not close redis storage", "error", closeErr)
		}
	}

	return repository.NewMatchRepository(redisStorage.Connection, conf.MatchTTL), closeRepo, nil
}

func newSetup(conf *config.Config) usecase.Setup {
	return usecase.Setup{
		Mode:        conf.Mode,
		HumanColor:  entity.Color(conf.HumanColor),
		HumanName:   conf.HumanName,
		Black:       usecase.Participant{Name: conf.Black.Name, API: conf.Black.API},
		White:       usecase.Participant{Name: conf.White.Name, API: conf.White.API},
		AI:          usecase.Participant{Name: conf.AI.Name, API: conf.AI.API},
		MoveTimeout: conf.MoveTimeout,
	}
}

func logOutcome(log *slog.Logger, result outcome) {
	match := result.match
	attrs := []any{"match", match.ID, "steps", match.Step}
	if match.Result != nil {
		attrs = append(attrs, "forfeit", match.Result.Forfeit, "survivor", match.Result.Survivor, "reason", match.Result.Reason)
	}

	if result.err != nil {
		log.Warn("match ended abnormally", append(attrs, "error", result.err)...)
		return
	}

	log.Info("match ended", attrs...)
}
