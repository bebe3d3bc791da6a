package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type Server struct {
	logger *slog.Logger
	srv    *http.Server
}

// New - builds the HTTP server; board is mounted at /ws when it is not nil.
func New(logger *slog.Logger, port string, matches matchReader, board http.Handler) *Server {
	matchHandler := NewMatchHandler(logger, matches)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", PingHandler)
	mux.HandleFunc("GET /matches/{id}", matchHandler.GetMatch)
	if board != nil {
		mux.Handle("/ws", board)
	}

	return &Server{
		logger: logger.With("component", "rest"),
		srv: &http.Server{
			Addr:         ":" + port,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

func (that *Server) Handler() http.Handler {
	return that.srv.Handler
}

// Start - serves until Shutdown is called.
func (that *Server) Start() error {
	if err := that.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
