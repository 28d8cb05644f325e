package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	shutdownTimeout  = 5 * time.Second
	baseWriteTimeout = 10 * time.Second
)

// WriteTimeout leaves a response the base budget on top of the AI thinking delay, so a
// move request is never cut off while the AI is waiting.
func WriteTimeout(aiDelay time.Duration) time.Duration {
	return baseWriteTimeout + max(aiDelay, 0)
}

// NewRouter wires the HTTP routes.
func NewRouter(ping PingHandler, games GameHandler) http.Handler {
	r := chi.NewRouter()

	r.Get("/ping", ping.Ping)

	r.Route("/games", func(r chi.Router) {
		r.Post("/", games.CreateGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", games.GetGame)
			r.Delete("/", games.DeleteGame)
			r.Post("/start", games.StartGame)
			r.Post("/moves", games.MakeMove)
		})
	})

	return r
}

func newServer(port string, handler http.Handler, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  30 * time.Second,
	}
}

// Start serves handler on port until ctx is cancelled.
func Start(ctx context.Context, logger *slog.Logger, port string, handler http.Handler, writeTimeout time.Duration) error {
	log := logger.With("component", "http_server")

	srv := newServer(port, handler, writeTimeout)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
