/*
2019 © Postgres.ai
*/

// Package bot provides the HTTP server of the meme slash command.
package bot

import (
	"context"
	"html"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hako/durafmt"
	"github.com/pkg/errors"
	"gitlab.com/postgres-ai/database-lab/pkg/log"

	"gitlab.com/postgres-ai/memebot/pkg/auth"
	"gitlab.com/postgres-ai/memebot/pkg/command"
	"gitlab.com/postgres-ai/memebot/pkg/config"
	"gitlab.com/postgres-ai/memebot/pkg/responder"
)

const defaultShutdownTimeout = 15 * time.Second

// App defines the slash command application.
type App struct {
	Config config.Config

	dispatcher *Dispatcher
	pool       *responder.Pool
}

// NewApp creates a new application.
func NewApp(cfg config.Config, captioner responder.Captioner) *App {
	callback := responder.NewCallback(cfg.Callback.Timeout)
	replier := responder.NewResponder(captioner, callback, cfg.Slash.IconURL)
	pool := responder.NewPool(cfg.Workers.MaxInFlight, replier.Reply)

	dispatcher := NewDispatcher(
		auth.NewTokenSet(cfg.Slash.Tokens),
		command.Interpreter{IconURL: cfg.Slash.IconURL},
		pool,
		cfg.App.AuditEnabled,
	)

	return &App{
		Config:     cfg,
		dispatcher: dispatcher,
		pool:       pool,
	}
}

// Handler builds the HTTP routes of the application.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Method(http.MethodPost, "/", a.dispatcher)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

// RunServer serves slash commands until the context is done.
func (a *App) RunServer(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.Config.App.Address(),
		Handler: a.Handler(),
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Msg("Server start listening on", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "HTTP server error")
		}

		return nil

	case <-ctx.Done():
	}

	log.Msg("Starting graceful shutdown...")

	timeout := a.Config.App.ShutdownTimeout
	if timeout == 0 {
		timeout = defaultShutdownTimeout
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Err("Graceful shutdown failed, forcing close:", err)

		if closeErr := srv.Close(); closeErr != nil {
			return errors.Wrap(closeErr, "could not stop server")
		}
	}

	if err := a.pool.Wait(shutdownCtx); err != nil {
		log.Err("Delayed replies are dropped:", err)
	}

	log.Msg("Server stopped")

	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		log.Msg("Request", middleware.GetReqID(r.Context()), r.Method, html.EscapeString(r.URL.Path),
			ww.Status(), durafmt.Parse(time.Since(start)).String())
	})
}
