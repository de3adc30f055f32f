// Package server exposes the download queue over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"

	"zeku/internal/app"
	"zeku/internal/domain/consts"
	"zeku/internal/domain/logger"
	znet "zeku/internal/net"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type server struct {
	app *app.App
}

// NewRouter returns a http Handler.
func NewRouter(a *app.App) http.Handler {
	s := &server{app: a}

	// Initialize router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	// --- API Routes ---
	r.Route("/api/v1", func(r chi.Router) {
		// Downloads API
		r.Route("/downloads", func(r chi.Router) {
			r.Get("/", s.handleListDownloads)
			r.Post("/", s.handleAddDownloads)
			r.Delete("/", s.handleDeleteDownloads)
			r.Get("/counts", s.handleCounts)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDownload)
				r.Delete("/", s.handleDeleteDownload)
				r.Post("/cancel", s.handleLifecycle(s.app.Queue.Cancel))
				r.Post("/pause", s.handleLifecycle(s.app.Queue.Pause))
				r.Post("/resume", s.handleLifecycle(s.app.Queue.Resume))
				r.Post("/retry", s.handleLifecycle(s.app.Queue.Retry))
				r.Post("/save", s.handleLifecycle(s.app.Queue.Save))
				r.Put("/schedule", s.handleReschedule)
			})
		})

		// History API
		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleListHistory)
			r.Delete("/{id}", s.handleDeleteHistory)
		})

		// Logs API
		r.Get("/logs/{id}", s.handleGetLog)

		// Dispatcher state
		r.Get("/dispatcher", s.handleDispatcher)
	})

	return r
}

// StartServer serves the API on addr until ctx is cancelled.
func StartServer(ctx context.Context, a *app.App, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(a),
		ReadHeaderTimeout: consts.ServerReadHeader,
	}

	switch {
	case znet.IsUnspecified(addr):
		logger.Pl.W("API listening on every interface (%s) without authentication", addr)
	case !znet.IsPrivateNetwork(addr):
		logger.Pl.W("API address %s is not on a private network and has no authentication", addr)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Pl.S("Zeku web server running on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), consts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// requestLogger logs each request through the program logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Pl.D(2, "%s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), middleware.GetReqID(r.Context()))
	})
}
