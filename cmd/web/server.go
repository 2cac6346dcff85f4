package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 30 * time.Second

func (app *application) newServer() *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.port),
		Handler: app.routes(),
		TLSConfig: &tls.Config{
			MinVersion:       tls.VersionTLS12,
			CurvePreferences: []tls.CurveID{tls.X25519, tls.CurveP256},
		},
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelWarn),
	}
}

// serve runs until SIGINT or SIGTERM, then drains in-flight requests.
func (app *application) serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := app.newServer()
	useTLS := app.config.tls.certFile != ""

	errs := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "addr", srv.Addr, "tls", useTLS, "validation", app.validationMode.String())

		if useTLS {
			errs <- srv.ListenAndServeTLS(app.config.tls.certFile, app.config.tls.keyFile)
			return
		}
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	app.logger.Info("shutting down server", "addr", srv.Addr)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

var logLevels = map[string]slog.Level{
	"trace":   slog.Level(-8),
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// logLevel maps a -log-level name to a slog level; unknown names log errors only.
func logLevel(name string) slog.Level {
	if level, ok := logLevels[name]; ok {
		return level
	}
	return slog.LevelError
}
