package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/smartrent-bridge/internal/app"
	"github.com/jrsteele09/smartrent-bridge/internal/config"
	"github.com/jrsteele09/smartrent-bridge/internal/logging"
	"github.com/jrsteele09/smartrent-bridge/server"
)

const maxRestarts = 3

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %s\n", err)
		os.Exit(1)
	}
	c := config.New()
	logger, closeLog := logging.New(logging.Options{
		Level:   c.GetLogLevel(),
		File:    c.GetLogFile(),
		Console: c.GetEnv() == "DEV",
	})
	defer closeLog()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	for attempt := 1; ; attempt++ {
		err := run(c, logger, stop)
		if err == nil {
			break
		}
		if attempt >= maxRestarts {
			logger.Fatal().Err(err).Msg("Error running bridge")
		}
		logger.Error().Err(err).Int("attempt", attempt).Msg("Error running bridge, restarting")
		time.Sleep(1 * time.Second)
	}
	logger.Info().Msg("Bridge stopped")
}

func run(c config.Config, logger zerolog.Logger, stop <-chan os.Signal) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge, err := app.New(ctx, c, logger)
	if err != nil {
		return err
	}
	if err := bridge.Start(ctx); err != nil {
		// The login UI stays available so the user can fix the session.
		logger.Error().Err(err).Msg("Startup discovery failed")
	}

	handler, err := server.New(c, bridge.Sessions, logger,
		server.WithAccessories(bridge.Accessories),
		server.WithBackgroundContext(ctx),
	)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer, logger) }()

	select {
	case err := <-serveErr:
		return err
	case <-stop:
	}
	cancel()
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server, logger zerolog.Logger) error {
	logger.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
