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
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/opskit/admin-console/backend"
	"github.com/opskit/admin-console/internal/config"
	"github.com/opskit/admin-console/server"
	"github.com/opskit/admin-console/session"
	"github.com/opskit/admin-console/workspace"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	// A missing .env file is fine; the environment may be set directly
	_ = godotenv.Load()

	c := config.New()
	configureLogging(c)
	displayAppname(c.GetAppName())

	consoleServer, err := buildServer(c)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: consoleServer}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func buildServer(c config.Config) (*server.Server, error) {
	timeout, err := time.ParseDuration(c.GetBackendTimeout())
	if err != nil {
		return nil, fmt.Errorf("invalid backend timeout %q: %w", c.GetBackendTimeout(), err)
	}

	directory := backend.NewClient(c.GetBackendBaseURL(), timeout)

	sessions, err := session.NewStore(directory, c.GetStateFolder())
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}
	workspaces := workspace.NewStore(directory)

	return server.New(c, sessions, workspaces)
}

func configureLogging(c config.Config) {
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
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
