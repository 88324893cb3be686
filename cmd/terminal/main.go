// Package main provides the entrypoint for the headless ProdTrack terminal
// client used on shop-floor tablets and kiosks.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/prodtrack/prodtrack/internal/terminal"
)

// Version is set at compile time via ldflags.
var Version = "dev"

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:3000", "ProdTrack server base URL")
		stateDir  = flag.String("state-dir", defaultStateDir(), "directory for the persisted device identity")
		name      = flag.String("name", "", "device name shown to the administrator")
		model     = flag.String("model", "", "device model shown to the administrator")
		pretty    = flag.Bool("pretty", false, "human-readable log output")
	)
	flag.Parse()

	logger := zerolog.New(os.Stdout)
	if *pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	log := logger.With().
		Timestamp().
		Str("service", "prodtrack-terminal").
		Str("version", Version).
		Logger()

	identity, err := terminal.LoadIdentity(*stateDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", *stateDir).Msg("identity load failed")
	}
	if *name != "" {
		identity.Name = *name
	}
	if *model != "" {
		identity.Model = *model
	}

	controller := terminal.NewController(terminal.ControllerConfig{
		API:       terminal.NewClient(*serverURL, log),
		Identity:  identity,
		StateDir:  *stateDir,
		Presenter: &terminal.LogPresenter{Logger: log},
		Logger:    log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("server", *serverURL).
		Str("device_id", identity.DeviceID).
		Msg("terminal starting")

	if err := controller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("terminal stopped")
	}

	log.Info().
		Str("state", string(controller.State())).
		Msg("terminal stopped")
}

// defaultStateDir keeps the identity under the user's home so it survives
// application updates.
func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".prodtrack"
	}
	return filepath.Join(home, ".prodtrack")
}
