package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"

	"github.com/tomyedwab/ezdrive/config"
	"github.com/tomyedwab/ezdrive/logging"
	"github.com/tomyedwab/ezdrive/rental"
	"github.com/tomyedwab/ezdrive/session"
)

type command func(ctx context.Context, app *app, args []string) error

var commands = map[string]command{
	"init":           runInit,
	"seed":           runSeed,
	"adduser":        runAddUser,
	"users":          runUsers,
	"addcar":         runAddCar,
	"cars":           runCars,
	"car":            runCar,
	"editcar":        runEditCar,
	"editprofile":    runEditProfile,
	"book":           runBook,
	"bookings":       runBookings,
	"deletecar":      runDeleteCar,
	"setunavailable": runSetUnavailable,
}

type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  *rental.Store
	issuer *session.Issuer
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n", os.Args[0])
		os.Exit(2)
	}
	name := os.Args[1]
	run, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", name)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Primary.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := rental.Open(ctx, rental.Options{
		Path:         cfg.Database.Path,
		BusyTimeout:  cfg.Database.BusyTimeout(),
		MaxOpenConns: cfg.Database.MaxOpenConns,
		Logger:       &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open database")
	}
	defer store.Close()

	a := &app{cfg: cfg, log: logger, store: store}
	if err := run(ctx, a, os.Args[2:]); err != nil {
		logger.Error().Err(err).Str("command", name).Msg("Command failed")
		store.Close()
		os.Exit(1)
	}
}

// sessionIssuer loads the signing key on first use so read-only commands do
// not touch the key file.
func (a *app) sessionIssuer() (*session.Issuer, error) {
	if a.issuer != nil {
		return a.issuer, nil
	}
	key, err := session.LoadSecretKey(a.cfg.Session.SecretKeyPath)
	if err != nil {
		return nil, err
	}
	a.issuer = session.NewIssuer(key, a.cfg.Session.TTL())
	return a.issuer, nil
}
