package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/peerchat/internal/adapters/auth"
	router "github.com/dkeye/peerchat/internal/adapters/http"
	"github.com/dkeye/peerchat/internal/adapters/store/memory"
	"github.com/dkeye/peerchat/internal/adapters/store/mongo"
	"github.com/dkeye/peerchat/internal/app"
	"github.com/dkeye/peerchat/internal/app/orch"
	"github.com/dkeye/peerchat/internal/config"
	"github.com/dkeye/peerchat/internal/core"
	"github.com/dkeye/peerchat/internal/domain"
)

// stores is what the server needs from a backend.
type stores interface {
	core.RoomDirectory
	core.AccountStore
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config) error {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := app.NewRegistry()
	o := orch.New(reg, app.NewRoomManager(), store, app.SimplePolicy{})
	verifier := auth.NewVerifier(auth.Config{Secret: cfg.Auth.JWTSecret, Issuer: cfg.Auth.Issuer}, store)

	r := router.SetupRouter(ctx, cfg, o, verifier)
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Str("store", cfg.Store.Driver).Msg("chat server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		err := srv.Shutdown(shutdownCtx)
		reg.CancelAll()
		if err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (stores, func(), error) {
	switch cfg.Store.Driver {
	case "mongo":
		s, err := mongo.Connect(ctx, mongo.Config{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			ConnectTimeout: cfg.Mongo.ConnectTimeout,
			OpTimeout:      cfg.Mongo.OpTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := s.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("mongo indexes")
		}
		if err := s.SeedRooms(ctx, seedRooms(cfg.Seed.Rooms)); err != nil {
			log.Warn().Err(err).Msg("mongo seed")
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.Close(ctx); err != nil {
				log.Error().Err(err).Msg("mongo close")
			}
		}
		return s, closeFn, nil
	default:
		s := memory.New()
		s.Seed(seedRooms(cfg.Seed.Rooms), seedAccounts(cfg.Seed.Accounts))
		return s, func() {}, nil
	}
}

func seedRooms(in []config.SeedRoom) []*domain.Room {
	if len(in) == 0 {
		return memory.DefaultRooms()
	}
	out := make([]*domain.Room, 0, len(in))
	for _, r := range in {
		out = append(out, &domain.Room{
			ID:          domain.RoomID(r.ID),
			Name:        r.Name,
			Description: r.Description,
			Category:    r.Category,
			IsPublic:    !r.Private,
			Settings:    domain.RoomSettings{SlowMode: r.SlowMode},
		})
	}
	return out
}

func seedAccounts(in []config.SeedAccount) []*domain.Account {
	out := make([]*domain.Account, 0, len(in))
	for _, a := range in {
		id, err := domain.NewIdentity(domain.UserID(a.ID), a.Username)
		if err != nil {
			log.Warn().Err(err).Str("id", a.ID).Msg("skip seed account")
			continue
		}
		out = append(out, &domain.Account{Identity: *id, Active: !a.Inactive})
	}
	return out
}
