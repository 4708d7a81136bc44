package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"facture-backend/internal/config"
	"facture-backend/internal/db"
	httpapi "facture-backend/internal/http"
	"facture-backend/internal/render"
	"facture-backend/internal/repository"
	"facture-backend/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("database error")
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migration error")
	}

	store, err := service.NewFileStore(cfg.DocumentDir)
	if err != nil {
		log.Fatal().Err(err).Msg("document store error")
	}

	repo := repository.New(pool)
	svc := service.New(repo, service.Options{
		Renderer:         render.NewExcelRenderer(),
		Store:            store,
		Logger:           log,
		JWTSecret:        cfg.JWTSecret,
		AllowOverpayment: cfg.AllowOverpayment,
	})
	handler := httpapi.NewHandler(svc)
	router := httpapi.NewRouter(handler, log, cfg.JWTSecret)

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("backend listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		if closeErr := server.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("force close failed")
		}
	}
}
