package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/asset"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/config"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/gemini"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/httpclient"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/logging"
)

//go:embed static/*
var staticFS embed.FS

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Component: "web"})

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})
	downloadClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.DownloadTimeout,
	})

	gen := gemini.New(gemini.Options{
		Dial: gemini.NewDialer(gemini.DialOptions{
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: cfg.GeminiAPIVersion,
			HTTPClient: httpClient,
		}),
		Model:        cfg.VideoModel,
		PollInterval: cfg.PollInterval,
		Logger:       &logger,
	})

	assets := asset.NewResolver(asset.Options{
		HTTPClient: downloadClient,
		Registry:   asset.NewRegistry(asset.RegistryOptions{TTL: cfg.PlaybackTTL}),
		Logger:     &logger,
	})

	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := newServer(serverOptions{
		Generator:   gen,
		Assets:      assets,
		Credential:  cfg.GeminiAPIKey,
		Resolution:  cfg.VideoResolution,
		BaseContext: ctx,
		Static:      staticSub,
		Logger:      &logger,
	})
	defer s.sessions.Close()

	srv := &http.Server{
		Addr:              cfg.WebAddr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.WebAddr).Str("model", gen.Model()).Msg("web started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return janitor(gctx, s, cfg.SessionIdle, logger)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("server error")
	}
	logger.Info().Msg("shutting down")
}

func janitor(ctx context.Context, s *server, maxIdle time.Duration, logger zerolog.Logger) error {
	ticker := time.NewTicker(maxIdle / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.sessions.Prune(maxIdle); n > 0 {
				logger.Info().Int("sessions", n).Msg("idle sessions pruned")
			}
		}
	}
}
