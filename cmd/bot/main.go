package main

import (
	"context"
	"errors"
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
	"github.com/cricgurufans-star/AI-Video-Maker/internal/handlers"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/httpclient"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/logging"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/mediagroup"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/telegram"
)

const requestTimeout = 2 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err == nil {
		err = cfg.RequireTelegram()
	}
	if err != nil {
		panic(err)
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Component: "bot"})

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})
	downloadClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.DownloadTimeout,
	})

	tg, err := telegram.New(telegram.Options{
		Token:      cfg.TelegramToken,
		HTTPClient: httpClient,
		Logger:     &logger,
		Debug:      cfg.Debug,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram init failed")
	}

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := handlers.New(handlers.Options{
		Telegram:      tg,
		Generator:     gen,
		Assets:        assets,
		Credential:    cfg.GeminiAPIKey,
		Resolution:    cfg.VideoResolution,
		ProgressEvery: cfg.ProgressEvery,
		BaseContext:   ctx,
		Logger:        &logger,
	})
	defer handler.Sessions().Close()

	sem := make(chan struct{}, cfg.MaxConcurrent)
	onGroupFlush := func(group mediagroup.Group) {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return
		}

		go func() {
			defer func() { <-sem }()

			reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
			defer cancel()

			handler.HandleMediaGroup(reqCtx, group)
		}()
	}

	aggregator := mediagroup.New(mediagroup.Options{
		Debounce: cfg.MediaGroupDebounce,
		OnFlush:  onGroupFlush,
		Logger:   &logger,
	})
	defer aggregator.Stop()
	handler.SetMediaGroupAggregator(aggregator)

	logger.Info().
		Str("username", tg.Username()).
		Str("model", gen.Model()).
		Str("resolution", string(cfg.VideoResolution)).
		Msg("bot started")

	updates := tg.Updates(telegram.UpdatesOptions{
		Timeout: 30 * time.Second,
	})
	defer tg.StopUpdates()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return janitor(gctx, handler, cfg.SessionIdle, logger)
	})
	g.Go(func() error {
		return serveUpdates(gctx, updates, sem, handler, logger)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("bot stopped")
	}
	logger.Info().Msg("shutting down")
}

func serveUpdates(ctx context.Context, updates <-chan telegram.Update, sem chan struct{}, handler *handlers.Handler, logger zerolog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				logger.Info().Msg("updates channel closed")
				return nil
			}

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}

			go func(update telegram.Update) {
				defer func() { <-sem }()

				reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
				defer cancel()

				if err := handler.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error().Err(err).Msg("handle update failed")
				}
			}(update)
		}
	}
}

// janitor drops idle chats so their buffered videos are released.
func janitor(ctx context.Context, handler *handlers.Handler, maxIdle time.Duration, logger zerolog.Logger) error {
	ticker := time.NewTicker(maxIdle / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := handler.Sessions().Prune(maxIdle); n > 0 {
				logger.Info().Int("sessions", n).Msg("idle sessions pruned")
			}
		}
	}
}
