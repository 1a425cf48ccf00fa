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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"reviewsection/pkg/logger"
	"reviewsection/review-section/internal/app/section/config"
	"reviewsection/review-section/internal/app/section/handler"
	reviewshttp "reviewsection/review-section/internal/app/section/infrastructure/http"
	"reviewsection/review-section/internal/app/section/processor"
	"reviewsection/review-section/internal/app/section/service"
	"reviewsection/review-section/internal/app/section/widget"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Консоль занимает stdout, логи уходят в stderr
	logger.InitWithWriter("review-section", cfg.LogLevel, os.Stderr)

	productID, err := cfg.Product.ResolveProductID()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to resolve product")
	}

	actingUser, err := cfg.API.ActingUser()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read acting user from token")
	}

	client := reviewshttp.NewReviewsClient(cfg.API.BaseURL, cfg.API.Timeout)
	client.SetAuthToken(cfg.API.AuthToken)

	console := handler.NewConsole(os.Stdout, widget.NewUserAvatar(client), widget.NewReviewImages(client))

	synchronizer := service.NewReviewSynchronizer(client)
	section := service.NewReviewSection(
		productID,
		actingUser,
		widget.NewStarRating(widget.StarRatingOptions{
			TotalStars:      cfg.Stars.Total,
			DefaultRating:   cfg.Stars.Default,
			Size:            cfg.Stars.Size,
			FilledColor:     cfg.Stars.FilledColor,
			UnfilledColor:   cfg.Stars.UnfilledColor,
			FilledIconURL:   cfg.Stars.FilledIconURL,
			UnfilledIconURL: cfg.Stars.UnfilledIconURL,
		}),
		widget.NewImageUploader(client),
		service.NewSubmissionOrchestrator(synchronizer, console, productID, actingUser),
		synchronizer,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go section.Run(ctx)
	logger.Info().
		Str("product_id", productID).
		Str("api", cfg.API.BaseURL).
		Msg("Review section started")

	if cfg.Refresh.Schedule != "" {
		scheduler := processor.NewRefreshScheduler(section)
		if err := scheduler.Start(cfg.Refresh.Schedule); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start refresh scheduler")
		}
		defer scheduler.Stop()
	}

	if cfg.Metrics.Addr != "" {
		metricsServer := startMetricsServer(cfg.Metrics.Addr)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			metricsServer.Shutdown(shutdownCtx)
		}()
	}

	if err := console.Run(ctx, os.Stdin, section); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Console stopped with error")
	}

	logger.Info().Msg("Review section stopped")
}

func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("address", addr).Msg("Serving metrics")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	return server
}
