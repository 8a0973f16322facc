// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

// Command server runs the StudyBites HTTP API: preference-filtered restaurant
// discovery backed by a progressive validation cache that classifies venue
// photos in the background while clients poll for pages.
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

	"github.com/studybites/studybites/internal/api"
	"github.com/studybites/studybites/internal/cache"
	"github.com/studybites/studybites/internal/classifier"
	"github.com/studybites/studybites/internal/config"
	"github.com/studybites/studybites/internal/logging"
	"github.com/studybites/studybites/internal/provider"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting StudyBites server")

	// Provider chain: raw Qloo client -> circuit breaker -> response cache.
	qlooClient := provider.NewClient(provider.Config{
		URL:     cfg.Qloo.URL,
		APIKey:  cfg.Qloo.APIKey,
		Radius:  cfg.Qloo.Radius,
		Take:    cfg.Cache.TotalSize,
		Timeout: cfg.Qloo.Timeout,
	})
	breakerClient := provider.NewCircuitBreakerClient(qlooClient)
	cachedClient, err := provider.NewCachedClient(breakerClient, provider.CacheConfig{
		TTL: cfg.Cache.TTL,
	})
	if err != nil {
		return fmt.Errorf("create provider cache: %w", err)
	}
	defer cachedClient.Close()

	visionClient := classifier.NewVisionClient(classifier.Config{
		URL:            cfg.Classifier.URL,
		Timeout:        cfg.Classifier.Timeout,
		ScoreThreshold: cfg.Classifier.ScoreThreshold,
		RatePerSecond:  cfg.Classifier.RatePerSecond,
		Burst:          cfg.Classifier.Burst,
	})

	validationCache := cache.NewService(cache.Config{
		TotalSize: cfg.Cache.TotalSize,
		PageSize:  cfg.Cache.PageSize,
		Capacity:  cfg.Cache.Capacity,
		TTL:       cfg.Cache.TTL,
		Workers:   cfg.Classifier.Workers,
	}, cachedClient, visionClient)
	defer validationCache.Close()

	handler := api.NewHandler(validationCache, cachedClient, cfg.Cache.WaitTimeout)
	router := api.NewRouter(handler, api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type"},
		CORSMaxAge:         86400,

		RateLimitRequests: cfg.Security.RateLimitRequests,
		RateLimitWindow:   cfg.Security.RateLimitWindow,
		RateLimitDisabled: cfg.Security.RateLimitDisabled,
	}))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logging.Info().Msg("Server stopped")
	return nil
}
