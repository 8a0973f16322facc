// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

// Package config holds all application configuration, loaded with layered
// sources (defaults, optional YAML file, environment variables) and validated
// before use.
//
// Thread safety: Config is immutable after Load and safe for concurrent reads.
package config

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Qloo       QlooConfig       `koanf:"qloo"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Cache      CacheConfig      `koanf:"cache"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`
}

// QlooConfig holds search/detail provider settings.
//
// Environment variables: QLOO_URL, QLOO_API_KEY, QLOO_RADIUS, QLOO_TIMEOUT.
type QlooConfig struct {
	URL     string        `koanf:"url" validate:"required,url"`
	APIKey  string        `koanf:"api_key" validate:"required"`
	Radius  int           `koanf:"radius" validate:"min=1"`
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`
}

// ClassifierConfig holds vision classifier settings.
//
// Environment variables: CLASSIFIER_URL, CLASSIFIER_TIMEOUT,
// CLASSIFIER_SCORE_THRESHOLD, CLASSIFIER_RATE_PER_SECOND, CLASSIFIER_BURST,
// CLASSIFIER_WORKERS.
type ClassifierConfig struct {
	URL            string        `koanf:"url" validate:"required,url"`
	Timeout        time.Duration `koanf:"timeout" validate:"min=1s"`
	ScoreThreshold float64       `koanf:"score_threshold" validate:"gt=0,lte=1"`
	RatePerSecond  float64       `koanf:"rate_per_second" validate:"gt=0"`
	Burst          int           `koanf:"burst" validate:"min=1"`

	// Workers caps how many validation tasks may talk to the classifier
	// concurrently, across all cache entries.
	Workers int `koanf:"workers" validate:"min=1"`
}

// CacheConfig holds validation cache settings.
type CacheConfig struct {
	// TotalSize is the candidate batch size requested per cache entry.
	TotalSize int `koanf:"total_size" validate:"min=1"`

	// PageSize is the number of candidates per API page. Must not exceed
	// TotalSize (cross-field check in Validate).
	PageSize int `koanf:"page_size" validate:"min=1"`

	// Capacity bounds the number of live cache entries.
	Capacity int `koanf:"capacity" validate:"min=1"`

	// TTL is how long an entry stays fresh before a re-fetch.
	TTL time.Duration `koanf:"ttl" validate:"min=1s"`

	// WaitTimeout bounds how long a food-options request blocks on validation
	// before serving a partial page.
	WaitTimeout time.Duration `koanf:"wait_timeout" validate:"min=1s"`
}

// SecurityConfig holds rate limiting and CORS settings.
type SecurityConfig struct {
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"min=1s"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks that the configuration is complete and internally
// consistent.
func (c *Config) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid config: field %s failed %q validation", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Cache.PageSize > c.Cache.TotalSize {
		return fmt.Errorf("invalid config: cache.page_size (%d) must not exceed cache.total_size (%d)",
			c.Cache.PageSize, c.Cache.TotalSize)
	}

	return nil
}
