// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

// Package classifier is the boundary to the external image classifier: a
// zero-shot vision model that labels a venue photo against a small set of
// dining-scene labels. The core only sees a boolean "usable representative
// image" per URL.
package classifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/studybites/studybites/internal/metrics"
)

// sceneLabels are the candidate labels the vision model scores each photo
// against. A photo is representative when it depicts the venue or its food,
// not a person.
var sceneLabels = []string{
	"meal",
	"restaurant interior",
	"restaurant exterior",
	"storefront",
	"chef",
}

// rejectLabel disqualifies a photo regardless of score.
const rejectLabel = "chef"

// defaultScoreThreshold is the minimum confidence for a photo to count as
// representative.
const defaultScoreThreshold = 0.75

// Config holds vision client configuration.
type Config struct {
	// URL is the base URL of the inference service.
	URL string

	// Timeout bounds a single classification call.
	Timeout time.Duration

	// ScoreThreshold overrides defaultScoreThreshold when > 0.
	ScoreThreshold float64

	// RatePerSecond and Burst throttle outbound classification calls.
	RatePerSecond float64
	Burst         int
}

// VisionClient classifies images via an HTTP inference service.
type VisionClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	threshold  float64
}

// NewVisionClient creates a classifier client for the given inference service.
func NewVisionClient(cfg Config) *VisionClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	threshold := cfg.ScoreThreshold
	if threshold <= 0 {
		threshold = defaultScoreThreshold
	}
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = 4
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 2
	}

	return &VisionClient{
		baseURL:    cfg.URL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		threshold:  threshold,
	}
}

type classifyRequest struct {
	ImageURL string   `json:"image_url"`
	Labels   []string `json:"labels"`
}

type classifyResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify asks the inference service for the best-matching label of the
// image and reports whether the photo is a usable venue representation.
// An empty imageRef is unusable by definition and makes no outbound call.
func (c *VisionClient) Classify(ctx context.Context, imageRef string) (bool, error) {
	if imageRef == "" {
		return false, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("classifier rate limit wait: %w", err)
	}

	body, err := json.Marshal(classifyRequest{ImageURL: imageRef, Labels: sceneLabels})
	if err != nil {
		return false, fmt.Errorf("encode classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ClassifierRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return false, fmt.Errorf("classify %s: %w", imageRef, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // drain for connection reuse
		return false, fmt.Errorf("classify %s: unexpected status %d", imageRef, resp.StatusCode)
	}

	var result classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode classify response: %w", err)
	}

	return result.Label != rejectLabel && result.Score > c.threshold, nil
}
