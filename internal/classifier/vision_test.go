// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

package classifier

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
)

// newTestServer returns a classifier client pointed at a stub inference
// service that always answers with the given label and score.
func newTestServer(t *testing.T, label string, score float64, requests *atomic.Int32) *VisionClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		if r.Method != http.MethodPost || r.URL.Path != "/classify" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"label":%q,"score":%g}`, label, score)
	}))
	t.Cleanup(srv.Close)

	return NewVisionClient(Config{URL: srv.URL, RatePerSecond: 1000, Burst: 1000})
}

func TestClassifyEmptyImageSkipsRequest(t *testing.T) {
	var requests atomic.Int32
	client := newTestServer(t, "meal", 0.99, &requests)

	usable, err := client.Classify(context.Background(), "")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if usable {
		t.Error("usable = true for empty image, want false")
	}
	if got := requests.Load(); got != 0 {
		t.Errorf("outbound requests = %d, want 0", got)
	}
}

func TestClassifyVerdicts(t *testing.T) {
	tests := []struct {
		name  string
		label string
		score float64
		want  bool
	}{
		{name: "confident meal", label: "meal", score: 0.92, want: true},
		{name: "confident interior", label: "restaurant interior", score: 0.8, want: true},
		{name: "chef rejected regardless of score", label: "chef", score: 0.99, want: false},
		{name: "below threshold", label: "meal", score: 0.5, want: false},
		{name: "exactly at threshold", label: "storefront", score: 0.75, want: false},
		{name: "just above threshold", label: "storefront", score: 0.7501, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, tt.label, tt.score, nil)
			usable, err := client.Classify(context.Background(), "https://img.example/a.jpg")
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if usable != tt.want {
				t.Errorf("usable = %v, want %v", usable, tt.want)
			}
		})
	}
}

func TestClassifySendsSceneLabels(t *testing.T) {
	var got classifyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"label":"meal","score":0.9}`)
	}))
	defer srv.Close()

	client := NewVisionClient(Config{URL: srv.URL, RatePerSecond: 1000, Burst: 1000})
	if _, err := client.Classify(context.Background(), "https://img.example/a.jpg"); err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if got.ImageURL != "https://img.example/a.jpg" {
		t.Errorf("image_url = %q", got.ImageURL)
	}
	if len(got.Labels) != len(sceneLabels) {
		t.Fatalf("labels = %v, want %v", got.Labels, sceneLabels)
	}
	for i, l := range sceneLabels {
		if got.Labels[i] != l {
			t.Errorf("labels[%d] = %q, want %q", i, got.Labels[i], l)
		}
	}
}

func TestClassifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewVisionClient(Config{URL: srv.URL, RatePerSecond: 1000, Burst: 1000})
	if _, err := client.Classify(context.Background(), "https://img.example/a.jpg"); err == nil {
		t.Error("err = nil for 503 response, want error")
	}
}

func TestClassifyMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer srv.Close()

	client := NewVisionClient(Config{URL: srv.URL, RatePerSecond: 1000, Burst: 1000})
	if _, err := client.Classify(context.Background(), "https://img.example/a.jpg"); err == nil {
		t.Error("err = nil for malformed body, want error")
	}
}

func TestClassifyCustomThreshold(t *testing.T) {
	client := newTestServer(t, "meal", 0.6, nil)
	client.threshold = 0.5

	usable, err := client.Classify(context.Background(), "https://img.example/a.jpg")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !usable {
		t.Error("usable = false with lowered threshold, want true")
	}
}
