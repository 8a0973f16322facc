// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/studybites/studybites/internal/cache"
	"github.com/studybites/studybites/internal/logging"
	"github.com/studybites/studybites/internal/models"
	"github.com/studybites/studybites/internal/provider"
)

// RestaurantDirectory resolves food candidates back to restaurant records.
// Satisfied by the provider client chain.
type RestaurantDirectory interface {
	Lookup(ctx context.Context, entityID string) ([]models.Restaurant, error)
	Detail(ctx context.Context, id string) (json.RawMessage, error)
}

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	cache       *cache.Service
	directory   RestaurantDirectory
	waitTimeout time.Duration
}

// NewHandler creates the API handler set. waitTimeout bounds how long a
// food-options request blocks on validation before serving a partial page.
func NewHandler(cacheService *cache.Service, directory RestaurantDirectory, waitTimeout time.Duration) *Handler {
	if waitTimeout <= 0 {
		waitTimeout = 15 * time.Second
	}
	return &Handler{
		cache:       cacheService,
		directory:   directory,
		waitTimeout: waitTimeout,
	}
}

// parsePreference reports whether a query flag is set. Only the literal
// string "true", case-insensitively, counts; "1", "yes" and everything else
// are false.
func parsePreference(value string) bool {
	return strings.EqualFold(value, "true")
}

// FoodOptions handles GET /api/food-options.
//
// It blocks until enough candidates for the requested page have been
// validated, validation has finished, or the wait deadline expires; the
// deadline case serves whatever has been classified so far and marks the
// response partial so the client knows to poll again.
func (h *Handler) FoodOptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 0
	if raw := q.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid page parameter")
			return
		}
		page = parsed
	}
	if page < 0 {
		writeError(w, http.StatusBadRequest, "Invalid page parameter")
		return
	}

	// Coordinates default to 0,0 when absent or unparseable; the provider
	// simply finds nothing interesting there.
	lat, _ := strconv.ParseFloat(q.Get("lat"), 64)
	lng, _ := strconv.ParseFloat(q.Get("lng"), 64)

	key := cache.NewKey(lat, lng, models.Preferences{
		Vegan:       parsePreference(q.Get("vegan")),
		Wheelchair:  parsePreference(q.Get("wheelchair")),
		KidFriendly: parsePreference(q.Get("kid_friendly")),
		Budget:      parsePreference(q.Get("budget")),
	})

	ctx, cancel := context.WithTimeout(r.Context(), h.waitTimeout)
	defer cancel()

	p, err := h.cache.FetchPage(ctx, key, page)
	if errors.Is(err, cache.ErrPageOutOfRange) {
		writeJSON(w, http.StatusNotFound, pageRangeError{Error: "Page out of range"})
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("cache_key", key.String()).
			Msg("Failed to assemble food options page")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	foods := p.Items
	if foods == nil {
		foods = []models.Candidate{}
	}

	writeJSON(w, http.StatusOK, models.FoodOptionsResponse{
		Success:     true,
		CurrentPage: page,
		Foods:       foods,
		TotalPages:  p.TotalPages,
		HasNext:     p.HasNext,
		HasPrev:     p.HasPrev,
		Partial:     p.Partial,
	})
}

// Restaurants handles GET /api/restaurants. It resolves a food candidate's ID
// to the restaurant record plus nearby alternatives.
func (h *Handler) Restaurants(w http.ResponseWriter, r *http.Request) {
	foodID := r.URL.Query().Get("food_id")
	if foodID == "" {
		writeError(w, http.StatusBadRequest, "food_id is required")
		return
	}

	restaurants, err := h.directory.Lookup(r.Context(), foodID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("food_id", foodID).
			Msg("Restaurant lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to look up restaurant")
		return
	}

	if len(restaurants) == 0 {
		writeJSON(w, http.StatusNotFound, models.LookupNotFoundResponse{
			Success:      false,
			Alternatives: []models.Restaurant{},
			Error:        "No restaurant found",
		})
		return
	}

	writeJSON(w, http.StatusOK, models.RestaurantsResponse{
		Success:      true,
		Restaurant:   &restaurants[0],
		Alternatives: restaurants[1:],
	})
}

// RestaurantByID handles GET /api/restaurant/{id}. The provider's detail
// document is passed through verbatim.
func (h *Handler) RestaurantByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Restaurant ID is required")
		return
	}

	doc, err := h.directory.Detail(r.Context(), id)
	if errors.Is(err, provider.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Restaurant not found")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("restaurant_id", id).
			Msg("Restaurant detail fetch failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch restaurant")
		return
	}

	writeJSON(w, http.StatusOK, models.RestaurantDetailResponse{
		Success:    true,
		Restaurant: doc,
	})
}

// HealthLive handles GET /api/v1/health/live. Liveness means the process is
// up and serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready. The service has no startup
// dependencies to wait on; readiness follows liveness.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
