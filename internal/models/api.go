// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

package models

import (
	"github.com/goccy/go-json"
)

// FoodOptionsResponse is the payload of GET /api/food-options.
// Field names are part of the public API contract; do not rename.
type FoodOptionsResponse struct {
	Success     bool        `json:"success"`
	CurrentPage int         `json:"current_page"`
	Foods       []Candidate `json:"foods"`
	TotalPages  int         `json:"total_pages"`
	HasNext     bool        `json:"has_next"`
	HasPrev     bool        `json:"has_prev"`

	// Partial is true when the wait deadline expired before enough candidates
	// were validated; the page was assembled from whatever had been classified
	// so far. Absent on complete responses.
	Partial bool `json:"partial,omitempty"`
}

// RestaurantsResponse is the payload of GET /api/restaurants.
type RestaurantsResponse struct {
	Success      bool         `json:"success"`
	Restaurant   *Restaurant  `json:"restaurant"`
	Alternatives []Restaurant `json:"alternatives"`
}

// RestaurantDetailResponse is the payload of GET /api/restaurant/{id}.
// The restaurant document is passed through from the detail provider verbatim.
type RestaurantDetailResponse struct {
	Success    bool            `json:"success"`
	Restaurant json.RawMessage `json:"restaurant"`
}

// ErrorResponse is the generic failure payload for provider-backed endpoints.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// LookupNotFoundResponse is the 404 payload of GET /api/restaurants. The
// alternatives array is present and empty, matching what clients render.
type LookupNotFoundResponse struct {
	Success      bool         `json:"success"`
	Alternatives []Restaurant `json:"alternatives"`
	Error        string       `json:"error"`
}
