// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

// Package models defines the domain types shared across the StudyBites server.
package models

import (
	"github.com/goccy/go-json"
)

// Preferences are the four dietary/accessibility toggles a client can request.
// They participate in the validation cache key, so two requests with the same
// flags and the same rounded coordinates share one cache entry.
type Preferences struct {
	Vegan       bool `json:"vegan"`
	Wheelchair  bool `json:"wheelchair"`
	KidFriendly bool `json:"kid_friendly"`
	Budget      bool `json:"budget"`
}

// Candidate is one venue returned by the search provider before image
// validation. Immutable once fetched.
type Candidate struct {
	// ID is the provider-assigned opaque identifier.
	ID string `json:"id"`

	// Name is the display name of the venue.
	Name string `json:"name"`

	// Desc is a short human-readable description.
	Desc string `json:"desc"`

	// Image is the URL of the representative photo. May be empty, in which
	// case the candidate is never considered validated.
	Image string `json:"image"`

	// RestaurantID is the identifier used for later detail lookup.
	RestaurantID string `json:"restaurant_id"`
}

// Restaurant is the full venue record returned by the detail provider.
// Fields the provider omits are left at their zero values; raw sub-documents
// (hours, location, tags) pass through untouched.
type Restaurant struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	BusinessRating float64         `json:"business_rating,omitempty"`
	Description    string          `json:"description"`
	Address        string          `json:"address,omitempty"`
	Distance       float64         `json:"distance,omitempty"`
	PriceRange     int             `json:"price_range,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Hours          json.RawMessage `json:"hours,omitempty"`
	ImageURL       string          `json:"image_url,omitempty"`
	Location       json.RawMessage `json:"location,omitempty"`
	Tags           json.RawMessage `json:"tags,omitempty"`
}
