// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

// Package provider is the boundary to the Qloo search and entity APIs: the
// search provider that yields candidate venue batches, and the detail provider
// for restaurant lookups. The core treats both as black boxes; ranking, radius
// and tag semantics live on the provider side.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/studybites/studybites/internal/cache"
	"github.com/studybites/studybites/internal/models"
)

// Preference tags understood by the search provider. The base restaurant tag
// is always present; the rest are appended per preference flag and combined
// with an intersection operator.
const (
	tagRestaurant  = "urn:tag:genre:restaurant"
	tagVegan       = "urn:tag:offerings:vegan_options"
	tagWheelchair  = "urn:tag:accessibility:wheelchair_accessible_entrance"
	tagBudget      = "urn:tag:cost_description:inexpensive"
	tagKidFriendly = "urn:tag:children:good_for_kids"
)

// maxAlternatives caps how many near-duplicate venues a lookup returns beside
// the primary match.
const maxAlternatives = 4

// ErrNotFound is returned when the provider has no entity for the given ID.
var ErrNotFound = errors.New("provider: entity not found")

// Config holds Qloo client configuration.
type Config struct {
	// URL is the API base URL.
	URL string

	// APIKey is sent as X-API-Key on every request.
	APIKey string

	// Radius is the search radius passed to the provider.
	Radius int

	// Take is the candidate batch size requested per search.
	Take int

	// Timeout bounds a single API call.
	Timeout time.Duration
}

// Client talks to the Qloo HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	radius     int
	take       int
	httpClient *http.Client
}

// NewClient creates a Qloo API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	radius := cfg.Radius
	if radius <= 0 {
		radius = 50
	}
	take := cfg.Take
	if take <= 0 {
		take = 20
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		radius:     radius,
		take:       take,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// entity is the provider's wire representation of one venue.
type entity struct {
	EntityID       string          `json:"entity_id"`
	Name           string          `json:"name"`
	Disambiguation string          `json:"disambiguation"`
	Location       json.RawMessage `json:"location"`
	Tags           json.RawMessage `json:"tags"`
	Properties     struct {
		Image struct {
			URL string `json:"url"`
		} `json:"image"`
		BusinessRating float64         `json:"business_rating"`
		Address        string          `json:"address"`
		Distance       float64         `json:"distance"`
		PriceLevel     int             `json:"price_level"`
		Phone          string          `json:"phone"`
		Hours          json.RawMessage `json:"hours"`
	} `json:"properties"`
}

type resultsResponse struct {
	Results []entity `json:"results"`
}

// FetchCandidates asks the search provider for an ordered batch of venues
// matching the key's location and preference flags. Implements cache.Fetcher.
func (c *Client) FetchCandidates(ctx context.Context, key cache.Key) ([]models.Candidate, error) {
	tags := []string{tagRestaurant}
	if key.Prefs.Vegan {
		tags = append(tags, tagVegan)
	}
	if key.Prefs.Wheelchair {
		tags = append(tags, tagWheelchair)
	}
	if key.Prefs.Budget {
		tags = append(tags, tagBudget)
	}
	if key.Prefs.KidFriendly {
		tags = append(tags, tagKidFriendly)
	}

	params := url.Values{}
	params.Set("filter.tags", strings.Join(tags, ","))
	params.Set("filter.location", fmt.Sprintf("%.4f,%.4f", key.Lat, key.Lng))
	params.Set("filter.radius", strconv.Itoa(c.radius))
	params.Set("take", strconv.Itoa(c.take))
	params.Set("page", "1")
	params.Set("operator.filter.tags", "intersection")

	var parsed resultsResponse
	if err := c.getJSON(ctx, "/search?"+params.Encode(), &parsed); err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, len(parsed.Results))
	for _, e := range parsed.Results {
		candidates = append(candidates, toCandidate(e, len(candidates)))
	}
	return candidates, nil
}

// Lookup resolves an entity ID to the matching venue plus near-duplicate
// alternatives, primary match first.
func (c *Client) Lookup(ctx context.Context, entityID string) ([]models.Restaurant, error) {
	params := url.Values{}
	params.Set("entity_ids", entityID)

	var parsed resultsResponse
	if err := c.getJSON(ctx, "/entities?"+params.Encode(), &parsed); err != nil {
		return nil, err
	}

	limit := maxAlternatives + 1
	restaurants := make([]models.Restaurant, 0, limit)
	for _, e := range parsed.Results {
		restaurants = append(restaurants, toRestaurant(e))
		if len(restaurants) == limit {
			break
		}
	}
	return restaurants, nil
}

// Detail fetches the full provider document for one restaurant, passed
// through to the client verbatim.
func (c *Client) Detail(ctx context.Context, id string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/entities/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("build detail request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("restaurant detail %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("restaurant detail %s: unexpected status %d", id, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read detail response: %w", err)
	}
	return json.RawMessage(body), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build provider request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // drain for connection reuse
		return fmt.Errorf("provider request %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
}

func toCandidate(e entity, index int) models.Candidate {
	id := e.EntityID
	if id == "" {
		id = fmt.Sprintf("food_%d", index)
	}
	name := e.Name
	if name == "" {
		name = "Restaurant"
	}
	desc := e.Disambiguation
	if desc == "" {
		desc = "Great food"
	}
	return models.Candidate{
		ID:           id,
		Name:         name,
		Desc:         desc,
		Image:        e.Properties.Image.URL,
		RestaurantID: e.EntityID,
	}
}

func toRestaurant(e entity) models.Restaurant {
	return models.Restaurant{
		ID:             e.EntityID,
		Name:           e.Name,
		BusinessRating: e.Properties.BusinessRating,
		Description:    e.Disambiguation,
		Address:        e.Properties.Address,
		Distance:       e.Properties.Distance,
		PriceRange:     e.Properties.PriceLevel,
		Phone:          e.Properties.Phone,
		Hours:          e.Properties.Hours,
		ImageURL:       e.Properties.Image.URL,
		Location:       e.Location,
		Tags:           e.Tags,
	}
}
