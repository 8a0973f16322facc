// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

package cache

import (
	"testing"

	"github.com/studybites/studybites/internal/models"
)

func TestNewKeyRoundsCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantLat float64
		wantLng float64
	}{
		{
			name:    "high precision GPS fix",
			lat:     37.774929,
			lng:     -122.419416,
			wantLat: 37.7749,
			wantLng: -122.4194,
		},
		{
			name:    "rounds half up",
			lat:     1.00005,
			lng:     -1.00005,
			wantLat: 1.0001,
			wantLng: -1.0001,
		},
		{
			name:    "already on the grid",
			lat:     51.5074,
			lng:     -0.1278,
			wantLat: 51.5074,
			wantLng: -0.1278,
		},
		{
			name:    "origin",
			lat:     0,
			lng:     0,
			wantLat: 0,
			wantLng: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewKey(tt.lat, tt.lng, models.Preferences{})
			if key.Lat != tt.wantLat {
				t.Errorf("Lat = %v, want %v", key.Lat, tt.wantLat)
			}
			if key.Lng != tt.wantLng {
				t.Errorf("Lng = %v, want %v", key.Lng, tt.wantLng)
			}
		})
	}
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		name  string
		lat   float64
		lng   float64
		prefs models.Preferences
		want  string
	}{
		{
			name: "no preferences",
			lat:  37.7749,
			lng:  -122.4194,
			want: "37.7749,-122.4194_0000",
		},
		{
			name:  "all preferences",
			lat:   37.7749,
			lng:   -122.4194,
			prefs: models.Preferences{Vegan: true, Wheelchair: true, KidFriendly: true, Budget: true},
			want:  "37.7749,-122.4194_1111",
		},
		{
			name:  "vegan and kid friendly only",
			lat:   51.5074,
			lng:   -0.1278,
			prefs: models.Preferences{Vegan: true, KidFriendly: true},
			want:  "51.5074,-0.1278_1010",
		},
		{
			name: "origin pads to four decimals",
			lat:  0,
			lng:  0,
			want: "0.0000,0.0000_0000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewKey(tt.lat, tt.lng, tt.prefs).String()
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Re-keying from an already rounded key must not move the coordinates again.
func TestKeyRoundingIdempotent(t *testing.T) {
	prefs := models.Preferences{Vegan: true}
	first := NewKey(37.774929, -122.419416, prefs)
	second := NewKey(first.Lat, first.Lng, prefs)

	if first.String() != second.String() {
		t.Errorf("re-keying changed the key: %q != %q", first.String(), second.String())
	}
}
