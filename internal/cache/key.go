// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

package cache

import (
	"fmt"
	"math"

	"github.com/studybites/studybites/internal/models"
)

// coordPrecision is the number of decimal places coordinates are rounded to
// when deriving a cache key. Four decimal places is roughly an 11m grid:
// nearby clients share one entry, which deliberately bounds cache cardinality.
const coordPrecision = 4

// Key identifies one validation cache entry. Two requests whose coordinates
// agree to four decimal places and whose preference flags match resolve to the
// same key.
type Key struct {
	Lat   float64
	Lng   float64
	Prefs models.Preferences
}

// NewKey builds a Key, rounding the coordinates to the cache grid.
func NewKey(lat, lng float64, prefs models.Preferences) Key {
	return Key{
		Lat:   roundCoord(lat),
		Lng:   roundCoord(lng),
		Prefs: prefs,
	}
}

// String encodes the key as "lat,lng_VWKB" with the preference flags as 0/1
// digits. The encoding is stable and is used as the cache index key.
func (k Key) String() string {
	return fmt.Sprintf("%.4f,%.4f_%d%d%d%d",
		k.Lat, k.Lng,
		boolDigit(k.Prefs.Vegan),
		boolDigit(k.Prefs.Wheelchair),
		boolDigit(k.Prefs.KidFriendly),
		boolDigit(k.Prefs.Budget),
	)
}

func roundCoord(v float64) float64 {
	scale := math.Pow10(coordPrecision)
	return math.Round(v*scale) / scale
}

func boolDigit(b bool) int {
	if b {
		return 1
	}
	return 0
}
