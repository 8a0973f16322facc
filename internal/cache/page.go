// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

package cache

import (
	"errors"

	"github.com/studybites/studybites/internal/models"
)

// ErrPageOutOfRange is returned when the requested page lies entirely beyond
// the fetched batch. Callers must report this as not-found, distinct from an
// empty first page.
var ErrPageOutOfRange = errors.New("page out of range")

// Page is one assembled, validated-first view of a candidate batch.
type Page struct {
	Items      []models.Candidate
	TotalPages int
	HasPrev    bool
	HasNext    bool

	// Partial is set by the service when the page was assembled after a wait
	// deadline expired, before validation could satisfy the request.
	Partial bool
}

// AssemblePage computes the page view for a batch and its current flags.
//
// Candidates with a Valid verdict surface first, then the rest (pending or
// invalid), each partition preserving the original batch order. Pages fill
// with good-quality results before falling back to filler.
//
// Pure function of its inputs; safe to call with any snapshot of flags.
func AssemblePage(raw []models.Candidate, flags []Verdict, page, pageSize int) (Page, error) {
	validated := make([]models.Candidate, 0, len(raw))
	rest := make([]models.Candidate, 0, len(raw))
	for i, c := range raw {
		if flags[i] == VerdictValid {
			validated = append(validated, c)
		} else {
			rest = append(rest, c)
		}
	}
	combined := append(validated, rest...)

	start := page * pageSize
	end := start + pageSize

	// Page 0 of an empty batch is an empty page, not an error; any further
	// page beyond the batch is out of range.
	if page > 0 && start >= len(combined) {
		return Page{}, ErrPageOutOfRange
	}
	if end > len(combined) {
		end = len(combined)
	}
	if start > len(combined) {
		start = len(combined)
	}

	totalPages := (len(raw) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	return Page{
		Items:      combined[start:end],
		TotalPages: totalPages,
		HasPrev:    page > 0,
		HasNext:    page < totalPages-1,
	}, nil
}
