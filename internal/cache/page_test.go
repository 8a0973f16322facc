// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

package cache

import (
	"errors"
	"testing"
)

// flagsFor builds a flags slice where the listed indexes are Valid and
// everything else is the given fill verdict.
func flagsFor(n int, fill Verdict, valid ...int) []Verdict {
	flags := make([]Verdict, n)
	for i := range flags {
		flags[i] = fill
	}
	for _, i := range valid {
		flags[i] = VerdictValid
	}
	return flags
}

func TestAssemblePageValidatedFirst(t *testing.T) {
	raw := testBatch(8)
	// Candidates 5, 1, 6 are valid; their relative order must be preserved,
	// then the rest in original order.
	flags := flagsFor(8, VerdictInvalid, 1, 5, 6)

	p, err := AssemblePage(raw, flags, 0, 4)
	if err != nil {
		t.Fatalf("AssemblePage: %v", err)
	}

	wantIDs := []string{"food_1", "food_5", "food_6", "food_0"}
	if len(p.Items) != len(wantIDs) {
		t.Fatalf("len(Items) = %d, want %d", len(p.Items), len(wantIDs))
	}
	for i, want := range wantIDs {
		if p.Items[i].ID != want {
			t.Errorf("Items[%d].ID = %q, want %q", i, p.Items[i].ID, want)
		}
	}
}

func TestAssemblePagePendingCountsAsFiller(t *testing.T) {
	raw := testBatch(4)
	flags := flagsFor(4, VerdictPending, 3)

	p, err := AssemblePage(raw, flags, 0, 4)
	if err != nil {
		t.Fatalf("AssemblePage: %v", err)
	}
	if p.Items[0].ID != "food_3" {
		t.Errorf("Items[0].ID = %q, want the single valid candidate first", p.Items[0].ID)
	}
	if p.Items[1].ID != "food_0" {
		t.Errorf("Items[1].ID = %q, want pending filler in original order", p.Items[1].ID)
	}
}

func TestAssemblePagePagination(t *testing.T) {
	raw := testBatch(10)
	flags := flagsFor(10, VerdictValid)

	tests := []struct {
		name       string
		page       int
		pageSize   int
		wantLen    int
		wantTotal  int
		wantPrev   bool
		wantNext   bool
		wantOutOfR bool
	}{
		{name: "first page", page: 0, pageSize: 4, wantLen: 4, wantTotal: 3, wantPrev: false, wantNext: true},
		{name: "middle page", page: 1, pageSize: 4, wantLen: 4, wantTotal: 3, wantPrev: true, wantNext: true},
		{name: "short last page", page: 2, pageSize: 4, wantLen: 2, wantTotal: 3, wantPrev: true, wantNext: false},
		{name: "just past the end", page: 3, pageSize: 4, wantOutOfR: true},
		{name: "far past the end", page: 99, pageSize: 4, wantOutOfR: true},
		{name: "exact fit last page", page: 4, pageSize: 2, wantLen: 2, wantTotal: 5, wantPrev: true, wantNext: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := AssemblePage(raw, flags, tt.page, tt.pageSize)
			if tt.wantOutOfR {
				if !errors.Is(err, ErrPageOutOfRange) {
					t.Fatalf("err = %v, want ErrPageOutOfRange", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("AssemblePage: %v", err)
			}
			if len(p.Items) != tt.wantLen {
				t.Errorf("len(Items) = %d, want %d", len(p.Items), tt.wantLen)
			}
			if p.TotalPages != tt.wantTotal {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantTotal)
			}
			if p.HasPrev != tt.wantPrev {
				t.Errorf("HasPrev = %v, want %v", p.HasPrev, tt.wantPrev)
			}
			if p.HasNext != tt.wantNext {
				t.Errorf("HasNext = %v, want %v", p.HasNext, tt.wantNext)
			}
		})
	}
}

func TestAssemblePageEmptyBatch(t *testing.T) {
	// Page 0 of an empty batch is an empty page, not an error.
	p, err := AssemblePage(nil, nil, 0, 4)
	if err != nil {
		t.Fatalf("AssemblePage: %v", err)
	}
	if len(p.Items) != 0 {
		t.Errorf("Items = %v, want empty", p.Items)
	}
	if p.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", p.TotalPages)
	}
	if p.HasPrev || p.HasNext {
		t.Errorf("HasPrev/HasNext = %v/%v, want false/false", p.HasPrev, p.HasNext)
	}

	// Any later page is out of range.
	if _, err := AssemblePage(nil, nil, 1, 4); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("page 1 of empty batch: err = %v, want ErrPageOutOfRange", err)
	}
}

func TestAssemblePageAllInvalid(t *testing.T) {
	raw := testBatch(6)
	flags := flagsFor(6, VerdictInvalid)

	p, err := AssemblePage(raw, flags, 0, 4)
	if err != nil {
		t.Fatalf("AssemblePage: %v", err)
	}
	// No valid candidates: the page fills with the batch in original order.
	for i := 0; i < 4; i++ {
		want := raw[i].ID
		if p.Items[i].ID != want {
			t.Errorf("Items[%d].ID = %q, want %q", i, p.Items[i].ID, want)
		}
	}
}
