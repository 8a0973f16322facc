// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

package cache

import (
	"context"
	"slices"
	"sync"

	"github.com/studybites/studybites/internal/models"
)

// Verdict is the tri-state validation flag for one candidate.
type Verdict uint8

const (
	// VerdictPending means the candidate has not been classified yet.
	VerdictPending Verdict = iota

	// VerdictValid means the classifier accepted the candidate's photo.
	VerdictValid

	// VerdictInvalid means the photo was rejected, missing, or the
	// classification call failed (fail-closed).
	VerdictInvalid
)

func (v Verdict) String() string {
	switch v {
	case VerdictValid:
		return "valid"
	case VerdictInvalid:
		return "invalid"
	default:
		return "pending"
	}
}

// Entry holds one fetched candidate batch and its validation state.
//
// raw is fixed at creation and never mutated; flags and done are mutated only
// by the single background validation task and must be read together under mu.
// cond is broadcast on every verdict write and on completion so waiters wake
// promptly instead of polling.
type Entry struct {
	raw []models.Candidate

	mu    sync.Mutex
	cond  *sync.Cond
	flags []Verdict
	done  bool
}

func newEntry(raw []models.Candidate) *Entry {
	e := &Entry{
		raw:   raw,
		flags: make([]Verdict, len(raw)),
	}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// Raw returns the candidate batch. The returned slice must not be modified.
func (e *Entry) Raw() []models.Candidate {
	return e.raw
}

// setVerdict records the verdict for index i. A verdict is written at most
// once; later writes to the same index are ignored.
func (e *Entry) setVerdict(i int, v Verdict) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.flags[i] == VerdictPending {
		e.flags[i] = v
	}
	e.cond.Broadcast()
}

// markDone records that every index has been visited and wakes all waiters.
func (e *Entry) markDone() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.done = true
	e.cond.Broadcast()
}

// Snapshot returns a copy of the flags and the done state, read atomically
// relative to each other.
func (e *Entry) Snapshot() ([]Verdict, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.flags), e.done
}

// Wait blocks until at least required candidates are valid, validation has
// finished, or ctx is done — whichever comes first. It returns a consistent
// snapshot of the flags and done state, plus expired=true when the wait ended
// because of ctx rather than validation progress. A deadline expiry serves a
// best-effort view; it never mutates the entry.
func (e *Entry) Wait(ctx context.Context, required int) (flags []Verdict, done, expired bool) {
	// Wake the cond loop when the caller's deadline fires or it disconnects.
	stop := context.AfterFunc(ctx, func() {
		e.mu.Lock()
		e.cond.Broadcast()
		e.mu.Unlock()
	})
	defer stop()

	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		if e.done || countValid(e.flags) >= required {
			return slices.Clone(e.flags), e.done, false
		}
		if ctx.Err() != nil {
			return slices.Clone(e.flags), e.done, true
		}
		e.cond.Wait()
	}
}

func countValid(flags []Verdict) int {
	n := 0
	for _, f := range flags {
		if f == VerdictValid {
			n++
		}
	}
	return n
}
