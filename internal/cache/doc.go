// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

// Package cache implements the progressive validation cache at the heart of
// StudyBites.
//
// A cache entry is created on the first request for a location+preference key:
// the search provider is asked once for a batch of candidate venues, and a
// single background task classifies each candidate's photo in order, recording
// a tri-state verdict per index. Request handlers wait on the entry until
// enough candidates have been validated to fill the requested page (or
// validation has finished, or the caller's deadline expires), then assemble a
// validated-first page view.
//
// Guarantees:
//
//   - At most one provider fetch and one validation task per key, even under
//     racing first-time requests.
//   - Verdicts are written at most once, in strictly increasing index order.
//   - done flips to true exactly once, after every index has been visited.
//     Shutdown may abort the task early; done still flips so no waiter is
//     left blocked, and pages assembled from such an entry report partial.
//   - Waiters are woken by condition broadcast on every verdict write, not by
//     polling on a fixed cadence.
package cache
