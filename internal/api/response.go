// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

// Package api provides the HTTP surface: chi routing, request handlers, and
// middleware factories.
package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/studybites/studybites/internal/logging"
	"github.com/studybites/studybites/internal/models"
)

// pageRangeError is the body of a 404 for a page beyond the batch. The single
// error field (no success wrapper) is part of the public contract.
type pageRangeError struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with proper headers.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a {success:false, error} payload.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, models.ErrorResponse{Success: false, Error: message})
}
