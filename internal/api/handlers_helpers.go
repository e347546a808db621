// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/sprout/internal/logging"
	"github.com/tomtom215/sprout/internal/recommend"
	"github.com/tomtom215/sprout/internal/validation"
)

// maxBodyBytes caps POST bodies.
const maxBodyBytes = 64 << 10

// sanitizeLogValue escapes control characters so user input cannot forge log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// viewerIDParam parses the {viewerID} path parameter.
func viewerIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "viewerID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid viewer id %q", sanitizeLogValue(raw))
	}
	return id, nil
}

// validateRequest returns nil or a ready-to-write validation error.
func validateRequest(v interface{}) *validation.APIError {
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr.ToAPIError()
	}
	return nil
}

// writeValidation writes a 400 VALIDATION_ERROR.
func writeValidation(rw *ResponseWriter, apiErr *validation.APIError) {
	rw.ValidationError(apiErr.Message, apiErr.Details)
}

// writeStoreError maps domain errors to HTTP statuses. what names the
// failed operation in the log line.
func (h *Handler) writeStoreError(rw *ResponseWriter, r *http.Request, what string, err error) {
	logger := logging.Ctx(r.Context())
	switch {
	case errors.Is(err, recommend.ErrViewerNotFound):
		rw.NotFound("viewer not found")
	case errors.Is(err, recommend.ErrContentNotFound):
		rw.NotFound("content not found")
	case errors.Is(err, recommend.ErrInvalidMode):
		rw.ValidationError(err.Error(), nil)
	case errors.Is(err, recommend.ErrStoreUnavailable):
		logger.Warn().Err(err).Str("operation", what).Msg("store unavailable")
		rw.ServiceUnavailable("store temporarily unavailable")
	default:
		logger.Error().Err(err).Str("operation", what).Msg("request failed")
		rw.InternalError("internal error")
	}
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
