// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

// Package validation wraps go-playground/validator with a shared instance
// and error messages in the API's VALIDATION_ERROR format.
//
//	type recommendationsQuery struct {
//	    Limit int    `json:"limit" validate:"min=1,max=100"`
//	    Mode  string `json:"mode" validate:"oneof=mixed educational entertainment"`
//	}
//
//	if verr := validation.ValidateStruct(&q); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    ...
//	}
//
// Field names in messages come from the json tag, falling back to the
// koanf tag, so the same messages serve request and config validation.
package validation
