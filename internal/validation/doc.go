// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps the library in a thread-safe singleton with error translation to
// human-readable messages and conversion to the API's VALIDATION_ERROR
// envelope. Both the config loader and the HTTP request types use it.
//
// Example:
//
//	type EnqueueJobRequest struct {
//	    UserScope string `validate:"required,min=1,max=128"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
