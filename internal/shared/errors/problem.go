// Package errors provides RFC 7807 Problem Details for the admin HTTP API.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail represents an RFC 7807 Problem Details response, extended with the
// success/message pair admin clients read.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`
	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`
	// Status is the HTTP status code for this occurrence.
	Status int `json:"status"`
	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`
	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`
	// Extensions holds additional problem-specific properties.
	Extensions map[string]any `json:"extensions,omitempty"`
	// Success is always false.
	Success bool `json:"success"`
	// Message repeats the detail, or the title when no detail is set.
	Message string `json:"message"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with an additional extension property.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

// Problem types as URI references.
const (
	TypeBadRequest        = "/problems/bad-request"
	TypeInvalidAdjustment = "/problems/invalid-adjustment"
	TypeUnauthorized      = "/problems/unauthorized"
	TypeForbidden         = "/problems/forbidden"
	TypeNotFound          = "/problems/not-found"
	TypeInvalidPolicy     = "/problems/invalid-inventory-policy"
	TypeInternal          = "/problems/internal-error"
)

// GenericInternalMessage replaces 5xx details when internal errors must not leak.
const GenericInternalMessage = "An unexpected error occurred"

// Pre-defined problem templates.
var (
	// ErrBadRequest indicates the request was malformed or contradictory.
	ErrBadRequest = ProblemDetail{
		Type:   TypeBadRequest,
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
	}

	// ErrInvalidAdjustment indicates the adjustment would leave the ledger invalid.
	ErrInvalidAdjustment = ProblemDetail{
		Type:   TypeInvalidAdjustment,
		Title:  "Invalid Adjustment",
		Status: http.StatusBadRequest,
	}

	// ErrUnauthorized indicates a bearer token that does not resolve to a live credential.
	ErrUnauthorized = ProblemDetail{
		Type:   TypeUnauthorized,
		Title:  "Unauthorized",
		Status: http.StatusUnauthorized,
	}

	// ErrForbidden indicates the caller lacks the required capability.
	ErrForbidden = ProblemDetail{
		Type:   TypeForbidden,
		Title:  "Forbidden",
		Status: http.StatusForbidden,
	}

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = ProblemDetail{
		Type:   TypeNotFound,
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
	}

	// ErrInvalidPolicy indicates catalog policy metadata that cannot be applied.
	ErrInvalidPolicy = ProblemDetail{
		Type:   TypeInvalidPolicy,
		Title:  "Invalid Inventory Policy",
		Status: http.StatusUnprocessableEntity,
	}

	// ErrInternal indicates an unexpected server error.
	ErrInternal = ProblemDetail{
		Type:   TypeInternal,
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}
)
