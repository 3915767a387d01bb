// Package errors provides RFC 7807 Problem Details for HTTP APIs.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail represents an RFC 7807 Problem Details response.
type ProblemDetail struct {
	// Type identifies the problem category; the responder prefixes it with its base URI.
	Type string `json:"type"`
	// Title summarizes the problem category and does not vary between occurrences.
	Title string `json:"title"`
	// Status mirrors the HTTP status code of the response.
	Status int `json:"status"`
	// Detail explains this occurrence to the visitor.
	Detail string `json:"detail,omitempty"`
	// Instance is the request path that produced the problem.
	Instance string `json:"instance,omitempty"`
	// Extensions carries per-problem members such as field errors or a submission report.
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error lets a problem travel through error returns.
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

const (
	TypeValidation = "/problems/validation-error"
	TypeNotFound   = "/problems/not-found"
	TypeConflict   = "/problems/state-conflict"
	TypeBadGateway = "/problems/backend-failure"
	TypeAmbiguous  = "/problems/backend-outcome-unknown"
	TypeInternal   = "/problems/internal-error"
	TypeBadRequest = "/problems/bad-request"
)

var (
	ErrNotFound = ProblemDetail{
		Type:   TypeNotFound,
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
	}

	ErrValidation = ProblemDetail{
		Type:   TypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
	}

	ErrBadRequest = ProblemDetail{
		Type:   TypeBadRequest,
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
	}

	// ErrConflict means the onboarding step does not allow the operation.
	ErrConflict = ProblemDetail{
		Type:   TypeConflict,
		Title:  "Not Allowed In Current Step",
		Status: http.StatusConflict,
	}

	// ErrBadGateway means the marketplace backend rejected or failed a call.
	ErrBadGateway = ProblemDetail{
		Type:   TypeBadGateway,
		Title:  "Marketplace Call Failed",
		Status: http.StatusBadGateway,
	}

	// ErrAmbiguous means the backend answered with success but the result could not be read.
	ErrAmbiguous = ProblemDetail{
		Type:   TypeAmbiguous,
		Title:  "Marketplace Outcome Unknown",
		Status: http.StatusBadGateway,
	}

	ErrInternal = ProblemDetail{
		Type:   TypeInternal,
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}
)

// NewValidationProblem creates a validation error with field-level details.
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	return ErrValidation.WithExtension("fields", fieldErrors)
}

// NewNotFoundProblem creates a not found error for a specific resource.
func NewNotFoundProblem(resourceType string, identifier any) ProblemDetail {
	return ErrNotFound.
		WithDetail(fmt.Sprintf("%s '%v' not found", resourceType, identifier)).
		WithExtension("resourceType", resourceType)
}
