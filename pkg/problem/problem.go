/*
2019 © Postgres.ai
*/

// Package problem provides HTTP API problem details (RFC 7807).
package problem

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"gitlab.com/postgres-ai/database-lab/pkg/log"
)

// MediaType defines the media type of problem documents.
const MediaType = "application/problem+json"

const defaultType = "about:blank"

// Problem describes an error response.
type Problem struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Renderer is implemented by errors that define their own problem document.
type Renderer interface {
	Problem() *Problem
}

// New creates a new problem with the given status and title.
func New(status int, title string) *Problem {
	return &Problem{
		Type:   defaultType,
		Title:  title,
		Status: status,
	}
}

// FromStatus creates a problem titled after the HTTP status.
func FromStatus(status int) *Problem {
	return New(status, http.StatusText(status))
}

// FromError converts an error to a problem. Errors not implementing Renderer are internal ones.
func FromError(err error) *Problem {
	var renderer Renderer
	if errors.As(err, &renderer) {
		return renderer.Problem()
	}

	return FromStatus(http.StatusInternalServerError)
}

// WithDetail sets a problem detail.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// Write writes the problem document to the response.
func Write(w http.ResponseWriter, p *Problem) {
	status := p.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", MediaType)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Err("Failed to write a problem document:", err)
	}
}
