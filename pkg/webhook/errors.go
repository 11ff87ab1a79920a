/*
2019 © Postgres.ai
*/

package webhook

import (
	"fmt"
	"net/http"

	"gitlab.com/postgres-ai/memebot/pkg/problem"
)

// Kind defines a class of request errors.
type Kind int

// Request error kinds.
const (
	KindMalformedHeader Kind = iota + 1
	KindInvalidToken
	KindDecode
)

// String returns a kind name.
func (k Kind) String() string {
	switch k {
	case KindMalformedHeader:
		return "malformed header"
	case KindInvalidToken:
		return "invalid token"
	case KindDecode:
		return "decode error"
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Error describes a rejected webhook request.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

// NewError creates a new request error.
func NewError(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Problem converts the error to a problem document.
func (e *Error) Problem() *problem.Problem {
	switch e.Kind {
	case KindMalformedHeader:
		return problem.New(http.StatusBadRequest, "Invalid `Authorization` header.").WithDetail(e.Detail)

	case KindInvalidToken:
		return problem.New(http.StatusUnauthorized, "Invalid token.").WithDetail("The passed token was invalid.")

	case KindDecode:
		return problem.New(http.StatusBadRequest, "Invalid request body.").WithDetail(e.Detail)
	}

	return problem.FromStatus(http.StatusInternalServerError)
}
