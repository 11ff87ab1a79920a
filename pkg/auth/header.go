/*
2019 © Postgres.ai
*/

// Package auth provides the token authorization of slash command requests.
package auth

import (
	"unicode/utf8"

	"github.com/pkg/errors"
)

// TokenScheme defines the authorization scheme of slash command requests.
const TokenScheme = "Token"

// ErrMalformedHeader is returned when the Authorization header does not carry a token.
var ErrMalformedHeader = errors.New("invalid `Authorization` header value")

// ParseTokenHeader extracts a credential from the "Token <credential>" header value.
func ParseTokenHeader(value string) (string, error) {
	schemeLen := len(TokenScheme)

	if len(value) <= schemeLen || value[:schemeLen] != TokenScheme || value[schemeLen] != ' ' {
		return "", ErrMalformedHeader
	}

	credential := value[schemeLen+1:]
	if !utf8.ValidString(credential) {
		return "", errors.Wrap(ErrMalformedHeader, "credential is not a valid UTF-8 text")
	}

	return credential, nil
}
