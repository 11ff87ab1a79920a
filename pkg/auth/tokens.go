/*
2019 © Postgres.ai
*/

package auth

// TokenSet contains the accepted slash command tokens.
// It is never modified after creation, so it can be shared between requests.
type TokenSet struct {
	tokens map[string]struct{}
}

// NewTokenSet creates a new TokenSet.
func NewTokenSet(tokens []string) TokenSet {
	set := TokenSet{tokens: make(map[string]struct{}, len(tokens))}

	for _, token := range tokens {
		set.tokens[token] = struct{}{}
	}

	return set
}

// Authorize checks whether the credential exactly matches one of the accepted tokens.
func (s TokenSet) Authorize(credential string) bool {
	_, ok := s.tokens[credential]
	return ok
}

// Len returns the number of accepted tokens.
func (s TokenSet) Len() int {
	return len(s.tokens)
}
