package londoners

import (
	"fmt"
	"time"
)

// Scope identifies an independent Guesty credential set. Each scope has its
// own client id and secret and its own cached-token lineage.
type Scope string

const (
	// ScopeOpenAPI is the general Guesty Open API credential set.
	ScopeOpenAPI Scope = "open-api"
	// ScopeBookingEngine is the Guesty Booking Engine API credential set.
	ScopeBookingEngine Scope = "booking_engine:api"
)

// ParseScope parses a scope in string.
func ParseScope(source string) (Scope, error) {
	switch Scope(source) {
	case ScopeOpenAPI, ScopeBookingEngine:
		return Scope(source), nil
	}
	return "", fmt.Errorf(`failed to parse scope from value "%s"`, source)
}

// CachedToken describes a persisted Guesty bearer credential. Tokens are
// never mutated after creation, refresh always inserts a new row.
type CachedToken struct {
	Value     string
	TokenType string
	Scope     Scope
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func newCachedToken(
	value, tokenType string,
	scope Scope,
	issuedAt time.Time,
	ttl time.Duration) (*CachedToken, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf(`token lifetime must be positive, got %v`, ttl)
	}
	return &CachedToken{
		Value:     value,
		TokenType: tokenType,
		Scope:     scope,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(ttl)}, nil
}

// IsUsable returns true if the token still has at least the safety margin of
// remaining validity at the given moment.
func (token *CachedToken) IsUsable(now time.Time) bool {
	return token.ExpiresAt.Sub(now) >= TokenSafetyMargin
}

// ExpiresIn returns the remaining token lifetime in whole seconds.
func (token *CachedToken) ExpiresIn(now time.Time) int64 {
	return int64(token.ExpiresAt.Sub(now) / time.Second)
}
