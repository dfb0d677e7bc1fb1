package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingCredential = errors.New("missing or malformed authorization header")
	ErrInvalidCredential = errors.New("invalid credential")
)

// Gateway extracts the bearer credential from a request header and
// validates it against the identity provider. A missing or malformed
// header fails before the provider is ever consulted.
type Gateway struct {
	provider Provider
}

func NewGateway(provider Provider) *Gateway {
	return &Gateway{provider: provider}
}

// Authorize resolves the identity behind an Authorization header value.
// Callers must not log the raw header or token; the returned Identity.ID
// is the only value safe to record.
func (g *Gateway) Authorize(ctx context.Context, rawHeader string) (Identity, error) {
	if rawHeader == "" {
		return Identity{}, ErrMissingCredential
	}

	token := strings.TrimPrefix(rawHeader, "Bearer ")
	if token == rawHeader || token == "" {
		return Identity{}, ErrMissingCredential
	}

	identity, err := g.provider.GetUser(ctx, token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if identity.ID == "" {
		return Identity{}, ErrInvalidCredential
	}

	return identity, nil
}
