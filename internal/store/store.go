// Package store persists the append-only conversation log.
package store

import (
	"context"
	"errors"

	"github.com/nbcassistant/backend/internal/model/conversation"
)

var ErrUnavailable = errors.New("conversation store unavailable")

// Store is the append-only conversation log keyed by user. There is no
// update or delete path.
type Store interface {
	Append(ctx context.Context, rec conversation.Record) error
	// ListByUser returns the user's records ascending by creation time.
	// A new user yields an empty slice, not an error.
	ListByUser(ctx context.Context, userID string) ([]conversation.Record, error)
}
