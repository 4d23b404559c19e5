// Package cardsource defines the capability descriptor source port (interface).
package cardsource

import (
	"context"

	"github.com/intent-solutions/foreman/internal/domain/delegation"
)

// Source enumerates capability descriptors from one backing location
// (a directory of card files, a set of remote specialist endpoints, ...).
type Source interface {
	// Load returns every descriptor the source could read. Per-entry
	// failures (an unreadable file, an unreachable endpoint) are returned
	// as warnings; the registry's discovery policy decides whether they
	// are fatal. A non-nil err means the source as a whole is unusable.
	Load(ctx context.Context) (cards []delegation.AgentCard, warns []error, err error)
}
