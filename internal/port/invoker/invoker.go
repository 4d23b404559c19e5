// Package invoker defines the invocation strategy port (interface).
package invoker

import "context"

// Strategy executes one specialist skill and returns its raw result.
// Implementations may run the specialist in-process, spawn a subprocess,
// or make a network call; the dispatcher is agnostic. Errors returned here
// are captured by the dispatcher as FAILED results, never re-raised.
//
// Implementations that need bounded execution time must enforce it
// themselves and surface a timeout as a regular error.
type Strategy interface {
	Invoke(ctx context.Context, specialist, skillID string, payload, taskCtx map[string]any) (map[string]any, error)
}
