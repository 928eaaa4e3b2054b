// Package snapshot persists the last-observed value per monitored fact for
// each watch instance. The store is the watcher's only durable state; the
// diff engine reads it once and writes it once per tick.
package snapshot

import "context"

// Store is a per-instance mapping from field name to a string-encoded value.
// Implementations must make Set atomic across the supplied fields so a tick
// never leaves a half-written snapshot behind.
type Store interface {
	// Get returns the value of one field. The second return is false when the
	// field has never been written, which the engine treats as a cold start.
	Get(ctx context.Context, instance, field string) (string, bool, error)

	// Set writes the supplied fields for one instance, overwriting existing
	// values and leaving unmentioned fields intact.
	Set(ctx context.Context, instance string, fields map[string]string) error

	// Delete removes all fields of an instance.
	Delete(ctx context.Context, instance string) error
}
