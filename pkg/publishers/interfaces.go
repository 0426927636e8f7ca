// Package publishers delivers feed item announcements to downstream sinks.
package publishers

import "context"

// Publisher sends one Event to a sink. Implementations holding connections
// also implement io.Closer; Fanout.Close calls it.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
