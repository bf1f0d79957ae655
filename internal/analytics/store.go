package analytics

import "context"

// Store receives events delivered from the analytics streams.
// Delivery is at least once, so SaveURLAccessed must ignore an EventID it has already stored.
type Store interface {
	SaveURLCreated(ctx context.Context, event *URLCreatedEvent) error
	SaveURLAccessed(ctx context.Context, event *URLAccessedEvent) error
}
