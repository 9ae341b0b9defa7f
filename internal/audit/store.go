package audit

import "context"

// Store persists audit events. Swap with concrete storage without touching
// publishers.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
