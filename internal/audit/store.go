package audit

import "context"

// Store persists append-only audit records.
type Store interface {
	Append(ctx context.Context, rec *Record) error
	Search(ctx context.Context, f Filter) ([]Record, error)
}
