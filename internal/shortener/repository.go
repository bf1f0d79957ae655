package shortener

import "context"

// Repository persists short links.
type Repository interface {
	// Save inserts the link. Saving a code that already exists is a no-op and
	// leaves the stored link untouched.
	Save(ctx context.Context, link *ShortLink) error

	// GetByCode returns ErrNotFound when no link has the code.
	GetByCode(ctx context.Context, code Code) (*ShortLink, error)
}

// AccessLog stores access log entries.
type AccessLog interface {
	// Append stores the entry. Entries whose EventID was already stored are ignored.
	Append(ctx context.Context, entry *AccessLogEntry) error

	// ListByCode returns every entry for code in insertion order.
	ListByCode(ctx context.Context, code Code) ([]AccessLogEntry, error)
}

// RecordAccess hands an access log entry to whatever persists it.
type RecordAccess func(ctx context.Context, entry *AccessLogEntry) error
