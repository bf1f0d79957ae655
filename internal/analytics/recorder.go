package analytics

import (
	"context"

	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortener"
)

// NewStreamRecorder records accesses by publishing them; a consumer appends them to the access log.
func NewStreamRecorder(publish messaging.Publish[URLAccessedEvent]) shortener.RecordAccess {
	return func(ctx context.Context, entry *shortener.AccessLogEntry) error {
		return publish(ctx, AccessedEventFromEntry(entry))
	}
}

// AccessedEventFromEntry converts an access log entry to its event form.
func AccessedEventFromEntry(entry *shortener.AccessLogEntry) *URLAccessedEvent {
	return &URLAccessedEvent{
		EventID:    entry.EventID,
		Code:       string(entry.Code),
		AccessedAt: entry.AccessedAt,
		ClientIP:   entry.RequesterAddress,
	}
}

// Entry converts the event back to an access log entry.
func (e *URLAccessedEvent) Entry() *shortener.AccessLogEntry {
	return &shortener.AccessLogEntry{
		EventID:          e.EventID,
		Code:             shortener.Code(e.Code),
		AccessedAt:       e.AccessedAt,
		RequesterAddress: e.ClientIP,
	}
}
