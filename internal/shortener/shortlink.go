package shortener

import "time"

// Code represents a short URL code.
type Code string

// ShortLink maps a short code to its original URL and validity window.
type ShortLink struct {
	Code        Code
	OriginalURL string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// ExpiredAt reports whether the link no longer resolves at now.
// A link is still active at the exact second it expires.
func (l *ShortLink) ExpiredAt(now time.Time) bool {
	return now.Unix() > l.ExpiresAt.Unix()
}

// AccessLogEntry records one successful resolution of a short link.
type AccessLogEntry struct {
	EventID          string
	Code             Code
	AccessedAt       time.Time
	RequesterAddress string
}

// Report is the analytics view of a short link.
type Report struct {
	Link     *ShortLink
	Accesses []AccessLogEntry
}
