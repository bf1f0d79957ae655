package shortener

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultExpiryHours is applied when a shorten request carries no expiry.
const DefaultExpiryHours = 24

// maxUnixSeconds is the largest expiry timestamp accepted: the largest integer a JSON
// number holds exactly, far below where int64 seconds or time.Time overflow.
const maxUnixSeconds = 1<<53 - 1

// Clock returns the current time.
type Clock func() time.Time

// Service implements shortening, resolution and analytics on top of the stores.
type Service struct {
	links        Repository
	accessLog    AccessLog
	recordAccess RecordAccess
	now          Clock
}

// NewService creates a new shortener service.
// recordAccess decides where resolutions are logged; accessLog is only read.
func NewService(links Repository, accessLog AccessLog, recordAccess RecordAccess, now Clock) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{
		links:        links,
		accessLog:    accessLog,
		recordAccess: recordAccess,
		now:          now,
	}
}

// Shorten stores a link for rawURL that expires expiryHours from now.
//
// When the code already exists for the same URL the stored link is returned
// unchanged, so the first expiry ever requested for a URL wins. created reports
// whether this call stored the link.
func (s *Service) Shorten(ctx context.Context, rawURL string, expiryHours int) (link *ShortLink, created bool, err error) {
	if !ValidURL(rawURL) {
		return nil, false, ErrInvalidURL
	}

	now := s.now().Unix()

	if expiryHours <= 0 || int64(expiryHours) > (maxUnixSeconds-now)/3600 {
		return nil, false, ErrInvalidExpiry
	}

	link = &ShortLink{
		Code:        GenerateCode(rawURL),
		OriginalURL: rawURL,
		CreatedAt:   time.Unix(now, 0),
		ExpiresAt:   time.Unix(now+int64(expiryHours)*3600, 0),
	}

	if err = s.links.Save(ctx, link); err != nil {
		return nil, false, fmt.Errorf("save link %s: %w", link.Code, err)
	}

	stored, err := s.links.GetByCode(ctx, link.Code)
	if err != nil {
		return nil, false, fmt.Errorf("load link %s: %w", link.Code, err)
	}

	if stored.OriginalURL != rawURL {
		return nil, false, ErrCodeCollision
	}

	created = stored.CreatedAt.Equal(link.CreatedAt) && stored.ExpiresAt.Equal(link.ExpiresAt)

	return stored, created, nil
}

// Resolve returns the link for code and records the access.
// Expired links return ErrExpired and are not recorded.
func (s *Service) Resolve(ctx context.Context, code Code, requesterAddress string) (*ShortLink, error) {
	link, err := s.links.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if link.ExpiredAt(now) {
		return nil, ErrExpired
	}

	entry := &AccessLogEntry{
		EventID:          uuid.NewString(),
		Code:             code,
		AccessedAt:       time.Unix(now.Unix(), 0),
		RequesterAddress: requesterAddress,
	}

	if err = s.recordAccess(ctx, entry); err != nil {
		return nil, fmt.Errorf("record access %s: %w", code, err)
	}

	return link, nil
}

// Analytics returns the link for code together with its access history.
func (s *Service) Analytics(ctx context.Context, code Code) (*Report, error) {
	link, err := s.links.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	accesses, err := s.accessLog.ListByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("list accesses %s: %w", code, err)
	}

	return &Report{Link: link, Accesses: accesses}, nil
}
