package shortener_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMock = errors.New("mock error")

const testURL = "https://example.com"

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(t *testing.T) (*shortener.Service, *store.MemoryStore, *fakeClock) {
	t.Helper()

	memStore := store.NewMemoryStore()
	clock := newFakeClock()

	return shortener.NewService(memStore, memStore, memStore.Append, clock.Now), memStore, clock
}

// failingRepository returns configured results instead of touching storage.
type failingRepository struct {
	saveErr error
	getErr  error
	stored  *shortener.ShortLink
}

func (f *failingRepository) Save(_ context.Context, _ *shortener.ShortLink) error {
	return f.saveErr
}

func (f *failingRepository) GetByCode(_ context.Context, _ shortener.Code) (*shortener.ShortLink, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}

	return f.stored, nil
}

func TestService_Shorten(t *testing.T) {
	t.Run("creates link with default expiry", func(t *testing.T) {
		svc, _, clock := newTestService(t)

		link, _, err := svc.Shorten(context.Background(), "https://example.com/a", shortener.DefaultExpiryHours)

		require.NoError(t, err)
		assert.Len(t, string(link.Code), 6)
		assert.Equal(t, "https://example.com/a", link.OriginalURL)
		assert.Equal(t, clock.Now().Unix(), link.CreatedAt.Unix())
		assert.Equal(t, link.CreatedAt.Unix()+86400, link.ExpiresAt.Unix())
	})

	t.Run("same url yields same code", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		first, _, err := svc.Shorten(context.Background(), testURL, 24)
		require.NoError(t, err)

		second, _, err := svc.Shorten(context.Background(), testURL, 24)
		require.NoError(t, err)

		assert.Equal(t, first.Code, second.Code)
	})

	t.Run("keeps first expiry on repeated shorten", func(t *testing.T) {
		svc, _, clock := newTestService(t)

		first, _, err := svc.Shorten(context.Background(), testURL, 24)
		require.NoError(t, err)

		clock.Advance(time.Minute)

		second, _, err := svc.Shorten(context.Background(), testURL, 1)
		require.NoError(t, err)

		assert.Equal(t, first.ExpiresAt, second.ExpiresAt)
		assert.Equal(t, first.CreatedAt, second.CreatedAt)
	})

	t.Run("rejects url without http scheme", func(t *testing.T) {
		svc, memStore, _ := newTestService(t)

		for _, raw := range []string{"", "example.com", "ftp://example.com"} {
			link, _, err := svc.Shorten(context.Background(), raw, 24)

			assert.Nil(t, link)
			require.ErrorIs(t, err, shortener.ErrInvalidURL)

			_, err = memStore.GetByCode(context.Background(), shortener.GenerateCode(raw))
			assert.ErrorIs(t, err, shortener.ErrNotFound, "no record for %q", raw)
		}
	})

	t.Run("rejects non-positive expiry", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, _, err := svc.Shorten(context.Background(), testURL, 0)
		require.ErrorIs(t, err, shortener.ErrInvalidExpiry)

		_, _, err = svc.Shorten(context.Background(), testURL, -3)
		require.ErrorIs(t, err, shortener.ErrInvalidExpiry)
	})

	t.Run("long expiry is computed in seconds", func(t *testing.T) {
		svc, _, clock := newTestService(t)

		link, _, err := svc.Shorten(context.Background(), "https://example.com/a", 3_000_000)
		require.NoError(t, err)
		assert.Equal(t, clock.Now().Unix()+3_000_000*3600, link.ExpiresAt.Unix())

		_, err = svc.Resolve(context.Background(), link.Code, "10.0.0.1")
		assert.NoError(t, err)
	})

	t.Run("rejects expiry beyond the representable range", func(t *testing.T) {
		svc, memStore, _ := newTestService(t)

		for _, hours := range []int{math.MaxInt, math.MaxInt64 / 3600, 1 << 42} {
			link, _, err := svc.Shorten(context.Background(), testURL, hours)

			assert.Nil(t, link)
			require.ErrorIs(t, err, shortener.ErrInvalidExpiry, "hours %d", hours)
		}

		_, err := memStore.GetByCode(context.Background(), shortener.GenerateCode(testURL))
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("reports created only for the first store", func(t *testing.T) {
		svc, _, clock := newTestService(t)

		_, created, err := svc.Shorten(context.Background(), testURL, 24)
		require.NoError(t, err)
		assert.True(t, created)

		clock.Advance(time.Minute)

		_, created, err = svc.Shorten(context.Background(), testURL, 1)
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("reports collision with a different url", func(t *testing.T) {
		repo := &failingRepository{stored: &shortener.ShortLink{
			Code:        shortener.GenerateCode(testURL),
			OriginalURL: "https://someone-else.example",
		}}
		svc := shortener.NewService(repo, store.NewMemoryStore(), nil, newFakeClock().Now)

		link, _, err := svc.Shorten(context.Background(), testURL, 24)

		assert.Nil(t, link)
		assert.ErrorIs(t, err, shortener.ErrCodeCollision)
	})

	t.Run("returns error when save fails", func(t *testing.T) {
		repo := &failingRepository{saveErr: errMock}
		svc := shortener.NewService(repo, store.NewMemoryStore(), nil, newFakeClock().Now)

		_, _, err := svc.Shorten(context.Background(), testURL, 24)

		assert.ErrorIs(t, err, errMock)
	})
}

func TestService_Resolve(t *testing.T) {
	t.Run("returns ErrNotFound for unknown code", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		link, err := svc.Resolve(context.Background(), "zzzzzz", "10.0.0.1")

		assert.Nil(t, link)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("records one access per resolution", func(t *testing.T) {
		svc, memStore, clock := newTestService(t)
		created, _, err := svc.Shorten(context.Background(), testURL, 24)
		require.NoError(t, err)

		link, err := svc.Resolve(context.Background(), created.Code, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, testURL, link.OriginalURL)

		entries, err := memStore.ListByCode(context.Background(), created.Code)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "10.0.0.1", entries[0].RequesterAddress)
		assert.Equal(t, clock.Now().Unix(), entries[0].AccessedAt.Unix())
		assert.NotEmpty(t, entries[0].EventID)
	})

	t.Run("resolves at the exact expiry second", func(t *testing.T) {
		svc, _, clock := newTestService(t)
		created, _, err := svc.Shorten(context.Background(), testURL, 1)
		require.NoError(t, err)

		clock.Advance(time.Hour)

		_, err = svc.Resolve(context.Background(), created.Code, "10.0.0.1")
		assert.NoError(t, err)
	})

	t.Run("expired link is not recorded", func(t *testing.T) {
		svc, memStore, clock := newTestService(t)
		created, _, err := svc.Shorten(context.Background(), testURL, 1)
		require.NoError(t, err)

		clock.Advance(time.Hour + time.Second)

		link, err := svc.Resolve(context.Background(), created.Code, "10.0.0.1")
		assert.Nil(t, link)
		require.ErrorIs(t, err, shortener.ErrExpired)

		entries, err := memStore.ListByCode(context.Background(), created.Code)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("returns error when recording fails", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		record := func(_ context.Context, _ *shortener.AccessLogEntry) error { return errMock }
		svc := shortener.NewService(memStore, memStore, record, newFakeClock().Now)

		created, _, err := svc.Shorten(context.Background(), testURL, 24)
		require.NoError(t, err)

		_, err = svc.Resolve(context.Background(), created.Code, "10.0.0.1")
		assert.ErrorIs(t, err, errMock)
	})
}

func TestService_Analytics(t *testing.T) {
	t.Run("returns ErrNotFound for unknown code", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		report, err := svc.Analytics(context.Background(), "zzzzzz")

		assert.Nil(t, report)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("lists accesses in insertion order", func(t *testing.T) {
		svc, _, clock := newTestService(t)
		created, _, err := svc.Shorten(context.Background(), testURL, 24)
		require.NoError(t, err)

		for _, addr := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
			_, err = svc.Resolve(context.Background(), created.Code, addr)
			require.NoError(t, err)
			clock.Advance(time.Second)
		}

		report, err := svc.Analytics(context.Background(), created.Code)
		require.NoError(t, err)

		assert.Equal(t, testURL, report.Link.OriginalURL)
		require.Len(t, report.Accesses, 3)
		assert.Equal(t, "10.0.0.1", report.Accesses[0].RequesterAddress)
		assert.Equal(t, "10.0.0.3", report.Accesses[2].RequesterAddress)
	})
}

func TestService_ExpiryLifecycle(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	created, _, err := svc.Shorten(ctx, "https://example.com/a", shortener.DefaultExpiryHours)
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt.Unix()+86400, created.ExpiresAt.Unix())

	_, err = svc.Resolve(ctx, created.Code, "10.0.0.1")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, created.Code, "10.0.0.1")
	require.NoError(t, err)

	report, err := svc.Analytics(ctx, created.Code)
	require.NoError(t, err)
	assert.Len(t, report.Accesses, 2)

	clock.Advance(24*time.Hour + time.Second)

	_, err = svc.Resolve(ctx, created.Code, "10.0.0.1")
	require.ErrorIs(t, err, shortener.ErrExpired)

	report, err = svc.Analytics(ctx, created.Code)
	require.NoError(t, err)
	assert.Len(t, report.Accesses, 2)
}
