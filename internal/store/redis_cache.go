package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortener"
)

// RedisCacheRepository wraps a Repository with Redis caching for reads.
// Links never change once stored, so cached entries are never invalidated, only expired.
type RedisCacheRepository struct {
	store  shortener.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "link:",
		ttl:    ttl,
	}
}

// Save stores a link in the underlying store.
// The cache is not written here: a duplicate Save is dropped by the store and the
// link passed in may not be the one that was kept.
func (r *RedisCacheRepository) Save(ctx context.Context, link *shortener.ShortLink) error {
	return r.store.Save(ctx, link)
}

// GetByCode retrieves a link by its code, checking cache first.
func (r *RedisCacheRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	if link, err := r.getFromCache(ctx, code); err == nil {
		return link, nil
	}

	link, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheLink(ctx, link)

	return link, nil
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	createdAt, err := strconv.ParseInt(result["created_at"], 10, 64)
	if err != nil {
		return nil, err
	}

	expiresAt, err := strconv.ParseInt(result["expires_at"], 10, 64)
	if err != nil {
		return nil, err
	}

	return &shortener.ShortLink{
		Code:        shortener.Code(result["code"]),
		OriginalURL: result["original_url"],
		CreatedAt:   time.Unix(createdAt, 0),
		ExpiresAt:   time.Unix(expiresAt, 0),
	}, nil
}

// cacheLink stores link for the configured TTL, but never past its expiry.
func (r *RedisCacheRepository) cacheLink(ctx context.Context, link *shortener.ShortLink) {
	ttl := r.ttl

	if remaining := time.Until(link.ExpiresAt); ttl <= 0 || remaining < ttl {
		ttl = remaining
	}

	if ttl <= 0 {
		return
	}

	pipe := r.client.Pipeline()
	key := r.prefix + string(link.Code)

	pipe.HSet(ctx, key, map[string]interface{}{
		"code":         string(link.Code),
		"original_url": link.OriginalURL,
		"created_at":   link.CreatedAt.Unix(),
		"expires_at":   link.ExpiresAt.Unix(),
	})

	pipe.Expire(ctx, key, ttl)

	_, _ = pipe.Exec(ctx)
}

// Compile-time check.
var _ shortener.Repository = (*RedisCacheRepository)(nil)
