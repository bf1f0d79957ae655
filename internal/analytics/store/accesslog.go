package store

import (
	"context"

	"github.com/serroba/shortlink/internal/analytics"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// AccessLog is an analytics.Store that appends accessed events to the access log.
// Created events carry nothing the link table lacks and are only logged.
type AccessLog struct {
	log    shortener.AccessLog
	logger *zap.Logger
}

// NewAccessLog creates a new access-log-backed analytics store.
func NewAccessLog(log shortener.AccessLog, logger *zap.Logger) *AccessLog {
	return &AccessLog{log: log, logger: logger}
}

func (a *AccessLog) SaveURLCreated(_ context.Context, event *analytics.URLCreatedEvent) error {
	a.logger.Info("url created event received",
		zap.String("code", event.Code),
		zap.String("originalUrl", event.OriginalURL),
		zap.Time("createdAt", event.CreatedAt),
		zap.Time("expiresAt", event.ExpiresAt),
	)

	return nil
}

func (a *AccessLog) SaveURLAccessed(ctx context.Context, event *analytics.URLAccessedEvent) error {
	return a.log.Append(ctx, event.Entry())
}

var _ analytics.Store = (*AccessLog)(nil)
