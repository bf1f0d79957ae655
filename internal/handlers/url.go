package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/serroba/shortlink/internal/analytics"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// URLHandler handles URL shortening operations.
type URLHandler struct {
	service           *shortener.Service
	baseURL           string
	publishURLCreated messaging.Publish[analytics.URLCreatedEvent]
	logger            *zap.Logger
}

// NewURLHandler creates a new URL handler.
// Short URLs are built as baseURL + "/" + code.
func NewURLHandler(
	service *shortener.Service,
	baseURL string,
	publishURLCreated messaging.Publish[analytics.URLCreatedEvent],
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		service:           service,
		baseURL:           strings.TrimRight(baseURL, "/"),
		publishURLCreated: publishURLCreated,
		logger:            logger,
	}
}

func (h *URLHandler) Shorten(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	expiry := shortener.DefaultExpiryHours
	if req.Body.Expiry != nil {
		expiry = *req.Body.Expiry
	}

	// Anything but a string is reported like a missing URL.
	rawURL, _ := req.Body.URL.(string)

	link, created, err := h.service.Shorten(ctx, rawURL, expiry)
	if err != nil {
		switch {
		case errors.Is(err, shortener.ErrInvalidURL):
			return nil, NewAPIError(http.StatusBadRequest, "Invalid or missing URL")
		case errors.Is(err, shortener.ErrInvalidExpiry):
			return nil, NewAPIError(http.StatusBadRequest, "Invalid expiry")
		case errors.Is(err, shortener.ErrCodeCollision):
			h.logger.Warn("short code collision", zap.String("url", rawURL))

			return nil, NewAPIError(http.StatusConflict, "Short code collision")
		}

		h.logger.Error("failed to shorten url", zap.Error(err))

		return nil, NewAPIError(http.StatusInternalServerError, "Failed to save URL")
	}

	if created {
		h.publishCreated(ctx, link)
	}

	shortURL := h.baseURL + "/" + string(link.Code)

	resp := &ShortenResponse{Location: shortURL}
	resp.Body.ShortURL = shortURL

	return resp, nil
}

// publishCreated announces a newly stored link. Failures are logged only: the link is already saved.
func (h *URLHandler) publishCreated(ctx context.Context, link *shortener.ShortLink) {
	meta := RequestMetaFromContext(ctx)
	event := &analytics.URLCreatedEvent{
		Code:        string(link.Code),
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
	}

	if err := h.publishURLCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish analytics event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}
}

func (h *URLHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	meta := RequestMetaFromContext(ctx)

	link, err := h.service.Resolve(ctx, shortener.Code(req.Code), meta.ClientIP)
	if err != nil {
		switch {
		case errors.Is(err, shortener.ErrNotFound):
			return nil, NewAPIError(http.StatusNotFound, "URL not found")
		case errors.Is(err, shortener.ErrExpired):
			return nil, NewAPIError(http.StatusGone, "URL has expired")
		}

		h.logger.Error("failed to resolve url", zap.String("code", req.Code), zap.Error(err))

		return nil, NewAPIError(http.StatusInternalServerError, "Failed to resolve URL")
	}

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: link.OriginalURL,
	}, nil
}

func (h *URLHandler) Analytics(ctx context.Context, req *AnalyticsRequest) (*AnalyticsResponse, error) {
	report, err := h.service.Analytics(ctx, shortener.Code(req.Code))
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, NewAPIError(http.StatusNotFound, "URL not found")
		}

		h.logger.Error("failed to load analytics", zap.String("code", req.Code), zap.Error(err))

		return nil, NewAPIError(http.StatusInternalServerError, "Failed to load analytics")
	}

	resp := &AnalyticsResponse{}
	resp.Body.OriginalURL = report.Link.OriginalURL
	resp.Body.CreationTimestamp = report.Link.CreatedAt.Unix()
	resp.Body.ExpirationTimestamp = report.Link.ExpiresAt.Unix()
	resp.Body.AccessLogs = make([]AccessLog, 0, len(report.Accesses))

	for _, entry := range report.Accesses {
		resp.Body.AccessLogs = append(resp.Body.AccessLogs, AccessLog{
			Timestamp: entry.AccessedAt.Unix(),
			IPAddress: entry.RequesterAddress,
		})
	}

	return resp, nil
}
