package middleware

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/handlers"
	"go.uber.org/zap"
)

// Logger logs one line per request once the handler has written its response.
// It must run after RequestMeta to see the client IP.
func Logger(logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		next(ctx)

		path := ctx.URL().Path
		if op := ctx.Operation(); op != nil {
			path = op.Path
		}

		fields := []zap.Field{
			zap.String("method", ctx.Method()),
			zap.String("path", path),
			zap.Int("status", ctx.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", handlers.RequestMetaFromContext(ctx.Context()).ClientIP),
		}

		if ctx.Status() >= 500 {
			logger.Error("request failed", fields...)

			return
		}

		logger.Info("request handled", fields...)
	}
}
