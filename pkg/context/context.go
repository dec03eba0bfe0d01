package context

import (
	"context"

	"FridgeMood/pkg/log"

	"github.com/gofiber/fiber/v2"
)

// WithRequestID stores requestID under the key pkg/log reads it from.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, log.RequestIDKey, requestID)
}

// FromFiberCtx derives a request context that carries the request id.
// It is rooted at the fasthttp request context so it ends with the request.
func FromFiberCtx(c *fiber.Ctx) context.Context {
	var ctx context.Context = c.Context()

	requestID, ok := c.Locals("X-Request-ID").(string)
	if !ok || requestID == "" {
		requestID = c.Get("X-Request-ID")
		if requestID == "" {
			requestID = "unknown"
		}
	}

	return WithRequestID(ctx, requestID)
}
