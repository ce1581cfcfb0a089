package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docverify/internal/logging"
)

const (
	// RequestIDHeader is the standard header name used to propagate request IDs.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the key used to store the request ID in Fiber's context locals.
	RequestIDLocalKey = "request_id"
)

// RequestID makes sure every request has an id: X-Request-ID when the client sent one, a new
// UUID otherwise. The id is echoed in the response header, kept in locals for error payloads
// and put on the user context, so service logs written with c.UserContext() carry it too.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.SetUserContext(logging.WithRequestID(c.UserContext(), id))
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
