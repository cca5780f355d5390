package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the response header carrying the generated ray id.
const HeaderName = "X-Ray-Id"

// New returns a middleware that assigns a unique ray id to every request.
// The id is stored in the context locals under "ray_id" and echoed back in
// the response headers so requests can be traced across logs.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Locals("ray_id", rid)
		c.Set(HeaderName, rid)

		return c.Next()
	}
}
