package middleware

import (
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
)

// Recover catches handler panics, reports them to Sentry and turns them
// into a 500 response instead of killing the connection.
func Recover() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				sentry.CurrentHub().Recover(r)
				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Internal server error",
				})
			}
		}()
		return c.Next()
	}
}
