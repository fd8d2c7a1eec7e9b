package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// RequestLogger logs every HTTP request as one structured line. Request
// strings are copied since fiber reuses their buffers.
func RequestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		username := ""
		if id, ok := CurrentIdentity(c); ok {
			username = id.Username
		}

		log.Info("HTTP Request",
			zap.String("method", utils.CopyString(c.Method())),
			zap.String("path", utils.CopyString(c.Path())),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", utils.CopyString(c.IP())),
			zap.String("username", username),
		)
		return err
	}
}
