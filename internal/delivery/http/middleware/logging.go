package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogger writes one structured line per request.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			attrs := []any{
				"method", req.Method,
				"path", c.Path(),
				"status", res.Status,
				"latency", time.Since(start),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
			}
			if identity := IdentityFrom(c); identity.IsAuthenticated {
				attrs = append(attrs, "subject_id", identity.SubjectID)
			}
			switch {
			case res.Status >= 500:
				logger.Error("http request", attrs...)
			case res.Status >= 400:
				logger.Warn("http request", attrs...)
			default:
				logger.Info("http request", attrs...)
			}
			return nil
		}
	}
}
