package middleware

import (
	"fmt"
	"net/http"
	"time"

	"vetly/internal/caching"

	"github.com/labstack/echo/v4"
)

// RateLimit throttles a route per client IP using the redis counter.
// Exceeding the limit within the window returns 429.
func RateLimit(cacheSvc caching.CacheService, name string, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := fmt.Sprintf("%s:%s", name, c.RealIP())

			limited, err := cacheSvc.IsRateLimited(ctx, key, limit, window)
			if err == nil && limited {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many attempts, try again later")
			}
			if err := cacheSvc.IncrementRateLimit(ctx, key, window); err != nil {
				c.Logger().Warnf("rate limit counter failed for %s: %v", key, err)
			}
			return next(c)
		}
	}
}
