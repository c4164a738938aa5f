package middleware

import (
	"net/http"

	"vetly/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTConfig returns the echo-jwt configuration for protected routes. On a
// valid token the user and tenant IDs from the claims are copied onto the
// request context so handlers and services can read them without touching
// the token again.
func JWTConfig(jwtSecret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(jwtSecret),
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return
			}

			ctx := c.Request().Context()
			if sub, ok := claims["sub"].(string); ok {
				if userID, err := uuid.Parse(sub); err == nil {
					ctx = common.WithUserID(ctx, userID)
				}
			}
			if tid, ok := claims["tid"].(string); ok {
				if tenantID, err := uuid.Parse(tid); err == nil {
					ctx = common.WithTenantID(ctx, tenantID)
				}
			}
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}
