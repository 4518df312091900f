package middleware

import (
	"context"
	"net/http"

	"altify/internal/common"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SessionAuth validates the bearer token issued at connect time and places
// the session id and shop domain into the request context.
func SessionAuth(jwtSecret string) []echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(jwtSecret),
		SigningMethod: "HS256",
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHORIZED", "Invalid or missing session token", nil))
		},
	})

	extract := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}

			sessionIDStr, ok := claims["session_id"].(string)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing session_id in token")
			}
			sessionID, err := uuid.Parse(sessionIDStr)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid session_id format")
			}

			shopDomain, ok := claims["shop_domain"].(string)
			if !ok || shopDomain == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing shop_domain in token")
			}

			ctx := context.WithValue(c.Request().Context(), common.SessionIDKey, sessionID)
			ctx = context.WithValue(ctx, common.ShopDomainKey, shopDomain)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}

	return []echo.MiddlewareFunc{verify, extract}
}
