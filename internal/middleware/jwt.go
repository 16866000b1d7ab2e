package middleware

import (
	"context"
	"net/http"
	"strings"

	"elevate2/internal/common"
	"elevate2/internal/repositories"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// JWTMiddleware validates bearer tokens and loads the caller's identity
// into the request context. With a JWKS URL configured the token is
// verified against the identity provider's published keys; otherwise a
// shared HS256 secret is used.
func JWTMiddleware(userRepo repositories.UserRepository, jwtSecret, jwksURL string) (echo.MiddlewareFunc, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	}
	if jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			return nil, err
		}
		keyFunc = jwks.Keyfunc
	}

	mw := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			token, err := jwt.Parse(tokenString, keyFunc)
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}

			sub, ok := claims["sub"].(string)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing user_id in token")
			}

			userID, err := uuid.Parse(sub)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid user_id format")
			}

			tenantID, err := userRepo.GetTenantIDByUserID(c.Request().Context(), userID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
			}

			role, _ := claims["role"].(string)

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.TenantIDKey, tenantID)
			ctx = context.WithValue(ctx, common.UserRoleKey, role)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
	return mw, nil
}

// GetTenantIDFromContext extracts tenant ID from request context
func GetTenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(common.TenantIDKey).(uuid.UUID)
	return tenantID, ok
}
