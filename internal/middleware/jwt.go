package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"zonekids/internal/common"
)

// JWTCustomClaims mirrors the claims issued by the auth service
type JWTCustomClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ParseJWTPayload validates the decoded claims and stores the user's
// identity on the request context.
func ParseJWTPayload(c echo.Context, claims *JWTCustomClaims) (*JWTCustomClaims, error) {
	sub := claims.UserID
	if sub == "" {
		sub = claims.Subject
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid user id in token: %w", err)
	}

	ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
	ctx = context.WithValue(ctx, common.UserRoleKey, claims.Role)
	c.SetRequest(c.Request().WithContext(ctx))

	return claims, nil
}

// JWTConfig builds the echo-jwt configuration used by protected routes
func JWTConfig(jwtSecret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			if claims, ok := token.Claims.(*JWTCustomClaims); ok {
				_, _ = ParseJWTPayload(c, claims)
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}
