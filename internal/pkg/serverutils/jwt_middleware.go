package serverutils

import (
	"errors"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtMiddleware guards the admin routes. It expects a bearer token signed
// with JWT_SECRET and exposes the token's user_id claim to handlers.
func JwtMiddleware(ctx *fiber.Ctx) error {
	token, err := parseBearer(ctx.Get("Authorization"))
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(
			ErrorResponse(fiber.StatusUnauthorized, err.Error()),
		)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(
			ErrorResponse(fiber.StatusUnauthorized, "invalid claims"),
		)
	}

	ctx.Locals("user_id", claims["user_id"])
	return ctx.Next()
}

func parseBearer(header string) (*jwt.Token, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return nil, errors.New("missing bearer token")
	}

	token, err := jwt.Parse(strings.TrimPrefix(header, prefix), func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return token, nil
}
