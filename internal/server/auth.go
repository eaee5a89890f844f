package server

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const accountIDKey = "account_id"

// requireAuth guards the dashboard API. Tokens are HS256 bearer tokens
// whose subject claim is the account ID used for owner scoping.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return fail(c, fiber.StatusUnauthorized, "missing bearer token")
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return fail(c, fiber.StatusUnauthorized, "invalid token")
	}

	accountID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || accountID == 0 {
		return fail(c, fiber.StatusUnauthorized, "invalid token subject")
	}

	c.Locals(accountIDKey, uint(accountID))
	return c.Next()
}

func accountID(c *fiber.Ctx) uint {
	id, _ := c.Locals(accountIDKey).(uint)
	return id
}
