package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/replenishment-api/internal/application/dto"
	"github.com/jhoicas/replenishment-api/pkg/jwt"
)

// LocalHubSubject key del subject del token del hub en c.Locals.
const LocalHubSubject = "hub_subject"

// WebhookAuth valida el Bearer Token HS256 con que el hub firma el webhook.
// Con secret vacío el webhook queda abierto y el middleware solo deja pasar.
func WebhookAuth(secret, issuer string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Next()
		}
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(secret, issuer, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalHubSubject, claims.Subject)
		return c.Next()
	}
}

// GetHubSubject devuelve el subject del token del hub (después de WebhookAuth).
func GetHubSubject(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalHubSubject).(string)
	return s
}
