package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/quotapay/quotapay/internal/pkg/identity"
	"github.com/quotapay/quotapay/internal/pkg/usercontext"
)

// TokenVerifier is implemented by identity.Verifier; tests substitute fakes.
type TokenVerifier interface {
	Verify(token string) (*identity.Claims, error)
}

// RequireAuth enforces a bearer token from the identity provider and stores
// the resolved user context in Locals.
func RequireAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if verifier == nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "auth verifier not configured"})
		}

		token, ok := extractBearerToken(c.Get("Authorization"))
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			log.Printf("auth failure: token invalid path=%s err=%v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		c.Locals(usercontext.ContextKey, usercontext.UserContext{
			UserID:     claims.Subject,
			Email:      claims.Email,
			IsLoggedIn: true,
		})
		return c.Next()
	}
}

func extractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
