package usercontext

import "github.com/gofiber/fiber/v2"

// ContextKey is the Locals key the auth middleware stores the context under.
const ContextKey = "USER_CONTEXT"

// UserContext represents the authenticated seller for a request. The UserID is
// the identity provider's subject claim.
type UserContext struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	IsLoggedIn bool   `json:"is_logged_in"`
}

// GetUserContext retrieves the user context from fiber context.
// Returns a default anonymous context if none is set.
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(ContextKey); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{IsLoggedIn: false}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetUserID returns the current user's ID, or empty string if not logged in
func GetUserID(c *fiber.Ctx) string {
	return GetUserContext(c).UserID
}
