package usercontext

import "github.com/gofiber/fiber/v2"

// MemberContext represents the complete member context for a request
type MemberContext struct {
	MemberID   uint   `json:"member_id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	IsLoggedIn bool   `json:"is_logged_in"`
}

// GetMemberContext retrieves the member context from fiber context.
// Returns a default anonymous context if none is set.
func GetMemberContext(c *fiber.Ctx) MemberContext {
	if ctx := c.Locals("MEMBER_CONTEXT"); ctx != nil {
		return ctx.(MemberContext)
	}
	return MemberContext{IsLoggedIn: false}
}

// IsLoggedIn checks if the current member is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetMemberContext(c).IsLoggedIn
}

// GetMemberID returns the current member's ID, or 0 if not logged in
func GetMemberID(c *fiber.Ctx) uint {
	return GetMemberContext(c).MemberID
}

// GetRole returns the current member's role, or empty string if not logged in
func GetRole(c *fiber.Ctx) string {
	return GetMemberContext(c).Role
}
