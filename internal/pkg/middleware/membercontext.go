package middleware

import (
	"github.com/chapterledger/ChapterLedger/internal/pkg/session"
	"github.com/chapterledger/ChapterLedger/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// MemberContextMiddleware sets up the complete member context for every
// request. This centralizes session handling so controllers only ever
// read usercontext.GetMemberContext(c).
func MemberContextMiddleware(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		c.Locals("MEMBER_CONTEXT", usercontext.MemberContext{IsLoggedIn: false})
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	memberID := sess.Get(usercontext.KeyMemberID)
	if memberID == nil {
		// Anonymous request - no session data
		c.Locals("MEMBER_CONTEXT", usercontext.MemberContext{IsLoggedIn: false})
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	name := session.GetSessionValue(c, usercontext.KeyMemberName)
	role := session.GetSessionValue(c, usercontext.KeyMemberRole)

	c.Locals("MEMBER_CONTEXT", usercontext.MemberContext{
		MemberID:   memberID.(uint),
		Name:       name,
		Role:       role,
		IsLoggedIn: true,
	})
	c.Locals(usercontext.KeyFromProtected, true)

	return c.Next()
}
