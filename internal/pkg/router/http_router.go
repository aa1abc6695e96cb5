package router

import (
	"github.com/chapterledger/ChapterLedger/internal/pkg/middleware"
	"github.com/chapterledger/ChapterLedger/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply member context middleware globally as first middleware
	app.Use(middleware.MemberContextMiddleware)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
