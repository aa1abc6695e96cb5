package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/chapterledger/ChapterLedger/internal/pkg/cache"
	"github.com/chapterledger/ChapterLedger/internal/pkg/database"
	"github.com/chapterledger/ChapterLedger/internal/pkg/env"
	"github.com/chapterledger/ChapterLedger/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	app := fiber.New(fiber.Config{
		AppName:   "ChapterLedger",
		BodyLimit: 1 * 1024 * 1024, // webhook and JSON payloads only
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
