package controllers

import (
	"log"
	"strconv"
	"sync"

	"github.com/chapterledger/ChapterLedger/app/models"
	"github.com/chapterledger/ChapterLedger/app/repository"
	"github.com/chapterledger/ChapterLedger/internal/pkg/database"
	"github.com/chapterledger/ChapterLedger/internal/pkg/dues"
	"github.com/chapterledger/ChapterLedger/internal/pkg/mail"
	"github.com/chapterledger/ChapterLedger/internal/pkg/stats"
	"github.com/gofiber/fiber/v2"
)

var (
	servicesOnce sync.Once
	duesService  *dues.Service
	statsService *stats.Service
)

// mailNotifier delivers plan-completion mail off the request path. Send
// failures are logged inside the mailer.
type mailNotifier struct{}

func (mailNotifier) PlanCompleted(member *models.Member) {
	go func() {
		if err := mail.SendPlanCompletedMail(member.Email, member.Name); err != nil {
			log.Printf("plan completion mail to %s failed: %v", member.Email, err)
		}
	}()
}

func initServices() {
	servicesOnce.Do(func() {
		db := database.GetDB()
		repository.InitializeFactory(db)
		duesAmount := dues.DuesAmountFromEnv()
		statsService = stats.NewService(repository.GetGlobalRepositories(), duesAmount)
		duesService = dues.NewService(
			dues.NewRepository(db),
			dues.WithInvalidator(statsService),
			dues.WithNotifier(mailNotifier{}),
			dues.WithDuesAmount(duesAmount),
		)
	})
}

// getDuesService returns the shared reconciliation engine.
func getDuesService() *dues.Service {
	initServices()
	return duesService
}

// getStatsService returns the shared stats service.
func getStatsService() *stats.Service {
	initServices()
	return statsService
}

// getRepositories returns the global repository bundle.
func getRepositories() *repository.Repositories {
	initServices()
	return repository.GetGlobalRepositories()
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "bad_request",
		"message": message,
	})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":   "not_found",
		"message": message,
	})
}

func serverError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "internal_error",
		"message": message,
	})
}

// paramUint parses a numeric route parameter.
func paramUint(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, err
	}
	return uint(id), nil
}

// pagination reads offset/limit query parameters with sane bounds.
func pagination(c *fiber.Ctx) (int, int) {
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return offset, limit
}
