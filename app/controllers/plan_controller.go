package controllers

import (
	"errors"
	"time"

	"github.com/chapterledger/ChapterLedger/internal/pkg/dues"
	"github.com/chapterledger/ChapterLedger/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type enrollPlanRequest struct {
	Frequency           string `json:"frequency"`
	TotalAmount         string `json:"total_amount"`
	StartDate           string `json:"start_date"`
	EnforceInstallments bool   `json:"enforce_installments"`
}

// HandleEnrollPlan enrolls the logged-in member in an installment plan.
func HandleEnrollPlan(c *fiber.Ctx) error {
	var req enrollPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	total, err := decimal.NewFromString(req.TotalAmount)
	if err != nil {
		return badRequest(c, "total_amount must be a number")
	}

	start := time.Now()
	if req.StartDate != "" {
		start, err = time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return badRequest(c, "start_date must be YYYY-MM-DD")
		}
	}

	plan, err := getDuesService().EnrollPlan(
		usercontext.GetMemberID(c), req.Frequency, total, start, req.EnforceInstallments)
	switch {
	case err == nil:
		return c.Status(fiber.StatusCreated).JSON(plan)
	case errors.Is(err, dues.ErrInvalidAmount):
		return badRequest(c, "total_amount must be greater than zero")
	case errors.Is(err, dues.ErrUnknownFrequency):
		return badRequest(c, "frequency must be weekly, monthly or quarterly")
	case errors.Is(err, dues.ErrActivePlanExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "conflict",
			"message": "an active plan already exists",
		})
	case errors.Is(err, dues.ErrMemberNotFound):
		return notFound(c, "member not found")
	default:
		return serverError(c, "plan enrollment failed")
	}
}

// HandleMyPlans returns the member's live plan (if any) plus completed
// archived plans.
func HandleMyPlans(c *fiber.Ctx) error {
	memberID := usercontext.GetMemberID(c)
	repos := getRepositories()

	plans, err := repos.Plan.ListByMember(memberID)
	if err != nil {
		return serverError(c, "plan lookup failed")
	}
	archived, err := repos.Plan.ListArchivedByMember(memberID)
	if err != nil {
		return serverError(c, "archived plan lookup failed")
	}

	progress := make([]fiber.Map, 0, len(plans))
	for _, plan := range plans {
		paid, count, serr := repos.Payment.SumAndCountByPlan(memberID, plan.ID)
		if serr != nil {
			return serverError(c, "plan progress lookup failed")
		}
		progress = append(progress, fiber.Map{
			"plan":           plan,
			"paid":           paid.StringFixed(2),
			"payments_made":  count,
			"remaining":      plan.TotalAmount.Sub(paid).StringFixed(2),
			"percent_funded": percentFunded(paid, plan.TotalAmount),
		})
	}

	return c.JSON(fiber.Map{
		"plans":    progress,
		"archived": archived,
	})
}

func percentFunded(paid, total decimal.Decimal) string {
	if !total.IsPositive() {
		return "0"
	}
	pct := paid.Div(total).Mul(decimal.NewFromInt(100)).Round(1)
	hundred := decimal.NewFromInt(100)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return pct.String()
}
