package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/chapterledger/ChapterLedger/internal/pkg/dues"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type manualPaymentRequest struct {
	MemberID uint   `json:"member_id"`
	Amount   string `json:"amount"`
	Method   string `json:"method"`
	Notes    string `json:"notes"`
	PlanID   *uint  `json:"plan_id,omitempty"`
}

// HandleTreasurerDashboard aggregates the headline numbers for the
// officer dashboard.
func HandleTreasurerDashboard(c *fiber.Ctx) error {
	statsSvc := getStatsService()

	total, err := statsSvc.TotalCollected()
	if err != nil {
		return serverError(c, "stats lookup failed")
	}
	activePlans, err := statsSvc.ActivePlanCount()
	if err != nil {
		return serverError(c, "stats lookup failed")
	}
	unpaid, err := statsSvc.UnpaidMemberIDs()
	if err != nil {
		return serverError(c, "stats lookup failed")
	}
	types, err := statsSvc.PaymentTypeSummary()
	if err != nil {
		return serverError(c, "stats lookup failed")
	}
	methods, err := statsSvc.PaymentMethodSummary()
	if err != nil {
		return serverError(c, "stats lookup failed")
	}
	trends, err := statsSvc.MonthlyTrends(time.Now())
	if err != nil {
		return serverError(c, "stats lookup failed")
	}
	donations, err := getRepositories().Donation.SumAll()
	if err != nil {
		return serverError(c, "stats lookup failed")
	}

	return c.JSON(fiber.Map{
		"total_collected": total.StringFixed(2),
		"total_donations": donations.StringFixed(2),
		"active_plans":    activePlans,
		"unpaid_count":    len(unpaid),
		"payment_types":   types,
		"payment_methods": methods,
		"monthly_trends":  trends,
	})
}

// HandleListMembers returns members with pagination, or a name/email
// search when the q parameter is present.
func HandleListMembers(c *fiber.Ctx) error {
	repos := getRepositories()

	if query := strings.TrimSpace(c.Query("q")); query != "" {
		members, err := repos.Member.Search(query, 25)
		if err != nil {
			return serverError(c, "member search failed")
		}
		return c.JSON(fiber.Map{"members": members})
	}

	offset, limit := pagination(c)
	members, err := repos.Member.List(offset, limit)
	if err != nil {
		return serverError(c, "member lookup failed")
	}
	count, err := repos.Member.Count()
	if err != nil {
		return serverError(c, "member count failed")
	}
	return c.JSON(fiber.Map{
		"members": members,
		"total":   count,
	})
}

// HandleUnpaidMembers lists members who still owe dues this cycle.
func HandleUnpaidMembers(c *fiber.Ctx) error {
	ids, err := getStatsService().UnpaidMemberIDs()
	if err != nil {
		return serverError(c, "stats lookup failed")
	}

	repos := getRepositories()
	members := make([]fiber.Map, 0, len(ids))
	for _, id := range ids {
		member, merr := repos.Member.GetByID(id)
		if merr != nil {
			continue
		}
		outstanding, oerr := getStatsService().MemberOutstandingBalance(id, time.Now())
		if oerr != nil {
			return serverError(c, "balance lookup failed")
		}
		members = append(members, fiber.Map{
			"member":      member,
			"outstanding": outstanding.StringFixed(2),
		})
	}
	return c.JSON(fiber.Map{"unpaid": members})
}

// HandleRecordManualPayment records a cash or check payment taken in
// person. Unlike the webhook path there is no idempotency guard, so two
// identical submissions become two ledger rows.
func HandleRecordManualPayment(c *fiber.Ctx) error {
	var req manualPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.MemberID == 0 {
		return badRequest(c, "member_id is required")
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return badRequest(c, "amount must be a number")
	}

	result, err := getDuesService().RecordManualPayment(dues.RecordInput{
		MemberID: req.MemberID,
		Amount:   amount,
		Method:   req.Method,
		Notes:    req.Notes,
		PlanID:   req.PlanID,
	})
	switch {
	case err == nil:
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"payment":          result.Payment,
			"plan_archived":    result.PlanArchived,
			"financial_status": result.FinancialStatus,
		})
	case errors.Is(err, dues.ErrInvalidAmount):
		return badRequest(c, "amount must be greater than zero")
	case errors.Is(err, dues.ErrPlanMismatch):
		return badRequest(c, "plan does not belong to member or is not active")
	case errors.Is(err, dues.ErrMemberNotFound):
		return notFound(c, "member not found")
	case errors.Is(err, dues.ErrArchivalFailed):
		// The payment committed; only the plan archive needs a retry.
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"payment": result.Payment,
			"warning": "plan archival failed and will be retried on the next payment",
		})
	default:
		return serverError(c, "payment recording failed")
	}
}
