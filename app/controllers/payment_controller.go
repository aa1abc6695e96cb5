package controllers

import (
	"context"
	"time"

	"github.com/chapterledger/ChapterLedger/app/models"
	"github.com/chapterledger/ChapterLedger/internal/pkg/dues"
	"github.com/chapterledger/ChapterLedger/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type checkoutRequest struct {
	Amount      string `json:"amount"`
	PaymentType string `json:"payment_type"`
	PlanID      *uint  `json:"plan_id,omitempty"`
}

// HandleListMyPayments returns the logged-in member's ledger entries.
func HandleListMyPayments(c *fiber.Ctx) error {
	memberID := usercontext.GetMemberID(c)
	offset, limit := pagination(c)

	repos := getRepositories()
	payments, err := repos.Payment.ListByMember(memberID, offset, limit)
	if err != nil {
		return serverError(c, "payment lookup failed")
	}
	count, err := repos.Payment.CountByMember(memberID)
	if err != nil {
		return serverError(c, "payment count failed")
	}

	return c.JSON(fiber.Map{
		"payments": payments,
		"total":    count,
	})
}

// HandleMyBalance returns the member's paid total and outstanding dues.
func HandleMyBalance(c *fiber.Ctx) error {
	memberID := usercontext.GetMemberID(c)
	statsSvc := getStatsService()

	paid, err := statsSvc.MemberTotalPaid(memberID)
	if err != nil {
		return serverError(c, "balance lookup failed")
	}
	outstanding, err := statsSvc.MemberOutstandingBalance(memberID, time.Now())
	if err != nil {
		return serverError(c, "balance lookup failed")
	}

	member, err := getRepositories().Member.GetByID(memberID)
	if err != nil {
		return notFound(c, "member not found")
	}

	return c.JSON(fiber.Map{
		"total_paid":       paid.StringFixed(2),
		"outstanding":      outstanding.StringFixed(2),
		"financial_status": member.FinancialStatus,
	})
}

// HandleFeePreview quotes the grossed-up charge for a base amount so the
// member sees the card total before checkout.
func HandleFeePreview(c *fiber.Ctx) error {
	base, err := decimal.NewFromString(c.Query("amount"))
	if err != nil || !base.IsPositive() {
		return badRequest(c, "amount must be a positive number")
	}
	total := dues.TotalWithFees(base)
	return c.JSON(fiber.Map{
		"base":  base.StringFixed(2),
		"total": total.StringFixed(2),
		"fees":  total.Sub(base).StringFixed(2),
	})
}

// HandleCreateCheckout opens a hosted card checkout for the member. The
// base amount and optional plan linkage travel through checkout metadata
// and come back on the webhook.
func HandleCreateCheckout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	base, err := decimal.NewFromString(req.Amount)
	if err != nil || !base.IsPositive() {
		return badRequest(c, "amount must be a positive number")
	}

	member, err := getRepositories().Member.GetByID(usercontext.GetMemberID(c))
	if err != nil {
		return notFound(c, "member not found")
	}

	paymentType := req.PaymentType
	description := "Membership dues"
	if req.PlanID != nil {
		plan, perr := getRepositories().Plan.GetByID(*req.PlanID)
		if perr != nil || plan.MemberID != member.ID || !plan.IsActive() {
			return badRequest(c, "plan does not belong to member or is not active")
		}
		paymentType = models.PaymentTypeInstallment
		description = "Payment plan installment"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client := dues.NewStripeClientFromEnv()
	checkoutSession, err := client.CreateCheckoutSession(ctx, dues.CheckoutParams{
		MemberEmail: member.Email,
		Description: description,
		BaseAmount:  base,
		PaymentType: paymentType,
		PlanID:      req.PlanID,
	})
	if err != nil {
		return serverError(c, "checkout session could not be created")
	}

	return c.JSON(fiber.Map{
		"checkout_id":  checkoutSession.ID,
		"checkout_url": checkoutSession.URL,
		"charge_total": dues.TotalWithFees(base).StringFixed(2),
	})
}
