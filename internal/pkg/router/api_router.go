package router

import (
	"time"

	"github.com/chapterledger/ChapterLedger/app/controllers"
	"github.com/chapterledger/ChapterLedger/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// The webhook endpoint sits outside the rate limiter and outside
	// session auth: the gateway authenticates via signature, and
	// throttling its retries only delays reconciliation.
	app.Post("/api/v1/webhooks/stripe", controllers.HandleStripeWebhook)

	api := app.Group("/api/v1", limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
	}))

	// Public
	api.Post("/auth/register", controllers.HandleRegister)
	api.Post("/auth/login", controllers.HandleLogin)
	api.Post("/donations", controllers.HandleCreateDonation)

	// Logged-in members
	member := api.Group("", middleware.RequireAuth)
	member.Post("/auth/logout", controllers.HandleLogout)
	member.Get("/me", controllers.HandleMe)
	member.Get("/me/payments", controllers.HandleListMyPayments)
	member.Get("/me/balance", controllers.HandleMyBalance)
	member.Get("/me/plans", controllers.HandleMyPlans)
	member.Post("/me/plans", controllers.HandleEnrollPlan)
	member.Get("/payments/fee-preview", controllers.HandleFeePreview)
	member.Post("/payments/checkout", controllers.HandleCreateCheckout)

	// Officers with report access
	reports := api.Group("", middleware.RequireReportAccess)
	reports.Get("/reports/dashboard", controllers.HandleTreasurerDashboard)
	reports.Get("/reports/unpaid", controllers.HandleUnpaidMembers)
	reports.Get("/donations", controllers.HandleListDonations)
	reports.Post("/invites", controllers.HandleCreateInvite)
	reports.Get("/invites", controllers.HandleListInvites)

	// Officers with full access
	admin := api.Group("", middleware.RequireFullAccess)
	admin.Get("/members", controllers.HandleListMembers)
	admin.Post("/payments/manual", controllers.HandleRecordManualPayment)
	admin.Delete("/invites/:id", controllers.HandleDeleteInvite)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
