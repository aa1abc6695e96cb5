package controllers

import (
	"strings"

	"github.com/chapterledger/ChapterLedger/app/models"
	"github.com/chapterledger/ChapterLedger/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type createDonationRequest struct {
	DonorName  string `json:"donor_name"`
	DonorEmail string `json:"donor_email"`
	Amount     string `json:"amount"`
	Method     string `json:"method"`
	Anonymous  bool   `json:"anonymous"`
	Notes      string `json:"notes"`
}

// HandleCreateDonation records a voluntary contribution. Donations are
// tracked separately from the dues ledger and never affect standing.
func HandleCreateDonation(c *fiber.Ctx) error {
	var req createDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return badRequest(c, "amount must be a positive number")
	}
	name := strings.TrimSpace(req.DonorName)
	if req.Anonymous {
		name = "Anonymous"
	}
	if name == "" {
		return badRequest(c, "donor_name is required")
	}

	donation := &models.Donation{
		DonorName:  name,
		DonorEmail: strings.TrimSpace(req.DonorEmail),
		Amount:     amount.Round(2),
		Method:     models.NormalizePaymentMethod(req.Method),
		Anonymous:  req.Anonymous,
		Notes:      req.Notes,
	}
	if memberID := usercontext.GetMemberID(c); memberID != 0 {
		donation.MemberID = &memberID
	}

	if err := getRepositories().Donation.Create(donation); err != nil {
		return serverError(c, "donation recording failed")
	}
	return c.Status(fiber.StatusCreated).JSON(donation)
}

// HandleListDonations returns donations with the running total.
func HandleListDonations(c *fiber.Ctx) error {
	offset, limit := pagination(c)
	repos := getRepositories()

	donations, err := repos.Donation.List(offset, limit)
	if err != nil {
		return serverError(c, "donation lookup failed")
	}
	count, err := repos.Donation.Count()
	if err != nil {
		return serverError(c, "donation count failed")
	}
	sum, err := repos.Donation.SumAll()
	if err != nil {
		return serverError(c, "donation sum failed")
	}
	return c.JSON(fiber.Map{
		"donations": donations,
		"total":     count,
		"sum":       sum.StringFixed(2),
	})
}
