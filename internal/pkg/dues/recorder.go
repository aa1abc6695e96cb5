package dues

import (
	"errors"
	"time"

	"github.com/chapterledger/ChapterLedger/app/models"
	"gorm.io/gorm"
)

// Record validates one payment and writes it to the ledger. Validation
// failures reject before any write. When the input carries a webhook
// event ID, the ledger insert and the audit row's processed flip commit
// atomically.
func (s *Service) Record(input RecordInput, now time.Time) (*models.Payment, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	paymentType := input.PaymentType
	if input.PlanID != nil {
		plan, err := s.repo.GetPlanByID(*input.PlanID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanMismatch
		}
		if err != nil {
			return nil, storageErr("plan lookup", err)
		}
		if plan.MemberID != input.MemberID || !plan.IsActive() {
			return nil, ErrPlanMismatch
		}
		paymentType = models.PaymentTypeInstallment
	}
	if paymentType == "" {
		paymentType = models.PaymentTypeOneTime
	}

	payment := &models.Payment{
		MemberID:    input.MemberID,
		Amount:      input.Amount.Round(2),
		Date:        now,
		Method:      models.NormalizePaymentMethod(input.Method),
		PaymentType: paymentType,
		Notes:       input.Notes,
		PlanID:      input.PlanID,
	}
	if err := s.repo.CreatePayment(payment, input.webhookEventID); err != nil {
		return nil, storageErr("payment insert", err)
	}
	return payment, nil
}
