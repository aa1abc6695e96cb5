package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PlanStatusActive    = "Active"
	PlanStatusCompleted = "Completed"
)

const (
	PlanFrequencyWeekly    = "weekly"
	PlanFrequencyMonthly   = "monthly"
	PlanFrequencyQuarterly = "quarterly"
)

// PaymentPlan is a member's commitment to pay TotalAmount across
// ExpectedInstallments payments. At most one Active plan exists per
// member. Completion moves the row into ArchivedPaymentPlan and deletes
// it here; there is no transition back to Active.
type PaymentPlan struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	MemberID             uint            `gorm:"not null;index" json:"member_id"`
	Frequency            string          `gorm:"type:varchar(20);not null" json:"frequency"`
	StartDate            time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate              time.Time       `gorm:"type:date;not null" json:"end_date"`
	TotalAmount          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	InstallmentAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"installment_amount"`
	ExpectedInstallments *int            `gorm:"default:null" json:"expected_installments,omitempty"`
	EnforceInstallments  bool            `gorm:"default:false" json:"enforce_installments"`
	Status               string          `gorm:"type:varchar(20);default:'Active';index" json:"status"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// NormalizePlanStatus folds legacy casing ("active", "ACTIVE", ...) into
// the canonical constants at the storage boundary so the core never has
// to compare case-insensitively.
func NormalizePlanStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed":
		return PlanStatusCompleted
	default:
		return PlanStatusActive
	}
}

// IsActive reports whether the plan is live, tolerating legacy casing.
func (p *PaymentPlan) IsActive() bool {
	return NormalizePlanStatus(p.Status) == PlanStatusActive
}

// IsCompleted reports whether the plan reached its terminal status,
// tolerating legacy casing.
func (p *PaymentPlan) IsCompleted() bool {
	return NormalizePlanStatus(p.Status) == PlanStatusCompleted
}

// PlanSchedule describes how many installments a frequency implies and
// the gap between them.
type PlanSchedule struct {
	NumPayments    int
	IntervalMonths int
	IntervalWeeks  int
}

// ScheduleForFrequency returns the installment schedule for a plan
// frequency: weekly plans run 10 payments a week apart, monthly plans 5
// payments a month apart, quarterly plans 2 payments a quarter apart.
func ScheduleForFrequency(frequency string) (PlanSchedule, bool) {
	switch frequency {
	case PlanFrequencyWeekly:
		return PlanSchedule{NumPayments: 10, IntervalWeeks: 1}, true
	case PlanFrequencyMonthly:
		return PlanSchedule{NumPayments: 5, IntervalMonths: 1}, true
	case PlanFrequencyQuarterly:
		return PlanSchedule{NumPayments: 2, IntervalMonths: 3}, true
	default:
		return PlanSchedule{}, false
	}
}

// EndDateFor computes the date of the final installment: start plus
// interval times (n-1).
func (s PlanSchedule) EndDateFor(start time.Time) time.Time {
	steps := s.NumPayments - 1
	if steps < 0 {
		steps = 0
	}
	if s.IntervalMonths > 0 {
		return start.AddDate(0, s.IntervalMonths*steps, 0)
	}
	return start.AddDate(0, 0, 7*s.IntervalWeeks*steps)
}

// InstallmentAmountFor divides the total into equal installments rounded
// to cents. The division can drift from the total by up to n-1 cents in
// either direction; the completion check absorbs a single cent of that.
func (s PlanSchedule) InstallmentAmountFor(total decimal.Decimal) decimal.Decimal {
	return total.Div(decimal.NewFromInt(int64(s.NumPayments))).Round(2)
}
