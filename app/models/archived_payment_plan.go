package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ArchivedPaymentPlan preserves the terms of a completed plan after the
// live PaymentPlan row is deleted. Created exactly once per completed
// plan, in the same transaction that deletes the plan, and never
// mutated. The unique key over the plan terms backstops the
// find-if-absent archive move against concurrent writers.
type ArchivedPaymentPlan struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	MemberID          uint            `gorm:"not null;index;uniqueIndex:ux_archived_plans_terms" json:"member_id"`
	Frequency         string          `gorm:"type:varchar(20);not null" json:"frequency"`
	StartDate         time.Time       `gorm:"type:date;not null;uniqueIndex:ux_archived_plans_terms" json:"start_date"`
	EndDate           time.Time       `gorm:"type:date;not null;uniqueIndex:ux_archived_plans_terms" json:"end_date"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null;uniqueIndex:ux_archived_plans_terms" json:"total_amount"`
	InstallmentAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"installment_amount"`
	Status            string          `gorm:"type:varchar(20);default:'Completed'" json:"status"`
	CompletedOn       time.Time       `gorm:"type:timestamp" json:"completed_on"`
}

// TableName keeps the legacy table name used by the existing schema.
func (ArchivedPaymentPlan) TableName() string {
	return "archived_payment_plans"
}
