package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentMethodStripe = "stripe"
	PaymentMethodCash   = "cash"
	PaymentMethodCheck  = "check"
	PaymentMethodOther  = "other"
)

const (
	PaymentTypeOneTime     = "one-time"
	PaymentTypeInstallment = "installment"
)

// Payment is an immutable ledger entry. Rows are only ever inserted by
// the payment recorder; there is no update path. PlanID may outlive the
// plan it references: archiving a completed plan deletes the live plan
// row but leaves its payments untouched as historical record.
type Payment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	MemberID    uint            `gorm:"not null;index" json:"member_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Date        time.Time       `gorm:"autoCreateTime;index" json:"date"`
	Method      string          `gorm:"type:varchar(50)" json:"method"`
	PaymentType string          `gorm:"type:varchar(20);index" json:"payment_type"`
	Notes       string          `gorm:"type:varchar(255)" json:"notes"`
	PlanID      *uint           `gorm:"index;default:null" json:"plan_id,omitempty"`
}

// NormalizePaymentMethod maps free-form method strings onto the known
// enumeration, defaulting to "other".
func NormalizePaymentMethod(method string) string {
	switch method {
	case PaymentMethodStripe, PaymentMethodCash, PaymentMethodCheck:
		return method
	default:
		return PaymentMethodOther
	}
}
