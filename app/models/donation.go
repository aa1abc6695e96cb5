package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation is a voluntary contribution, possibly from a non-member.
// Donations never count toward dues and never touch financial standing.
type Donation struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	DonorName  string          `gorm:"type:varchar(150);not null" json:"donor_name"`
	DonorEmail string          `gorm:"type:varchar(200);not null" json:"donor_email"`
	Amount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Date       time.Time       `gorm:"autoCreateTime;index" json:"date"`
	Method     string          `gorm:"type:varchar(50)" json:"method"`
	Anonymous  bool            `gorm:"default:false" json:"anonymous"`
	Notes      string          `gorm:"type:varchar(255)" json:"notes"`
	MemberID   *uint           `gorm:"index;default:null" json:"member_id,omitempty"`
}
