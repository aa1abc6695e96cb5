package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// InviteCode gates registration. Codes are single-use and may expire.
type InviteCode struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Code      string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"code"`
	Role      string     `gorm:"type:varchar(20);default:'member'" json:"role"`
	Used      bool       `gorm:"default:false" json:"used"`
	UsedBy    *uint      `gorm:"default:null" json:"used_by,omitempty"`
	UsedAt    *time.Time `gorm:"type:timestamp;default:null" json:"used_at,omitempty"`
	CreatedBy *uint      `gorm:"default:null" json:"created_by,omitempty"`
	ExpiresAt *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// NewInviteCode generates a fresh invite for the given role, expiring
// after expiresInDays.
func NewInviteCode(role string, createdBy uint, expiresInDays int) *InviteCode {
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	expires := time.Now().AddDate(0, 0, expiresInDays)
	creator := createdBy

	return &InviteCode{
		Code:      code,
		Role:      role,
		CreatedBy: &creator,
		ExpiresAt: &expires,
	}
}

// IsExpired reports whether the invite can no longer be redeemed due to
// its expiry time.
func (i *InviteCode) IsExpired(now time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}

// IsRedeemable reports whether the invite is unused and unexpired.
func (i *InviteCode) IsRedeemable(now time.Time) bool {
	return !i.Used && !i.IsExpired(now)
}
