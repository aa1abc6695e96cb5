package repository

import (
	"time"

	"github.com/chapterledger/ChapterLedger/app/models"
	"gorm.io/gorm"
)

// inviteRepository implements the InviteRepository interface
type inviteRepository struct {
	db *gorm.DB
}

// NewInviteRepository creates a new invite code repository instance
func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &inviteRepository{db: db}
}

// Create inserts a new invite code
func (r *inviteRepository) Create(invite *models.InviteCode) error {
	return r.db.Create(invite).Error
}

// GetByCode retrieves an invite by its code
func (r *inviteRepository) GetByCode(code string) (*models.InviteCode, error) {
	var invite models.InviteCode
	err := r.db.Where("code = ?", code).First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// MarkUsed records the invite as redeemed by the given member
func (r *inviteRepository) MarkUsed(invite *models.InviteCode, memberID uint) error {
	now := time.Now()
	invite.Used = true
	invite.UsedBy = &memberID
	invite.UsedAt = &now
	return r.db.Save(invite).Error
}

// List retrieves invites with pagination, newest first
func (r *inviteRepository) List(offset, limit int) ([]models.InviteCode, error) {
	var invites []models.InviteCode
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&invites).Error
	return invites, err
}

// Count returns the total number of invites
func (r *inviteRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.InviteCode{}).Count(&count).Error
	return count, err
}

// Delete removes an invite code
func (r *inviteRepository) Delete(id uint) error {
	return r.db.Delete(&models.InviteCode{}, id).Error
}
