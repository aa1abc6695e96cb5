package repository

import (
	"github.com/chapterledger/ChapterLedger/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// donationRepository implements the DonationRepository interface
type donationRepository struct {
	db *gorm.DB
}

// NewDonationRepository creates a new donation repository instance
func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

// Create inserts a new donation record
func (r *donationRepository) Create(donation *models.Donation) error {
	return r.db.Create(donation).Error
}

// List retrieves donations with pagination, newest first
func (r *donationRepository) List(offset, limit int) ([]models.Donation, error) {
	var donations []models.Donation
	err := r.db.Order("date DESC").Offset(offset).Limit(limit).Find(&donations).Error
	return donations, err
}

// Count returns the total number of donations
func (r *donationRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Donation{}).Count(&count).Error
	return count, err
}

// SumAll returns the total amount ever donated.
func (r *donationRepository) SumAll() (decimal.Decimal, error) {
	var raw *string
	if err := r.db.Model(&models.Donation{}).Select("SUM(amount)").Scan(&raw).Error; err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}
