package repository

import (
	"strings"

	"github.com/chapterledger/ChapterLedger/app/models"
	"gorm.io/gorm"
)

// memberRepository implements the MemberRepository interface
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository instance
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create creates a new member in the database
func (r *memberRepository) Create(member *models.Member) error {
	return r.db.Create(member).Error
}

// GetByID retrieves a member by their ID
func (r *memberRepository) GetByID(id uint) (*models.Member, error) {
	var member models.Member
	err := r.db.First(&member, id).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByEmail retrieves a member by email, case-insensitively.
func (r *memberRepository) GetByEmail(email string) (*models.Member, error) {
	var member models.Member
	err := r.db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Update saves changes to an existing member
func (r *memberRepository) Update(member *models.Member) error {
	return r.db.Save(member).Error
}

// UpdateFinancialStatus writes only the financial_status column.
func (r *memberRepository) UpdateFinancialStatus(id uint, status string) error {
	return r.db.Model(&models.Member{}).Where("id = ?", id).Update("financial_status", status).Error
}

// List retrieves active members with pagination, ordered by name
func (r *memberRepository) List(offset, limit int) ([]models.Member, error) {
	var members []models.Member
	err := r.db.Where("active = ?", true).Order("name").Offset(offset).Limit(limit).Find(&members).Error
	return members, err
}

// Count returns the total number of active members
func (r *memberRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Member{}).Where("active = ?", true).Count(&count).Error
	return count, err
}

// Search finds members by name or email fragment
func (r *memberRepository) Search(query string, limit int) ([]models.Member, error) {
	var members []models.Member
	term := "%" + query + "%"
	err := r.db.Where("name LIKE ? OR email LIKE ?", term, term).
		Order("name").Limit(limit).Find(&members).Error
	return members, err
}
