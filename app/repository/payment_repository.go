package repository

import (
	"time"

	"github.com/chapterledger/ChapterLedger/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create inserts a new ledger row. Payments are never updated afterwards.
func (r *paymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// GetByID retrieves a payment by its ID
func (r *paymentRepository) GetByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListByMember retrieves a member's payments, newest first
func (r *paymentRepository) ListByMember(memberID uint, offset, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("member_id = ?", memberID).
		Order("date DESC").Offset(offset).Limit(limit).Find(&payments).Error
	return payments, err
}

// CountByMember returns how many payments a member has made
func (r *paymentRepository) CountByMember(memberID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Payment{}).Where("member_id = ?", memberID).Count(&count).Error
	return count, err
}

// List retrieves all payments with pagination, newest first
func (r *paymentRepository) List(offset, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Order("date DESC").Offset(offset).Limit(limit).Find(&payments).Error
	return payments, err
}

// Count returns the total number of payments
func (r *paymentRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Payment{}).Count(&count).Error
	return count, err
}

// SumAll returns the total amount ever collected.
func (r *paymentRepository) SumAll() (decimal.Decimal, error) {
	return r.sum(r.db.Model(&models.Payment{}))
}

// SumByMember returns the total amount a member has paid.
func (r *paymentRepository) SumByMember(memberID uint) (decimal.Decimal, error) {
	return r.sum(r.db.Model(&models.Payment{}).Where("member_id = ?", memberID))
}

// SumAndCountByPlan aggregates all payments linked to one plan for one
// member. Used by the completion evaluator, which always recomputes from
// the ledger instead of trusting cached totals.
func (r *paymentRepository) SumAndCountByPlan(memberID, planID uint) (decimal.Decimal, int64, error) {
	total, err := r.sum(r.db.Model(&models.Payment{}).Where("member_id = ? AND plan_id = ?", memberID, planID))
	if err != nil {
		return decimal.Zero, 0, err
	}

	var count int64
	if err := r.db.Model(&models.Payment{}).Where("member_id = ? AND plan_id = ?", memberID, planID).
		Count(&count).Error; err != nil {
		return decimal.Zero, 0, err
	}
	return total, count, nil
}

// CountByType counts payments of one payment_type
func (r *paymentRepository) CountByType(paymentType string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Payment{}).Where("payment_type = ?", paymentType).Count(&count).Error
	return count, err
}

// CountByMethod counts payments made with one method
func (r *paymentRepository) CountByMethod(method string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Payment{}).Where("method = ?", method).Count(&count).Error
	return count, err
}

// CountOtherMethods counts payments whose method is outside the known set
func (r *paymentRepository) CountOtherMethods(known []string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Payment{}).Where("method NOT IN ?", known).Count(&count).Error
	return count, err
}

// FirstOneTimeAtLeastInWindow finds a qualifying one-time dues payment
// inside [from, to). Returns gorm.ErrRecordNotFound when none exists.
func (r *paymentRepository) FirstOneTimeAtLeastInWindow(memberID uint, threshold decimal.Decimal, from, to time.Time) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("member_id = ? AND payment_type = ? AND amount >= ? AND date >= ? AND date < ?",
		memberID, models.PaymentTypeOneTime, threshold, from, to).
		Order("date").First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// MembersPaidAtLeast returns the ids of members whose lifetime payments
// reach the threshold.
func (r *paymentRepository) MembersPaidAtLeast(threshold decimal.Decimal) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Payment{}).
		Select("member_id").
		Group("member_id").
		Having("SUM(amount) >= ?", threshold).
		Pluck("member_id", &ids).Error
	return ids, err
}

// MonthlyTotals groups payments by month since `from` for trend charts.
func (r *paymentRepository) MonthlyTotals(from time.Time) ([]MonthlyTotal, error) {
	var rows []MonthlyTotal
	err := r.db.Model(&models.Payment{}).
		Select("DATE_FORMAT(date, '%Y-%m') AS month, SUM(amount) AS total, COUNT(id) AS count").
		Where("date >= ?", from).
		Group("DATE_FORMAT(date, '%Y-%m')").
		Order("month").
		Scan(&rows).Error
	return rows, err
}

func (r *paymentRepository) sum(q *gorm.DB) (decimal.Decimal, error) {
	var raw *string
	if err := q.Select("SUM(amount)").Scan(&raw).Error; err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}
