package repository

import (
	"errors"
	"time"

	"github.com/chapterledger/ChapterLedger/app/models"
	"gorm.io/gorm"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new payment plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// Create inserts a new plan
func (r *planRepository) Create(plan *models.PaymentPlan) error {
	return r.db.Create(plan).Error
}

// GetByID retrieves a plan by its ID
func (r *planRepository) GetByID(id uint) (*models.PaymentPlan, error) {
	var plan models.PaymentPlan
	err := r.db.First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetActiveByMember retrieves the member's single Active plan. Legacy
// rows may carry lowercase status, so the match is case-insensitive.
func (r *planRepository) GetActiveByMember(memberID uint) (*models.PaymentPlan, error) {
	var plan models.PaymentPlan
	err := r.db.Where("member_id = ? AND LOWER(status) = ?", memberID, "active").First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListByMember retrieves all live plans for a member
func (r *planRepository) ListByMember(memberID uint) ([]models.PaymentPlan, error) {
	var plans []models.PaymentPlan
	err := r.db.Where("member_id = ?", memberID).Find(&plans).Error
	return plans, err
}

// MembersWithActivePlans returns distinct member ids holding an Active plan
func (r *planRepository) MembersWithActivePlans() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.PaymentPlan{}).
		Where("LOWER(status) = ?", "active").
		Distinct().
		Pluck("member_id", &ids).Error
	return ids, err
}

// CountActive counts live Active plans
func (r *planRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&models.PaymentPlan{}).Where("LOWER(status) = ?", "active").Count(&count).Error
	return count, err
}

// UpdateStatus performs the guarded Active -> Completed transition.
// The WHERE clause doubles as a compare-and-swap: when two evaluations
// race, only the one that still observes a non-Completed row flips it.
// Reports whether this call was the one that flipped the row.
func (r *planRepository) UpdateStatus(id uint, status string) (bool, error) {
	result := r.db.Model(&models.PaymentPlan{}).
		Where("id = ? AND LOWER(status) <> ?", id, "completed").
		Update("status", status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ArchiveCompleted moves a completed plan into the archive: one
// transaction inserts the ArchivedPaymentPlan and deletes the live row,
// so a partial failure rolls back entirely. Inserting is skipped when a
// matching archived row already exists, which makes a retry after a
// crash between status flip and archive a no-op instead of a duplicate.
func (r *planRepository) ArchiveCompleted(plan *models.PaymentPlan, completedOn time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		existing, err := findArchivedMatching(tx, plan)
		if err != nil {
			return err
		}
		if existing == nil {
			archived := &models.ArchivedPaymentPlan{
				MemberID:          plan.MemberID,
				Frequency:         plan.Frequency,
				StartDate:         plan.StartDate,
				EndDate:           plan.EndDate,
				TotalAmount:       plan.TotalAmount,
				InstallmentAmount: plan.InstallmentAmount,
				Status:            models.PlanStatusCompleted,
				CompletedOn:       completedOn,
			}
			if err := tx.Create(archived).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.PaymentPlan{}, plan.ID).Error
	})
}

// ListArchivedByMember retrieves a member's archived plans, newest first
func (r *planRepository) ListArchivedByMember(memberID uint) ([]models.ArchivedPaymentPlan, error) {
	var plans []models.ArchivedPaymentPlan
	err := r.db.Where("member_id = ?", memberID).Order("completed_on DESC").Find(&plans).Error
	return plans, err
}

// FindArchivedMatching looks for an archived row with the same member
// and terms as the given live plan. Nil without error when none exists.
func (r *planRepository) FindArchivedMatching(plan *models.PaymentPlan) (*models.ArchivedPaymentPlan, error) {
	return findArchivedMatching(r.db, plan)
}

func findArchivedMatching(tx *gorm.DB, plan *models.PaymentPlan) (*models.ArchivedPaymentPlan, error) {
	var archived models.ArchivedPaymentPlan
	err := tx.Where("member_id = ? AND start_date = ? AND end_date = ? AND total_amount = ?",
		plan.MemberID, plan.StartDate, plan.EndDate, plan.TotalAmount).
		First(&archived).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &archived, nil
}
