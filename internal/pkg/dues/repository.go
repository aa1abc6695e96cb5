package dues

import (
	"time"

	"github.com/chapterledger/ChapterLedger/app/models"
	"github.com/chapterledger/ChapterLedger/app/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository provides the DB operations used by the reconciliation
// engine. Each method is one commit boundary unless noted otherwise.
type Repository interface {
	GetMemberByID(id uint) (*models.Member, error)
	GetMemberByEmail(email string) (*models.Member, error)
	UpdateMemberFinancialStatus(id uint, status string) error

	CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(id uint, notes string) error

	// CreatePayment inserts the ledger row. When webhookEventID is
	// non-zero the insert and the audit row's processed=true flip
	// commit in one transaction, or neither does.
	CreatePayment(payment *models.Payment, webhookEventID uint) error

	GetPlanByID(id uint) (*models.PaymentPlan, error)
	GetActivePlanByMember(memberID uint) (*models.PaymentPlan, error)
	ListPlansByMember(memberID uint) ([]models.PaymentPlan, error)
	ListArchivedPlansByMember(memberID uint) ([]models.ArchivedPaymentPlan, error)
	CreatePlan(plan *models.PaymentPlan) error

	// CompletePlanStatus flips Active -> Completed as a compare-and-swap
	// and reports whether this call won the flip.
	CompletePlanStatus(id uint) (bool, error)
	ArchiveCompletedPlan(plan *models.PaymentPlan, completedOn time.Time) error

	SumAndCountPlanPayments(memberID, planID uint) (decimal.Decimal, int64, error)
	FirstQualifyingOneTimePayment(memberID uint, threshold decimal.Decimal, from, to time.Time) (*models.Payment, error)
}

// gormRepository adapts the shared repositories to the engine's narrower
// interface. It keeps the raw handle only for the atomic payment insert
// plus processed flip, which spans two tables.
type gormRepository struct {
	db    *gorm.DB
	repos *repository.Repositories
}

// NewRepository creates a dues repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{
		db:    db,
		repos: repository.NewRepositories(db),
	}
}

func (r *gormRepository) GetMemberByID(id uint) (*models.Member, error) {
	return r.repos.Member.GetByID(id)
}

func (r *gormRepository) GetMemberByEmail(email string) (*models.Member, error) {
	return r.repos.Member.GetByEmail(email)
}

func (r *gormRepository) UpdateMemberFinancialStatus(id uint, status string) error {
	return r.repos.Member.UpdateFinancialStatus(id, status)
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	return r.repos.Webhook.CreateIfNotExists(event)
}

func (r *gormRepository) MarkWebhookProcessed(id uint, notes string) error {
	return r.repos.Webhook.MarkProcessed(id, notes)
}

func (r *gormRepository) CreatePayment(payment *models.Payment, webhookEventID uint) error {
	if webhookEventID == 0 {
		return r.repos.Payment.Create(payment)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		return tx.Model(&models.WebhookEvent{}).Where("id = ?", webhookEventID).
			Updates(map[string]interface{}{
				"processed": true,
				"notes":     "payment recorded",
			}).Error
	})
}

func (r *gormRepository) GetPlanByID(id uint) (*models.PaymentPlan, error) {
	return r.repos.Plan.GetByID(id)
}

func (r *gormRepository) GetActivePlanByMember(memberID uint) (*models.PaymentPlan, error) {
	return r.repos.Plan.GetActiveByMember(memberID)
}

func (r *gormRepository) ListPlansByMember(memberID uint) ([]models.PaymentPlan, error) {
	return r.repos.Plan.ListByMember(memberID)
}

func (r *gormRepository) ListArchivedPlansByMember(memberID uint) ([]models.ArchivedPaymentPlan, error) {
	return r.repos.Plan.ListArchivedByMember(memberID)
}

func (r *gormRepository) CreatePlan(plan *models.PaymentPlan) error {
	return r.repos.Plan.Create(plan)
}

func (r *gormRepository) CompletePlanStatus(id uint) (bool, error) {
	return r.repos.Plan.UpdateStatus(id, models.PlanStatusCompleted)
}

func (r *gormRepository) ArchiveCompletedPlan(plan *models.PaymentPlan, completedOn time.Time) error {
	return r.repos.Plan.ArchiveCompleted(plan, completedOn)
}

func (r *gormRepository) SumAndCountPlanPayments(memberID, planID uint) (decimal.Decimal, int64, error) {
	return r.repos.Payment.SumAndCountByPlan(memberID, planID)
}

func (r *gormRepository) FirstQualifyingOneTimePayment(memberID uint, threshold decimal.Decimal, from, to time.Time) (*models.Payment, error) {
	return r.repos.Payment.FirstOneTimeAtLeastInWindow(memberID, threshold, from, to)
}
