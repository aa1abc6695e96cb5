package repository

import (
	"time"

	"github.com/chapterledger/ChapterLedger/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MemberRepository defines the interface for member-related database operations
type MemberRepository interface {
	Create(member *models.Member) error
	GetByID(id uint) (*models.Member, error)
	GetByEmail(email string) (*models.Member, error)
	Update(member *models.Member) error
	UpdateFinancialStatus(id uint, status string) error
	List(offset, limit int) ([]models.Member, error)
	Count() (int64, error)
	Search(query string, limit int) ([]models.Member, error)
}

// PaymentRepository defines the interface for payment ledger operations
type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByID(id uint) (*models.Payment, error)
	ListByMember(memberID uint, offset, limit int) ([]models.Payment, error)
	CountByMember(memberID uint) (int64, error)
	List(offset, limit int) ([]models.Payment, error)
	Count() (int64, error)
	SumAll() (decimal.Decimal, error)
	SumByMember(memberID uint) (decimal.Decimal, error)
	SumAndCountByPlan(memberID, planID uint) (decimal.Decimal, int64, error)
	CountByType(paymentType string) (int64, error)
	CountByMethod(method string) (int64, error)
	CountOtherMethods(known []string) (int64, error)
	FirstOneTimeAtLeastInWindow(memberID uint, threshold decimal.Decimal, from, to time.Time) (*models.Payment, error)
	MembersPaidAtLeast(threshold decimal.Decimal) ([]uint, error)
	MonthlyTotals(from time.Time) ([]MonthlyTotal, error)
}

// PlanRepository defines the interface for payment plan operations
type PlanRepository interface {
	Create(plan *models.PaymentPlan) error
	GetByID(id uint) (*models.PaymentPlan, error)
	GetActiveByMember(memberID uint) (*models.PaymentPlan, error)
	ListByMember(memberID uint) ([]models.PaymentPlan, error)
	MembersWithActivePlans() ([]uint, error)
	CountActive() (int64, error)
	UpdateStatus(id uint, status string) (bool, error)
	ArchiveCompleted(plan *models.PaymentPlan, completedOn time.Time) error
	ListArchivedByMember(memberID uint) ([]models.ArchivedPaymentPlan, error)
	FindArchivedMatching(plan *models.PaymentPlan) (*models.ArchivedPaymentPlan, error)
}

// WebhookRepository defines the interface for the webhook audit log
type WebhookRepository interface {
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	GetByExternalID(externalID string) (*models.WebhookEvent, error)
	MarkProcessed(id uint, notes string) error
}

// InviteRepository defines the interface for invite code operations
type InviteRepository interface {
	Create(invite *models.InviteCode) error
	GetByCode(code string) (*models.InviteCode, error)
	MarkUsed(invite *models.InviteCode, memberID uint) error
	List(offset, limit int) ([]models.InviteCode, error)
	Count() (int64, error)
	Delete(id uint) error
}

// DonationRepository defines the interface for donation records
type DonationRepository interface {
	Create(donation *models.Donation) error
	List(offset, limit int) ([]models.Donation, error)
	Count() (int64, error)
	SumAll() (decimal.Decimal, error)
}

// MonthlyTotal is one month's aggregate for trend reporting.
type MonthlyTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

// Repositories bundles all repository instances
type Repositories struct {
	Member   MemberRepository
	Payment  PaymentRepository
	Plan     PlanRepository
	Webhook  WebhookRepository
	Invite   InviteRepository
	Donation DonationRepository
}

// NewRepositories creates all repositories backed by the given DB handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Member:   NewMemberRepository(db),
		Payment:  NewPaymentRepository(db),
		Plan:     NewPlanRepository(db),
		Webhook:  NewWebhookRepository(db),
		Invite:   NewInviteRepository(db),
		Donation: NewDonationRepository(db),
	}
}
