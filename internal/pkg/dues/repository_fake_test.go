package dues

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/chapterledger/ChapterLedger/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeRepository is an in-memory Repository with the same commit
// semantics as the GORM implementation, including the atomic payment
// insert plus processed flip and the archive-if-absent transaction.
type fakeRepository struct {
	mu sync.Mutex

	members  map[uint]*models.Member
	payments map[uint]*models.Payment
	plans    map[uint]*models.PaymentPlan
	archived map[uint]*models.ArchivedPaymentPlan
	events   map[uint]*models.WebhookEvent

	nextID uint

	// failOn makes the named operation return an error, to exercise
	// storage failure paths.
	failOn map[string]error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		members:  make(map[uint]*models.Member),
		payments: make(map[uint]*models.Payment),
		plans:    make(map[uint]*models.PaymentPlan),
		archived: make(map[uint]*models.ArchivedPaymentPlan),
		events:   make(map[uint]*models.WebhookEvent),
		failOn:   make(map[string]error),
	}
}

func (f *fakeRepository) fail(op string) error {
	if err, ok := f.failOn[op]; ok {
		return err
	}
	return nil
}

func (f *fakeRepository) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepository) addMember(m *models.Member) *models.Member {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ID == 0 {
		m.ID = f.id()
	}
	f.members[m.ID] = m
	return m
}

func (f *fakeRepository) addPlan(p *models.PaymentPlan) *models.PaymentPlan {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == 0 {
		p.ID = f.id()
	}
	if p.Status == "" {
		p.Status = models.PlanStatusActive
	}
	f.plans[p.ID] = p
	return p
}

func (f *fakeRepository) GetMemberByID(id uint) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *m
	return &copied, nil
}

func (f *fakeRepository) GetMemberByEmail(email string) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if strings.EqualFold(m.Email, email) {
			copied := *m
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) UpdateMemberFinancialStatus(id uint, status string) error {
	if err := f.fail("UpdateMemberFinancialStatus"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.FinancialStatus = status
	return nil
}

func (f *fakeRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	if err := f.fail("CreateWebhookEventIfNotExists"); err != nil {
		return false, nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.events {
		if existing.ExternalEventID == event.ExternalEventID {
			copied := *existing
			return false, &copied, nil
		}
	}
	event.ID = f.id()
	stored := *event
	f.events[event.ID] = &stored
	copied := stored
	return true, &copied, nil
}

func (f *fakeRepository) MarkWebhookProcessed(id uint, notes string) error {
	if err := f.fail("MarkWebhookProcessed"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.Processed = true
	e.Notes = notes
	return nil
}

func (f *fakeRepository) CreatePayment(payment *models.Payment, webhookEventID uint) error {
	if err := f.fail("CreatePayment"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if webhookEventID != 0 {
		e, ok := f.events[webhookEventID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		e.Processed = true
		e.Notes = "payment recorded"
	}
	payment.ID = f.id()
	stored := *payment
	f.payments[payment.ID] = &stored
	return nil
}

func (f *fakeRepository) GetPlanByID(id uint) (*models.PaymentPlan, error) {
	if err := f.fail("GetPlanByID"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeRepository) GetActivePlanByMember(memberID uint) (*models.PaymentPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.plans {
		if p.MemberID == memberID && models.NormalizePlanStatus(p.Status) == models.PlanStatusActive {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) ListPlansByMember(memberID uint) ([]models.PaymentPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PaymentPlan
	for _, p := range f.plans {
		if p.MemberID == memberID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListArchivedPlansByMember(memberID uint) ([]models.ArchivedPaymentPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ArchivedPaymentPlan
	for _, p := range f.archived {
		if p.MemberID == memberID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeRepository) CreatePlan(plan *models.PaymentPlan) error {
	if err := f.fail("CreatePlan"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	plan.ID = f.id()
	stored := *plan
	f.plans[plan.ID] = &stored
	return nil
}

func (f *fakeRepository) CompletePlanStatus(id uint) (bool, error) {
	if err := f.fail("CompletePlanStatus"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[id]
	if !ok {
		return false, nil
	}
	if models.NormalizePlanStatus(p.Status) == models.PlanStatusCompleted {
		return false, nil
	}
	p.Status = models.PlanStatusCompleted
	return true, nil
}

func (f *fakeRepository) ArchiveCompletedPlan(plan *models.PaymentPlan, completedOn time.Time) error {
	if err := f.fail("ArchiveCompletedPlan"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	exists := false
	for _, a := range f.archived {
		if a.MemberID == plan.MemberID && a.StartDate.Equal(plan.StartDate) &&
			a.EndDate.Equal(plan.EndDate) && a.TotalAmount.Equal(plan.TotalAmount) {
			exists = true
			break
		}
	}
	if !exists {
		id := f.id()
		f.archived[id] = &models.ArchivedPaymentPlan{
			ID:                id,
			MemberID:          plan.MemberID,
			Frequency:         plan.Frequency,
			StartDate:         plan.StartDate,
			EndDate:           plan.EndDate,
			TotalAmount:       plan.TotalAmount,
			InstallmentAmount: plan.InstallmentAmount,
			Status:            models.PlanStatusCompleted,
			CompletedOn:       completedOn,
		}
	}
	delete(f.plans, plan.ID)
	return nil
}

func (f *fakeRepository) SumAndCountPlanPayments(memberID, planID uint) (decimal.Decimal, int64, error) {
	if err := f.fail("SumAndCountPlanPayments"); err != nil {
		return decimal.Zero, 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	total := decimal.Zero
	var count int64
	for _, p := range f.payments {
		if p.MemberID == memberID && p.PlanID != nil && *p.PlanID == planID {
			total = total.Add(p.Amount)
			count++
		}
	}
	return total, count, nil
}

func (f *fakeRepository) FirstQualifyingOneTimePayment(memberID uint, threshold decimal.Decimal, from, to time.Time) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *models.Payment
	for _, p := range f.payments {
		if p.MemberID != memberID || p.PaymentType != models.PaymentTypeOneTime {
			continue
		}
		if p.Amount.LessThan(threshold) {
			continue
		}
		if p.Date.Before(from) || !p.Date.Before(to) {
			continue
		}
		if best == nil || p.Date.Before(best.Date) {
			best = p
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *best
	return &copied, nil
}

var errBoom = errors.New("boom")
