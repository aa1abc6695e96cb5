package dues

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/chapterledger/ChapterLedger/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invalidator drops cached aggregates after a mutation. Implemented by
// the stats service; a no-op implementation is fine for tests.
type Invalidator interface {
	InvalidatePayments(memberID uint)
	InvalidatePlans()
}

// Notifier delivers out-of-band notifications for domain events. Send
// failures are logged, never propagated.
type Notifier interface {
	PlanCompleted(member *models.Member)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidatePayments(uint) {}
func (noopInvalidator) InvalidatePlans()        {}

type noopNotifier struct{}

func (noopNotifier) PlanCompleted(*models.Member) {}

// Service is the payment reconciliation engine: it admits gateway
// events, writes the ledger, recomputes member standing and completes
// payment plans.
type Service struct {
	repo        Repository
	invalidator Invalidator
	notifier    Notifier
	duesAmount  decimal.Decimal
	maxEventAge time.Duration
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithInvalidator wires cache invalidation after mutations.
func WithInvalidator(inv Invalidator) Option {
	return func(s *Service) { s.invalidator = inv }
}

// WithNotifier wires member notifications for plan completion.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithDuesAmount overrides the annual dues obligation.
func WithDuesAmount(amount decimal.Decimal) Option {
	return func(s *Service) { s.duesAmount = amount }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the reconciliation engine on top of a repository.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		invalidator: noopInvalidator{},
		notifier:    noopNotifier{},
		duesAmount:  DefaultDuesAmount,
		maxEventAge: MaxEventAge(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessGatewayEvent runs the full chain for one inbound gateway
// notification: idempotency guard, member resolution, ledger write,
// standing recomputation, plan evaluation and cache invalidation.
//
// The returned error follows the taxonomy: ErrStaleEvent and
// ErrDuplicateEvent mean nothing was written this call;
// ErrMemberNotFound, ErrInvalidAmount and ErrPlanMismatch mean the
// event was stored and marked for manual attention; a StorageError
// means the gateway should retry. Plan archival trouble is deliberately
// swallowed here because the payment already committed and a later
// evaluation retries the archive.
func (s *Service) ProcessGatewayEvent(event *InboundEvent) (*ProcessResult, error) {
	now := s.now()

	stored, err := s.Admit(event, now)
	if err != nil {
		return nil, err
	}

	member, err := s.repo.GetMemberByEmail(event.PayerEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		note := fmt.Sprintf("no member matches payer email %s", event.PayerEmail)
		if markErr := s.repo.MarkWebhookProcessed(stored.ID, note); markErr != nil {
			return nil, storageErr("webhook event update", markErr)
		}
		return &ProcessResult{NeedsAttention: true, Note: note}, ErrMemberNotFound
	}
	if err != nil {
		return nil, storageErr("member lookup", err)
	}

	amount := decimal.New(event.GrossAmountMinor, -2)
	if event.BaseAmount != nil {
		amount = *event.BaseAmount
	}

	payment, err := s.Record(RecordInput{
		MemberID:       member.ID,
		Amount:         amount,
		Method:         models.PaymentMethodStripe,
		PaymentType:    event.PaymentType,
		Notes:          event.Notes,
		PlanID:         event.PlanID,
		webhookEventID: stored.ID,
	}, now)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrPlanMismatch) {
			// Terminal rejection: record the outcome on the audit row
			// so it does not sit there looking unprocessed forever.
			note := fmt.Sprintf("rejected: %v", err)
			if markErr := s.repo.MarkWebhookProcessed(stored.ID, note); markErr != nil {
				return nil, storageErr("webhook event update", markErr)
			}
			return &ProcessResult{NeedsAttention: true, Note: note}, err
		}
		return nil, err
	}

	// Ledger write committed: cached aggregates are stale from here on,
	// even if recomputation below fails.
	defer func() {
		s.invalidator.InvalidatePayments(member.ID)
		if event.PlanID != nil {
			s.invalidator.InvalidatePlans()
		}
	}()

	result := &ProcessResult{Payment: payment}

	result.FinancialStatus, err = s.RecomputeFinancialStatus(member, now)
	if err != nil {
		return nil, err
	}

	if event.PlanID != nil {
		archived, evalErr := s.EvaluatePlan(*event.PlanID, now)
		if evalErr != nil {
			log.Printf("[DUES] plan evaluation for event %s: %v", event.ExternalEventID, evalErr)
		}
		result.PlanArchived = archived
		if archived {
			s.notifier.PlanCompleted(member)
			result.FinancialStatus, err = s.RecomputeFinancialStatus(member, now)
			if err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// RecordManualPayment writes a treasurer-entered payment and runs the
// same downstream chain as a gateway event, minus the idempotency guard.
// Unlike the gateway path, archival failure propagates so the operator
// sees it.
func (s *Service) RecordManualPayment(input RecordInput) (*ProcessResult, error) {
	now := s.now()

	member, err := s.repo.GetMemberByID(input.MemberID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, storageErr("member lookup", err)
	}

	payment, err := s.Record(input, now)
	if err != nil {
		return nil, err
	}

	defer func() {
		s.invalidator.InvalidatePayments(member.ID)
		if input.PlanID != nil {
			s.invalidator.InvalidatePlans()
		}
	}()

	result := &ProcessResult{Payment: payment}

	result.FinancialStatus, err = s.RecomputeFinancialStatus(member, now)
	if err != nil {
		return nil, err
	}

	if input.PlanID != nil {
		archived, evalErr := s.EvaluatePlan(*input.PlanID, now)
		if evalErr != nil {
			return result, evalErr
		}
		result.PlanArchived = archived
		if archived {
			s.notifier.PlanCompleted(member)
			result.FinancialStatus, err = s.RecomputeFinancialStatus(member, now)
			if err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// EnrollPlan creates an installment plan for a member. The schedule is
// derived from the frequency; the member may hold at most one active
// plan at a time.
func (s *Service) EnrollPlan(memberID uint, frequency string, total decimal.Decimal, start time.Time, enforce bool) (*models.PaymentPlan, error) {
	if !total.IsPositive() {
		return nil, ErrInvalidAmount
	}

	member, err := s.repo.GetMemberByID(memberID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, storageErr("member lookup", err)
	}

	schedule, ok := models.ScheduleForFrequency(frequency)
	if !ok {
		return nil, ErrUnknownFrequency
	}

	_, err = s.repo.GetActivePlanByMember(memberID)
	if err == nil {
		return nil, ErrActivePlanExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageErr("active plan lookup", err)
	}

	expected := schedule.NumPayments
	plan := &models.PaymentPlan{
		MemberID:             memberID,
		Frequency:            frequency,
		StartDate:            start,
		EndDate:              schedule.EndDateFor(start),
		TotalAmount:          total.Round(2),
		InstallmentAmount:    schedule.InstallmentAmountFor(total),
		ExpectedInstallments: &expected,
		EnforceInstallments:  enforce,
		Status:               models.PlanStatusActive,
	}
	if err := s.repo.CreatePlan(plan); err != nil {
		return nil, storageErr("plan insert", err)
	}

	defer func() {
		s.invalidator.InvalidatePlans()
		s.invalidator.InvalidatePayments(memberID)
	}()

	if _, err := s.RecomputeFinancialStatus(member, s.now()); err != nil {
		return nil, err
	}

	return plan, nil
}
