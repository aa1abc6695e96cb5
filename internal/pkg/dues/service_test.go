package dues

import (
	"sync"
	"testing"
	"time"

	"github.com/chapterledger/ChapterLedger/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.November, 15, 12, 0, 0, 0, time.UTC)

type recordingInvalidator struct {
	paymentCalls []uint
	planCalls    int
}

func (r *recordingInvalidator) InvalidatePayments(memberID uint) {
	r.paymentCalls = append(r.paymentCalls, memberID)
}

func (r *recordingInvalidator) InvalidatePlans() {
	r.planCalls++
}

func newTestService(repo Repository, opts ...Option) *Service {
	base := []Option{WithClock(func() time.Time { return testNow })}
	return NewService(repo, append(base, opts...)...)
}

func seedMember(repo *fakeRepository, email string) *models.Member {
	return repo.addMember(&models.Member{
		Name:            "Test Member",
		Email:           email,
		Role:            models.ROLE_MEMBER,
		FinancialStatus: models.FINANCIAL_STATUS_NOT_FINANCIAL,
		Active:          true,
	})
}

func checkoutEvent(id, email string, grossMinor int64) *InboundEvent {
	return &InboundEvent{
		ExternalEventID:  id,
		EventType:        EventTypeCheckoutCompleted,
		OccurredAt:       testNow.Add(-time.Minute),
		PayerEmail:       email,
		GrossAmountMinor: grossMinor,
		RawPayload:       `{"id":"` + id + `"}`,
	}
}

func TestProcessGatewayEvent_RecordsPaymentAndStatus(t *testing.T) {
	repo := newFakeRepository()
	member := seedMember(repo, "alice@example.com")
	svc := newTestService(repo)

	base := decimal.RequireFromString("200.00")
	event := checkoutEvent("evt_1", "alice@example.com", 20672)
	event.BaseAmount = &base

	result, err := svc.ProcessGatewayEvent(event)
	require.NoError(t, err)
	require.NotNil(t, result.Payment)

	assert.True(t, result.Payment.Amount.Equal(base), "base amount recorded, not gross: got %s", result.Payment.Amount)
	assert.Equal(t, models.PaymentMethodStripe, result.Payment.Method)
	assert.Equal(t, models.PaymentTypeOneTime, result.Payment.PaymentType)
	assert.Equal(t, models.FINANCIAL_STATUS_FINANCIAL, result.FinancialStatus)
	assert.Equal(t, models.FINANCIAL_STATUS_FINANCIAL, repo.members[member.ID].FinancialStatus)

	// Audit row marked processed in the same commit as the insert.
	require.Len(t, repo.events, 1)
	for _, e := range repo.events {
		assert.True(t, e.Processed)
	}
}

func TestProcessGatewayEvent_DuplicateIsSingleLedgerRow(t *testing.T) {
	repo := newFakeRepository()
	seedMember(repo, "alice@example.com")
	svc := newTestService(repo)

	base := decimal.RequireFromString("200.00")
	event := checkoutEvent("evt_dup", "alice@example.com", 20672)
	event.BaseAmount = &base

	_, err := svc.ProcessGatewayEvent(event)
	require.NoError(t, err)

	_, err = svc.ProcessGatewayEvent(event)
	assert.ErrorIs(t, err, ErrDuplicateEvent)
	assert.Len(t, repo.payments, 1)

	_, err = svc.ProcessGatewayEvent(event)
	assert.ErrorIs(t, err, ErrDuplicateEvent)
	assert.Len(t, repo.payments, 1)
}

func TestProcessGatewayEvent_StoredButUnprocessedReprocesses(t *testing.T) {
	repo := newFakeRepository()
	seedMember(repo, "alice@example.com")
	svc := newTestService(repo)

	// First delivery stores the audit row but dies before the ledger
	// write commits.
	repo.failOn["CreatePayment"] = errBoom
	base := decimal.RequireFromString("200.00")
	event := checkoutEvent("evt_retry", "alice@example.com", 20672)
	event.BaseAmount = &base

	_, err := svc.ProcessGatewayEvent(event)
	require.Error(t, err)
	assert.True(t, IsStorageError(err))
	assert.Empty(t, repo.payments)

	// Gateway retry succeeds: unprocessed stored row is not a duplicate.
	delete(repo.failOn, "CreatePayment")
	result, err := svc.ProcessGatewayEvent(event)
	require.NoError(t, err)
	require.NotNil(t, result.Payment)
	assert.Len(t, repo.payments, 1)
}

func TestProcessGatewayEvent_StaleRejectedBeforeDuplicateCheck(t *testing.T) {
	repo := newFakeRepository()
	seedMember(repo, "alice@example.com")
	svc := newTestService(repo)

	event := checkoutEvent("evt_old", "alice@example.com", 20672)
	event.OccurredAt = testNow.Add(-2 * time.Hour)

	_, err := svc.ProcessGatewayEvent(event)
	assert.ErrorIs(t, err, ErrStaleEvent)
	assert.Empty(t, repo.events, "stale events must not be stored")
	assert.Empty(t, repo.payments)
}

func TestProcessGatewayEvent_UnknownPayerNeedsAttention(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	event := checkoutEvent("evt_nobody", "ghost@example.com", 20672)
	result, err := svc.ProcessGatewayEvent(event)

	assert.ErrorIs(t, err, ErrMemberNotFound)
	require.NotNil(t, result)
	assert.True(t, result.NeedsAttention)
	assert.Empty(t, repo.payments)

	// Event is stored and marked processed so the gateway stops
	// retrying something retries cannot fix.
	require.Len(t, repo.events, 1)
	for _, e := range repo.events {
		assert.True(t, e.Processed)
		assert.Contains(t, e.Notes, "ghost@example.com")
	}
}

func TestProcessGatewayEvent_GrossFallbackWhenNoBaseAmount(t *testing.T) {
	repo := newFakeRepository()
	seedMember(repo, "alice@example.com")
	svc := newTestService(repo)

	result, err := svc.ProcessGatewayEvent(checkoutEvent("evt_gross", "alice@example.com", 10341))
	require.NoError(t, err)
	assert.True(t, result.Payment.Amount.Equal(decimal.RequireFromString("103.41")))
}

func TestRecord_RejectsNonPositiveAmount(t *testing.T) {
	repo := newFakeRepository()
	member := seedMember(repo, "alice@example.com")
	svc := newTestService(repo)

	for _, amount := range []string{"0", "-5.00"} {
		_, err := svc.RecordManualPayment(RecordInput{
			MemberID: member.ID,
			Amount:   decimal.RequireFromString(amount),
			Method:   models.PaymentMethodCash,
		})
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %s", amount)
	}
	assert.Empty(t, repo.payments)
}

func TestRecord_PlanMismatchRejected(t *testing.T) {
	repo := newFakeRepository()
	alice := seedMember(repo, "alice@example.com")
	bob := seedMember(repo, "bob@example.com")
	plan := repo.addPlan(&models.PaymentPlan{
		MemberID:    bob.ID,
		Frequency:   models.PlanFrequencyMonthly,
		TotalAmount: decimal.RequireFromString("200.00"),
	})
	svc := newTestService(repo)

	// Plan belongs to another member.
	_, err := svc.RecordManualPayment(RecordInput{
		MemberID: alice.ID,
		Amount:   decimal.RequireFromString("40.00"),
		Method:   models.PaymentMethodCash,
		PlanID:   &plan.ID,
	})
	assert.ErrorIs(t, err, ErrPlanMismatch)

	// Plan id that does not exist.
	missing := uint(9999)
	_, err = svc.RecordManualPayment(RecordInput{
		MemberID: alice.ID,
		Amount:   decimal.RequireFromString("40.00"),
		Method:   models.PaymentMethodCash,
		PlanID:   &missing,
	})
	assert.ErrorIs(t, err, ErrPlanMismatch)

	// Completed plan no longer accepts payments.
	plan.Status = models.PlanStatusCompleted
	_, err = svc.RecordManualPayment(RecordInput{
		MemberID: bob.ID,
		Amount:   decimal.RequireFromString("40.00"),
		Method:   models.PaymentMethodCash,
		PlanID:   &plan.ID,
	})
	assert.ErrorIs(t, err, ErrPlanMismatch)

	assert.Empty(t, repo.payments)
}

func TestPlanCompletion_ToleranceBothDirections(t *testing.T) {
	cases := []struct {
		name     string
		total    string
		payments []string
		archived bool
	}{
		{"exact total", "200.00", []string{"100.00", "100.00"}, true},
		{"one cent under", "200.00", []string{"100.00", "99.99"}, true},
		{"two cents under", "200.00", []string{"100.00", "99.98"}, false},
		{"overpaid", "200.00", []string{"100.00", "105.00"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeRepository()
			member := seedMember(repo, "alice@example.com")
			plan := repo.addPlan(&models.PaymentPlan{
				MemberID:    member.ID,
				Frequency:   models.PlanFrequencyQuarterly,
				StartDate:   testNow.AddDate(0, -3, 0),
				EndDate:     testNow,
				TotalAmount: decimal.RequireFromString(tc.total),
			})
			svc := newTestService(repo)

			var lastArchived bool
			for _, amount := range tc.payments {
				result, err := svc.RecordManualPayment(RecordInput{
					MemberID: member.ID,
					Amount:   decimal.RequireFromString(amount),
					Method:   models.PaymentMethodCash,
					PlanID:   &plan.ID,
				})
				require.NoError(t, err)
				lastArchived = result.PlanArchived
			}

			assert.Equal(t, tc.archived, lastArchived)
			if tc.archived {
				assert.NotContains(t, repo.plans, plan.ID, "live plan row must be gone")
				assert.Len(t, repo.archived, 1)
			} else {
				assert.Contains(t, repo.plans, plan.ID)
				assert.Empty(t, repo.archived)
			}
		})
	}
}

func TestPlanCompletion_InstallmentCountGatesAmount(t *testing.T) {
	repo := newFakeRepository()
	member := seedMember(repo, "alice@example.com")
	expected := 5
	plan := repo.addPlan(&models.PaymentPlan{
		MemberID:             member.ID,
		Frequency:            models.PlanFrequencyMonthly,
		TotalAmount:          decimal.RequireFromString("200.00"),
		ExpectedInstallments: &expected,
		EnforceInstallments:  true,
	})
	svc := newTestService(repo)

	// Full amount in one payment: amount met, count not met.
	result, err := svc.RecordManualPayment(RecordInput{
		MemberID: member.ID,
		Amount:   decimal.RequireFromString("200.00"),
		Method:   models.PaymentMethodCash,
		PlanID:   &plan.ID,
	})
	require.NoError(t, err)
	assert.False(t, result.PlanArchived)
	assert.Contains(t, repo.plans, plan.ID)

	// Four more token installments satisfy the count.
	for i := 0; i < 4; i++ {
		result, err = svc.RecordManualPayment(RecordInput{
			MemberID: member.ID,
			Amount:   decimal.RequireFromString("1.00"),
			Method:   models.PaymentMethodCash,
			PlanID:   &plan.ID,
		})
		require.NoError(t, err)
	}
	assert.True(t, result.PlanArchived)
	assert.NotContains(t, repo.plans, plan.ID)
}

func TestPlanCompletion_ArchiveExactlyOnce(t *testing.T) {
	repo := newFakeRepository()
	member := seedMember(repo, "alice@example.com")
	plan := repo.addPlan(&models.PaymentPlan{
		MemberID:    member.ID,
		Frequency:   models.PlanFrequencyQuarterly,
		StartDate:   testNow.AddDate(0, -3, 0),
		EndDate:     testNow,
		TotalAmount: decimal.RequireFromString("200.00"),
	})
	svc := newTestService(repo)

	_, err := svc.RecordManualPayment(RecordInput{
		MemberID: member.ID,
		Amount:   decimal.RequireFromString("200.00"),
		Method:   models.PaymentMethodCash,
		PlanID:   &plan.ID,
	})
	require.NoError(t, err)
	assert.Len(t, repo.archived, 1)

	// Re-evaluating an already-archived plan is a quiet no-op.
	archived, err := svc.EvaluatePlan(plan.ID, testNow)
	require.NoError(t, err)
	assert.False(t, archived)
	assert.Len(t, repo.archived, 1)
}

func TestEvaluatePlan_ResumesAfterCrashBetweenFlipAndArchive(t *testing.T) {
	repo := newFakeRepository()
	member := seedMember(repo, "alice@example.com")
	plan := repo.addPlan(&models.PaymentPlan{
		MemberID:    member.ID,
		Frequency:   models.PlanFrequencyQuarterly,
		StartDate:   testNow.AddDate(0, -3, 0),
		EndDate:     testNow,
		TotalAmount: decimal.RequireFromString("200.00"),
	})
	svc := newTestService(repo)

	// First attempt flips the status but the archive move fails.
	repo.failOn["ArchiveCompletedPlan"] = errBoom
	_, err := svc.RecordManualPayment(RecordInput{
		MemberID: member.ID,
		Amount:   decimal.RequireFromString("200.00"),
		Method:   models.PaymentMethodCash,
		PlanID:   &plan.ID,
	})
	assert.ErrorIs(t, err, ErrArchivalFailed)
	assert.Equal(t, models.PlanStatusCompleted, repo.plans[plan.ID].Status)

	// Retry finishes the move without re-checking sums.
	delete(repo.failOn, "ArchiveCompletedPlan")
	archived, err := svc.EvaluatePlan(plan.ID, testNow)
	require.NoError(t, err)
	assert.True(t, archived)
	assert.NotContains(t, repo.plans, plan.ID)
	assert.Len(t, repo.archived, 1)
}

func TestProcessGatewayEvent_ArchivalFailureStillAcks(t *testing.T) {
	repo := newFakeRepository()
	member := seedMember(repo, "alice@example.com")
	plan := repo.addPlan(&models.PaymentPlan{
		MemberID:    member.ID,
		Frequency:   models.PlanFrequencyQuarterly,
		StartDate:   testNow.AddDate(0, -3, 0),
		EndDate:     testNow,
		TotalAmount: decimal.RequireFromString("200.00"),
	})
	svc := newTestService(repo)

	repo.failOn["ArchiveCompletedPlan"] = errBoom
	base := decimal.RequireFromString("200.00")
	event := checkoutEvent("evt_plan", "alice@example.com", 20672)
	event.BaseAmount = &base
	event.PlanID = &plan.ID

	// Payment committed; archival trouble must not bounce the webhook.
	result, err := svc.ProcessGatewayEvent(event)
	require.NoError(t, err)
	assert.False(t, result.PlanArchived)
	assert.Len(t, repo.payments, 1)
}

func TestRecordManualPayment_SkipsIdempotencyGuard(t *testing.T) {
	repo := newFakeRepository()
	member := seedMember(repo, "alice@example.com")
	svc := newTestService(repo)

	// Two identical cash entries are two ledger rows.
	for i := 0; i < 2; i++ {
		_, err := svc.RecordManualPayment(RecordInput{
			MemberID: member.ID,
			Amount:   decimal.RequireFromString("50.00"),
			Method:   models.PaymentMethodCash,
			Notes:    "chapter meeting",
		})
		require.NoError(t, err)
	}
	assert.Len(t, repo.payments, 2)
	assert.Empty(t, repo.events)
}

func TestRecordManualPayment_InvalidatesCaches(t *testing.T) {
	repo := newFakeRepository()
	member := seedMember(repo, "alice@example.com")
	inv := &recordingInvalidator{}
	svc := newTestService(repo, WithInvalidator(inv))

	_, err := svc.RecordManualPayment(RecordInput{
		MemberID: member.ID,
		Amount:   decimal.RequireFromString("50.00"),
		Method:   models.PaymentMethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{member.ID}, inv.paymentCalls)
	assert.Zero(t, inv.planCalls, "no plan touched, plan caches stay")
}

func TestEnrollPlan_DerivesScheduleAndRejectsSecondActive(t *testing.T) {
	repo := newFakeRepository()
	member := seedMember(repo, "alice@example.com")
	svc := newTestService(repo)

	start := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	plan, err := svc.EnrollPlan(member.ID, models.PlanFrequencyMonthly, decimal.RequireFromString("200.00"), start, true)
	require.NoError(t, err)

	require.NotNil(t, plan.ExpectedInstallments)
	assert.Equal(t, 5, *plan.ExpectedInstallments)
	assert.Equal(t, start.AddDate(0, 4, 0), plan.EndDate)
	assert.True(t, plan.InstallmentAmount.Equal(decimal.RequireFromString("40.00")))
	// Enrollment alone puts no money in; standing is unchanged.
	assert.Equal(t, models.FINANCIAL_STATUS_NOT_FINANCIAL, repo.members[member.ID].FinancialStatus)

	_, err = svc.EnrollPlan(member.ID, models.PlanFrequencyWeekly, decimal.RequireFromString("200.00"), start, false)
	assert.ErrorIs(t, err, ErrActivePlanExists)

	_, err = svc.EnrollPlan(member.ID, "daily", decimal.RequireFromString("200.00"), start, false)
	assert.ErrorIs(t, err, ErrUnknownFrequency)
}

func TestRecomputeFinancialStatus_NeophyteExemption(t *testing.T) {
	repo := newFakeRepository()
	initiated := testNow.AddDate(0, -6, 0)
	member := repo.addMember(&models.Member{
		Email:           "neo@example.com",
		Role:            models.ROLE_MEMBER,
		FinancialStatus: models.FINANCIAL_STATUS_NOT_FINANCIAL,
		InitiationDate:  &initiated,
	})
	svc := newTestService(repo)

	status, err := svc.RecomputeFinancialStatus(repo.members[member.ID], testNow)
	require.NoError(t, err)
	assert.Equal(t, models.FINANCIAL_STATUS_NEOPHYTE, status)
}

func TestRecomputeFinancialStatus_CompletedPlanCountsForCycle(t *testing.T) {
	repo := newFakeRepository()
	member := seedMember(repo, "alice@example.com")
	repo.archived[repo.id()] = &models.ArchivedPaymentPlan{
		MemberID:    member.ID,
		TotalAmount: decimal.RequireFromString("200.00"),
		CompletedOn: testNow.AddDate(0, -1, 0),
	}
	svc := newTestService(repo)

	status, err := svc.RecomputeFinancialStatus(repo.members[member.ID], testNow)
	require.NoError(t, err)
	assert.Equal(t, models.FINANCIAL_STATUS_FINANCIAL, status)
}

func TestRecomputeFinancialStatus_PriorCycleDoesNotCount(t *testing.T) {
	repo := newFakeRepository()
	member := seedMember(repo, "alice@example.com")
	svc := newTestService(repo)

	// Qualifying one-time payment from the previous cycle.
	planless := &models.Payment{
		MemberID:    member.ID,
		Amount:      decimal.RequireFromString("200.00"),
		Date:        time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
		PaymentType: models.PaymentTypeOneTime,
	}
	require.NoError(t, repo.CreatePayment(planless, 0))

	status, err := svc.RecomputeFinancialStatus(repo.members[member.ID], testNow)
	require.NoError(t, err)
	assert.Equal(t, models.FINANCIAL_STATUS_NOT_FINANCIAL, status)
}

func TestRecomputeFinancialStatus_PartiallyPaidPlanDoesNotCount(t *testing.T) {
	repo := newFakeRepository()
	member := seedMember(repo, "alice@example.com")
	plan := repo.addPlan(&models.PaymentPlan{
		MemberID:    member.ID,
		Frequency:   models.PlanFrequencyQuarterly,
		StartDate:   testNow.AddDate(0, -3, 0),
		EndDate:     testNow,
		TotalAmount: decimal.RequireFromString("200.00"),
	})
	svc := newTestService(repo)

	// First installment of two: holding a half-paid plan is not good
	// standing.
	result, err := svc.RecordManualPayment(RecordInput{
		MemberID: member.ID,
		Amount:   decimal.RequireFromString("100.00"),
		Method:   models.PaymentMethodCash,
		PlanID:   &plan.ID,
	})
	require.NoError(t, err)
	assert.False(t, result.PlanArchived)
	assert.Equal(t, models.FINANCIAL_STATUS_NOT_FINANCIAL, repo.members[member.ID].FinancialStatus)

	// Second installment pays the plan off; standing follows the money.
	result, err = svc.RecordManualPayment(RecordInput{
		MemberID: member.ID,
		Amount:   decimal.RequireFromString("100.00"),
		Method:   models.PaymentMethodCash,
		PlanID:   &plan.ID,
	})
	require.NoError(t, err)
	assert.True(t, result.PlanArchived)
	assert.Equal(t, models.FINANCIAL_STATUS_FINANCIAL, repo.members[member.ID].FinancialStatus)
}

func TestEvaluatePlan_ConcurrentEvaluationsArchiveOnce(t *testing.T) {
	repo := newFakeRepository()
	member := seedMember(repo, "alice@example.com")
	plan := repo.addPlan(&models.PaymentPlan{
		MemberID:    member.ID,
		Frequency:   models.PlanFrequencyQuarterly,
		StartDate:   testNow.AddDate(0, -3, 0),
		EndDate:     testNow,
		TotalAmount: decimal.RequireFromString("200.00"),
	})
	planID := plan.ID
	for i := 0; i < 2; i++ {
		require.NoError(t, repo.CreatePayment(&models.Payment{
			MemberID:    member.ID,
			Amount:      decimal.RequireFromString("100.00"),
			Date:        testNow,
			Method:      models.PaymentMethodCash,
			PaymentType: models.PaymentTypeInstallment,
			PlanID:      &planID,
		}, 0))
	}
	svc := newTestService(repo)

	const evaluations = 4
	var wg sync.WaitGroup
	errs := make([]error, evaluations)
	archived := make([]bool, evaluations)
	for i := 0; i < evaluations; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			archived[i], errs[i] = svc.EvaluatePlan(planID, testNow)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "evaluation %d", i)
	}
	assert.Len(t, repo.archived, 1, "racing evaluations must archive exactly once")
	assert.NotContains(t, repo.plans, planID)

	wins := 0
	for _, a := range archived {
		if a {
			wins++
		}
	}
	assert.GreaterOrEqual(t, wins, 1, "at least one evaluation reports the archive")
}

func TestProcessGatewayEvent_PlanMismatchMarksEventProcessed(t *testing.T) {
	repo := newFakeRepository()
	seedMember(repo, "alice@example.com")
	bob := seedMember(repo, "bob@example.com")
	plan := repo.addPlan(&models.PaymentPlan{
		MemberID:    bob.ID,
		Frequency:   models.PlanFrequencyMonthly,
		TotalAmount: decimal.RequireFromString("200.00"),
	})
	svc := newTestService(repo)

	base := decimal.RequireFromString("40.00")
	event := checkoutEvent("evt_mismatch", "alice@example.com", 4150)
	event.BaseAmount = &base
	event.PlanID = &plan.ID

	result, err := svc.ProcessGatewayEvent(event)
	assert.ErrorIs(t, err, ErrPlanMismatch)
	require.NotNil(t, result)
	assert.True(t, result.NeedsAttention)
	assert.Empty(t, repo.payments)

	// The audit row records the rejection instead of sitting
	// unprocessed forever.
	require.Len(t, repo.events, 1)
	for _, e := range repo.events {
		assert.True(t, e.Processed)
		assert.Contains(t, e.Notes, "rejected")
	}

	// A redelivery is a duplicate, not another attempt.
	_, err = svc.ProcessGatewayEvent(event)
	assert.ErrorIs(t, err, ErrDuplicateEvent)
}

func TestRecordManualPayment_InvalidatesDespiteStatusUpdateFailure(t *testing.T) {
	repo := newFakeRepository()
	member := seedMember(repo, "alice@example.com")
	inv := &recordingInvalidator{}
	svc := newTestService(repo, WithInvalidator(inv))

	repo.failOn["UpdateMemberFinancialStatus"] = errBoom
	_, err := svc.RecordManualPayment(RecordInput{
		MemberID: member.ID,
		Amount:   decimal.RequireFromString("200.00"),
		Method:   models.PaymentMethodCash,
	})
	require.Error(t, err)
	assert.True(t, IsStorageError(err))

	// The ledger write committed before the failure, so the cached
	// aggregates must still drop.
	assert.Len(t, repo.payments, 1)
	assert.Equal(t, []uint{member.ID}, inv.paymentCalls)
}

func TestCycleBounds(t *testing.T) {
	// November sits in the cycle that started the same October.
	from, to := CycleBounds(time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC), to)

	// March sits in the cycle that started the previous October.
	from, to = CycleBounds(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC), to)

	// October 1st opens a new cycle.
	from, _ = CycleBounds(time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), from)

	// September 30th still belongs to the old one.
	from, _ = CycleBounds(time.Date(2025, time.September, 30, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC), from)
}
