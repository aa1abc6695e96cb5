package stats

import (
	"testing"
	"time"

	"github.com/chapterledger/ChapterLedger/app/models"
	"github.com/chapterledger/ChapterLedger/app/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type planRepoStub struct {
	repository.PlanRepository
	active *models.PaymentPlan
}

func (s *planRepoStub) GetActiveByMember(memberID uint) (*models.PaymentPlan, error) {
	if s.active == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.active, nil
}

type paymentRepoStub struct {
	repository.PaymentRepository
	memberSum decimal.Decimal
	planSum   decimal.Decimal
	planCount int64
}

func (s *paymentRepoStub) SumByMember(memberID uint) (decimal.Decimal, error) {
	return s.memberSum, nil
}

func (s *paymentRepoStub) SumAndCountByPlan(memberID, planID uint) (decimal.Decimal, int64, error) {
	return s.planSum, s.planCount, nil
}

func TestMemberOutstandingBalance_ActivePlanRemainder(t *testing.T) {
	repos := &repository.Repositories{
		Plan: &planRepoStub{active: &models.PaymentPlan{
			ID:          7,
			MemberID:    1,
			TotalAmount: decimal.RequireFromString("200.00"),
		}},
		Payment: &paymentRepoStub{
			planSum:   decimal.RequireFromString("120.00"),
			planCount: 3,
		},
	}
	svc := NewService(repos, decimal.RequireFromString("200.00"))

	balance, err := svc.MemberOutstandingBalance(1, time.Now())
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("80.00")), "got %s", balance)
}

func TestMemberOutstandingBalance_NoPlanUsesDuesAmount(t *testing.T) {
	repos := &repository.Repositories{
		Plan:    &planRepoStub{},
		Payment: &paymentRepoStub{memberSum: decimal.RequireFromString("50.00")},
	}
	svc := NewService(repos, decimal.RequireFromString("200.00"))

	balance, err := svc.MemberOutstandingBalance(1, time.Now())
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("150.00")), "got %s", balance)
}

func TestMemberOutstandingBalance_NeverNegative(t *testing.T) {
	repos := &repository.Repositories{
		Plan: &planRepoStub{active: &models.PaymentPlan{
			ID:          7,
			TotalAmount: decimal.RequireFromString("200.00"),
		}},
		Payment: &paymentRepoStub{planSum: decimal.RequireFromString("250.00")},
	}
	svc := NewService(repos, decimal.RequireFromString("200.00"))

	balance, err := svc.MemberOutstandingBalance(1, time.Now())
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "overpaid plan must report zero, got %s", balance)
}
