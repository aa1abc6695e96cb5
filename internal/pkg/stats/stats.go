package stats

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/chapterledger/ChapterLedger/app/models"
	"github.com/chapterledger/ChapterLedger/app/repository"
	"github.com/chapterledger/ChapterLedger/internal/pkg/cache"
	"github.com/shopspring/decimal"
)

const (
	CacheKeyPaymentsTotal  = "stats:payments:total"
	CacheKeyMemberTotal    = "stats:payments:member:%d:total" // Format with member ID
	CacheKeyMemberPattern  = "stats:payments:member:*"
	CacheKeyActivePlans    = "stats:plans:active:count"
	CacheKeyUnpaidMembers  = "stats:members:unpaid"
	CacheKeyPaymentTypes   = "stats:payments:types"
	CacheKeyPaymentMethods = "stats:payments:methods"
	CacheKeyMonthlyTrends  = "stats:payments:monthly"
	CacheExpiration        = 10 * time.Minute
)

// TypeSummary breaks payments down by one-time vs installment.
type TypeSummary struct {
	OneTime     int64 `json:"one_time"`
	Installment int64 `json:"installment"`
}

// MethodSummary breaks payments down by method.
type MethodSummary struct {
	Stripe int64 `json:"stripe"`
	Cash   int64 `json:"cash"`
	Check  int64 `json:"check"`
	Other  int64 `json:"other"`
}

// Service serves treasurer dashboard aggregates through a read-through
// Redis cache. Every reader falls back to the database on a cache miss
// or a cache error; the cache is an optimization, never the source of
// truth.
type Service struct {
	repos      *repository.Repositories
	duesAmount decimal.Decimal
}

// NewService creates a stats service over the given repositories.
func NewService(repos *repository.Repositories, duesAmount decimal.Decimal) *Service {
	return &Service{repos: repos, duesAmount: duesAmount}
}

// TotalCollected returns the all-time payment sum.
func (s *Service) TotalCollected() (decimal.Decimal, error) {
	if val, err := cache.Get(CacheKeyPaymentsTotal); err == nil {
		if total, perr := decimal.NewFromString(val); perr == nil {
			return total, nil
		}
	}

	total, err := s.repos.Payment.SumAll()
	if err != nil {
		return decimal.Zero, err
	}
	if err := cache.Set(CacheKeyPaymentsTotal, total.StringFixed(2), CacheExpiration); err != nil {
		log.Printf("[STATS] caching payment total failed: %v", err)
	}
	return total, nil
}

// MemberTotalPaid returns one member's all-time payment sum.
func (s *Service) MemberTotalPaid(memberID uint) (decimal.Decimal, error) {
	key := fmt.Sprintf(CacheKeyMemberTotal, memberID)
	if val, err := cache.Get(key); err == nil {
		if total, perr := decimal.NewFromString(val); perr == nil {
			return total, nil
		}
	}

	total, err := s.repos.Payment.SumByMember(memberID)
	if err != nil {
		return decimal.Zero, err
	}
	if err := cache.Set(key, total.StringFixed(2), CacheExpiration); err != nil {
		log.Printf("[STATS] caching member %d total failed: %v", memberID, err)
	}
	return total, nil
}

// MemberOutstandingBalance returns how much a member still owes: the
// remainder of their active plan if they hold one, otherwise the annual
// dues amount minus what they paid this cycle. Never negative.
func (s *Service) MemberOutstandingBalance(memberID uint, now time.Time) (decimal.Decimal, error) {
	plan, err := s.repos.Plan.GetActiveByMember(memberID)
	if err == nil {
		paid, _, serr := s.repos.Payment.SumAndCountByPlan(memberID, plan.ID)
		if serr != nil {
			return decimal.Zero, serr
		}
		remaining := plan.TotalAmount.Sub(paid)
		if remaining.IsNegative() {
			return decimal.Zero, nil
		}
		return remaining, nil
	}

	paid, err := s.repos.Payment.SumByMember(memberID)
	if err != nil {
		return decimal.Zero, err
	}
	remaining := s.duesAmount.Sub(paid)
	if remaining.IsNegative() {
		return decimal.Zero, nil
	}
	return remaining, nil
}

// ActivePlanCount returns how many plans are currently live.
func (s *Service) ActivePlanCount() (int64, error) {
	if val, err := cache.Get(CacheKeyActivePlans); err == nil {
		if count, perr := strconv.ParseInt(val, 10, 64); perr == nil {
			return count, nil
		}
	}

	count, err := s.repos.Plan.CountActive()
	if err != nil {
		return 0, err
	}
	if err := cache.Set(CacheKeyActivePlans, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
		log.Printf("[STATS] caching active plan count failed: %v", err)
	}
	return count, nil
}

// UnpaidMemberIDs returns members who neither paid the full dues amount
// nor hold an active plan.
func (s *Service) UnpaidMemberIDs() ([]uint, error) {
	if val, err := cache.Get(CacheKeyUnpaidMembers); err == nil {
		var ids []uint
		if jerr := json.Unmarshal([]byte(val), &ids); jerr == nil {
			return ids, nil
		}
	}

	paidIDs, err := s.repos.Payment.MembersPaidAtLeast(s.duesAmount)
	if err != nil {
		return nil, err
	}
	planIDs, err := s.repos.Plan.MembersWithActivePlans()
	if err != nil {
		return nil, err
	}
	covered := make(map[uint]bool, len(paidIDs)+len(planIDs))
	for _, id := range paidIDs {
		covered[id] = true
	}
	for _, id := range planIDs {
		covered[id] = true
	}

	total, err := s.repos.Member.Count()
	if err != nil {
		return nil, err
	}
	members, err := s.repos.Member.List(0, int(total))
	if err != nil {
		return nil, err
	}

	unpaid := make([]uint, 0)
	for _, m := range members {
		if !m.Active {
			continue
		}
		if !covered[m.ID] {
			unpaid = append(unpaid, m.ID)
		}
	}

	if encoded, jerr := json.Marshal(unpaid); jerr == nil {
		if err := cache.Set(CacheKeyUnpaidMembers, string(encoded), CacheExpiration); err != nil {
			log.Printf("[STATS] caching unpaid members failed: %v", err)
		}
	}
	return unpaid, nil
}

// PaymentTypeSummary counts payments by type.
func (s *Service) PaymentTypeSummary() (*TypeSummary, error) {
	if val, err := cache.Get(CacheKeyPaymentTypes); err == nil {
		var summary TypeSummary
		if jerr := json.Unmarshal([]byte(val), &summary); jerr == nil {
			return &summary, nil
		}
	}

	oneTime, err := s.repos.Payment.CountByType(models.PaymentTypeOneTime)
	if err != nil {
		return nil, err
	}
	installment, err := s.repos.Payment.CountByType(models.PaymentTypeInstallment)
	if err != nil {
		return nil, err
	}

	summary := &TypeSummary{OneTime: oneTime, Installment: installment}
	s.cacheJSON(CacheKeyPaymentTypes, summary)
	return summary, nil
}

// PaymentMethodSummary counts payments by method.
func (s *Service) PaymentMethodSummary() (*MethodSummary, error) {
	if val, err := cache.Get(CacheKeyPaymentMethods); err == nil {
		var summary MethodSummary
		if jerr := json.Unmarshal([]byte(val), &summary); jerr == nil {
			return &summary, nil
		}
	}

	summary := &MethodSummary{}
	var err error
	if summary.Stripe, err = s.repos.Payment.CountByMethod(models.PaymentMethodStripe); err != nil {
		return nil, err
	}
	if summary.Cash, err = s.repos.Payment.CountByMethod(models.PaymentMethodCash); err != nil {
		return nil, err
	}
	if summary.Check, err = s.repos.Payment.CountByMethod(models.PaymentMethodCheck); err != nil {
		return nil, err
	}
	known := []string{models.PaymentMethodStripe, models.PaymentMethodCash, models.PaymentMethodCheck}
	if summary.Other, err = s.repos.Payment.CountOtherMethods(known); err != nil {
		return nil, err
	}

	s.cacheJSON(CacheKeyPaymentMethods, summary)
	return summary, nil
}

// MonthlyTrends returns per-month payment totals for the trailing
// twelve months.
func (s *Service) MonthlyTrends(now time.Time) ([]repository.MonthlyTotal, error) {
	if val, err := cache.Get(CacheKeyMonthlyTrends); err == nil {
		var trends []repository.MonthlyTotal
		if jerr := json.Unmarshal([]byte(val), &trends); jerr == nil {
			return trends, nil
		}
	}

	trends, err := s.repos.Payment.MonthlyTotals(now.AddDate(-1, 0, 0))
	if err != nil {
		return nil, err
	}
	s.cacheJSON(CacheKeyMonthlyTrends, trends)
	return trends, nil
}

func (s *Service) cacheJSON(key string, value interface{}) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := cache.Set(key, string(encoded), CacheExpiration); err != nil {
		log.Printf("[STATS] caching %s failed: %v", key, err)
	}
}

// InvalidatePayments drops all payment-derived aggregates plus the
// per-member total for the member that changed.
func (s *Service) InvalidatePayments(memberID uint) {
	keys := []string{
		CacheKeyPaymentsTotal,
		CacheKeyUnpaidMembers,
		CacheKeyPaymentTypes,
		CacheKeyPaymentMethods,
		CacheKeyMonthlyTrends,
		fmt.Sprintf(CacheKeyMemberTotal, memberID),
	}
	if err := cache.Delete(keys...); err != nil {
		log.Printf("[STATS] payment cache invalidation failed: %v", err)
	}
}

// InvalidatePlans drops plan-derived aggregates after a plan is
// created, completed or archived.
func (s *Service) InvalidatePlans() {
	if err := cache.Delete(CacheKeyActivePlans, CacheKeyUnpaidMembers); err != nil {
		log.Printf("[STATS] plan cache invalidation failed: %v", err)
	}
}
