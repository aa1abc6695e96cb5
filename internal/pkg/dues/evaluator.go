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

// completionTolerance absorbs a single cent of rounding drift between
// the plan total and the sum of equal installments.
var completionTolerance = decimal.RequireFromString("0.01")

// planCompletionMet reports whether the plan has earned completion: the
// paid sum reaches the total within tolerance AND, when the plan
// enforces an installment count, at least that many installment
// payments exist.
func (s *Service) planCompletionMet(plan *models.PaymentPlan) (bool, error) {
	paid, count, err := s.repo.SumAndCountPlanPayments(plan.MemberID, plan.ID)
	if err != nil {
		return false, storageErr("plan payment aggregation", err)
	}
	if !paid.GreaterThanOrEqual(plan.TotalAmount.Sub(completionTolerance)) {
		return false, nil
	}
	if plan.EnforceInstallments && plan.ExpectedInstallments != nil && count < int64(*plan.ExpectedInstallments) {
		return false, nil
	}
	return true, nil
}

// EvaluatePlan checks whether a plan has earned completion and, if so,
// flips its status and moves it to the archive. The status flip and the
// archive move are separate commits: a crash between them leaves a
// Completed plan in the live table, which the next evaluation finishes
// moving without re-checking the sums.
//
// The Active -> Completed flip is a compare-and-swap; when two
// evaluations race, only the one whose flip took effect performs the
// archive move. Returns whether the plan ended up archived.
func (s *Service) EvaluatePlan(planID uint, now time.Time) (bool, error) {
	plan, err := s.repo.GetPlanByID(planID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Already archived by a concurrent evaluation.
		return false, nil
	}
	if err != nil {
		return false, storageErr("plan lookup", err)
	}

	if !plan.IsCompleted() {
		met, err := s.planCompletionMet(plan)
		if err != nil {
			return false, err
		}
		if !met {
			return false, nil
		}

		won, err := s.repo.CompletePlanStatus(plan.ID)
		if err != nil {
			return false, storageErr("plan status update", err)
		}
		if !won {
			// A concurrent evaluation flipped the status first; it
			// owns the archive move.
			return false, nil
		}
	}

	if err := s.repo.ArchiveCompletedPlan(plan, now); err != nil {
		log.Printf("[DUES] archival of plan %d failed: %v", plan.ID, err)
		return false, fmt.Errorf("%w: plan %d: %v", ErrArchivalFailed, plan.ID, err)
	}
	return true, nil
}
