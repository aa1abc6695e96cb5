package dues

import (
	"errors"
	"time"

	"github.com/chapterledger/ChapterLedger/app/models"
	"gorm.io/gorm"
)

// CycleBounds returns the dues cycle containing now. Cycles run October 1
// through September 30: a date in October through December belongs to the
// cycle starting that year, January through September to the cycle that
// started the previous October.
func CycleBounds(now time.Time) (time.Time, time.Time) {
	year := now.Year()
	if now.Month() < time.October {
		year--
	}
	start := time.Date(year, time.October, 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(1, 0, 0)
	return start, end
}

// RecomputeFinancialStatus derives a member's standing from durable
// state and persists it when it changed. A member is financial for the
// current cycle when their active payment plan has met its completion
// criteria, they completed a plan during the cycle, or they made a
// single one-time payment covering the full dues amount within the
// cycle. Holding a plan is not enough on its own; the money has to be
// there. Members inside the neophyte exemption window are exempt.
func (s *Service) RecomputeFinancialStatus(member *models.Member, now time.Time) (string, error) {
	status, err := s.deriveFinancialStatus(member, now)
	if err != nil {
		return "", err
	}
	if status != member.FinancialStatus {
		if err := s.repo.UpdateMemberFinancialStatus(member.ID, status); err != nil {
			return "", storageErr("financial status update", err)
		}
		member.FinancialStatus = status
	}
	return status, nil
}

func (s *Service) deriveFinancialStatus(member *models.Member, now time.Time) (string, error) {
	if member.IsNeophyte(now) {
		return models.FINANCIAL_STATUS_NEOPHYTE, nil
	}

	plan, err := s.repo.GetActivePlanByMember(member.ID)
	if err == nil {
		met, metErr := s.planCompletionMet(plan)
		if metErr != nil {
			return "", metErr
		}
		if met {
			return models.FINANCIAL_STATUS_FINANCIAL, nil
		}
		// A partially paid plan confers nothing; fall through to the
		// archived-plan and one-time checks.
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", storageErr("active plan lookup", err)
	}

	from, to := CycleBounds(now)

	archived, err := s.repo.ListArchivedPlansByMember(member.ID)
	if err != nil {
		return "", storageErr("archived plan lookup", err)
	}
	for _, plan := range archived {
		if !plan.CompletedOn.Before(from) && plan.CompletedOn.Before(to) {
			return models.FINANCIAL_STATUS_FINANCIAL, nil
		}
	}

	_, err = s.repo.FirstQualifyingOneTimePayment(member.ID, s.duesAmount, from, to)
	if err == nil {
		return models.FINANCIAL_STATUS_FINANCIAL, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", storageErr("qualifying payment lookup", err)
	}

	return models.FINANCIAL_STATUS_NOT_FINANCIAL, nil
}
