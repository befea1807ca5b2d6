// internal/services/renewal_service.go
package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/insurance-solutions/vims-backend/internal/config"
	"github.com/insurance-solutions/vims-backend/internal/models"
	"github.com/insurance-solutions/vims-backend/internal/premium"
	"github.com/insurance-solutions/vims-backend/internal/utils"
)

// RenewalService produces draft renewal proposals ahead of policy expiry.
// The sweep runs from the daily scheduler and from the manual admin
// trigger; both paths are safe to repeat because each source policy can
// carry at most one renewal proposal.
type RenewalService struct {
	db  *gorm.DB
	cfg config.UnderwritingConfig
}

// SweepResult summarizes one renewal run.
type SweepResult struct {
	Scanned int `json:"scanned"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

func NewRenewalService(db *gorm.DB, cfg config.UnderwritingConfig) *RenewalService {
	return &RenewalService{db: db, cfg: cfg}
}

// RunSweep drafts a renewal for every active policy expiring exactly
// lead-days from now. A failure on one policy is logged and the sweep moves
// on; re-running the same day creates nothing new.
func (s *RenewalService) RunSweep(now time.Time) (*SweepResult, error) {
	target := now.AddDate(0, 0, s.cfg.RenewalLeadDays)
	dayStart := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, target.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var policies []models.Policy
	err := s.db.Where("status = ? AND policy_end_date >= ? AND policy_end_date < ?",
		models.PolicyStatusActive, dayStart, dayEnd).
		Find(&policies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan expiring policies: %w", err)
	}

	result := &SweepResult{Scanned: len(policies)}
	for i := range policies {
		policy := &policies[i]

		created, err := s.renewPolicy(policy, now)
		switch {
		case err != nil:
			result.Failed++
			logrus.WithError(err).WithField("policy", policy.PolicyNumber).Warn("Renewal draft failed")
		case created:
			result.Created++
		default:
			result.Skipped++
		}
	}

	logrus.WithFields(logrus.Fields{
		"scanned": result.Scanned,
		"created": result.Created,
		"skipped": result.Skipped,
		"failed":  result.Failed,
	}).Info("Renewal sweep completed")

	return result, nil
}

// renewPolicy drafts one renewal proposal. Returns false with no error when
// the policy already has one.
func (s *RenewalService) renewPolicy(policy *models.Policy, now time.Time) (bool, error) {
	var existing models.Proposal
	err := s.db.Where("renewal_of_policy_id = ?", policy.ID).First(&existing).Error
	if err == nil {
		return false, nil
	} else if err != gorm.ErrRecordNotFound {
		return false, fmt.Errorf("failed to check existing renewal: %w", err)
	}

	var plan models.InsurancePlan
	if err := s.db.Preload("Addons").First(&plan, policy.PlanID).Error; err != nil {
		return false, fmt.Errorf("failed to load plan: %w", err)
	}

	var source models.Proposal
	if err := s.db.First(&source, policy.ProposalID).Error; err != nil {
		return false, fmt.Errorf("failed to load source proposal: %w", err)
	}

	// The no-claim bonus carries forward only on a claim-free term
	ncb := source.NCBPercent
	var claimCount int64
	if err := s.db.Model(&models.Claim{}).
		Where("policy_id = ? AND status <> ?", policy.ID, models.ClaimStatusRejected).
		Count(&claimCount).Error; err != nil {
		return false, fmt.Errorf("failed to count claims: %w", err)
	}
	if claimCount > 0 {
		ncb = 0
	}

	start := policy.PolicyEndDate.AddDate(0, 0, 1)
	end := start.AddDate(1, 0, 0).AddDate(0, 0, -1)

	proposal := &models.Proposal{
		CustomerID:        policy.CustomerID,
		VehicleID:         policy.VehicleID,
		PlanID:            policy.PlanID,
		VehicleIDV:        policy.VehicleIDV,
		PolicyStart:       start,
		PolicyEnd:         end,
		NCBPercent:        ncb,
		SelectedAddons:    source.SelectedAddons,
		Status:            models.ProposalStatusDraft,
		RenewalOfPolicyID: &policy.ID,
	}

	if breakdown := premium.Calculate(&plan, premium.Input{
		IDV:        proposal.VehicleIDV,
		Addons:     proposal.SelectedAddons,
		NCBPercent: proposal.NCBPercent,
	}); breakdown != nil {
		proposal.ODPremiumBase = breakdown.ODPremiumBase
		proposal.NCBDiscount = breakdown.NCBDiscount
		proposal.ODPremium = breakdown.ODPremium
		proposal.TPPremium = breakdown.TPPremium
		proposal.AddonPremium = breakdown.AddonPremium
		proposal.TotalNetPremium = breakdown.TotalNetPremium
		proposal.TotalGST = breakdown.TotalGST
		proposal.GrandTotalPremium = breakdown.GrandTotalPremium
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		number, err := utils.NextInSeries(tx, s.cfg.ProposalSeriesPrefix, now)
		if err != nil {
			return err
		}
		proposal.ProposalNumber = number
		return tx.Create(proposal).Error
	})
	if err != nil {
		// The unique renewal_of_policy_id index absorbs a concurrent run
		return false, fmt.Errorf("failed to create renewal proposal: %w", err)
	}

	return true, nil
}
