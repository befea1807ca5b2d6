// internal/services/renewal_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/insurance-solutions/vims-backend/internal/models"
)

type RenewalServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *RenewalService
}

func (s *RenewalServiceTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.service = NewRenewalService(s.db, testUnderwritingConfig())
}

// expiringPolicy issues an active policy whose term ends exactly lead-days
// from now, putting it inside today's sweep window.
func (s *RenewalServiceTestSuite) expiringPolicy() *models.Policy {
	start := time.Now().AddDate(-1, 0, 31)
	return issueActivePolicy(s.T(), s.db, testUnderwritingConfig(), start)
}

func (s *RenewalServiceTestSuite) TestSweepDraftsRenewalProposal() {
	policy := s.expiringPolicy()
	s.Require().NoError(s.db.Model(&models.Proposal{}).
		Where("id = ?", policy.ProposalID).
		Update("ncb_percent", 20.0).Error)

	result, err := s.service.RunSweep(time.Now())
	s.Require().NoError(err)
	s.Equal(1, result.Scanned)
	s.Equal(1, result.Created)
	s.Zero(result.Failed)

	var draft models.Proposal
	s.Require().NoError(s.db.Where("renewal_of_policy_id = ?", policy.ID).First(&draft).Error)
	s.Equal(models.ProposalStatusDraft, draft.Status)
	s.Equal(policy.CustomerID, draft.CustomerID)
	s.Equal(policy.VehicleID, draft.VehicleID)
	s.InDelta(policy.VehicleIDV, draft.VehicleIDV, 0.01)
	s.InDelta(20.0, draft.NCBPercent, 0.01)
	s.Greater(draft.GrandTotalPremium, 0.0)

	wantStart := policy.PolicyEndDate.AddDate(0, 0, 1)
	s.Equal(wantStart.Format("2006-01-02"), draft.PolicyStart.Format("2006-01-02"))
	s.Equal(wantStart.AddDate(1, 0, 0).AddDate(0, 0, -1).Format("2006-01-02"), draft.PolicyEnd.Format("2006-01-02"))
}

func (s *RenewalServiceTestSuite) TestSweepIsRepeatSafe() {
	policy := s.expiringPolicy()

	_, err := s.service.RunSweep(time.Now())
	s.Require().NoError(err)

	result, err := s.service.RunSweep(time.Now())
	s.Require().NoError(err)
	s.Equal(1, result.Scanned)
	s.Zero(result.Created)
	s.Equal(1, result.Skipped)

	var count int64
	s.Require().NoError(s.db.Model(&models.Proposal{}).
		Where("renewal_of_policy_id = ?", policy.ID).Count(&count).Error)
	s.EqualValues(1, count)
}

func (s *RenewalServiceTestSuite) TestClaimsZeroTheCarriedBonus() {
	policy := s.expiringPolicy()
	s.Require().NoError(s.db.Model(&models.Proposal{}).
		Where("id = ?", policy.ProposalID).
		Update("ncb_percent", 20.0).Error)

	claim := &models.Claim{
		ClaimNumber:      "CLM-2026-90001",
		PolicyID:         policy.ID,
		CustomerID:       policy.CustomerID,
		VehicleID:        policy.VehicleID,
		PolicyNumber:     policy.PolicyNumber,
		DateOfLoss:       time.Now().AddDate(0, -3, 0),
		RegistrationDate: time.Now().AddDate(0, -3, 1),
		CoverageType:     "own_damage",
		NatureOfLoss:     "accident",
		ClaimAmount:      40000,
		Status:           models.ClaimStatusReported,
	}
	s.Require().NoError(s.db.Create(claim).Error)

	result, err := s.service.RunSweep(time.Now())
	s.Require().NoError(err)
	s.Equal(1, result.Created)

	var draft models.Proposal
	s.Require().NoError(s.db.Where("renewal_of_policy_id = ?", policy.ID).First(&draft).Error)
	s.Zero(draft.NCBPercent)
}

func (s *RenewalServiceTestSuite) TestPoliciesOutsideWindowAreIgnored() {
	issueActivePolicy(s.T(), s.db, testUnderwritingConfig(), time.Now().AddDate(0, -2, 0))

	result, err := s.service.RunSweep(time.Now())
	s.Require().NoError(err)
	s.Zero(result.Scanned)
	s.Zero(result.Created)
}

func TestRenewalServiceSuite(t *testing.T) {
	suite.Run(t, new(RenewalServiceTestSuite))
}
