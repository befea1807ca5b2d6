// internal/services/proposal_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/insurance-solutions/vims-backend/internal/apperrors"
	"github.com/insurance-solutions/vims-backend/internal/models"
)

type ProposalServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	service  *ProposalService
	policies *PolicyService
	customer *models.Customer
	vehicle  *models.Vehicle
	plan     *models.InsurancePlan
}

func (s *ProposalServiceTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	cfg := testUnderwritingConfig()
	s.service = NewProposalService(s.db, cfg)
	s.policies = NewPolicyService(s.db, cfg, testNotifications())
	s.customer = createTestCustomer(s.T(), s.db)
	s.vehicle = createTestVehicle(s.T(), s.db, s.customer)
	s.plan = createTestPlan(s.T(), s.db)
}

func (s *ProposalServiceTestSuite) validRequest() *CreateProposalRequest {
	start := time.Now().AddDate(0, 0, 7)
	return &CreateProposalRequest{
		CustomerID:  s.customer.ID,
		VehicleID:   s.vehicle.ID,
		PlanID:      s.plan.ID,
		VehicleIDV:  800000,
		PolicyStart: start,
		PolicyEnd:   start.AddDate(1, 0, 0).AddDate(0, 0, -1),
		NCBPercent:  20,
		SelectedAddons: []string{
			"roadside_assistance",
		},
	}
}

func (s *ProposalServiceTestSuite) TestCreatePricesTheProposal() {
	proposal, err := s.service.CreateProposal(s.validRequest())
	s.Require().NoError(err)

	s.Equal(models.ProposalStatusDraft, proposal.Status)
	s.Regexp(`^PRP-\d{4}-\d{5}$`, proposal.ProposalNumber)

	// OD 2% of 800,000 = 16,000; NCB 20% off = 12,800
	s.InDelta(16000.0, proposal.ODPremiumBase, 0.01)
	s.InDelta(3200.0, proposal.NCBDiscount, 0.01)
	s.InDelta(12800.0, proposal.ODPremium, 0.01)
	s.InDelta(7500.0, proposal.TPPremium, 0.01)
	s.InDelta(1200.0, proposal.AddonPremium, 0.01)
	s.InDelta(21500.0, proposal.TotalNetPremium, 0.01)
	s.InDelta(3870.0, proposal.TotalGST, 0.01)
	s.InDelta(25370.0, proposal.GrandTotalPremium, 0.01)
}

func (s *ProposalServiceTestSuite) TestCreateRejectsForeignVehicle() {
	other := &models.Customer{CustomerName: "Someone Else", KYCStatus: models.KYCStatusVerified}
	s.Require().NoError(s.db.Create(other).Error)

	req := s.validRequest()
	req.CustomerID = other.ID

	_, err := s.service.CreateProposal(req)
	s.True(apperrors.IsValidation(err))
}

func (s *ProposalServiceTestSuite) TestSubmitRequiresVerifiedRC() {
	proposal, err := s.service.CreateProposal(s.validRequest())
	s.Require().NoError(err)

	s.Require().NoError(s.db.Model(s.vehicle).Update("rc_verified", false).Error)

	_, err = s.service.Submit(proposal.ID, models.RoleAgent)
	s.True(apperrors.IsValidation(err))
	s.Contains(err.Error(), "RC")
}

func (s *ProposalServiceTestSuite) TestSubmitRejectsSuspendedRC() {
	proposal, err := s.service.CreateProposal(s.validRequest())
	s.Require().NoError(err)

	s.Require().NoError(s.db.Model(s.vehicle).Update("rc_status", models.RCStatusSuspended).Error)

	_, err = s.service.Submit(proposal.ID, models.RoleAgent)
	s.True(apperrors.IsValidation(err))
}

func (s *ProposalServiceTestSuite) TestSubmitRejectsShortDuration() {
	req := s.validRequest()
	req.PolicyEnd = req.PolicyStart.AddDate(0, 6, 0)

	proposal, err := s.service.CreateProposal(req)
	s.Require().NoError(err)

	_, err = s.service.Submit(proposal.ID, models.RoleAgent)
	s.True(apperrors.IsValidation(err))
	s.Contains(err.Error(), "duration")
}

func (s *ProposalServiceTestSuite) TestSubmitRejectsIDVOutOfVariance() {
	req := s.validRequest()
	req.VehicleIDV = 900000 // 12.5% above the vehicle's 800,000

	proposal, err := s.service.CreateProposal(req)
	s.Require().NoError(err)

	_, err = s.service.Submit(proposal.ID, models.RoleAgent)
	s.True(apperrors.IsValidation(err))
}

func (s *ProposalServiceTestSuite) TestSubmitRequiresAgentRole() {
	proposal, err := s.service.CreateProposal(s.validRequest())
	s.Require().NoError(err)

	_, err = s.service.Submit(proposal.ID, models.RoleSurveyor)
	s.True(apperrors.IsValidation(err))
}

func (s *ProposalServiceTestSuite) TestRejectLocksProposal() {
	proposal := s.submitted()
	underwriter := createTestUser(s.T(), s.db, "rejecting-uw", models.RoleUnderwriter)

	_, err := s.service.StartReview(proposal.ID, models.RoleUnderwriter)
	s.Require().NoError(err)
	rejected, err := s.service.Reject(proposal.ID, underwriter.ID, models.RoleUnderwriter, "vehicle inspection failed")
	s.Require().NoError(err)
	s.Equal(models.ProposalStatusRejected, rejected.Status)

	// Terminal: no further transitions
	_, err = s.service.Submit(proposal.ID, models.RoleAgent)
	s.True(apperrors.IsValidation(err))
}

func (s *ProposalServiceTestSuite) TestConversionIsExactlyOnce() {
	proposal := s.submitted()
	underwriter := createTestUser(s.T(), s.db, "approving-uw", models.RoleUnderwriter)

	_, err := s.service.StartReview(proposal.ID, models.RoleUnderwriter)
	s.Require().NoError(err)
	_, err = s.service.Approve(proposal.ID, underwriter.ID, models.RoleUnderwriter)
	s.Require().NoError(err)

	policy, err := s.policies.IssueFromProposal(proposal.ID, "Ravi Verma")
	s.Require().NoError(err)
	s.Equal(models.PolicyStatusPendingPayment, policy.Status)
	s.InDelta(policy.TotalPremiumPayable, policy.OutstandingAmount, 0.01)

	_, err = s.policies.IssueFromProposal(proposal.ID, "Ravi Verma")
	s.True(apperrors.IsConflict(err))
}

func (s *ProposalServiceTestSuite) TestConversionRequiresApproval() {
	proposal := s.submitted()

	_, err := s.policies.IssueFromProposal(proposal.ID, "")
	s.True(apperrors.IsValidation(err))
}

func (s *ProposalServiceTestSuite) submitted() *models.Proposal {
	proposal, err := s.service.CreateProposal(s.validRequest())
	s.Require().NoError(err)
	proposal, err = s.service.Submit(proposal.ID, models.RoleAgent)
	s.Require().NoError(err)
	return proposal
}

func TestProposalServiceSuite(t *testing.T) {
	suite.Run(t, new(ProposalServiceTestSuite))
}
