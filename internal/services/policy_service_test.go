// internal/services/policy_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/insurance-solutions/vims-backend/internal/apperrors"
	"github.com/insurance-solutions/vims-backend/internal/models"
)

type PolicyServiceTestSuite struct {
	suite.Suite
	db        *gorm.DB
	proposals *ProposalService
	service   *PolicyService
}

func (s *PolicyServiceTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	cfg := testUnderwritingConfig()
	s.proposals = NewProposalService(s.db, cfg)
	s.service = NewPolicyService(s.db, cfg, testNotifications())
}

// issuePending walks a fresh proposal to an issued, unpaid policy.
func (s *PolicyServiceTestSuite) issuePending() *models.Policy {
	customer := createTestCustomer(s.T(), s.db)
	vehicle := createTestVehicle(s.T(), s.db, customer)
	plan := createTestPlan(s.T(), s.db)

	start := time.Now().AddDate(0, 0, 7)
	proposal, err := s.proposals.CreateProposal(&CreateProposalRequest{
		CustomerID:  customer.ID,
		VehicleID:   vehicle.ID,
		PlanID:      plan.ID,
		VehicleIDV:  800000,
		PolicyStart: start,
		PolicyEnd:   start.AddDate(1, 0, 0).AddDate(0, 0, -1),
	})
	s.Require().NoError(err)

	_, err = s.proposals.Submit(proposal.ID, models.RoleAgent)
	s.Require().NoError(err)
	_, err = s.proposals.StartReview(proposal.ID, models.RoleUnderwriter)
	s.Require().NoError(err)
	decider := createTestUser(s.T(), s.db, "uw-"+proposal.ProposalNumber, models.RoleUnderwriter)
	_, err = s.proposals.Approve(proposal.ID, decider.ID, models.RoleUnderwriter)
	s.Require().NoError(err)

	policy, err := s.service.IssueFromProposal(proposal.ID, "Ravi Verma")
	s.Require().NoError(err)
	return policy
}

func (s *PolicyServiceTestSuite) TestIssueFreezesPremiumAndCoverage() {
	policy := s.issuePending()

	s.Regexp(`^POL-\d{4}-\d{5}$`, policy.PolicyNumber)
	s.Equal(models.PolicyStatusPendingPayment, policy.Status)
	s.InDelta(policy.TotalPremiumPayable, policy.OutstandingAmount, 0.01)
	s.Zero(policy.PremiumPaid)
	s.NotEmpty(policy.PlanSnapshot)

	var snapshots []models.CoverageSnapshot
	s.Require().NoError(s.db.Where("policy_id = ?", policy.ID).Find(&snapshots).Error)
	s.Len(snapshots, 2)
}

func (s *PolicyServiceTestSuite) TestSnapshotSurvivesPlanEdits() {
	policy := s.issuePending()
	payableBefore := policy.TotalPremiumPayable

	// Gut the plan after issuance; the policy must not move.
	s.Require().NoError(s.db.Model(&models.InsurancePlan{}).
		Where("id = ?", policy.PlanID).
		Updates(map[string]interface{}{"od_rate_value": 95.0, "is_active": false}).Error)
	s.Require().NoError(s.db.Where("plan_id = ?", policy.PlanID).
		Delete(&models.PlanCoverage{}).Error)

	reloaded, err := s.service.GetPolicy(policy.ID)
	s.Require().NoError(err)
	s.InDelta(payableBefore, reloaded.TotalPremiumPayable, 0.01)
	s.Len(reloaded.CoverageSnapshot, 2)
	s.NotEmpty(reloaded.PlanSnapshot)
}

func (s *PolicyServiceTestSuite) TestPartialPaymentsTrackOutstanding() {
	policy := s.issuePending()
	payable := policy.TotalPremiumPayable

	policy, receipt, err := s.service.ApplyPayment(policy.ID, "rcpt-part-1", 10000, "manual")
	s.Require().NoError(err)
	s.InDelta(10000.0, receipt.Amount, 0.01)
	s.InDelta(10000.0, policy.PremiumPaid, 0.01)
	s.InDelta(payable-10000, policy.OutstandingAmount, 0.01)
	s.Equal(models.PolicyStatusPendingPayment, policy.Status)
	s.Nil(policy.ActivatedAt)

	policy, _, err = s.service.ApplyPayment(policy.ID, "rcpt-part-2", payable-10000, "manual")
	s.Require().NoError(err)
	s.InDelta(payable, policy.PremiumPaid, 0.01)
	s.Zero(policy.OutstandingAmount)
	s.Equal(models.PolicyStatusActive, policy.Status)
	s.NotNil(policy.ActivatedAt)
}

func (s *PolicyServiceTestSuite) TestDuplicateReferenceIsIdempotent() {
	policy := s.issuePending()

	first, _, err := s.service.ApplyPayment(policy.ID, "rcpt-dup", 5000, "manual")
	s.Require().NoError(err)

	again, receipt, err := s.service.ApplyPayment(policy.ID, "rcpt-dup", 5000, "manual")
	s.Require().NoError(err)
	s.Equal("rcpt-dup", receipt.Reference)
	s.InDelta(first.PremiumPaid, again.PremiumPaid, 0.01)
	s.InDelta(first.OutstandingAmount, again.OutstandingAmount, 0.01)

	var count int64
	s.Require().NoError(s.db.Model(&models.PaymentReceipt{}).
		Where("policy_id = ?", policy.ID).Count(&count).Error)
	s.EqualValues(1, count)
}

func (s *PolicyServiceTestSuite) TestOverpaymentClampsToZero() {
	policy := s.issuePending()

	policy, _, err := s.service.ApplyPayment(policy.ID, "rcpt-over", policy.TotalPremiumPayable+500, "manual")
	s.Require().NoError(err)
	s.Zero(policy.OutstandingAmount)
	s.Equal(models.PolicyStatusActive, policy.Status)
}

func (s *PolicyServiceTestSuite) TestActivePolicyStaysActiveOnExtraPayment() {
	policy := s.issuePending()

	policy, _, err := s.service.ApplyPayment(policy.ID, "rcpt-full", policy.TotalPremiumPayable, "manual")
	s.Require().NoError(err)
	s.Equal(models.PolicyStatusActive, policy.Status)

	policy, _, err = s.service.ApplyPayment(policy.ID, "rcpt-extra", 100, "manual")
	s.Require().NoError(err)
	s.Equal(models.PolicyStatusActive, policy.Status)
}

func (s *PolicyServiceTestSuite) TestPaymentRejectedOnCancelledPolicy() {
	policy := s.issuePending()
	s.Require().NoError(s.db.Model(policy).Update("status", models.PolicyStatusCancelled).Error)

	_, _, err := s.service.ApplyPayment(policy.ID, "rcpt-cancelled", 5000, "manual")
	s.True(apperrors.IsValidation(err))
}

func (s *PolicyServiceTestSuite) TestEndorsementUpdatesNominee() {
	policy := s.issuePending()
	_, _, err := s.service.ApplyPayment(policy.ID, "rcpt-endorse", policy.TotalPremiumPayable, "manual")
	s.Require().NoError(err)

	agent := createTestUser(s.T(), s.db, "endorsing-agent", models.RoleAgent)
	endorsement, err := s.service.CreateEndorsement(policy.ID, &CreateEndorsementRequest{
		NewNominee: "Meera Verma",
		Remarks:    "nominee change after marriage",
	}, agent.ID)
	s.Require().NoError(err)
	s.Equal("Meera Verma", endorsement.NewNominee)

	reloaded, err := s.service.GetPolicy(policy.ID)
	s.Require().NoError(err)
	s.Equal("Meera Verma", reloaded.Nominee)

	list, err := s.service.ListEndorsements(policy.ID)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *PolicyServiceTestSuite) TestEndorsementRequiresActivePolicy() {
	policy := s.issuePending()
	agent := createTestUser(s.T(), s.db, "early-agent", models.RoleAgent)

	_, err := s.service.CreateEndorsement(policy.ID, &CreateEndorsementRequest{
		NewNominee: "Meera Verma",
	}, agent.ID)
	s.True(apperrors.IsValidation(err))
}

func (s *PolicyServiceTestSuite) TestMarkExpiredFlipsOverduePolicies() {
	policy := issueActivePolicy(s.T(), s.db, testUnderwritingConfig(), time.Now().AddDate(-1, -1, 0))

	count, err := s.service.MarkExpired(time.Now())
	s.Require().NoError(err)
	s.EqualValues(1, count)

	reloaded, err := s.service.GetPolicy(policy.ID)
	s.Require().NoError(err)
	s.Equal(models.PolicyStatusExpired, reloaded.Status)
}

func TestPolicyServiceSuite(t *testing.T) {
	suite.Run(t, new(PolicyServiceTestSuite))
}
