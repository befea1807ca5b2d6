// internal/services/claim_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/insurance-solutions/vims-backend/internal/apperrors"
	"github.com/insurance-solutions/vims-backend/internal/config"
	"github.com/insurance-solutions/vims-backend/internal/models"
)

type ClaimServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ClaimService
	policy  *models.Policy

	officer  *models.User
	surveyor *models.User
	verifier *models.User
	finance  *models.User
}

func (s *ClaimServiceTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	cfg := testUnderwritingConfig()
	s.service = NewClaimService(s.db, cfg, testNotifications())
	// Two months into the policy period, well past the waiting window.
	s.policy = issueActivePolicy(s.T(), s.db, cfg, time.Now().AddDate(0, -2, 0))

	s.officer = createTestUser(s.T(), s.db, "claims-officer", models.RoleClaimsOfficer)
	s.surveyor = createTestUser(s.T(), s.db, "field-surveyor", models.RoleSurveyor)
	s.verifier = createTestUser(s.T(), s.db, "field-verifier", models.RoleVerificationAgent)
	s.finance = createTestUser(s.T(), s.db, "finance-clerk", models.RoleFinance)
}

func (s *ClaimServiceTestSuite) register(amount float64) *models.Claim {
	claim, err := s.service.RegisterClaim(&RegisterClaimRequest{
		PolicyID:     s.policy.ID,
		DateOfLoss:   time.Now().AddDate(0, 0, -3),
		CoverageType: "own_damage",
		NatureOfLoss: "accident",
		Description:  "front bumper collision",
		ClaimAmount:  amount,
	})
	s.Require().NoError(err)
	return claim
}

func (s *ClaimServiceTestSuite) TestRegisterCopiesPolicyDetails() {
	claim := s.register(200000)

	s.Regexp(`^CLM-\d{4}-\d{5}$`, claim.ClaimNumber)
	s.Equal(models.ClaimStatusReported, claim.Status)
	s.Equal(s.policy.PolicyNumber, claim.PolicyNumber)
	s.Equal(s.policy.CustomerID, claim.CustomerID)
	s.Equal(s.policy.VehicleID, claim.VehicleID)
	s.False(claim.CoverageWarning)
}

func (s *ClaimServiceTestSuite) TestRegisterRejectsLossOutsidePolicyPeriod() {
	_, err := s.service.RegisterClaim(&RegisterClaimRequest{
		PolicyID:     s.policy.ID,
		DateOfLoss:   s.policy.PolicyStartDate.AddDate(0, 0, -10),
		CoverageType: "own_damage",
		NatureOfLoss: "accident",
		ClaimAmount:  50000,
	})
	s.True(apperrors.IsValidation(err))
	s.Contains(err.Error(), "policy period")
}

func (s *ClaimServiceTestSuite) TestRegisterRejectsLossInWaitingPeriod() {
	cfg := testUnderwritingConfig()
	fresh := issueActivePolicy(s.T(), s.db, cfg, time.Now().AddDate(0, 0, -10))

	_, err := s.service.RegisterClaim(&RegisterClaimRequest{
		PolicyID:     fresh.ID,
		DateOfLoss:   time.Now().AddDate(0, 0, -2),
		CoverageType: "own_damage",
		NatureOfLoss: "accident",
		ClaimAmount:  50000,
	})
	s.True(apperrors.IsValidation(err))
	s.Contains(err.Error(), "waiting period")
}

func (s *ClaimServiceTestSuite) TestRegisterCapsClaimAtInsuredValue() {
	_, err := s.service.RegisterClaim(&RegisterClaimRequest{
		PolicyID:     s.policy.ID,
		DateOfLoss:   time.Now().AddDate(0, 0, -3),
		CoverageType: "own_damage",
		NatureOfLoss: "total loss",
		ClaimAmount:  900000,
	})
	s.True(apperrors.IsValidation(err))
	s.Contains(err.Error(), "insured value")
}

func (s *ClaimServiceTestSuite) TestRegisterEnforcesCoverage() {
	_, err := s.service.RegisterClaim(&RegisterClaimRequest{
		PolicyID:     s.policy.ID,
		DateOfLoss:   time.Now().AddDate(0, 0, -3),
		CoverageType: "engine_protect",
		NatureOfLoss: "hydrostatic lock",
		ClaimAmount:  50000,
	})
	s.True(apperrors.IsValidation(err))
}

func (s *ClaimServiceTestSuite) TestRegisterWarnModeFlagsCoverage() {
	cfg := testUnderwritingConfig()
	cfg.CoverageCheck = config.CoverageCheckWarn
	lenient := NewClaimService(s.db, cfg, testNotifications())

	claim, err := lenient.RegisterClaim(&RegisterClaimRequest{
		PolicyID:     s.policy.ID,
		DateOfLoss:   time.Now().AddDate(0, 0, -3),
		CoverageType: "engine_protect",
		NatureOfLoss: "hydrostatic lock",
		ClaimAmount:  50000,
	})
	s.Require().NoError(err)
	s.True(claim.CoverageWarning)
}

func (s *ClaimServiceTestSuite) TestClaimCountLimitIgnoresRejected() {
	first := s.register(100000)
	s.register(100000)
	s.register(100000)

	// Fourth claim trips the per-policy limit of three.
	_, err := s.service.RegisterClaim(&RegisterClaimRequest{
		PolicyID:     s.policy.ID,
		DateOfLoss:   time.Now().AddDate(0, 0, -3),
		CoverageType: "own_damage",
		NatureOfLoss: "accident",
		ClaimAmount:  100000,
	})
	s.True(apperrors.IsValidation(err))

	// A rejected claim frees the slot.
	s.Require().NoError(s.db.Model(first).Update("status", models.ClaimStatusRejected).Error)
	s.register(100000)
}

func (s *ClaimServiceTestSuite) TestAggregateClaimCapAcrossClaims() {
	s.register(500000)

	_, err := s.service.RegisterClaim(&RegisterClaimRequest{
		PolicyID:     s.policy.ID,
		DateOfLoss:   time.Now().AddDate(0, 0, -3),
		CoverageType: "own_damage",
		NatureOfLoss: "accident",
		ClaimAmount:  400000,
	})
	s.True(apperrors.IsValidation(err))
	s.Contains(err.Error(), "insured value")
}

func (s *ClaimServiceTestSuite) TestAssignSurveyRejectsWrongAssigneeRole() {
	claim := s.register(100000)

	_, err := s.service.AssignSurvey(claim.ID, s.finance.ID, models.RoleClaimsOfficer)
	s.True(apperrors.IsValidation(err))
}

func (s *ClaimServiceTestSuite) TestSurveyMustComeFromAssignedSurveyor() {
	claim := s.register(100000)
	_, err := s.service.AssignSurvey(claim.ID, s.surveyor.ID, models.RoleClaimsOfficer)
	s.Require().NoError(err)

	other := createTestUser(s.T(), s.db, "other-surveyor", models.RoleSurveyor)
	_, err = s.service.SubmitSurvey(claim.ID, other.ID, models.RoleSurveyor, &SubmitSurveyRequest{
		SurveyDate:        time.Now(),
		DamageDescription: "dented quarter panel",
		AssessedAmount:    80000,
	})
	s.True(apperrors.IsValidation(err))
}

func (s *ClaimServiceTestSuite) TestFullSettlementFlow() {
	claim := s.register(200000)

	claim, err := s.service.AssignSurvey(claim.ID, s.surveyor.ID, models.RoleClaimsOfficer)
	s.Require().NoError(err)
	s.Equal(models.ClaimStatusSurveyAssigned, claim.Status)
	s.Equal(s.surveyor.ID, *claim.AssignedSurveyor)

	claim, err = s.service.SubmitSurvey(claim.ID, s.surveyor.ID, models.RoleSurveyor, &SubmitSurveyRequest{
		SurveyDate:        time.Now(),
		DamageDescription: "front impact, radiator and bumper",
		AssessedAmount:    180000,
	})
	s.Require().NoError(err)
	s.Equal(models.ClaimStatusSurveyCompleted, claim.Status)

	claim, err = s.service.AssignVerification(claim.ID, s.verifier.ID, models.RoleClaimsOfficer)
	s.Require().NoError(err)
	s.Equal(models.ClaimStatusVerificationAssigned, claim.Status)

	claim, err = s.service.SubmitVerification(claim.ID, s.verifier.ID, models.RoleVerificationAgent, &SubmitVerificationRequest{
		Remarks: "documents and garage estimate check out",
	})
	s.Require().NoError(err)
	s.Equal(models.ClaimStatusAgentVerified, claim.Status)
	s.False(claim.FraudSuspected)

	claim, err = s.service.Approve(claim.ID, s.officer.ID, models.RoleClaimsOfficer, &ApproveClaimRequest{
		ApprovedAmount:    180000,
		DeductibleApplied: 5000,
		SettlementAmount:  175000,
	})
	s.Require().NoError(err)
	s.Equal(models.ClaimStatusApproved, claim.Status)

	claim, err = s.service.Settle(claim.ID, s.finance.ID, models.RoleFinance, "NEFT to insured")
	s.Require().NoError(err)
	s.Equal(models.ClaimStatusSettled, claim.Status)
	s.NotNil(claim.SettlementEntryID)
	s.NotNil(claim.SettledAt)

	var entry models.SettlementEntry
	s.Require().NoError(s.db.Where("claim_id = ?", claim.ID).First(&entry).Error)
	s.InDelta(175000.0, entry.Amount, 0.01)
	s.Equal(s.finance.ID, entry.PostedBy)

	// Settled is terminal
	_, err = s.service.Settle(claim.ID, s.finance.ID, models.RoleFinance, "again")
	s.True(apperrors.IsValidation(err))
}

func (s *ClaimServiceTestSuite) TestOfficerOverrideSkipsVerification() {
	claim := s.register(150000)

	_, err := s.service.AssignSurvey(claim.ID, s.surveyor.ID, models.RoleClaimsOfficer)
	s.Require().NoError(err)
	_, err = s.service.SubmitSurvey(claim.ID, s.surveyor.ID, models.RoleSurveyor, &SubmitSurveyRequest{
		SurveyDate:        time.Now(),
		DamageDescription: "minor scrape, clearly priced",
		AssessedAmount:    20000,
	})
	s.Require().NoError(err)

	claim, err = s.service.Approve(claim.ID, s.officer.ID, models.RoleClaimsOfficer, &ApproveClaimRequest{
		ApprovedAmount:   20000,
		SettlementAmount: 20000,
	})
	s.Require().NoError(err)
	s.Equal(models.ClaimStatusApproved, claim.Status)
}

func (s *ClaimServiceTestSuite) TestApproveCannotExceedClaimedAmount() {
	claim := s.register(100000)
	_, err := s.service.AssignSurvey(claim.ID, s.surveyor.ID, models.RoleClaimsOfficer)
	s.Require().NoError(err)
	_, err = s.service.SubmitSurvey(claim.ID, s.surveyor.ID, models.RoleSurveyor, &SubmitSurveyRequest{
		SurveyDate:        time.Now(),
		DamageDescription: "quarter panel",
		AssessedAmount:    120000,
	})
	s.Require().NoError(err)

	_, err = s.service.Approve(claim.ID, s.officer.ID, models.RoleClaimsOfficer, &ApproveClaimRequest{
		ApprovedAmount:   120000,
		SettlementAmount: 120000,
	})
	s.True(apperrors.IsValidation(err))
}

func (s *ClaimServiceTestSuite) TestVerificationCopiesFraudFlag() {
	claim := s.register(100000)
	_, err := s.service.AssignSurvey(claim.ID, s.surveyor.ID, models.RoleClaimsOfficer)
	s.Require().NoError(err)
	_, err = s.service.SubmitSurvey(claim.ID, s.surveyor.ID, models.RoleSurveyor, &SubmitSurveyRequest{
		SurveyDate:        time.Now(),
		DamageDescription: "inconsistent damage pattern",
		AssessedAmount:    90000,
	})
	s.Require().NoError(err)
	_, err = s.service.AssignVerification(claim.ID, s.verifier.ID, models.RoleClaimsOfficer)
	s.Require().NoError(err)

	claim, err = s.service.SubmitVerification(claim.ID, s.verifier.ID, models.RoleVerificationAgent, &SubmitVerificationRequest{
		Remarks:        "garage estimate predates the reported loss",
		FraudSuspected: true,
	})
	s.Require().NoError(err)
	s.True(claim.FraudSuspected)
}

func (s *ClaimServiceTestSuite) TestRegisterRejectsFutureLossDate() {
	_, err := s.service.RegisterClaim(&RegisterClaimRequest{
		PolicyID:     s.policy.ID,
		DateOfLoss:   time.Now().AddDate(0, 0, 2),
		CoverageType: "own_damage",
		NatureOfLoss: "accident",
		ClaimAmount:  50000,
	})
	s.True(apperrors.IsValidation(err))
	s.Contains(err.Error(), "precede")
}

func (s *ClaimServiceTestSuite) TestDecisionsHaltWhenPolicyLapses() {
	claim := s.register(120000)
	_, err := s.service.AssignSurvey(claim.ID, s.surveyor.ID, models.RoleClaimsOfficer)
	s.Require().NoError(err)
	_, err = s.service.SubmitSurvey(claim.ID, s.surveyor.ID, models.RoleSurveyor, &SubmitSurveyRequest{
		SurveyDate:        time.Now(),
		DamageDescription: "rear-end damage",
		AssessedAmount:    100000,
	})
	s.Require().NoError(err)

	// Policy lapses while the claim is mid-flight
	s.Require().NoError(s.db.Model(&models.Policy{}).
		Where("id = ?", s.policy.ID).
		Update("status", models.PolicyStatusExpired).Error)

	_, err = s.service.Approve(claim.ID, s.officer.ID, models.RoleClaimsOfficer, &ApproveClaimRequest{
		ApprovedAmount:   100000,
		SettlementAmount: 100000,
	})
	s.True(apperrors.IsValidation(err))
	s.Contains(err.Error(), "active")

	_, err = s.service.AssignVerification(claim.ID, s.verifier.ID, models.RoleClaimsOfficer)
	s.True(apperrors.IsValidation(err))

	reloaded, err := s.service.GetClaim(claim.ID)
	s.Require().NoError(err)
	s.Equal(models.ClaimStatusSurveyCompleted, reloaded.Status)
}

func (s *ClaimServiceTestSuite) TestSettleBlockedWhenPolicyCancelled() {
	claim := s.register(100000)
	_, err := s.service.AssignSurvey(claim.ID, s.surveyor.ID, models.RoleClaimsOfficer)
	s.Require().NoError(err)
	_, err = s.service.SubmitSurvey(claim.ID, s.surveyor.ID, models.RoleSurveyor, &SubmitSurveyRequest{
		SurveyDate:        time.Now(),
		DamageDescription: "side impact",
		AssessedAmount:    90000,
	})
	s.Require().NoError(err)
	_, err = s.service.Approve(claim.ID, s.officer.ID, models.RoleClaimsOfficer, &ApproveClaimRequest{
		ApprovedAmount:   90000,
		SettlementAmount: 90000,
	})
	s.Require().NoError(err)

	s.Require().NoError(s.db.Model(&models.Policy{}).
		Where("id = ?", s.policy.ID).
		Update("status", models.PolicyStatusCancelled).Error)

	_, err = s.service.Settle(claim.ID, s.finance.ID, models.RoleFinance, "NEFT to insured")
	s.True(apperrors.IsValidation(err))

	var count int64
	s.Require().NoError(s.db.Model(&models.SettlementEntry{}).
		Where("claim_id = ?", claim.ID).Count(&count).Error)
	s.Zero(count)
}

func (s *ClaimServiceTestSuite) TestSurveySubmitHaltsWhenPolicyLapses() {
	claim := s.register(100000)
	_, err := s.service.AssignSurvey(claim.ID, s.surveyor.ID, models.RoleClaimsOfficer)
	s.Require().NoError(err)

	s.Require().NoError(s.db.Model(&models.Policy{}).
		Where("id = ?", s.policy.ID).
		Update("status", models.PolicyStatusExpired).Error)

	_, err = s.service.SubmitSurvey(claim.ID, s.surveyor.ID, models.RoleSurveyor, &SubmitSurveyRequest{
		SurveyDate:        time.Now(),
		DamageDescription: "dented door",
		AssessedAmount:    60000,
	})
	s.True(apperrors.IsValidation(err))
}

func (s *ClaimServiceTestSuite) TestRejectRequiresReason() {
	claim := s.register(100000)

	_, err := s.service.Reject(claim.ID, s.officer.ID, models.RoleClaimsOfficer, "")
	s.True(apperrors.IsValidation(err))
}

func (s *ClaimServiceTestSuite) TestAddEvidenceAppendsUntilTerminal() {
	claim := s.register(100000)

	claim, err := s.service.AddEvidence(claim.ID, "https://files.vims.test/claims/photo-1.jpg")
	s.Require().NoError(err)
	s.Len(claim.EvidenceURLs, 1)

	s.Require().NoError(s.db.Model(claim).Update("status", models.ClaimStatusSettled).Error)
	_, err = s.service.AddEvidence(claim.ID, "https://files.vims.test/claims/photo-2.jpg")
	s.True(apperrors.IsValidation(err))
}

func (s *ClaimServiceTestSuite) TestBulkAssignReportsPerClaimOutcome() {
	good := s.register(50000)
	settled := s.register(50000)
	s.Require().NoError(s.db.Model(settled).Update("status", models.ClaimStatusSettled).Error)

	results := s.service.BulkAssignSurveys(nil, s.surveyor.ID, models.RoleClaimsOfficer)
	s.Empty(results)

	results = s.service.BulkAssignSurveys([]uuid.UUID{good.ID, settled.ID}, s.surveyor.ID, models.RoleClaimsOfficer)
	s.Require().Len(results, 2)
	s.True(results[0].Success)
	s.False(results[1].Success)
	s.NotEmpty(results[1].Error)
}

func (s *ClaimServiceTestSuite) TestStatsAggregateByStatus() {
	s.register(100000)
	claim := s.register(150000)
	_, err := s.service.AssignSurvey(claim.ID, s.surveyor.ID, models.RoleClaimsOfficer)
	s.Require().NoError(err)

	stats, err := s.service.GetStats()
	s.Require().NoError(err)
	s.EqualValues(2, stats.TotalClaims)
	s.EqualValues(1, stats.ByStatus[string(models.ClaimStatusReported)])
	s.EqualValues(1, stats.ByStatus[string(models.ClaimStatusSurveyAssigned)])
	s.InDelta(250000.0, stats.TotalClaimed, 0.01)
}

func TestClaimServiceSuite(t *testing.T) {
	suite.Run(t, new(ClaimServiceTestSuite))
}
