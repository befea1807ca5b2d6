// internal/services/service_test.go
package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/insurance-solutions/vims-backend/internal/config"
	"github.com/insurance-solutions/vims-backend/internal/models"
)

// testSeq keeps seeded registration numbers and plan codes unique when a
// test issues more than one policy against the same database.
var testSeq atomic.Int64

// setupTestDB opens a fresh in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Vehicle{},
		&models.InsurancePlan{},
		&models.PlanCoverage{},
		&models.PlanAddon{},
		&models.DepreciationSlab{},
		&models.Proposal{},
		&models.Policy{},
		&models.CoverageSnapshot{},
		&models.PaymentReceipt{},
		&models.PolicyEndorsement{},
		&models.Claim{},
		&models.ClaimSurvey{},
		&models.ClaimVerification{},
		&models.SettlementEntry{},
		&models.AuditLog{},
		&models.SeriesCounter{},
	)
	require.NoError(t, err)

	return db
}

func testUnderwritingConfig() config.UnderwritingConfig {
	return config.UnderwritingConfig{
		GSTRate:              18.0,
		ClaimWaitingDays:     15,
		MaxClaimsPerPolicy:   3,
		MaxClaimPctOfIDV:     100.0,
		IDVVariancePct:       10.0,
		MinDurationMonths:    12,
		RenewalLeadDays:      30,
		CoverageCheck:        config.CoverageCheckEnforce,
		ProposalSeriesPrefix: "PRP",
		PolicySeriesPrefix:   "POL",
		ClaimSeriesPrefix:    "CLM",
	}
}

// testNotifications builds a notification service with all mail switched
// off, so lifecycle tests never touch SMTP.
func testNotifications() *NotificationService {
	return NewNotificationService(&config.Config{})
}

func createTestUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@vims.test",
		FullName: username,
		Role:     role,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("Str0ng!Pass"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestCustomer(t *testing.T, db *gorm.DB) *models.Customer {
	t.Helper()

	customer := &models.Customer{
		CustomerName: "Asha Verma",
		Email:        "asha@example.com",
		Phone:        "9876543210",
		KYCStatus:    models.KYCStatusVerified,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func createTestVehicle(t *testing.T, db *gorm.DB, customer *models.Customer) *models.Vehicle {
	t.Helper()

	expiry := time.Now().AddDate(5, 0, 0)
	vehicle := &models.Vehicle{
		CustomerID:         customer.ID,
		RegistrationNumber: fmt.Sprintf("MH12AB%04d", testSeq.Add(1)),
		ChassisNumber:      "MALA851ALJM123456",
		EngineNumber:       "G4LAJM654321",
		Make:               "Maruti",
		Model:              "Swift",
		ManufacturingYear:  2022,
		FuelType:           "petrol",
		Category:           "private_car",
		BodyType:           "hatchback",
		EngineCC:           1197,
		SeatingCapacity:    5,
		RTOLocation:        "Pune",
		VehicleValue:       900000,
		CurrentIDV:         800000,
		RCVerified:         true,
		RCStatus:           models.RCStatusActive,
		RCExpiryDate:       &expiry,
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

func createTestPlan(t *testing.T, db *gorm.DB) *models.InsurancePlan {
	t.Helper()

	plan := &models.InsurancePlan{
		PlanCode:       fmt.Sprintf("COMP-CAR-%d", testSeq.Add(1)),
		PlanName:       "Comprehensive Private Car",
		IsActive:       true,
		ODRateType:     models.RateTypePercentage,
		ODRateValue:    2.0,
		TPPremiumValue: 7500,
		GSTRate:        18.0,
		Deductible:     1000,
		CoverageTypes: []models.PlanCoverage{
			{CoverageType: "own_damage", LimitType: models.LimitTypePercentageOfIDV, LimitValue: 100},
			{CoverageType: "third_party", LimitType: models.LimitTypeFixedAmount, LimitValue: 750000},
		},
		Addons: []models.PlanAddon{
			{AddonName: "zero_depreciation", PricingType: models.RateTypePercentage, PricingValue: 0.5},
			{AddonName: "roadside_assistance", PricingType: models.RateTypeFlat, PricingValue: 1200},
		},
		DepreciationSlabs: []models.DepreciationSlab{
			{AgeFromMonths: 0, AgeToMonths: 6, DepreciationPc: 5},
			{AgeFromMonths: 6, AgeToMonths: 12, DepreciationPc: 10},
		},
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

// issueActivePolicy walks a proposal through the full lifecycle and pays
// the premium so dependent tests start from an Active policy.
func issueActivePolicy(t *testing.T, db *gorm.DB, cfg config.UnderwritingConfig, start time.Time) *models.Policy {
	t.Helper()

	customer := createTestCustomer(t, db)
	vehicle := createTestVehicle(t, db, customer)
	plan := createTestPlan(t, db)

	proposals := NewProposalService(db, cfg)
	proposal, err := proposals.CreateProposal(&CreateProposalRequest{
		CustomerID:  customer.ID,
		VehicleID:   vehicle.ID,
		PlanID:      plan.ID,
		VehicleIDV:  800000,
		PolicyStart: start,
		PolicyEnd:   start.AddDate(1, 0, 0).AddDate(0, 0, -1),
	})
	require.NoError(t, err)

	_, err = proposals.Submit(proposal.ID, models.RoleAgent)
	require.NoError(t, err)
	_, err = proposals.StartReview(proposal.ID, models.RoleUnderwriter)
	require.NoError(t, err)
	decider := createTestUser(t, db, "uw-"+proposal.ProposalNumber, models.RoleUnderwriter)
	_, err = proposals.Approve(proposal.ID, decider.ID, models.RoleUnderwriter)
	require.NoError(t, err)

	policies := NewPolicyService(db, cfg, testNotifications())
	policy, err := policies.IssueFromProposal(proposal.ID, "Ravi Verma")
	require.NoError(t, err)

	policy, _, err = policies.ApplyPayment(policy.ID, "rcpt_"+policy.PolicyNumber, policy.TotalPremiumPayable, "manual")
	require.NoError(t, err)
	require.Equal(t, models.PolicyStatusActive, policy.Status)

	return policy
}
