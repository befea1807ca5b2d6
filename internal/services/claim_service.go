// internal/services/claim_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/insurance-solutions/vims-backend/internal/apperrors"
	"github.com/insurance-solutions/vims-backend/internal/config"
	"github.com/insurance-solutions/vims-backend/internal/models"
	"github.com/insurance-solutions/vims-backend/internal/utils"
	"github.com/insurance-solutions/vims-backend/internal/workflow"
)

// ClaimService runs the claim lifecycle from registration through survey,
// verification, the officer's decision and the settlement posting.
type ClaimService struct {
	db            *gorm.DB
	cfg           config.UnderwritingConfig
	notifications *NotificationService
}

type RegisterClaimRequest struct {
	PolicyID     uuid.UUID `json:"policy_id" validate:"required"`
	DateOfLoss   time.Time `json:"date_of_loss" validate:"required"`
	CoverageType string    `json:"coverage_type" validate:"required"`
	NatureOfLoss string    `json:"nature_of_loss" validate:"required"`
	Description  string    `json:"description,omitempty"`
	ClaimAmount  float64   `json:"claim_amount" validate:"required,gt=0"`
	EvidenceURLs []string  `json:"evidence_urls,omitempty"`
}

type SubmitSurveyRequest struct {
	SurveyDate        time.Time `json:"survey_date" validate:"required"`
	DamageDescription string    `json:"damage_description" validate:"required"`
	AssessedAmount    float64   `json:"assessed_amount" validate:"required,gt=0"`
	ReportURL         string    `json:"report_url,omitempty"`
}

type SubmitVerificationRequest struct {
	Remarks        string `json:"remarks" validate:"required"`
	FraudSuspected bool   `json:"fraud_suspected"`
}

type ApproveClaimRequest struct {
	ApprovedAmount    float64 `json:"approved_amount" validate:"required,gt=0"`
	DeductibleApplied float64 `json:"deductible_applied" validate:"gte=0"`
	SettlementAmount  float64 `json:"settlement_amount" validate:"required,gt=0"`
}

type ClaimListFilter struct {
	Status     models.ClaimStatus
	PolicyID   *uuid.UUID
	AssignedTo *uuid.UUID
	FraudOnly  bool
}

// ClaimStats aggregates counts and amounts by status for the reporting
// endpoints.
type ClaimStats struct {
	TotalClaims     int64            `json:"total_claims"`
	ByStatus        map[string]int64 `json:"by_status"`
	TotalClaimed    float64          `json:"total_claimed"`
	TotalSettled    float64          `json:"total_settled"`
	FraudSuspected  int64            `json:"fraud_suspected"`
	PendingDecision int64            `json:"pending_decision"`
}

func NewClaimService(db *gorm.DB, cfg config.UnderwritingConfig, notifications *NotificationService) *ClaimService {
	return &ClaimService{db: db, cfg: cfg, notifications: notifications}
}

// RegisterClaim opens a claim against an active policy after the full rule
// set passes. Customer, vehicle and policy number are copied down so
// listings never join back through the policy.
func (s *ClaimService) RegisterClaim(req *RegisterClaimRequest) (*models.Claim, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("", "validation failed: %v", err)
	}

	var policy models.Policy
	err := s.db.Preload("CoverageSnapshot").First(&policy, req.PolicyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("policy", req.PolicyID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	now := time.Now()
	claim := &models.Claim{
		PolicyID:         policy.ID,
		CustomerID:       policy.CustomerID,
		VehicleID:        policy.VehicleID,
		PolicyNumber:     policy.PolicyNumber,
		DateOfLoss:       req.DateOfLoss,
		RegistrationDate: now,
		CoverageType:     req.CoverageType,
		NatureOfLoss:     req.NatureOfLoss,
		Description:      req.Description,
		ClaimAmount:      req.ClaimAmount,
		EvidenceURLs:     req.EvidenceURLs,
		Status:           models.ClaimStatusReported,
	}

	if err := s.validateClaimRules(claim, &policy); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		number, err := utils.NextInSeries(tx, s.cfg.ClaimSeriesPrefix, now)
		if err != nil {
			return err
		}
		claim.ClaimNumber = number
		return tx.Create(claim).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register claim: %w", err)
	}

	return claim, nil
}

func (s *ClaimService) GetClaim(id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	err := s.db.Preload("Policy").Preload("Customer").Preload("Vehicle").
		Preload("Survey").Preload("Verification").
		First(&claim, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("claim", id.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &claim, nil
}

func (s *ClaimService) ListClaims(params utils.PaginationParams, filter ClaimListFilter) ([]models.Claim, int64, error) {
	query := s.db.Model(&models.Claim{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PolicyID != nil {
		query = query.Where("policy_id = ?", *filter.PolicyID)
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_surveyor = ? OR assigned_verifier = ?", *filter.AssignedTo, *filter.AssignedTo)
	}
	if filter.FraudOnly {
		query = query.Where("fraud_suspected = ?", true)
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("claim_number LIKE ? OR policy_number LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count claims: %w", err)
	}

	allowedSortFields := []string{"created_at", "claim_number", "status", "claim_amount"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var claims []models.Claim
	if err := query.Preload("Customer").Find(&claims).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch claims: %w", err)
	}

	return claims, total, nil
}

// AddEvidence appends a stored document URL to the claim's evidence list.
func (s *ClaimService) AddEvidence(id uuid.UUID, url string) (*models.Claim, error) {
	claim, err := s.GetClaim(id)
	if err != nil {
		return nil, err
	}
	if claim.Terminal() {
		return nil, apperrors.Validation("status", "claim %s is closed", claim.ClaimNumber)
	}

	claim.EvidenceURLs = append(claim.EvidenceURLs, url)
	if err := s.db.Model(claim).Update("evidence_urls", claim.EvidenceURLs).Error; err != nil {
		return nil, fmt.Errorf("failed to update evidence: %w", err)
	}
	return claim, nil
}

// AssignSurvey hands a reported claim to a surveyor.
func (s *ClaimService) AssignSurvey(id uuid.UUID, surveyorID uuid.UUID, role models.UserRole) (*models.Claim, error) {
	if err := s.checkAssigneeRole(surveyorID, models.RoleSurveyor); err != nil {
		return nil, err
	}

	claim, err := s.GetClaim(id)
	if err != nil {
		return nil, err
	}

	next, err := workflow.Claim.Apply(string(claim.Status), workflow.ActionAssignSurvey, role)
	if err != nil {
		return nil, err
	}
	if err := s.recheckClaimRules(claim); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status":            next,
		"assigned_surveyor": surveyorID,
	}
	if err := s.db.Model(claim).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to assign survey: %w", err)
	}
	claim.Status = models.ClaimStatus(next)
	claim.AssignedSurveyor = &surveyorID

	return claim, nil
}

// AssignVerification hands a surveyed claim to a verification agent.
func (s *ClaimService) AssignVerification(id uuid.UUID, agentID uuid.UUID, role models.UserRole) (*models.Claim, error) {
	if err := s.checkAssigneeRole(agentID, models.RoleVerificationAgent); err != nil {
		return nil, err
	}

	claim, err := s.GetClaim(id)
	if err != nil {
		return nil, err
	}

	next, err := workflow.Claim.Apply(string(claim.Status), workflow.ActionAssignVerification, role)
	if err != nil {
		return nil, err
	}
	if err := s.recheckClaimRules(claim); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status":            next,
		"assigned_verifier": agentID,
	}
	if err := s.db.Model(claim).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to assign verification: %w", err)
	}
	claim.Status = models.ClaimStatus(next)
	claim.AssignedVerifier = &agentID

	return claim, nil
}

// BulkAssignResult reports the outcome of one claim in a bulk assignment.
type BulkAssignResult struct {
	ClaimID uuid.UUID `json:"claim_id"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
}

// BulkAssignSurveys assigns one surveyor to many reported claims. A failure
// on one claim is recorded and does not stop the rest.
func (s *ClaimService) BulkAssignSurveys(claimIDs []uuid.UUID, surveyorID uuid.UUID, role models.UserRole) []BulkAssignResult {
	results := make([]BulkAssignResult, 0, len(claimIDs))
	for _, id := range claimIDs {
		_, err := s.AssignSurvey(id, surveyorID, role)
		r := BulkAssignResult{ClaimID: id, Success: err == nil}
		if err != nil {
			r.Error = err.Error()
		}
		results = append(results, r)
	}
	return results
}

// BulkAssignVerifications assigns one agent to many surveyed claims.
func (s *ClaimService) BulkAssignVerifications(claimIDs []uuid.UUID, agentID uuid.UUID, role models.UserRole) []BulkAssignResult {
	results := make([]BulkAssignResult, 0, len(claimIDs))
	for _, id := range claimIDs {
		_, err := s.AssignVerification(id, agentID, role)
		r := BulkAssignResult{ClaimID: id, Success: err == nil}
		if err != nil {
			r.Error = err.Error()
		}
		results = append(results, r)
	}
	return results
}

// SubmitSurvey records the surveyor's report and advances the claim. The
// report insert, the back-reference stamp and the status flip commit
// together.
func (s *ClaimService) SubmitSurvey(id uuid.UUID, surveyorID uuid.UUID, role models.UserRole, req *SubmitSurveyRequest) (*models.Claim, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("", "validation failed: %v", err)
	}

	claim, err := s.GetClaim(id)
	if err != nil {
		return nil, err
	}

	if role != models.RoleAdmin && (claim.AssignedSurveyor == nil || *claim.AssignedSurveyor != surveyorID) {
		return nil, apperrors.Validation("surveyor_id", "claim %s is not assigned to this surveyor", claim.ClaimNumber)
	}

	next, err := workflow.Claim.Apply(string(claim.Status), workflow.ActionCompleteSurvey, role)
	if err != nil {
		return nil, err
	}
	if err := s.recheckClaimRules(claim); err != nil {
		return nil, err
	}

	survey := &models.ClaimSurvey{
		ClaimID:           claim.ID,
		SurveyorID:        surveyorID,
		SurveyDate:        req.SurveyDate,
		DamageDescription: req.DamageDescription,
		AssessedAmount:    req.AssessedAmount,
		ReportURL:         req.ReportURL,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(survey).Error; err != nil {
			return err
		}
		return tx.Model(claim).Updates(map[string]interface{}{
			"status":    next,
			"survey_id": survey.ID,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit survey: %w", err)
	}
	claim.Status = models.ClaimStatus(next)
	claim.SurveyID = &survey.ID
	claim.Survey = survey

	return claim, nil
}

// SubmitVerification records the field agent's report, copies the fraud
// flag up to the claim and advances it.
func (s *ClaimService) SubmitVerification(id uuid.UUID, agentID uuid.UUID, role models.UserRole, req *SubmitVerificationRequest) (*models.Claim, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("", "validation failed: %v", err)
	}

	claim, err := s.GetClaim(id)
	if err != nil {
		return nil, err
	}

	if role != models.RoleAdmin && (claim.AssignedVerifier == nil || *claim.AssignedVerifier != agentID) {
		return nil, apperrors.Validation("agent_id", "claim %s is not assigned to this agent", claim.ClaimNumber)
	}

	next, err := workflow.Claim.Apply(string(claim.Status), workflow.ActionVerify, role)
	if err != nil {
		return nil, err
	}
	if err := s.recheckClaimRules(claim); err != nil {
		return nil, err
	}

	verification := &models.ClaimVerification{
		ClaimID:        claim.ID,
		AgentID:        agentID,
		Remarks:        req.Remarks,
		FraudSuspected: req.FraudSuspected,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(verification).Error; err != nil {
			return err
		}
		return tx.Model(claim).Updates(map[string]interface{}{
			"status":          next,
			"verification_id": verification.ID,
			"fraud_suspected": req.FraudSuspected,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit verification: %w", err)
	}
	claim.Status = models.ClaimStatus(next)
	claim.VerificationID = &verification.ID
	claim.FraudSuspected = req.FraudSuspected
	claim.Verification = verification

	return claim, nil
}

// Approve records the settlement figures and the officer's decision. All
// three figures are mandatory and the approved amount may not exceed what
// was claimed.
func (s *ClaimService) Approve(id uuid.UUID, deciderID uuid.UUID, role models.UserRole, req *ApproveClaimRequest) (*models.Claim, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("", "validation failed: %v", err)
	}

	claim, err := s.GetClaim(id)
	if err != nil {
		return nil, err
	}

	if req.ApprovedAmount > claim.ClaimAmount {
		return nil, apperrors.Validation("approved_amount", "approved amount %.2f exceeds the claimed amount %.2f", req.ApprovedAmount, claim.ClaimAmount)
	}

	next, err := workflow.Claim.Apply(string(claim.Status), workflow.ActionApprove, role)
	if err != nil {
		return nil, err
	}
	if err := s.recheckClaimRules(claim); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":             next,
		"approved_amount":    req.ApprovedAmount,
		"deductible_applied": req.DeductibleApplied,
		"settlement_amount":  req.SettlementAmount,
		"decided_by":         deciderID,
		"decided_at":         now,
	}
	if err := s.db.Model(claim).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to approve claim: %w", err)
	}
	claim.Status = models.ClaimStatus(next)
	claim.ApprovedAmount = &req.ApprovedAmount
	claim.DeductibleApplied = &req.DeductibleApplied
	claim.SettlementAmount = &req.SettlementAmount
	claim.DecidedBy = &deciderID
	claim.DecidedAt = &now

	return claim, nil
}

func (s *ClaimService) Reject(id uuid.UUID, deciderID uuid.UUID, role models.UserRole, reason string) (*models.Claim, error) {
	if reason == "" {
		return nil, apperrors.Validation("rejection_reason", "a rejection reason is required")
	}

	claim, err := s.GetClaim(id)
	if err != nil {
		return nil, err
	}

	next, err := workflow.Claim.Apply(string(claim.Status), workflow.ActionReject, role)
	if err != nil {
		return nil, err
	}
	if err := s.recheckClaimRules(claim); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":           next,
		"rejection_reason": reason,
		"decided_by":       deciderID,
		"decided_at":       now,
	}
	if err := s.db.Model(claim).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to reject claim: %w", err)
	}
	claim.Status = models.ClaimStatus(next)
	claim.RejectionReason = reason
	claim.DecidedBy = &deciderID
	claim.DecidedAt = &now

	return claim, nil
}

// Settle posts the settlement entry and flips the claim to Settled in one
// transaction. The unique claim_id index on settlement entries makes a
// second settlement impossible even under a race.
func (s *ClaimService) Settle(id uuid.UUID, financeID uuid.UUID, role models.UserRole, remarks string) (*models.Claim, error) {
	claim, err := s.GetClaim(id)
	if err != nil {
		return nil, err
	}

	next, err := workflow.Claim.Apply(string(claim.Status), workflow.ActionSettle, role)
	if err != nil {
		return nil, err
	}
	if err := s.recheckClaimRules(claim); err != nil {
		return nil, err
	}

	if claim.SettlementAmount == nil {
		return nil, apperrors.Validation("settlement_amount", "claim %s has no settlement amount recorded", claim.ClaimNumber)
	}

	var existing models.SettlementEntry
	if err := s.db.Where("claim_id = ?", claim.ID).First(&existing).Error; err == nil {
		return nil, apperrors.Conflict("claim %s already has settlement entry %s", claim.ClaimNumber, existing.ID)
	}

	now := time.Now()
	entry := &models.SettlementEntry{
		ClaimID:  claim.ID,
		Amount:   *claim.SettlementAmount,
		PostedBy: financeID,
		PostedAt: now,
		Remarks:  remarks,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Model(claim).Updates(map[string]interface{}{
			"status":              next,
			"settlement_entry_id": entry.ID,
			"settled_at":          now,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle claim: %w", err)
	}
	claim.Status = models.ClaimStatus(next)
	claim.SettlementEntryID = &entry.ID
	claim.SettledAt = &now

	s.notifySettled(claim)

	return claim, nil
}

func (s *ClaimService) notifySettled(claim *models.Claim) {
	var customer models.Customer
	if err := s.db.First(&customer, claim.CustomerID).Error; err != nil {
		logrus.WithError(err).WithField("claim", claim.ClaimNumber).Warn("Failed to load customer for settlement notification")
		return
	}
	s.notifications.Notify("claim_settled", func() error {
		return s.notifications.SendClaimSettledEmail(claim, &customer)
	})
}

// GetStats aggregates claim counts and amounts for the reporting surface.
func (s *ClaimService) GetStats() (*ClaimStats, error) {
	stats := &ClaimStats{ByStatus: make(map[string]int64)}

	if err := s.db.Model(&models.Claim{}).Count(&stats.TotalClaims).Error; err != nil {
		return nil, fmt.Errorf("failed to count claims: %w", err)
	}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := s.db.Model(&models.Claim{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to group claims by status: %w", err)
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
	}
	stats.PendingDecision = stats.TotalClaims -
		stats.ByStatus[string(models.ClaimStatusApproved)] -
		stats.ByStatus[string(models.ClaimStatusRejected)] -
		stats.ByStatus[string(models.ClaimStatusSettled)]

	if err := s.db.Model(&models.Claim{}).
		Select("COALESCE(SUM(claim_amount), 0)").
		Scan(&stats.TotalClaimed).Error; err != nil {
		return nil, fmt.Errorf("failed to sum claimed amounts: %w", err)
	}

	if err := s.db.Model(&models.SettlementEntry{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.TotalSettled).Error; err != nil {
		return nil, fmt.Errorf("failed to sum settlements: %w", err)
	}

	if err := s.db.Model(&models.Claim{}).
		Where("fraud_suspected = ?", true).
		Count(&stats.FraudSuspected).Error; err != nil {
		return nil, fmt.Errorf("failed to count fraud-flagged claims: %w", err)
	}

	return stats, nil
}

// validateClaimRules is the cumulative registration rule set.
// recheckClaimRules re-runs the registration gate set against the current
// policy state. The rules are cumulative: every transition re-evaluates
// them, so a claim whose policy has lapsed or whose limits have since been
// exhausted cannot advance.
func (s *ClaimService) recheckClaimRules(claim *models.Claim) error {
	var policy models.Policy
	if err := s.db.Preload("CoverageSnapshot").First(&policy, claim.PolicyID).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	return s.validateClaimRules(claim, &policy)
}

func (s *ClaimService) validateClaimRules(claim *models.Claim, policy *models.Policy) error {
	if policy.Status != models.PolicyStatusActive {
		return apperrors.Validation("policy_id", "claims require an active policy")
	}

	if claim.DateOfLoss.Before(policy.PolicyStartDate) || claim.DateOfLoss.After(policy.PolicyEndDate) {
		return apperrors.Validation("date_of_loss", "loss date is outside the policy period")
	}
	if claim.RegistrationDate.Before(claim.DateOfLoss) {
		return apperrors.Validation("date_of_loss", "registration date cannot precede the date of loss")
	}

	waitingDays := s.cfg.ClaimWaitingDays
	if override := snapshotWaitingDays(policy.PlanSnapshot); override > 0 {
		waitingDays = override
	}
	if claim.DateOfLoss.Before(policy.PolicyStartDate.AddDate(0, 0, waitingDays)) {
		return apperrors.Validation("date_of_loss", "loss occurred within the %d-day waiting period", waitingDays)
	}

	if !policy.Covers(claim.CoverageType) {
		if s.cfg.CoverageCheck == config.CoverageCheckEnforce {
			return apperrors.Validation("coverage_type", "coverage %q is not included in policy %s", claim.CoverageType, policy.PolicyNumber)
		}
		claim.CoverageWarning = true
		logrus.WithFields(logrus.Fields{
			"policy":   policy.PolicyNumber,
			"coverage": claim.CoverageType,
		}).Warn("Claim coverage type not found in policy snapshot")
	}

	if claim.ClaimAmount > policy.VehicleIDV {
		return apperrors.Validation("claim_amount", "claim amount %.2f exceeds the insured value %.2f", claim.ClaimAmount, policy.VehicleIDV)
	}

	var openClaims int64
	countQuery := s.db.Model(&models.Claim{}).
		Where("policy_id = ? AND status <> ?", policy.ID, models.ClaimStatusRejected)
	if claim.ID != uuid.Nil {
		countQuery = countQuery.Where("id <> ?", claim.ID)
	}
	if err := countQuery.Count(&openClaims).Error; err != nil {
		return fmt.Errorf("failed to count policy claims: %w", err)
	}
	if openClaims >= int64(s.cfg.MaxClaimsPerPolicy) {
		return apperrors.Validation("policy_id", "policy %s already has %d open or settled claims (limit %d)", policy.PolicyNumber, openClaims, s.cfg.MaxClaimsPerPolicy)
	}

	var claimedSoFar float64
	sumQuery := s.db.Model(&models.Claim{}).
		Where("policy_id = ? AND status <> ?", policy.ID, models.ClaimStatusRejected).
		Select("COALESCE(SUM(claim_amount), 0)")
	if claim.ID != uuid.Nil {
		sumQuery = sumQuery.Where("id <> ?", claim.ID)
	}
	if err := sumQuery.Scan(&claimedSoFar).Error; err != nil {
		return fmt.Errorf("failed to sum policy claims: %w", err)
	}
	maxTotal := policy.VehicleIDV * s.cfg.MaxClaimPctOfIDV / 100.0
	if claimedSoFar+claim.ClaimAmount > maxTotal {
		return apperrors.Validation("claim_amount", "total claimed %.2f would exceed %.0f%% of the insured value", claimedSoFar+claim.ClaimAmount, s.cfg.MaxClaimPctOfIDV)
	}

	return nil
}

// snapshotWaitingDays reads the plan's waiting-period override out of the
// frozen snapshot. JSON numbers land as float64.
func snapshotWaitingDays(snapshot models.JSONB) int {
	if snapshot == nil {
		return 0
	}
	if v, ok := snapshot["waiting_period_days"].(float64); ok {
		return int(v)
	}
	return 0
}

func (s *ClaimService) checkAssigneeRole(userID uuid.UUID, want models.UserRole) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("user", userID.String())
		}
		return fmt.Errorf("database error: %w", err)
	}
	if user.Role != want {
		return apperrors.Validation("assignee", "user %s does not hold the %s role", user.Username, want)
	}
	if user.Status != models.UserStatusActive {
		return apperrors.Validation("assignee", "user %s is suspended", user.Username)
	}
	return nil
}
