// internal/services/policy_service.go
package services

import (
	"encoding/json"
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
)

// PolicyService issues policies from approved proposals and owns everything
// that happens to them afterwards: payments, activation, endorsements and
// expiry.
type PolicyService struct {
	db            *gorm.DB
	cfg           config.UnderwritingConfig
	notifications *NotificationService
}

type CreateEndorsementRequest struct {
	NewNominee string `json:"new_nominee" validate:"required,min=2,max=140"`
	Remarks    string `json:"remarks,omitempty"`
}

func NewPolicyService(db *gorm.DB, cfg config.UnderwritingConfig, notifications *NotificationService) *PolicyService {
	return &PolicyService{db: db, cfg: cfg, notifications: notifications}
}

// IssueFromProposal converts an approved proposal into a policy exactly
// once. The premium breakdown and the full plan definition are frozen onto
// the policy; later plan edits never reach it.
func (s *PolicyService) IssueFromProposal(proposalID uuid.UUID, nominee string) (*models.Policy, error) {
	var proposal models.Proposal
	err := s.db.Preload("Plan.CoverageTypes").Preload("Plan.Addons").Preload("Plan.DepreciationSlabs").
		First(&proposal, proposalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("proposal", proposalID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if proposal.Status != models.ProposalStatusApproved {
		return nil, apperrors.Validation("status", "only approved proposals can be converted to a policy")
	}

	var existing models.Policy
	if err := s.db.Where("proposal_id = ?", proposalID).First(&existing).Error; err == nil {
		return nil, apperrors.Conflict("proposal %s was already converted to policy %s", proposal.ProposalNumber, existing.PolicyNumber)
	}

	snapshot, err := planSnapshot(&proposal.Plan)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize plan snapshot: %w", err)
	}

	policy := &models.Policy{
		ProposalID:          proposal.ID,
		CustomerID:          proposal.CustomerID,
		VehicleID:           proposal.VehicleID,
		PlanID:              proposal.PlanID,
		VehicleIDV:          proposal.VehicleIDV,
		PolicyStartDate:     proposal.PolicyStart,
		PolicyEndDate:       proposal.PolicyEnd,
		Nominee:             nominee,
		ODPremium:           proposal.ODPremium,
		TPPremium:           proposal.TPPremium,
		AddonPremium:        proposal.AddonPremium,
		TotalGST:            proposal.TotalGST,
		TotalPremiumPayable: proposal.GrandTotalPremium,
		OutstandingAmount:   proposal.GrandTotalPremium,
		PlanSnapshot:        snapshot,
		Status:              models.PolicyStatusPendingPayment,
	}
	for _, c := range proposal.Plan.CoverageTypes {
		policy.CoverageSnapshot = append(policy.CoverageSnapshot, models.CoverageSnapshot{
			CoverageType: c.CoverageType,
			LimitType:    c.LimitType,
			LimitValue:   c.LimitValue,
			Deductible:   c.Deductible,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		number, err := utils.NextInSeries(tx, s.cfg.PolicySeriesPrefix, time.Now())
		if err != nil {
			return err
		}
		policy.PolicyNumber = number
		if err := tx.Create(policy).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		// The unique proposal_id index closes the race two concurrent
		// conversions would otherwise win together.
		return nil, fmt.Errorf("failed to issue policy: %w", err)
	}

	return policy, nil
}

func (s *PolicyService) GetPolicy(id uuid.UUID) (*models.Policy, error) {
	var policy models.Policy
	err := s.db.Preload("Customer").Preload("Vehicle").Preload("CoverageSnapshot").Preload("Payments").
		First(&policy, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("policy", id.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &policy, nil
}

// GetPolicyByNumber backs the public verification lookup.
func (s *PolicyService) GetPolicyByNumber(number string) (*models.Policy, error) {
	var policy models.Policy
	err := s.db.Preload("Customer").Preload("Vehicle").Preload("CoverageSnapshot").
		Where("policy_number = ?", number).First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("policy", number)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &policy, nil
}

func (s *PolicyService) ListPolicies(params utils.PaginationParams, status models.PolicyStatus, customerID *uuid.UUID) ([]models.Policy, int64, error) {
	query := s.db.Model(&models.Policy{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	if params.Search != "" {
		query = query.Where("policy_number LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count policies: %w", err)
	}

	allowedSortFields := []string{"created_at", "policy_number", "policy_end_date", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var policies []models.Policy
	if err := query.Preload("Customer").Preload("Vehicle").Find(&policies).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch policies: %w", err)
	}

	return policies, total, nil
}

// ApplyPayment records one payment event against a policy. The reference is
// the idempotency key: a re-delivered event returns the stored receipt and
// changes nothing. Activation fires when the outstanding amount reaches
// zero; the customer notification runs after commit and cannot fail the
// payment.
func (s *PolicyService) ApplyPayment(policyID uuid.UUID, reference string, amount float64, method string) (*models.Policy, *models.PaymentReceipt, error) {
	if reference == "" {
		return nil, nil, apperrors.Validation("reference", "a payment reference is required")
	}
	if amount <= 0 {
		return nil, nil, apperrors.Validation("amount", "payment amount must be positive")
	}

	var policy models.Policy
	var receipt models.PaymentReceipt
	activated := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := utils.LockForUpdate(tx).
			First(&policy, policyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("policy", policyID.String())
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Where("reference = ?", reference).First(&receipt).Error; err == nil {
			// Duplicate delivery of an already-applied event
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("database error: %w", err)
		}

		switch policy.Status {
		case models.PolicyStatusCancelled, models.PolicyStatusExpired:
			return apperrors.Validation("status", "policy %s does not accept payments in state %q", policy.PolicyNumber, policy.Status)
		}

		receipt = models.PaymentReceipt{
			PolicyID:   policy.ID,
			Reference:  reference,
			Amount:     amount,
			Method:     method,
			ReceivedAt: time.Now(),
		}
		if err := tx.Create(&receipt).Error; err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		policy.PremiumPaid += amount
		policy.OutstandingAmount = policy.TotalPremiumPayable - policy.PremiumPaid
		if policy.OutstandingAmount < 0 {
			policy.OutstandingAmount = 0
		}

		updates := map[string]interface{}{
			"premium_paid":       policy.PremiumPaid,
			"outstanding_amount": policy.OutstandingAmount,
		}
		if policy.OutstandingAmount <= 0 && policy.Status == models.PolicyStatusPendingPayment {
			now := time.Now()
			policy.Status = models.PolicyStatusActive
			policy.ActivatedAt = &now
			updates["status"] = policy.Status
			updates["activated_at"] = now
			activated = true
		}

		return tx.Model(&models.Policy{}).Where("id = ?", policy.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, nil, err
	}

	if activated {
		s.notifyActivated(&policy)
	}

	return &policy, &receipt, nil
}

func (s *PolicyService) notifyActivated(policy *models.Policy) {
	var customer models.Customer
	if err := s.db.First(&customer, policy.CustomerID).Error; err != nil {
		logrus.WithError(err).WithField("policy", policy.PolicyNumber).Warn("Failed to load customer for activation notification")
		return
	}
	s.notifications.Notify("policy_activated", func() error {
		return s.notifications.SendPolicyActivatedEmail(policy, &customer)
	})
}

// CreateEndorsement amends an Active policy with a new nominee. Premium is
// never recalculated by an endorsement.
func (s *PolicyService) CreateEndorsement(policyID uuid.UUID, req *CreateEndorsementRequest, actorID uuid.UUID) (*models.PolicyEndorsement, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("", "validation failed: %v", err)
	}

	policy, err := s.GetPolicy(policyID)
	if err != nil {
		return nil, err
	}
	if policy.Status != models.PolicyStatusActive {
		return nil, apperrors.Validation("status", "only active policies can be endorsed")
	}

	endorsement := &models.PolicyEndorsement{
		PolicyID:   policy.ID,
		NewNominee: req.NewNominee,
		Remarks:    req.Remarks,
		CreatedBy:  actorID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(endorsement).Error; err != nil {
			return err
		}
		return tx.Model(&models.Policy{}).Where("id = ?", policy.ID).
			Update("nominee", req.NewNominee).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create endorsement: %w", err)
	}

	return endorsement, nil
}

func (s *PolicyService) ListEndorsements(policyID uuid.UUID) ([]models.PolicyEndorsement, error) {
	var endorsements []models.PolicyEndorsement
	err := s.db.Where("policy_id = ?", policyID).
		Order("created_at DESC").Find(&endorsements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch endorsements: %w", err)
	}
	return endorsements, nil
}

// MarkExpired flips Active policies whose end date has passed to Expired.
// The daily job runs it alongside the renewal sweep.
func (s *PolicyService) MarkExpired(now time.Time) (int64, error) {
	result := s.db.Model(&models.Policy{}).
		Where("status = ? AND policy_end_date < ?", models.PolicyStatusActive, now).
		Update("status", models.PolicyStatusExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire policies: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// planSnapshot serializes the full plan definition, children included, into
// the JSONB column frozen on the policy.
func planSnapshot(plan *models.InsurancePlan) (models.JSONB, error) {
	raw, err := json.Marshal(plan)
	if err != nil {
		return nil, err
	}
	var snapshot models.JSONB
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}
