// internal/services/proposal_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/insurance-solutions/vims-backend/internal/apperrors"
	"github.com/insurance-solutions/vims-backend/internal/config"
	"github.com/insurance-solutions/vims-backend/internal/models"
	"github.com/insurance-solutions/vims-backend/internal/premium"
	"github.com/insurance-solutions/vims-backend/internal/utils"
	"github.com/insurance-solutions/vims-backend/internal/workflow"
)

// ProposalService owns the proposal lifecycle from draft through the
// underwriting decision. Conversion of an approved proposal into a policy
// belongs to PolicyService.
type ProposalService struct {
	db  *gorm.DB
	cfg config.UnderwritingConfig
}

type CreateProposalRequest struct {
	CustomerID     uuid.UUID `json:"customer_id" validate:"required"`
	VehicleID      uuid.UUID `json:"vehicle_id" validate:"required"`
	PlanID         uuid.UUID `json:"plan_id" validate:"required"`
	VehicleIDV     float64   `json:"vehicle_idv" validate:"required,gt=0"`
	PolicyStart    time.Time `json:"policy_start" validate:"required"`
	PolicyEnd      time.Time `json:"policy_end" validate:"required"`
	NCBPercent     float64   `json:"ncb_percent" validate:"gte=0,lte=100"`
	SelectedAddons []string  `json:"selected_addons,omitempty"`
}

type UpdateProposalRequest struct {
	VehicleIDV     *float64   `json:"vehicle_idv,omitempty"`
	PolicyStart    *time.Time `json:"policy_start,omitempty"`
	PolicyEnd      *time.Time `json:"policy_end,omitempty"`
	NCBPercent     *float64   `json:"ncb_percent,omitempty"`
	SelectedAddons []string   `json:"selected_addons,omitempty"`
}

func NewProposalService(db *gorm.DB, cfg config.UnderwritingConfig) *ProposalService {
	return &ProposalService{db: db, cfg: cfg}
}

func (s *ProposalService) CreateProposal(req *CreateProposalRequest) (*models.Proposal, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("", "validation failed: %v", err)
	}

	var vehicle models.Vehicle
	if err := s.db.First(&vehicle, req.VehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("vehicle", req.VehicleID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if vehicle.CustomerID != req.CustomerID {
		return nil, apperrors.Validation("vehicle_id", "vehicle does not belong to the proposal customer")
	}

	plan, err := s.loadPlan(req.PlanID)
	if err != nil {
		return nil, err
	}
	if err := s.checkPlanEligibility(plan, &vehicle); err != nil {
		return nil, err
	}

	proposal := &models.Proposal{
		CustomerID:     req.CustomerID,
		VehicleID:      req.VehicleID,
		PlanID:         req.PlanID,
		VehicleIDV:     req.VehicleIDV,
		PolicyStart:    req.PolicyStart,
		PolicyEnd:      req.PolicyEnd,
		NCBPercent:     req.NCBPercent,
		SelectedAddons: req.SelectedAddons,
		Status:         models.ProposalStatusDraft,
	}
	s.priceProposal(proposal, plan)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		number, err := utils.NextInSeries(tx, s.cfg.ProposalSeriesPrefix, time.Now())
		if err != nil {
			return err
		}
		proposal.ProposalNumber = number
		return tx.Create(proposal).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}

	return proposal, nil
}

func (s *ProposalService) GetProposal(id uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	err := s.db.Preload("Customer").Preload("Vehicle").Preload("Plan").
		First(&proposal, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("proposal", id.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &proposal, nil
}

func (s *ProposalService) ListProposals(params utils.PaginationParams, status models.ProposalStatus) ([]models.Proposal, int64, error) {
	query := s.db.Model(&models.Proposal{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if params.Search != "" {
		query = query.Where("proposal_number LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count proposals: %w", err)
	}

	allowedSortFields := []string{"created_at", "proposal_number", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var proposals []models.Proposal
	if err := query.Preload("Customer").Preload("Vehicle").Find(&proposals).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch proposals: %w", err)
	}

	return proposals, total, nil
}

// UpdateProposal edits a draft and re-prices it. Anything past draft is
// read-only through this path.
func (s *ProposalService) UpdateProposal(id uuid.UUID, req *UpdateProposalRequest) (*models.Proposal, error) {
	proposal, err := s.GetProposal(id)
	if err != nil {
		return nil, err
	}
	if proposal.Status != models.ProposalStatusDraft {
		return nil, apperrors.Validation("status", "only draft proposals can be edited")
	}

	if req.VehicleIDV != nil {
		if *req.VehicleIDV <= 0 {
			return nil, apperrors.Validation("vehicle_idv", "IDV must be a positive value")
		}
		proposal.VehicleIDV = *req.VehicleIDV
	}
	if req.PolicyStart != nil {
		proposal.PolicyStart = *req.PolicyStart
	}
	if req.PolicyEnd != nil {
		proposal.PolicyEnd = *req.PolicyEnd
	}
	if req.NCBPercent != nil {
		if *req.NCBPercent < 0 || *req.NCBPercent > 100 {
			return nil, apperrors.Validation("ncb_percent", "NCB percent must be within [0, 100]")
		}
		proposal.NCBPercent = *req.NCBPercent
	}
	if req.SelectedAddons != nil {
		proposal.SelectedAddons = req.SelectedAddons
	}

	plan, err := s.loadPlan(proposal.PlanID)
	if err != nil {
		return nil, err
	}
	s.priceProposal(proposal, plan)

	if err := s.db.Save(proposal).Error; err != nil {
		return nil, fmt.Errorf("failed to update proposal: %w", err)
	}

	return proposal, nil
}

// Submit moves a draft to Submitted after the full guard set passes.
func (s *ProposalService) Submit(id uuid.UUID, role models.UserRole) (*models.Proposal, error) {
	proposal, err := s.GetProposal(id)
	if err != nil {
		return nil, err
	}

	next, err := workflow.Proposal.Apply(string(proposal.Status), workflow.ActionSubmit, role)
	if err != nil {
		return nil, err
	}

	if err := s.validateForSubmit(proposal); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       next,
		"submitted_at": now,
	}
	if err := s.db.Model(proposal).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to submit proposal: %w", err)
	}
	proposal.Status = models.ProposalStatus(next)
	proposal.SubmittedAt = &now

	return proposal, nil
}

// StartReview pulls a submitted proposal into underwriting.
func (s *ProposalService) StartReview(id uuid.UUID, role models.UserRole) (*models.Proposal, error) {
	return s.transition(id, workflow.ActionStartReview, role, nil, "")
}

// Approve records the underwriting decision. The submit guards re-run so a
// proposal whose vehicle data went stale in the queue cannot slip through.
func (s *ProposalService) Approve(id uuid.UUID, deciderID uuid.UUID, role models.UserRole) (*models.Proposal, error) {
	proposal, err := s.GetProposal(id)
	if err != nil {
		return nil, err
	}
	if err := s.validateForSubmit(proposal); err != nil {
		return nil, err
	}
	return s.transition(id, workflow.ActionApprove, role, &deciderID, "")
}

func (s *ProposalService) Reject(id uuid.UUID, deciderID uuid.UUID, role models.UserRole, reason string) (*models.Proposal, error) {
	if reason == "" {
		return nil, apperrors.Validation("rejection_reason", "a rejection reason is required")
	}
	return s.transition(id, workflow.ActionReject, role, &deciderID, reason)
}

func (s *ProposalService) transition(id uuid.UUID, action string, role models.UserRole, deciderID *uuid.UUID, reason string) (*models.Proposal, error) {
	proposal, err := s.GetProposal(id)
	if err != nil {
		return nil, err
	}

	next, err := workflow.Proposal.Apply(string(proposal.Status), action, role)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"status": next}
	if deciderID != nil {
		now := time.Now()
		updates["decided_by"] = *deciderID
		updates["decided_at"] = now
		proposal.DecidedBy = deciderID
		proposal.DecidedAt = &now
	}
	if reason != "" {
		updates["rejection_reason"] = reason
		proposal.RejectionReason = reason
	}

	if err := s.db.Model(proposal).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update proposal status: %w", err)
	}
	proposal.Status = models.ProposalStatus(next)

	return proposal, nil
}

// validateForSubmit is the guard set from the underwriting rulebook. It runs
// on submit and again on approve.
func (s *ProposalService) validateForSubmit(proposal *models.Proposal) error {
	vehicle := &proposal.Vehicle
	if vehicle.ID == uuid.Nil {
		if err := s.db.First(vehicle, proposal.VehicleID).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
	}

	if err := checkMandatoryVehicleFields(vehicle); err != nil {
		return err
	}
	if !vehicle.RCValid(time.Now()) {
		return apperrors.Validation("vehicle_id", "vehicle RC must be verified, ACTIVE and unexpired")
	}
	if vehicle.CustomerID != proposal.CustomerID {
		return apperrors.Validation("customer_id", "vehicle does not belong to the proposal customer")
	}

	minEnd := proposal.PolicyStart.AddDate(0, s.cfg.MinDurationMonths-1, 0)
	if proposal.PolicyEnd.Before(minEnd) {
		return apperrors.Validation("policy_end", "policy duration must be at least %d months", s.cfg.MinDurationMonths)
	}

	if vehicle.CurrentIDV > 0 {
		variance := math.Abs(proposal.VehicleIDV-vehicle.CurrentIDV) / vehicle.CurrentIDV * 100.0
		if variance > s.cfg.IDVVariancePct {
			return apperrors.Validation("vehicle_idv", "proposed IDV deviates %.1f%% from the vehicle's declared IDV (limit %.0f%%)", variance, s.cfg.IDVVariancePct)
		}
	}

	if proposal.GrandTotalPremium <= 0 {
		return apperrors.Validation("grand_total_premium", "premium must be calculated before submission")
	}

	return nil
}

func (s *ProposalService) loadPlan(id uuid.UUID) (*models.InsurancePlan, error) {
	var plan models.InsurancePlan
	err := s.db.Preload("Addons").Preload("CoverageTypes").Preload("DepreciationSlabs").
		First(&plan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("plan", id.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !plan.IsActive {
		return nil, apperrors.Validation("plan_id", "plan %s is not active", plan.PlanCode)
	}
	return &plan, nil
}

func (s *ProposalService) checkPlanEligibility(plan *models.InsurancePlan, vehicle *models.Vehicle) error {
	if plan.EngineCCFrom > 0 && vehicle.EngineCC < plan.EngineCCFrom {
		return apperrors.Validation("plan_id", "vehicle engine (%d cc) is below the plan's range", vehicle.EngineCC)
	}
	if plan.EngineCCTo > 0 && vehicle.EngineCC > plan.EngineCCTo {
		return apperrors.Validation("plan_id", "vehicle engine (%d cc) is above the plan's range", vehicle.EngineCC)
	}
	return nil
}

// priceProposal runs the calculator and writes the breakdown columns. The
// calculator never returns nil here because IDV was validated positive.
func (s *ProposalService) priceProposal(proposal *models.Proposal, plan *models.InsurancePlan) {
	breakdown := premium.Calculate(plan, premium.Input{
		IDV:        proposal.VehicleIDV,
		Addons:     proposal.SelectedAddons,
		NCBPercent: proposal.NCBPercent,
	})
	if breakdown == nil {
		return
	}

	proposal.ODPremiumBase = breakdown.ODPremiumBase
	proposal.NCBDiscount = breakdown.NCBDiscount
	proposal.ODPremium = breakdown.ODPremium
	proposal.TPPremium = breakdown.TPPremium
	proposal.AddonPremium = breakdown.AddonPremium
	proposal.TotalNetPremium = breakdown.TotalNetPremium
	proposal.TotalGST = breakdown.TotalGST
	proposal.GrandTotalPremium = breakdown.GrandTotalPremium
}

func checkMandatoryVehicleFields(v *models.Vehicle) error {
	missing := func(field string) error {
		return apperrors.Validation(field, "vehicle %s is mandatory for underwriting", field)
	}

	switch {
	case v.RegistrationNumber == "":
		return missing("registration_number")
	case v.ChassisNumber == "":
		return missing("chassis_number")
	case v.EngineNumber == "":
		return missing("engine_number")
	case v.Make == "":
		return missing("make")
	case v.Model == "":
		return missing("model")
	case v.ManufacturingYear == 0:
		return missing("manufacturing_year")
	case v.FuelType == "":
		return missing("fuel_type")
	case v.Category == "":
		return missing("category")
	case v.BodyType == "":
		return missing("body_type")
	case v.EngineCC == 0:
		return missing("engine_cc")
	case v.SeatingCapacity == 0:
		return missing("seating_capacity")
	case v.RTOLocation == "":
		return missing("rto_location")
	case v.VehicleValue <= 0:
		return missing("vehicle_value")
	case v.CurrentIDV <= 0:
		return missing("current_idv")
	}
	return nil
}
