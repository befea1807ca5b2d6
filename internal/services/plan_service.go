// internal/services/plan_service.go
package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/insurance-solutions/vims-backend/internal/apperrors"
	"github.com/insurance-solutions/vims-backend/internal/models"
	"github.com/insurance-solutions/vims-backend/internal/premium"
	"github.com/insurance-solutions/vims-backend/internal/utils"
)

// PlanService manages the mutable plan templates and prices quotes against
// them. Issued policies never read plans through this service; they carry
// their own frozen snapshot.
type PlanService struct {
	db *gorm.DB
}

type PlanCoverageInput struct {
	CoverageType string           `json:"coverage_type" validate:"required"`
	LimitType    models.LimitType `json:"limit_type" validate:"required,oneof=percentage_of_idv fixed_amount"`
	LimitValue   float64          `json:"limit_value" validate:"gte=0"`
	Deductible   float64          `json:"deductible" validate:"gte=0"`
}

type PlanAddonInput struct {
	AddonName    string          `json:"addon_name" validate:"required"`
	PricingType  models.RateType `json:"pricing_type" validate:"required,oneof=percentage flat"`
	PricingValue float64         `json:"pricing_value" validate:"gte=0"`
}

type DepreciationSlabInput struct {
	AgeFromMonths  int     `json:"age_from_months" validate:"gte=0"`
	AgeToMonths    int     `json:"age_to_months" validate:"gt=0"`
	DepreciationPc float64 `json:"depreciation_pc" validate:"gte=0,lte=100"`
}

type CreatePlanRequest struct {
	PlanCode          string                  `json:"plan_code" validate:"required,min=2,max=30"`
	PlanName          string                  `json:"plan_name" validate:"required,min=2,max=140"`
	ODRateType        models.RateType         `json:"od_rate_type" validate:"required,oneof=percentage flat"`
	ODRateValue       float64                 `json:"od_rate_value" validate:"gt=0"`
	MinODPremium      float64                 `json:"min_od_premium" validate:"gte=0"`
	MaxODPremium      float64                 `json:"max_od_premium" validate:"gte=0"`
	TPPremiumValue    float64                 `json:"tp_premium_value" validate:"gte=0"`
	GSTRate           float64                 `json:"gst_rate" validate:"gte=0,lte=100"`
	Deductible        float64                 `json:"deductible" validate:"gte=0"`
	EngineCCFrom      int                     `json:"engine_cc_from" validate:"gte=0"`
	EngineCCTo        int                     `json:"engine_cc_to" validate:"gte=0"`
	WaitingPeriodDays int                     `json:"waiting_period_days" validate:"gte=0"`
	CoverageTypes     []PlanCoverageInput     `json:"coverage_types" validate:"min=1,dive"`
	Addons            []PlanAddonInput        `json:"addons" validate:"dive"`
	DepreciationSlabs []DepreciationSlabInput `json:"depreciation_slabs" validate:"dive"`
}

type UpdatePlanRequest struct {
	PlanName          *string  `json:"plan_name,omitempty"`
	IsActive          *bool    `json:"is_active,omitempty"`
	ODRateValue       *float64 `json:"od_rate_value,omitempty"`
	MinODPremium      *float64 `json:"min_od_premium,omitempty"`
	MaxODPremium      *float64 `json:"max_od_premium,omitempty"`
	TPPremiumValue    *float64 `json:"tp_premium_value,omitempty"`
	GSTRate           *float64 `json:"gst_rate,omitempty"`
	Deductible        *float64 `json:"deductible,omitempty"`
	WaitingPeriodDays *int     `json:"waiting_period_days,omitempty"`
}

func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{db: db}
}

func (s *PlanService) CreatePlan(req *CreatePlanRequest) (*models.InsurancePlan, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("", "validation failed: %v", err)
	}

	if req.EngineCCTo > 0 && req.EngineCCTo < req.EngineCCFrom {
		return nil, apperrors.Validation("engine_cc_to", "engine CC range is inverted")
	}
	if req.MaxODPremium > 0 && req.MaxODPremium < req.MinODPremium {
		return nil, apperrors.Validation("max_od_premium", "max OD premium is below the min")
	}
	if err := validateSlabs(req.DepreciationSlabs); err != nil {
		return nil, err
	}

	var existing models.InsurancePlan
	if err := s.db.Where("plan_code = ?", req.PlanCode).First(&existing).Error; err == nil {
		return nil, apperrors.Conflict("plan with code %s already exists", req.PlanCode)
	}

	plan := &models.InsurancePlan{
		PlanCode:          req.PlanCode,
		PlanName:          req.PlanName,
		IsActive:          true,
		ODRateType:        req.ODRateType,
		ODRateValue:       req.ODRateValue,
		MinODPremium:      req.MinODPremium,
		MaxODPremium:      req.MaxODPremium,
		TPPremiumValue:    req.TPPremiumValue,
		GSTRate:           req.GSTRate,
		Deductible:        req.Deductible,
		EngineCCFrom:      req.EngineCCFrom,
		EngineCCTo:        req.EngineCCTo,
		WaitingPeriodDays: req.WaitingPeriodDays,
	}
	for _, c := range req.CoverageTypes {
		plan.CoverageTypes = append(plan.CoverageTypes, models.PlanCoverage{
			CoverageType: c.CoverageType,
			LimitType:    c.LimitType,
			LimitValue:   c.LimitValue,
			Deductible:   c.Deductible,
		})
	}
	for _, a := range req.Addons {
		plan.Addons = append(plan.Addons, models.PlanAddon{
			AddonName:    a.AddonName,
			PricingType:  a.PricingType,
			PricingValue: a.PricingValue,
		})
	}
	for _, d := range req.DepreciationSlabs {
		plan.DepreciationSlabs = append(plan.DepreciationSlabs, models.DepreciationSlab{
			AgeFromMonths:  d.AgeFromMonths,
			AgeToMonths:    d.AgeToMonths,
			DepreciationPc: d.DepreciationPc,
		})
	}

	if err := s.db.Create(plan).Error; err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	return plan, nil
}

func (s *PlanService) GetPlan(id uuid.UUID) (*models.InsurancePlan, error) {
	var plan models.InsurancePlan
	err := s.db.Preload("CoverageTypes").Preload("Addons").Preload("DepreciationSlabs").
		First(&plan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("plan", id.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &plan, nil
}

func (s *PlanService) ListPlans(params utils.PaginationParams, activeOnly bool) ([]models.InsurancePlan, int64, error) {
	query := s.db.Model(&models.InsurancePlan{})

	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("plan_code LIKE ? OR plan_name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count plans: %w", err)
	}

	allowedSortFields := []string{"created_at", "plan_code", "plan_name"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var plans []models.InsurancePlan
	if err := query.Preload("CoverageTypes").Find(&plans).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch plans: %w", err)
	}

	return plans, total, nil
}

// UpdatePlan edits the living template. Policies issued before the edit are
// untouched; they priced and froze against the plan as it then stood.
func (s *PlanService) UpdatePlan(id uuid.UUID, req *UpdatePlanRequest) (*models.InsurancePlan, error) {
	plan, err := s.GetPlan(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.PlanName != nil {
		updates["plan_name"] = *req.PlanName
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.ODRateValue != nil {
		updates["od_rate_value"] = *req.ODRateValue
	}
	if req.MinODPremium != nil {
		updates["min_od_premium"] = *req.MinODPremium
	}
	if req.MaxODPremium != nil {
		updates["max_od_premium"] = *req.MaxODPremium
	}
	if req.TPPremiumValue != nil {
		updates["tp_premium_value"] = *req.TPPremiumValue
	}
	if req.GSTRate != nil {
		updates["gst_rate"] = *req.GSTRate
	}
	if req.Deductible != nil {
		updates["deductible"] = *req.Deductible
	}
	if req.WaitingPeriodDays != nil {
		updates["waiting_period_days"] = *req.WaitingPeriodDays
	}

	if len(updates) == 0 {
		return plan, nil
	}

	if err := s.db.Model(plan).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	return plan, nil
}

// QuotePremium prices a quote against a plan without persisting anything.
func (s *PlanService) QuotePremium(planID uuid.UUID, in premium.Input) (*premium.Breakdown, error) {
	plan, err := s.GetPlan(planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, apperrors.Validation("plan_id", "plan %s is not active", plan.PlanCode)
	}

	breakdown := premium.Calculate(plan, in)
	if breakdown == nil {
		return nil, apperrors.Validation("idv", "premium is not computable: IDV must be positive")
	}
	return breakdown, nil
}

// validateSlabs requires slabs to be well-formed and non-overlapping when
// sorted by starting age.
func validateSlabs(slabs []DepreciationSlabInput) error {
	if len(slabs) == 0 {
		return nil
	}

	sorted := make([]DepreciationSlabInput, len(slabs))
	copy(sorted, slabs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].AgeFromMonths < sorted[j].AgeFromMonths
	})

	for i, slab := range sorted {
		if slab.AgeToMonths <= slab.AgeFromMonths {
			return apperrors.Validation("depreciation_slabs", "slab %d-%d months is inverted", slab.AgeFromMonths, slab.AgeToMonths)
		}
		if i > 0 && slab.AgeFromMonths < sorted[i-1].AgeToMonths {
			return apperrors.Validation("depreciation_slabs", "slab %d-%d months overlaps the previous slab", slab.AgeFromMonths, slab.AgeToMonths)
		}
	}
	return nil
}
