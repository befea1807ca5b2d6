// internal/models/plan.go
package models

import (
	"github.com/google/uuid"
)

// InsurancePlan is a mutable template. Issued policies never read it live;
// they carry a frozen snapshot taken at issuance.
type InsurancePlan struct {
	BaseModel
	PlanCode string `json:"plan_code" gorm:"uniqueIndex;size:30;not null"`
	PlanName string `json:"plan_name" gorm:"size:140;not null"`
	IsActive bool   `json:"is_active" gorm:"default:true;index"`

	// Own-damage premium rule
	ODRateType   RateType `json:"od_rate_type" gorm:"type:varchar(15);default:'percentage'"`
	ODRateValue  float64  `json:"od_rate_value" gorm:"type:decimal(12,4)"`
	MinODPremium float64  `json:"min_od_premium" gorm:"type:decimal(12,2)"`
	MaxODPremium float64  `json:"max_od_premium" gorm:"type:decimal(12,2)"`

	// Third-party premium is a fixed value, no IDV dependency
	TPPremiumValue float64 `json:"tp_premium_value" gorm:"type:decimal(12,2)"`

	GSTRate    float64 `json:"gst_rate" gorm:"type:decimal(5,2)"`
	Deductible float64 `json:"deductible" gorm:"type:decimal(12,2)"`

	// Eligible engine displacement range; zero means unbounded
	EngineCCFrom int `json:"engine_cc_from"`
	EngineCCTo   int `json:"engine_cc_to"`

	// Overrides the system-wide claim waiting period when > 0
	WaitingPeriodDays int `json:"waiting_period_days"`

	// Relationships
	CoverageTypes     []PlanCoverage     `json:"coverage_types,omitempty" gorm:"foreignKey:PlanID"`
	Addons            []PlanAddon        `json:"addons,omitempty" gorm:"foreignKey:PlanID"`
	DepreciationSlabs []DepreciationSlab `json:"depreciation_slabs,omitempty" gorm:"foreignKey:PlanID"`
}

type PlanCoverage struct {
	BaseModel
	PlanID       uuid.UUID `json:"plan_id" gorm:"type:uuid;not null;index"`
	CoverageType string    `json:"coverage_type" gorm:"size:60;not null"`
	LimitType    LimitType `json:"limit_type" gorm:"type:varchar(20);default:'percentage_of_idv'"`
	LimitValue   float64   `json:"limit_value" gorm:"type:decimal(12,2)"`
	Deductible   float64   `json:"deductible" gorm:"type:decimal(12,2)"`
}

type PlanAddon struct {
	BaseModel
	PlanID       uuid.UUID `json:"plan_id" gorm:"type:uuid;not null;index"`
	AddonName    string    `json:"addon_name" gorm:"size:60;not null"`
	PricingType  RateType  `json:"pricing_type" gorm:"type:varchar(15);default:'flat'"`
	PricingValue float64   `json:"pricing_value" gorm:"type:decimal(12,4)"`
}

// DepreciationSlab maps a vehicle-age range (in months) to a depreciation
// percentage. Slabs on a plan must be ordered and non-overlapping.
type DepreciationSlab struct {
	BaseModel
	PlanID         uuid.UUID `json:"plan_id" gorm:"type:uuid;not null;index"`
	AgeFromMonths  int       `json:"age_from_months"`
	AgeToMonths    int       `json:"age_to_months"`
	DepreciationPc float64   `json:"depreciation_pc" gorm:"type:decimal(5,2)"`
}
