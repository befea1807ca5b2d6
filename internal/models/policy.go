// internal/models/policy.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Policy carries a frozen copy of the plan taken at issuance. Nothing on a
// policy is ever re-derived from the live plan template.
type Policy struct {
	BaseModel
	PolicyNumber string    `json:"policy_number" gorm:"uniqueIndex;size:30;not null"`
	ProposalID   uuid.UUID `json:"proposal_id" gorm:"type:uuid;not null;uniqueIndex"`
	CustomerID   uuid.UUID `json:"customer_id" gorm:"type:uuid;not null;index"`
	VehicleID    uuid.UUID `json:"vehicle_id" gorm:"type:uuid;not null;index"`
	PlanID       uuid.UUID `json:"plan_id" gorm:"type:uuid;not null;index"`

	VehicleIDV      float64   `json:"vehicle_idv" gorm:"type:decimal(12,2)"`
	PolicyStartDate time.Time `json:"policy_start_date"`
	PolicyEndDate   time.Time `json:"policy_end_date"`
	Nominee         string    `json:"nominee" gorm:"size:140"`

	// Frozen premium breakdown copied from the approved proposal
	ODPremium           float64 `json:"od_premium" gorm:"type:decimal(12,2)"`
	TPPremium           float64 `json:"tp_premium" gorm:"type:decimal(12,2)"`
	AddonPremium        float64 `json:"addon_premium" gorm:"type:decimal(12,2)"`
	TotalGST            float64 `json:"total_gst" gorm:"type:decimal(12,2)"`
	TotalPremiumPayable float64 `json:"total_premium_payable" gorm:"type:decimal(12,2)"`
	PremiumPaid         float64 `json:"premium_paid" gorm:"type:decimal(12,2);default:0"`
	OutstandingAmount   float64 `json:"outstanding_amount" gorm:"type:decimal(12,2)"`

	// Full plan definition serialized at issuance
	PlanSnapshot JSONB `json:"plan_snapshot" gorm:"type:jsonb"`

	Status      PolicyStatus `json:"status" gorm:"type:varchar(20);default:'pending_payment';index"`
	ActivatedAt *time.Time   `json:"activated_at"`

	// Relationships
	Proposal         Proposal           `json:"proposal,omitempty" gorm:"foreignKey:ProposalID"`
	Customer         Customer           `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Vehicle          Vehicle            `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	CoverageSnapshot []CoverageSnapshot `json:"coverage_snapshot,omitempty" gorm:"foreignKey:PolicyID"`
	Payments         []PaymentReceipt   `json:"payments,omitempty" gorm:"foreignKey:PolicyID"`
}

// Covers reports whether the frozen snapshot includes a coverage type.
func (p *Policy) Covers(coverageType string) bool {
	for _, row := range p.CoverageSnapshot {
		if row.CoverageType == coverageType {
			return true
		}
	}
	return false
}

// CoverageSnapshot is a plan coverage row copied onto a policy at issuance.
type CoverageSnapshot struct {
	BaseModel
	PolicyID     uuid.UUID `json:"policy_id" gorm:"type:uuid;not null;index"`
	CoverageType string    `json:"coverage_type" gorm:"size:60;not null"`
	LimitType    LimitType `json:"limit_type" gorm:"type:varchar(20)"`
	LimitValue   float64   `json:"limit_value" gorm:"type:decimal(12,2)"`
	Deductible   float64   `json:"deductible" gorm:"type:decimal(12,2)"`
}

// PaymentReceipt records one applied payment event. The unique reference is
// the idempotency key: re-delivering the same event is a no-op.
type PaymentReceipt struct {
	BaseModel
	PolicyID   uuid.UUID `json:"policy_id" gorm:"type:uuid;not null;index"`
	Reference  string    `json:"reference" gorm:"uniqueIndex;size:100;not null"`
	Amount     float64   `json:"amount" gorm:"type:decimal(12,2);not null"`
	Method     string    `json:"method" gorm:"size:30"`
	ReceivedAt time.Time `json:"received_at"`
}

// PolicyEndorsement amends an Active policy. Only non-financial deltas are
// supported; premium is never recalculated.
type PolicyEndorsement struct {
	BaseModel
	PolicyID   uuid.UUID `json:"policy_id" gorm:"type:uuid;not null;index"`
	NewNominee string    `json:"new_nominee" gorm:"size:140"`
	Remarks    string    `json:"remarks" gorm:"type:text"`
	CreatedBy  uuid.UUID `json:"created_by" gorm:"type:uuid"`

	Policy Policy `json:"policy,omitempty" gorm:"foreignKey:PolicyID"`
}
