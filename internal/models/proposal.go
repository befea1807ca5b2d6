// internal/models/proposal.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Proposal struct {
	BaseModel
	ProposalNumber string    `json:"proposal_number" gorm:"uniqueIndex;size:30;not null"`
	CustomerID     uuid.UUID `json:"customer_id" gorm:"type:uuid;not null;index"`
	VehicleID      uuid.UUID `json:"vehicle_id" gorm:"type:uuid;not null;index"`
	PlanID         uuid.UUID `json:"plan_id" gorm:"type:uuid;not null;index"`

	VehicleIDV     float64        `json:"vehicle_idv" gorm:"type:decimal(12,2)"`
	PolicyStart    time.Time      `json:"policy_start"`
	PolicyEnd      time.Time      `json:"policy_end"`
	NCBPercent     float64        `json:"ncb_percent" gorm:"type:decimal(5,2)"`
	SelectedAddons pq.StringArray `json:"selected_addons" gorm:"type:text[]"`

	// Premium breakdown, written only by the calculator
	ODPremiumBase     float64 `json:"od_premium_base" gorm:"type:decimal(12,2)"`
	NCBDiscount       float64 `json:"ncb_discount" gorm:"type:decimal(12,2)"`
	ODPremium         float64 `json:"od_premium" gorm:"type:decimal(12,2)"`
	TPPremium         float64 `json:"tp_premium" gorm:"type:decimal(12,2)"`
	AddonPremium      float64 `json:"addon_premium" gorm:"type:decimal(12,2)"`
	TotalNetPremium   float64 `json:"total_net_premium" gorm:"type:decimal(12,2)"`
	TotalGST          float64 `json:"total_gst" gorm:"type:decimal(12,2)"`
	GrandTotalPremium float64 `json:"grand_total_premium" gorm:"type:decimal(12,2)"`

	Status          ProposalStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	SubmittedAt     *time.Time     `json:"submitted_at"`
	DecidedBy       *uuid.UUID     `json:"decided_by" gorm:"type:uuid"`
	DecidedAt       *time.Time     `json:"decided_at"`
	RejectionReason string         `json:"rejection_reason,omitempty" gorm:"type:text"`

	// Set when this proposal was produced by the renewal sweep; the unique
	// index is what makes the sweep re-runnable without duplicates.
	RenewalOfPolicyID *uuid.UUID `json:"renewal_of_policy_id,omitempty" gorm:"type:uuid;uniqueIndex"`

	// Relationships
	Customer Customer      `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Vehicle  Vehicle       `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	Plan     InsurancePlan `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
	Decider  *User         `json:"decider,omitempty" gorm:"foreignKey:DecidedBy"`
}

// Terminal reports whether the proposal is locked for edits.
func (p *Proposal) Terminal() bool {
	return p.Status == ProposalStatusApproved || p.Status == ProposalStatusRejected
}
