// internal/models/claim.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Claim struct {
	BaseModel
	ClaimNumber string    `json:"claim_number" gorm:"uniqueIndex;size:30;not null"`
	PolicyID    uuid.UUID `json:"policy_id" gorm:"type:uuid;not null;index"`

	// Copied down from the policy at registration for listing/reporting
	CustomerID   uuid.UUID `json:"customer_id" gorm:"type:uuid;index"`
	VehicleID    uuid.UUID `json:"vehicle_id" gorm:"type:uuid;index"`
	PolicyNumber string    `json:"policy_number" gorm:"size:30"`

	DateOfLoss       time.Time      `json:"date_of_loss"`
	RegistrationDate time.Time      `json:"registration_date"`
	CoverageType     string         `json:"coverage_type" gorm:"size:60"`
	NatureOfLoss     string         `json:"nature_of_loss" gorm:"size:140"`
	Description      string         `json:"description" gorm:"type:text"`
	ClaimAmount      float64        `json:"claim_amount" gorm:"type:decimal(12,2)"`
	EvidenceURLs     pq.StringArray `json:"evidence_urls" gorm:"type:text[]"`

	Status ClaimStatus `json:"status" gorm:"type:varchar(30);default:'reported';index"`

	// Back-references stamped by dependent records
	SurveyID       *uuid.UUID `json:"survey_id" gorm:"type:uuid"`
	VerificationID *uuid.UUID `json:"verification_id" gorm:"type:uuid"`
	FraudSuspected bool       `json:"fraud_suspected" gorm:"default:false;index"`

	// Set when coverage checking runs in warn mode and the declared coverage
	// type was not found in the policy snapshot
	CoverageWarning bool `json:"coverage_warning" gorm:"default:false"`

	AssignedSurveyor *uuid.UUID `json:"assigned_surveyor" gorm:"type:uuid"`
	AssignedVerifier *uuid.UUID `json:"assigned_verifier" gorm:"type:uuid"`

	// Settlement figures; all three must be present before approval
	ApprovedAmount    *float64   `json:"approved_amount" gorm:"type:decimal(12,2)"`
	DeductibleApplied *float64   `json:"deductible_applied" gorm:"type:decimal(12,2)"`
	SettlementAmount  *float64   `json:"settlement_amount" gorm:"type:decimal(12,2)"`
	SettlementEntryID *uuid.UUID `json:"settlement_entry_id" gorm:"type:uuid"`
	SettledAt         *time.Time `json:"settled_at"`

	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"type:text"`
	DecidedBy       *uuid.UUID `json:"decided_by" gorm:"type:uuid"`
	DecidedAt       *time.Time `json:"decided_at"`

	// Relationships
	Policy       Policy             `json:"policy,omitempty" gorm:"foreignKey:PolicyID"`
	Customer     Customer           `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Vehicle      Vehicle            `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	Survey       *ClaimSurvey       `json:"survey,omitempty" gorm:"foreignKey:SurveyID"`
	Verification *ClaimVerification `json:"verification,omitempty" gorm:"foreignKey:VerificationID"`
}

// Terminal reports whether the claim is locked for further transitions.
func (c *Claim) Terminal() bool {
	return c.Status == ClaimStatusRejected || c.Status == ClaimStatusSettled
}

// ClaimSurvey is produced once by a surveyor; submitting it pushes the claim
// from Survey Assigned to Survey Completed and stamps the back-reference.
type ClaimSurvey struct {
	BaseModel
	ClaimID           uuid.UUID `json:"claim_id" gorm:"type:uuid;not null;index"`
	SurveyorID        uuid.UUID `json:"surveyor_id" gorm:"type:uuid;not null"`
	SurveyDate        time.Time `json:"survey_date"`
	DamageDescription string    `json:"damage_description" gorm:"type:text"`
	AssessedAmount    float64   `json:"assessed_amount" gorm:"type:decimal(12,2)"`
	ReportURL         string    `json:"report_url,omitempty" gorm:"size:500"`
}

// ClaimVerification is produced once by a verification agent; submitting it
// pushes the claim to Agent Verified and copies the fraud flag up.
type ClaimVerification struct {
	BaseModel
	ClaimID        uuid.UUID `json:"claim_id" gorm:"type:uuid;not null;index"`
	AgentID        uuid.UUID `json:"agent_id" gorm:"type:uuid;not null"`
	Remarks        string    `json:"remarks" gorm:"type:text"`
	FraudSuspected bool      `json:"fraud_suspected" gorm:"default:false"`
}

// SettlementEntry is the financial posting created atomically with the
// claim's Settled transition. One per claim, enforced by the unique index.
type SettlementEntry struct {
	BaseModel
	ClaimID  uuid.UUID `json:"claim_id" gorm:"type:uuid;not null;uniqueIndex"`
	Amount   float64   `json:"amount" gorm:"type:decimal(12,2);not null"`
	PostedBy uuid.UUID `json:"posted_by" gorm:"type:uuid"`
	PostedAt time.Time `json:"posted_at"`
	Remarks  string    `json:"remarks" gorm:"type:text"`
}
