// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns IDs client-side so the models also work on databases
// without gen_random_uuid (the sqlite test driver in particular).
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums

type UserRole string

const (
	RoleAdmin             UserRole = "admin"
	RoleAgent             UserRole = "agent"
	RoleUnderwriter       UserRole = "underwriter"
	RoleClaimsOfficer     UserRole = "claims_officer"
	RoleSurveyor          UserRole = "surveyor"
	RoleVerificationAgent UserRole = "verification_agent"
	RoleFinance           UserRole = "finance"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusVerified KYCStatus = "verified"
	KYCStatusRejected KYCStatus = "rejected"
)

type RCStatus string

const (
	RCStatusActive    RCStatus = "ACTIVE"
	RCStatusSuspended RCStatus = "SUSPENDED"
	RCStatusExpired   RCStatus = "EXPIRED"
)

type RateType string

const (
	RateTypePercentage RateType = "percentage"
	RateTypeFlat       RateType = "flat"
)

type LimitType string

const (
	LimitTypePercentageOfIDV LimitType = "percentage_of_idv"
	LimitTypeFixedAmount     LimitType = "fixed_amount"
)

type ProposalStatus string

const (
	ProposalStatusDraft        ProposalStatus = "draft"
	ProposalStatusSubmitted    ProposalStatus = "submitted"
	ProposalStatusUnderwriting ProposalStatus = "underwriting"
	ProposalStatusApproved     ProposalStatus = "approved"
	ProposalStatusRejected     ProposalStatus = "rejected"
)

type PolicyStatus string

const (
	PolicyStatusPendingPayment PolicyStatus = "pending_payment"
	PolicyStatusActive         PolicyStatus = "active"
	PolicyStatusLapsed         PolicyStatus = "lapsed"
	PolicyStatusCancelled      PolicyStatus = "cancelled"
	PolicyStatusExpired        PolicyStatus = "expired"
)

type ClaimStatus string

const (
	ClaimStatusReported             ClaimStatus = "reported"
	ClaimStatusSurveyAssigned       ClaimStatus = "survey_assigned"
	ClaimStatusSurveyCompleted      ClaimStatus = "survey_completed"
	ClaimStatusVerificationAssigned ClaimStatus = "verification_assigned"
	ClaimStatusAgentVerified        ClaimStatus = "agent_verified"
	ClaimStatusApproved             ClaimStatus = "approved"
	ClaimStatusRejected             ClaimStatus = "rejected"
	ClaimStatusSettled              ClaimStatus = "settled"
)

// SeriesCounter backs the naming-series generator (POL-2026-00001 etc).
// One row per series key, incremented under a row lock.
type SeriesCounter struct {
	Key     string `json:"key" gorm:"primary_key;size:50"`
	Current int64  `json:"current" gorm:"not null;default:0"`
}
