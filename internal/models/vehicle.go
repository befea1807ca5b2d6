// internal/models/vehicle.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Vehicle struct {
	BaseModel
	CustomerID         uuid.UUID `json:"customer_id" gorm:"type:uuid;not null;index"`
	RegistrationNumber string    `json:"registration_number" gorm:"uniqueIndex;size:20;not null"`
	ChassisNumber      string    `json:"chassis_number" gorm:"size:30"`
	EngineNumber       string    `json:"engine_number" gorm:"size:30"`
	Make               string    `json:"make" gorm:"size:60"`
	Model              string    `json:"model" gorm:"size:60"`
	ManufacturingYear  int       `json:"manufacturing_year"`
	FuelType           string    `json:"fuel_type" gorm:"size:20"`
	Category           string    `json:"category" gorm:"size:30"`
	BodyType           string    `json:"body_type" gorm:"size:30"`
	EngineCC           int       `json:"engine_cc"`
	SeatingCapacity    int       `json:"seating_capacity"`
	RTOLocation        string    `json:"rto_location" gorm:"size:60"`
	VehicleValue       float64   `json:"vehicle_value" gorm:"type:decimal(12,2)"`
	CurrentIDV         float64   `json:"current_idv" gorm:"type:decimal(12,2)"`

	// Registration certificate
	RCVerified   bool       `json:"rc_verified" gorm:"default:false"`
	RCStatus     RCStatus   `json:"rc_status" gorm:"type:varchar(15);default:'ACTIVE'"`
	RCExpiryDate *time.Time `json:"rc_expiry_date"`
	RCDocument   string     `json:"rc_document,omitempty" gorm:"size:500"`

	// Relationships
	Customer Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
}

// RCValid reports whether the registration certificate allows a proposal to
// leave draft: verified, ACTIVE status, and not past its expiry date.
func (v *Vehicle) RCValid(today time.Time) bool {
	if !v.RCVerified || v.RCStatus != RCStatusActive {
		return false
	}
	if v.RCExpiryDate != nil && v.RCExpiryDate.Before(today.Truncate(24*time.Hour)) {
		return false
	}
	return true
}
