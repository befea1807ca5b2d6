// internal/models/customer.go
package models

type Customer struct {
	BaseModel
	CustomerName string    `json:"customer_name" gorm:"size:140;not null;index"`
	Email        string    `json:"email" gorm:"size:255;index"`
	Phone        string    `json:"phone" gorm:"size:20"`
	Address      string    `json:"address" gorm:"type:text"`
	KYCStatus    KYCStatus `json:"kyc_status" gorm:"type:varchar(20);default:'pending';index"`
	KYCDocument  string    `json:"kyc_document,omitempty" gorm:"size:500"`

	// Relationships
	Vehicles []Vehicle `json:"vehicles,omitempty" gorm:"foreignKey:CustomerID"`
}
