// internal/services/customer_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/insurance-solutions/vims-backend/internal/apperrors"
	"github.com/insurance-solutions/vims-backend/internal/models"
	"github.com/insurance-solutions/vims-backend/internal/utils"
)

// CustomerService manages customers and their vehicles.
type CustomerService struct {
	db *gorm.DB
}

type CreateCustomerRequest struct {
	CustomerName string `json:"customer_name" validate:"required,min=2,max=140"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
}

type CreateVehicleRequest struct {
	CustomerID         uuid.UUID  `json:"customer_id" validate:"required"`
	RegistrationNumber string     `json:"registration_number" validate:"required,vehicle_registration"`
	ChassisNumber      string     `json:"chassis_number" validate:"required"`
	EngineNumber       string     `json:"engine_number" validate:"required"`
	Make               string     `json:"make" validate:"required"`
	Model              string     `json:"model" validate:"required"`
	ManufacturingYear  int        `json:"manufacturing_year" validate:"required,min=1980"`
	FuelType           string     `json:"fuel_type" validate:"required"`
	Category           string     `json:"category" validate:"required"`
	BodyType           string     `json:"body_type" validate:"required"`
	EngineCC           int        `json:"engine_cc" validate:"required,min=1"`
	SeatingCapacity    int        `json:"seating_capacity" validate:"required,min=1"`
	RTOLocation        string     `json:"rto_location" validate:"required"`
	VehicleValue       float64    `json:"vehicle_value" validate:"required,gt=0"`
	CurrentIDV         float64    `json:"current_idv" validate:"required,gt=0"`
	RCExpiryDate       *time.Time `json:"rc_expiry_date,omitempty"`
}

type VerifyRCRequest struct {
	RCStatus     models.RCStatus `json:"rc_status" validate:"required"`
	RCExpiryDate *time.Time      `json:"rc_expiry_date,omitempty"`
	RCDocument   string          `json:"rc_document,omitempty"`
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

func (s *CustomerService) CreateCustomer(req *CreateCustomerRequest) (*models.Customer, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("", "validation failed: %v", err)
	}

	customer := &models.Customer{
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		KYCStatus:    models.KYCStatusPending,
	}

	if err := s.db.Create(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return customer, nil
}

func (s *CustomerService) GetCustomer(id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.Preload("Vehicles").First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("customer", id.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &customer, nil
}

func (s *CustomerService) ListCustomers(params utils.PaginationParams) ([]models.Customer, int64, error) {
	query := s.db.Model(&models.Customer{})

	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("customer_name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	allowedSortFields := []string{"created_at", "customer_name"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var customers []models.Customer
	if err := query.Find(&customers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch customers: %w", err)
	}

	return customers, total, nil
}

func (s *CustomerService) UpdateKYC(id uuid.UUID, status models.KYCStatus, document string) (*models.Customer, error) {
	customer, err := s.GetCustomer(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"kyc_status": status}
	if document != "" {
		updates["kyc_document"] = document
	}

	if err := s.db.Model(customer).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update KYC: %w", err)
	}

	return customer, nil
}

func (s *CustomerService) CreateVehicle(req *CreateVehicleRequest) (*models.Vehicle, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("", "validation failed: %v", err)
	}

	var customer models.Customer
	if err := s.db.First(&customer, req.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("customer", req.CustomerID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var existing models.Vehicle
	if err := s.db.Where("registration_number = ?", req.RegistrationNumber).First(&existing).Error; err == nil {
		return nil, apperrors.Conflict("vehicle with registration %s already exists", req.RegistrationNumber)
	}

	vehicle := &models.Vehicle{
		CustomerID:         req.CustomerID,
		RegistrationNumber: req.RegistrationNumber,
		ChassisNumber:      req.ChassisNumber,
		EngineNumber:       req.EngineNumber,
		Make:               req.Make,
		Model:              req.Model,
		ManufacturingYear:  req.ManufacturingYear,
		FuelType:           req.FuelType,
		Category:           req.Category,
		BodyType:           req.BodyType,
		EngineCC:           req.EngineCC,
		SeatingCapacity:    req.SeatingCapacity,
		RTOLocation:        req.RTOLocation,
		VehicleValue:       req.VehicleValue,
		CurrentIDV:         req.CurrentIDV,
		RCStatus:           models.RCStatusActive,
		RCExpiryDate:       req.RCExpiryDate,
	}

	if err := s.db.Create(vehicle).Error; err != nil {
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}

	return vehicle, nil
}

func (s *CustomerService) GetVehicle(id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := s.db.Preload("Customer").First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("vehicle", id.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &vehicle, nil
}

// VerifyRC marks the registration certificate as checked against the RTO
// registry and records its status and expiry.
func (s *CustomerService) VerifyRC(id uuid.UUID, req *VerifyRCRequest) (*models.Vehicle, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("", "validation failed: %v", err)
	}

	vehicle, err := s.GetVehicle(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"rc_verified": true,
		"rc_status":   req.RCStatus,
	}
	if req.RCExpiryDate != nil {
		updates["rc_expiry_date"] = *req.RCExpiryDate
	}
	if req.RCDocument != "" {
		updates["rc_document"] = req.RCDocument
	}

	if err := s.db.Model(vehicle).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update vehicle RC: %w", err)
	}

	return vehicle, nil
}

// AttachRCDocument stores the uploaded RC scan. Uploading alone does not
// verify the certificate; VerifyRC stays a separate step.
func (s *CustomerService) AttachRCDocument(id uuid.UUID, url string) (*models.Vehicle, error) {
	vehicle, err := s.GetVehicle(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(vehicle).Update("rc_document", url).Error; err != nil {
		return nil, fmt.Errorf("failed to attach RC document: %w", err)
	}

	return vehicle, nil
}

// UpdateIDV revises the vehicle's declared value; proposals already issued
// keep the IDV they were priced with.
func (s *CustomerService) UpdateIDV(id uuid.UUID, idv float64) (*models.Vehicle, error) {
	if idv <= 0 {
		return nil, apperrors.Validation("current_idv", "IDV must be a positive value")
	}

	vehicle, err := s.GetVehicle(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(vehicle).Update("current_idv", idv).Error; err != nil {
		return nil, fmt.Errorf("failed to update IDV: %w", err)
	}

	return vehicle, nil
}
