// internal/handlers/customer.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/insurance-solutions/vims-backend/internal/models"
	"github.com/insurance-solutions/vims-backend/internal/services"
	"github.com/insurance-solutions/vims-backend/internal/utils"
)

type CustomerHandler struct {
	customerService *services.CustomerService
	storageService  *services.StorageService
}

func NewCustomerHandler(customerService *services.CustomerService, storageService *services.StorageService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		storageService:  storageService,
	}
}

// POST /customers
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req services.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	customer, err := h.customerService.CreateCustomer(&req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, customer)
}

// GET /customers/:id
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(id)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, customer)
}

// GET /customers
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	customers, total, err := h.customerService.ListCustomers(params)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(customers, total, params))
}

// PUT /customers/:id/kyc
func (h *CustomerHandler) UpdateKYC(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		KYCStatus   models.KYCStatus `json:"kyc_status" binding:"required"`
		KYCDocument string           `json:"kyc_document,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	customer, err := h.customerService.UpdateKYC(id, req.KYCStatus, req.KYCDocument)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, customer)
}

// POST /vehicles
func (h *CustomerHandler) CreateVehicle(c *gin.Context) {
	var req services.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	vehicle, err := h.customerService.CreateVehicle(&req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, vehicle)
}

// GET /vehicles/:id
func (h *CustomerHandler) GetVehicle(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	vehicle, err := h.customerService.GetVehicle(id)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, vehicle)
}

// PUT /vehicles/:id/rc
func (h *CustomerHandler) VerifyRC(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.VerifyRCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	vehicle, err := h.customerService.VerifyRC(id, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, vehicle)
}

// PUT /vehicles/:id/idv
func (h *CustomerHandler) UpdateIDV(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		CurrentIDV float64 `json:"current_idv" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	vehicle, err := h.customerService.UpdateIDV(id, req.CurrentIDV)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, vehicle)
}

// POST /vehicles/:id/rc-document
func (h *CustomerHandler) UploadRCDocument(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "No file uploaded", nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadFile(file, header, services.UploadOptions{
		Folder:       "rc-documents",
		MaxSize:      10 * 1024 * 1024, // 10MB
		AllowedTypes: []string{".pdf", ".jpg", ".jpeg", ".png"},
	})
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	vehicle, err := h.customerService.AttachRCDocument(id, result.URL)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"vehicle": vehicle,
		"upload":  result,
	})
}
