// internal/handlers/policy.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/insurance-solutions/vims-backend/internal/models"
	"github.com/insurance-solutions/vims-backend/internal/services"
	"github.com/insurance-solutions/vims-backend/internal/utils"
)

type PolicyHandler struct {
	policyService  *services.PolicyService
	paymentService *services.PaymentService
}

func NewPolicyHandler(policyService *services.PolicyService, paymentService *services.PaymentService) *PolicyHandler {
	return &PolicyHandler{
		policyService:  policyService,
		paymentService: paymentService,
	}
}

// GET /policies/:id
func (h *PolicyHandler) GetPolicy(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	policy, err := h.policyService.GetPolicy(id)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, policy)
}

// GET /policies
func (h *PolicyHandler) ListPolicies(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	status := models.PolicyStatus(c.Query("status"))

	var customerID *uuid.UUID
	if raw := c.Query("customer_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid customer_id", nil)
			return
		}
		customerID = &parsed
	}

	policies, total, err := h.policyService.ListPolicies(params, status, customerID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(policies, total, params))
}

// GET /public/policies/:number — unauthenticated verification lookup
func (h *PolicyHandler) LookupByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		utils.BadRequestResponse(c, "A policy number is required", nil)
		return
	}

	policy, err := h.policyService.GetPolicyByNumber(number)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	// The public surface discloses validity, not financials
	utils.SuccessResponse(c, gin.H{
		"policy_number":     policy.PolicyNumber,
		"status":            policy.Status,
		"policy_start_date": policy.PolicyStartDate,
		"policy_end_date":   policy.PolicyEndDate,
		"vehicle":           policy.Vehicle.RegistrationNumber,
	})
}

// POST /policies/:id/payments — manual payment entry (finance desk)
func (h *PolicyHandler) ApplyPayment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reference string  `json:"reference" binding:"required"`
		Amount    float64 `json:"amount" binding:"required"`
		Method    string  `json:"method,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}
	if req.Method == "" {
		req.Method = "manual"
	}

	policy, receipt, err := h.policyService.ApplyPayment(id, req.Reference, req.Amount, req.Method)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"policy":  policy,
		"receipt": receipt,
	})
}

// POST /policies/:id/payment-intent
func (h *PolicyHandler) CreatePaymentIntent(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	intent, err := h.paymentService.CreatePremiumIntent(id)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, intent)
}

// POST /policies/:id/payment-confirm
func (h *PolicyHandler) ConfirmPayment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	policy, receipt, err := h.paymentService.ConfirmPremiumPayment(id, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"policy":  policy,
		"receipt": receipt,
	})
}

// POST /policies/:id/endorsements
func (h *PolicyHandler) CreateEndorsement(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID, _, ok := actor(c)
	if !ok {
		return
	}

	var req services.CreateEndorsementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	endorsement, err := h.policyService.CreateEndorsement(id, &req, userID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, endorsement)
}

// GET /policies/:id/endorsements
func (h *PolicyHandler) ListEndorsements(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	endorsements, err := h.policyService.ListEndorsements(id)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, endorsements)
}
